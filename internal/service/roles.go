package service

import (
	"math/rand"
	"sort"
)

// pickSpies 用公平輪替的方式挑出本回合的臥底：
// 先隨機洗牌打散同票數的順序，再依歷史臥底次數穩定排序，
// 次數最少的玩家優先被選上。history 缺少的名字視為零次。
func pickSpies(names []string, history map[string]int, spyCount int) []string {
	if spyCount > len(names) {
		spyCount = len(names)
	}
	if spyCount <= 0 {
		return nil
	}

	shuffled := make([]string, len(names))
	copy(shuffled, names)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	sort.SliceStable(shuffled, func(i, j int) bool {
		return history[shuffled[i]] < history[shuffled[j]]
	})

	return shuffled[:spyCount]
}
