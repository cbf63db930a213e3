package service

import (
	"math"
)

// SpyResult 是單一臥底在結算後的成績
type SpyResult struct {
	Name         string
	VotesAgainst int
	Earned       int
}

// spyCountFor 計算某個人數下的臥底數量：每滿 10 人多一位，至少一位
func spyCountFor(playerCount int) int {
	return (playerCount-1)/10 + 1
}

// spyAward 計算一位臥底本回合獲得的分數。
// 基礎分是臥底總數；被投的票數達到門檻開始扣分，
// 之後每多一個「組」的票數再多扣一分，最低為零分。
// groupSize 用浮點數計算，人數除不盡時和門檻的取整結果才會正確。
func spyAward(spyCount, citizenCount, votesAgainst int) int {
	if spyCount < 1 {
		spyCount = 1
	}

	groupSize := float64(citizenCount) / float64(spyCount)
	firstThreshold := int(math.Floor(groupSize / 2))

	// 沒有平民的回合除數是零，有拿到票的臥底直接零分，
	// 不能讓結果取決於無限大轉整數的行為
	if citizenCount == 0 && votesAgainst > 0 {
		return 0
	}

	earned := spyCount
	if votesAgainst >= firstThreshold {
		deduction := 1
		if votesAgainst > firstThreshold {
			deduction += int(math.Floor(float64(votesAgainst-firstThreshold) / groupSize))
		}
		earned -= deduction
	}

	if earned < 0 {
		earned = 0
	}
	return earned
}

// scoreSpies 統計每位臥底被投的票數並算出得分
// votes 的內容是「投票者 -> 被投的名字」展開後的列表
func scoreSpies(spyNames []string, citizenCount int, voteTargets []string) []SpyResult {
	votesAgainst := make(map[string]int)
	for _, target := range voteTargets {
		votesAgainst[target]++
	}

	spyCount := len(spyNames)
	results := make([]SpyResult, 0, spyCount)
	for _, name := range spyNames {
		results = append(results, SpyResult{
			Name:         name,
			VotesAgainst: votesAgainst[name],
			Earned:       spyAward(spyCount, citizenCount, votesAgainst[name]),
		})
	}
	return results
}
