package service

import "errors"

var (
	// ErrNameReserved 名字已被另一個存活會話綁定
	ErrNameReserved = errors.New("此名稱已被其他玩家使用")
	// ErrAuthRequired 連接沒有出示有效的會話憑證
	ErrAuthRequired = errors.New("需要有效的會話憑證")
	// ErrInvalidTransition 在不允許的狀態下收到的指令，只記錄不處理
	ErrInvalidTransition = errors.New("目前狀態不允許這個操作")
)
