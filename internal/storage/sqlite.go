package storage

import (
	"fmt"
	"sync/atomic"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var memoryDBSeq atomic.Int64

// NewMemoryDB 開啟一個記憶體內的 SQLite 資料庫，主要給測試使用。
// 每次呼叫都用不同的名稱，避免測試之間共用同一份資料。
func NewMemoryDB() (*DB, error) {
	name := fmt.Sprintf("file:memdb%d?mode=memory&cache=shared", memoryDBSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %v", err)
	}

	return &DB{DB: db}, nil
}
