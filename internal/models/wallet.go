package models

import (
	"time"

	"gorm.io/gorm"
)

// Wallet 用户钱包表
// 对局奖励以货币记账，质押资产本身永不没收。
type Wallet struct {
	BaseModel
	UserID      uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Balance     int64     `gorm:"default:0" json:"balance"` // 余额（分）
	TotalReward int64     `gorm:"default:0" json:"total_reward"`
	LastResetAt time.Time `json:"last_reset_at"`

	// 关联（注意：不直接嵌入 User，避免循环依赖）
}

// 交易类型
const (
	TransactionTypeReward  = "reward"  // 对局获胜奖励
	TransactionTypeDeposit = "deposit" // 充值
)

// Transaction 交易记录表
type Transaction struct {
	BaseModel
	UserID        uint    `gorm:"not null;index" json:"user_id"`
	OrderNo       string  `gorm:"uniqueIndex;size:64;not null" json:"order_no"`
	Type          string  `gorm:"size:50;not null;index" json:"type"`
	Amount        int64   `gorm:"not null" json:"amount"`
	BeforeBalance int64   `json:"before_balance"`
	AfterBalance  int64   `json:"after_balance"`
	RefID         string  `gorm:"size:100;index" json:"ref_id"` // 关联ID（对局ID等）
	RefType       string  `gorm:"size:50" json:"ref_type"`
	Description   string  `gorm:"size:500" json:"description"`
	Metadata      JSONMap `gorm:"type:json" json:"metadata"`
}

// BeforeCreate 钱包创建前的钩子
func (w *Wallet) BeforeCreate(tx *gorm.DB) error {
	w.LastResetAt = time.Now()
	return nil
}
