package models

import (
	"time"
)

// BotUsername 自动对手的保留用户名（单人对局的合成身份）
const BotUsername = "duelbot"

// User 用户基础信息表
type User struct {
	BaseModel
	Username    string     `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Nickname    string     `gorm:"size:100" json:"nickname"`
	Email       string     `gorm:"uniqueIndex;size:100" json:"email"`
	Status      string     `gorm:"size:20;default:'active'" json:"status"` // active, frozen, banned
	IsBot       bool       `gorm:"default:false" json:"is_bot"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	LastLoginIP string     `gorm:"size:50" json:"last_login_ip"`

	// 关联（注意：Wallet 不直接嵌入，避免循环依赖）
	Auth     UserAuth      `gorm:"foreignKey:UserID" json:"-"`
	Sessions []UserSession `gorm:"foreignKey:UserID" json:"-"`
}

// UserAuth 用户认证信息表
type UserAuth struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Password      string     `gorm:"size:255;not null" json:"-"`
	LoginAttempts int        `gorm:"default:0" json:"login_attempts"`
	LockedUntil   *time.Time `json:"locked_until,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// UserSession 用户会话表
type UserSession struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	SessionID    string    `gorm:"uniqueIndex;size:64;not null" json:"session_id"`
	RefreshToken string    `gorm:"size:255" json:"-"`
	IP           string    `gorm:"size:50" json:"ip"`
	UserAgent    string    `gorm:"size:500" json:"user_agent"`
	ExpiredAt    time.Time `json:"expired_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// 能力类型：授权的子账号可以代表主账号执行的操作
const (
	CapabilityPlay   = "play"   // 创建对局、提交手势
	CapabilityEscrow = "escrow" // 质押资产
)

// CapabilityGrant 能力授权表
// 主账号向子账号授予限定范围的能力，使用显式授权记录而非动态能力对象，
// hasCapability 检查即查询一条未撤销的授权。
type CapabilityGrant struct {
	BaseModel
	GrantorID  uint       `gorm:"not null;index:idx_grant,unique" json:"grantor_id"`
	GranteeID  uint       `gorm:"not null;index:idx_grant,unique" json:"grantee_id"`
	Capability string     `gorm:"size:50;not null;index:idx_grant,unique" json:"capability"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
}
