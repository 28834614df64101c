package service

import (
	"context"
	"time"

	"github.com/wfunc/duel-game/internal/models"
	"github.com/wfunc/duel-game/internal/repository"
)

// MatchService 对局服务接口
// 每个操作是一次原子的数据库事务：要么完整提交，要么不留任何痕迹。
type MatchService interface {
	// 对局生命周期
	CreateMatch(ctx context.Context, principalID uint, req *CreateMatchRequest) (*MatchView, error)
	JoinMatch(ctx context.Context, principalID uint, matchID, assetID uint) (*MatchView, error)
	SubmitMove(ctx context.Context, principalID uint, matchID uint, move string) (*MatchView, error)
	SupplyBotMove(ctx context.Context, matchID uint) (*MatchView, error)
	ResolveAndSettle(ctx context.Context, principalID uint, matchID uint) (*Outcome, error)
	ForceSettle(ctx context.Context, matchID uint) error

	// 组合操作：fn 在一个事务内执行，fn 返回错误时事务整体回滚，
	// 包括其中已执行的判定与结算。
	SubmitOperation(ctx context.Context, fn func(ops MatchOperations) error) error

	// 查询
	GetMatch(ctx context.Context, matchID uint) (*MatchView, error)
	GetMatchesInLobby(ctx context.Context, principalID uint) []uint
	GetMatchesInPlay(ctx context.Context, principalID uint) []uint
	GetMoveHistory(ctx context.Context, matchID uint) (map[uint]string, error)
	GetWinLoss(ctx context.Context, assetID uint) (*WinLossView, error)

	// 超时清扫
	SweepExpired(ctx context.Context) (int, error)

	// 启动恢复
	RebuildIndex(ctx context.Context) error
}

// MatchOperations 事务内可用的对局操作
// SubmitOperation 的回调通过它访问绑定到当前事务的操作集合。
type MatchOperations interface {
	ResolveAndSettle(ctx context.Context, principalID uint, matchID uint) (*Outcome, error)
	GetMatch(ctx context.Context, matchID uint) (*MatchView, error)
}

// AuthService 认证服务接口
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error)
	Logout(ctx context.Context, userID uint, sessionID string) error
	RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
}

// UserService 用户服务接口
// 除资料查询外还承载主账号对子账号的能力授权管理。
type UserService interface {
	GetUserByID(ctx context.Context, userID uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error

	// 资产
	GetHoldingSet(ctx context.Context, userID uint, pagination *repository.Pagination) ([]*models.Asset, error)
	MintAsset(ctx context.Context, userID uint, name string) (*models.Asset, error)

	// 能力授权
	GrantCapability(ctx context.Context, grantorID, granteeID uint, capability string) error
	RevokeCapability(ctx context.Context, grantorID, granteeID uint, capability string) error
	HasCapability(ctx context.Context, principalID uint, capability string) (bool, error)
}

// CreateMatchRequest 创建对局请求
type CreateMatchRequest struct {
	Mode             string `json:"mode" binding:"required,oneof=single multi"`
	StakeAssetID     uint   `json:"stake_asset_id" binding:"required"`
	TimeLimitSeconds int64  `json:"time_limit_seconds"`
	// AsPrincipal 非零时表示子账号代表主账号行动，需要持有 play 与 escrow 能力
	AsPrincipal uint `json:"as_principal"`
}

// MatchView 对局视图
type MatchView struct {
	MatchID   uint       `json:"match_id"`
	Mode      string     `json:"mode"`
	State     string     `json:"state"`
	CreatorID uint       `json:"creator_id"`
	Deadline  time.Time  `json:"deadline"`
	WinnerID  *uint      `json:"winner_id,omitempty"`
	Slots     []SlotView `json:"slots"`
}

// SlotView 槽位视图
type SlotView struct {
	SlotNo   int  `json:"slot_no"`
	PlayerID uint `json:"player_id"`
	AssetID  uint `json:"asset_id"`
}

// Outcome 判定结果
// 质押资产永远返还原所有者，胜负不转移资产，奖励以货币发放。
type Outcome struct {
	MatchID        uint            `json:"match_id"`
	WinnerID       *uint           `json:"winner_id,omitempty"` // 平局为空
	Moves          map[uint]string `json:"moves"`               // playerID -> 手势
	ReturnedAssets []uint          `json:"returned_assets"`
	Tie            bool            `json:"tie"`
	Reward         int64           `json:"reward"` // 发放给胜者的货币奖励
}

// WinLossView 资产战绩视图
type WinLossView struct {
	AssetID uint  `json:"asset_id"`
	Wins    int64 `json:"wins"`
	Losses  int64 `json:"losses"`
	Ties    int64 `json:"ties"`
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username        string `json:"username" binding:"required,min=3,max=20"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" binding:"required,eqfield=Password"`
	Nickname        string `json:"nickname"`
	IP              string `json:"-"` // 客户端IP，由handler设置
}

// LoginRequest 登录请求
type LoginRequest struct {
	Account  string `json:"account" binding:"required"` // 用户名或邮箱
	Password string `json:"password" binding:"required"`
	Device   string `json:"device"`
	IP       string `json:"ip"`
}

// AuthResponse 认证响应
type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"`
	TokenType    string       `json:"token_type"`
}

// TokenClaims JWT Claims
type TokenClaims struct {
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	SessionID string `json:"session_id"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// MatchNotifier 对局事件通知接口
// 由 WebSocket 推送层实现；事件在事务提交后发出。
type MatchNotifier interface {
	NotifyMatch(event string, matchID uint, payload interface{})
}

// 对局事件类型
const (
	EventMatchCreated  = "match_created"
	EventMatchJoined   = "match_joined"
	EventMoveSubmitted = "move_submitted"
	EventMatchResolved = "match_resolved"
	EventMatchVoided   = "match_voided"
)
