package models

// 资产状态
const (
	AssetStatusHeld   = "held"   // 在所有者持有集中，可质押
	AssetStatusStaked = "staked" // 已质押进某场对局，由金库托管
)

// Asset 数字资产表
// 每个资产全局唯一，可在用户间流转。质押时资产从所有者的持有集中取出
// （status 翻转为 staked 并记录托管对局），因此一个资产同一时刻最多
// 出现在一场对局的托管中。
type Asset struct {
	BaseModel
	Name      string  `gorm:"size:100" json:"name"`
	OwnerID   uint    `gorm:"not null;index" json:"owner_id"`
	Status    string  `gorm:"size:20;default:'held';index" json:"status"`
	MatchID   *uint   `gorm:"index" json:"match_id,omitempty"` // 托管中的对局，仅 staked 时有值
	Metadata  JSONMap `gorm:"type:json" json:"metadata"`
}

// WinLossRecord 资产战绩表
// 战绩挂在资产本身而不是用户上，资产易主后战绩随之转移。
// 首次完成对局时惰性创建，此后只增不删。
type WinLossRecord struct {
	BaseModel
	AssetID uint  `gorm:"uniqueIndex;not null" json:"asset_id"`
	Wins    int64 `gorm:"default:0" json:"wins"`
	Losses  int64 `gorm:"default:0" json:"losses"`
	Ties    int64 `gorm:"default:0" json:"ties"`
}
