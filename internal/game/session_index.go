package game

import (
	"sync"

	"github.com/wfunc/duel-game/internal/models"
	"go.uber.org/zap"
)

// SessionIndex 对局会话索引
// 为每位参与者维护两个桶：等待对手的大厅对局和进行中的对局。
// 索引只是数据库状态的内存投影，用于快速查询，崩溃后可由
// 数据库重建，因此不做持久化。
type SessionIndex struct {
	mu     sync.RWMutex
	lobby  map[uint]map[uint]struct{} // playerID -> 大厅对局集合
	inPlay map[uint]map[uint]struct{} // playerID -> 进行中对局集合
	logger *zap.Logger
}

// NewSessionIndex 创建会话索引
func NewSessionIndex(logger *zap.Logger) *SessionIndex {
	return &SessionIndex{
		lobby:  make(map[uint]map[uint]struct{}),
		inPlay: make(map[uint]map[uint]struct{}),
		logger: logger,
	}
}

// TrackLobby 将对局记入创建者的大厅桶
func (idx *SessionIndex) TrackLobby(playerID, matchID uint) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.add(idx.lobby, playerID, matchID)
}

// TrackActive 将对局记入参与者的进行中桶
// 多人对局开局时创建者的条目从大厅桶迁移。
func (idx *SessionIndex) TrackActive(matchID uint, playerIDs ...uint) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, playerID := range playerIDs {
		idx.remove(idx.lobby, playerID, matchID)
		idx.add(idx.inPlay, playerID, matchID)
	}
}

// Untrack 对局终结后从所有桶移除
func (idx *SessionIndex) Untrack(matchID uint, playerIDs ...uint) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, playerID := range playerIDs {
		idx.remove(idx.lobby, playerID, matchID)
		idx.remove(idx.inPlay, playerID, matchID)
	}
}

// LobbyMatches 查询玩家等待对手的对局
func (idx *SessionIndex) LobbyMatches(playerID uint) []uint {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return collect(idx.lobby[playerID])
}

// InPlayMatches 查询玩家进行中的对局
func (idx *SessionIndex) InPlayMatches(playerID uint) []uint {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return collect(idx.inPlay[playerID])
}

// Rebuild 由数据库状态重建索引（启动恢复时调用）
func (idx *SessionIndex) Rebuild(matches []*models.Match, slots map[uint][]*models.MatchSlot) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.lobby = make(map[uint]map[uint]struct{})
	idx.inPlay = make(map[uint]map[uint]struct{})

	for _, match := range matches {
		if models.IsTerminal(match.State) {
			continue
		}
		if match.State == models.MatchStateLobby {
			idx.add(idx.lobby, match.CreatorID, match.ID)
			continue
		}
		for _, slot := range slots[match.ID] {
			idx.add(idx.inPlay, slot.PlayerID, match.ID)
		}
	}

	if idx.logger != nil {
		idx.logger.Info("会话索引已重建",
			zap.Int("matches", len(matches)))
	}
}

func (idx *SessionIndex) add(bucket map[uint]map[uint]struct{}, playerID, matchID uint) {
	set, ok := bucket[playerID]
	if !ok {
		set = make(map[uint]struct{})
		bucket[playerID] = set
	}
	set[matchID] = struct{}{}
}

func (idx *SessionIndex) remove(bucket map[uint]map[uint]struct{}, playerID, matchID uint) {
	if set, ok := bucket[playerID]; ok {
		delete(set, matchID)
		if len(set) == 0 {
			delete(bucket, playerID)
		}
	}
}

func collect(set map[uint]struct{}) []uint {
	if len(set) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
