package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/duel-game/internal/config"
	apperrors "github.com/wfunc/duel-game/internal/errors"
	"github.com/wfunc/duel-game/internal/game"
	"github.com/wfunc/duel-game/internal/models"
	"github.com/wfunc/duel-game/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// matchService 对局服务实现
// 每个导出操作在一个数据库事务里执行全部状态变更：判定、战绩、
// 质押释放要么一起提交，要么一起回滚，调用方看不到任何中间状态，
// 也无法在看到结果之后让已执行的判定消失而只保留对自己有利的部分。
type matchService struct {
	db       *gorm.DB
	cfg      *config.MatchConfig
	log      *zap.Logger
	bot      *game.AutomatedOpponent
	index    *game.SessionIndex
	notifier MatchNotifier

	matchRepo   repository.MatchRepository
	moveRepo    repository.MoveRepository
	assetRepo   repository.AssetRepository
	escrowRepo  repository.EscrowRepository
	winLossRepo repository.WinLossRepository
	walletRepo  repository.WalletRepository
	userRepo    repository.UserRepository
	capRepo     repository.CapabilityRepository

	// SubmitOperation 的事务内克隆把索引更新和事件推送暂存到这里，
	// 外层事务提交后统一执行；回滚时全部丢弃。
	effects *[]func()
}

// NewMatchService 创建对局服务
func NewMatchService(
	db *gorm.DB,
	cfg *config.MatchConfig,
	log *zap.Logger,
	notifier MatchNotifier,
) MatchService {
	return &matchService{
		db:          db,
		cfg:         cfg,
		log:         log,
		bot:         game.NewAutomatedOpponent(cfg.BotSeed),
		index:       game.NewSessionIndex(log),
		notifier:    notifier,
		matchRepo:   repository.NewMatchRepository(db),
		moveRepo:    repository.NewMoveRepository(db),
		assetRepo:   repository.NewAssetRepository(db),
		escrowRepo:  repository.NewEscrowRepository(db),
		winLossRepo: repository.NewWinLossRepository(db),
		walletRepo:  repository.NewWalletRepository(db),
		userRepo:    repository.NewUserRepository(db),
		capRepo:     repository.NewCapabilityRepository(db),
	}
}

// afterCommit 执行或暂存事务提交后的副作用
func (s *matchService) afterCommit(fn func()) {
	if s.effects != nil {
		*s.effects = append(*s.effects, fn)
		return
	}
	fn()
}

// notify 推送对局事件
func (s *matchService) notify(event string, matchID uint, payload interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyMatch(event, matchID, payload)
}

// clampDuration 计算对局时限
func (s *matchService) clampDuration(seconds int64) time.Duration {
	d := time.Duration(seconds) * time.Second
	if seconds <= 0 {
		d = s.cfg.DefaultDuration
	}
	if d < s.cfg.MinDuration {
		d = s.cfg.MinDuration
	}
	if d > s.cfg.MaxDuration {
		d = s.cfg.MaxDuration
	}
	return d
}

// resolvePrincipal 解析实际行动主体
// 子账号代表主账号行动时必须持有主账号授予的 play 与 escrow 能力。
func (s *matchService) resolvePrincipal(ctx context.Context, actorID, asPrincipal uint) (uint, error) {
	if asPrincipal == 0 || asPrincipal == actorID {
		return actorID, nil
	}
	for _, capability := range []string{models.CapabilityPlay, models.CapabilityEscrow} {
		ok, err := s.capRepo.HasGrant(ctx, asPrincipal, actorID, capability)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, apperrors.New(apperrors.ErrAuthorizationFailure,
				fmt.Sprintf("缺少 %s 能力授权", capability))
		}
	}
	return asPrincipal, nil
}

// CreateMatch 创建对局并托管创建者的质押
// 单人模式在同一事务里为自动对手绑定第二槽位并托管其质押，
// 对局创建即 active；多人模式只填充第一槽位，进入大厅等待对手。
func (s *matchService) CreateMatch(ctx context.Context, principalID uint, req *CreateMatchRequest) (*MatchView, error) {
	if req.Mode != models.MatchModeSingle && req.Mode != models.MatchModeMulti {
		return nil, apperrors.New(apperrors.ErrInvalidParam, "无效的对局模式")
	}

	principal, err := s.resolvePrincipal(ctx, principalID, req.AsPrincipal)
	if err != nil {
		return nil, err
	}

	duration := s.clampDuration(req.TimeLimitSeconds)

	var view *MatchView
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		matchRepo := s.matchRepo.WithTx(tx)

		match := &models.Match{
			Mode:      req.Mode,
			State:     game.InitialState(req.Mode),
			CreatorID: principal,
			Deadline:  time.Now().Add(duration),
		}
		if err := matchRepo.Create(ctx, match); err != nil {
			return err
		}

		if err := s.escrowStake(ctx, tx, match.ID, models.SlotOne, principal, req.StakeAssetID); err != nil {
			return err
		}

		slots := []SlotView{{SlotNo: models.SlotOne, PlayerID: principal, AssetID: req.StakeAssetID}}

		if req.Mode == models.MatchModeSingle {
			botSlot, err := s.escrowBotStake(ctx, tx, match.ID)
			if err != nil {
				return err
			}
			slots = append(slots, *botSlot)
		}

		view = &MatchView{
			MatchID:   match.ID,
			Mode:      match.Mode,
			State:     match.State,
			CreatorID: match.CreatorID,
			Deadline:  match.Deadline,
			Slots:     slots,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(func() {
		if view.Mode == models.MatchModeMulti {
			s.index.TrackLobby(view.CreatorID, view.MatchID)
		} else {
			s.index.TrackActive(view.MatchID, view.CreatorID)
		}
		s.notify(EventMatchCreated, view.MatchID, view)
	})

	s.log.Info("对局已创建",
		zap.Uint("match_id", view.MatchID),
		zap.String("mode", view.Mode),
		zap.Uint("creator_id", view.CreatorID))

	return view, nil
}

// escrowStake 托管一份质押：资产离开所有者持有集，进入金库
func (s *matchService) escrowStake(ctx context.Context, tx *gorm.DB, matchID uint, slotNo int, playerID, assetID uint) error {
	matchRepo := s.matchRepo.WithTx(tx)
	assetRepo := s.assetRepo.WithTx(tx)
	escrowRepo := s.escrowRepo.WithTx(tx)

	if err := assetRepo.Stake(ctx, assetID, playerID, matchID); err != nil {
		if errors.Is(err, repository.ErrAssetNotHeld) {
			return apperrors.New(apperrors.ErrAssetUnavailable)
		}
		return err
	}

	if err := matchRepo.CreateSlot(ctx, &models.MatchSlot{
		MatchID:  matchID,
		SlotNo:   slotNo,
		PlayerID: playerID,
		AssetID:  assetID,
	}); err != nil {
		return apperrors.Wrap(err, apperrors.ErrSlotAlreadyFilled)
	}

	if err := escrowRepo.Create(ctx, &models.EscrowedStake{
		MatchID:     matchID,
		SlotNo:      slotNo,
		AssetID:     assetID,
		ReturnOwner: playerID,
	}); err != nil {
		if errors.Is(err, repository.ErrStakeExists) {
			return apperrors.New(apperrors.ErrSlotAlreadyFilled)
		}
		return err
	}

	return nil
}

// escrowBotStake 为自动对手托管第二槽位的质押
// 自动对手没有空闲资产时在事务内铸造一个。
func (s *matchService) escrowBotStake(ctx context.Context, tx *gorm.DB, matchID uint) (*SlotView, error) {
	userRepo := s.userRepo.WithTx(tx)
	assetRepo := s.assetRepo.WithTx(tx)

	bot, err := userRepo.FindBot(ctx)
	if err != nil {
		return nil, err
	}

	var botAsset *models.Asset
	holding, err := assetRepo.FindHolding(ctx, bot.ID, nil)
	if err != nil {
		return nil, err
	}
	if len(holding) > 0 {
		botAsset = holding[0]
	} else {
		botAsset = &models.Asset{
			Name:    "对手筹码",
			OwnerID: bot.ID,
			Status:  models.AssetStatusHeld,
		}
		if err := assetRepo.Create(ctx, botAsset); err != nil {
			return nil, err
		}
	}

	if err := s.escrowStake(ctx, tx, matchID, models.SlotTwo, bot.ID, botAsset.ID); err != nil {
		return nil, err
	}

	return &SlotView{SlotNo: models.SlotTwo, PlayerID: bot.ID, AssetID: botAsset.ID}, nil
}

// JoinMatch 第二位玩家质押加入大厅中的对局
func (s *matchService) JoinMatch(ctx context.Context, principalID uint, matchID, assetID uint) (*MatchView, error) {
	var view *MatchView
	var creatorID uint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		matchRepo := s.matchRepo.WithTx(tx)

		match, err := matchRepo.FindByIDForUpdate(ctx, matchID)
		if err != nil {
			return s.translateNotFound(err)
		}
		if match.State != models.MatchStateLobby {
			return apperrors.New(apperrors.ErrStateViolation, "对局不在大厅状态")
		}
		if time.Now().After(match.Deadline) {
			return apperrors.New(apperrors.ErrExpired)
		}
		if match.CreatorID == principalID {
			// 同一方的第二次质押
			return apperrors.New(apperrors.ErrDuplicateSubmission, "不能加入自己创建的对局")
		}

		if err := s.escrowStake(ctx, tx, matchID, models.SlotTwo, principalID, assetID); err != nil {
			return err
		}

		if err := matchRepo.TransitionState(ctx, matchID, models.MatchStateLobby, models.MatchStateActive); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return apperrors.New(apperrors.ErrStateViolation)
			}
			return err
		}

		creatorID = match.CreatorID
		view = &MatchView{
			MatchID:   match.ID,
			Mode:      match.Mode,
			State:     models.MatchStateActive,
			CreatorID: match.CreatorID,
			Deadline:  match.Deadline,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(func() {
		s.index.TrackActive(matchID, creatorID, principalID)
		s.notify(EventMatchJoined, matchID, view)
	})

	s.log.Info("玩家已加入对局",
		zap.Uint("match_id", matchID),
		zap.Uint("player_id", principalID))

	return view, nil
}

// SubmitMove 提交手势
// 每位玩家每场对局只接受一次提交，(match_id, player_id) 唯一索引
// 保证并发的重复提交恰好一个生效。
func (s *matchService) SubmitMove(ctx context.Context, principalID uint, matchID uint, move string) (*MatchView, error) {
	if !models.ValidMove(move) {
		return nil, apperrors.New(apperrors.ErrInvalidParam, "无效的手势")
	}

	var view *MatchView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		matchRepo := s.matchRepo.WithTx(tx)
		moveRepo := s.moveRepo.WithTx(tx)

		match, err := matchRepo.FindByIDForUpdate(ctx, matchID)
		if err != nil {
			return s.translateNotFound(err)
		}
		if time.Now().After(match.Deadline) {
			return apperrors.New(apperrors.ErrExpired)
		}
		if !game.MoveAccepted(match.State) {
			return apperrors.New(apperrors.ErrStateViolation)
		}

		if _, err := matchRepo.FindSlotByPlayer(ctx, matchID, principalID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.ErrAuthorizationFailure)
			}
			return err
		}

		if err := moveRepo.Create(ctx, &models.MoveRecord{
			MatchID:     matchID,
			PlayerID:    principalID,
			Move:        move,
			SubmittedAt: time.Now(),
		}); err != nil {
			if errors.Is(err, repository.ErrMoveExists) {
				return apperrors.New(apperrors.ErrDuplicateSubmission)
			}
			return err
		}

		state := match.State
		if state == models.MatchStateActive {
			if err := matchRepo.TransitionState(ctx, matchID, models.MatchStateActive, models.MatchStateAwaitingMove); err != nil {
				if errors.Is(err, repository.ErrStaleState) {
					return apperrors.New(apperrors.ErrStateViolation)
				}
				return err
			}
			state = models.MatchStateAwaitingMove
		}

		view = &MatchView{
			MatchID:   match.ID,
			Mode:      match.Mode,
			State:     state,
			CreatorID: match.CreatorID,
			Deadline:  match.Deadline,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(func() {
		s.notify(EventMoveSubmitted, matchID, map[string]interface{}{
			"match_id":  matchID,
			"player_id": principalID,
		})
	})

	return view, nil
}

// SupplyBotMove 为单人对局补充自动对手的手势
// 只有人类玩家的手势记录已存在时才会出手：自动对手永远后手，
// 且选择与人类已提交的手势无关。
func (s *matchService) SupplyBotMove(ctx context.Context, matchID uint) (*MatchView, error) {
	var view *MatchView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		matchRepo := s.matchRepo.WithTx(tx)
		moveRepo := s.moveRepo.WithTx(tx)
		userRepo := s.userRepo.WithTx(tx)

		match, err := matchRepo.FindByIDForUpdate(ctx, matchID)
		if err != nil {
			return s.translateNotFound(err)
		}
		if match.Mode != models.MatchModeSingle {
			return apperrors.New(apperrors.ErrNotSinglePlayer)
		}
		if time.Now().After(match.Deadline) {
			return apperrors.New(apperrors.ErrExpired)
		}
		if !game.MoveAccepted(match.State) {
			return apperrors.New(apperrors.ErrStateViolation)
		}

		bot, err := userRepo.FindBot(ctx)
		if err != nil {
			return err
		}

		if _, err := moveRepo.FindByMatchAndPlayer(ctx, matchID, bot.ID); err == nil {
			return apperrors.New(apperrors.ErrDuplicateSubmission, "自动对手已出手")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if _, err := moveRepo.FindByMatchAndPlayer(ctx, matchID, match.CreatorID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.ErrHumanHasNotMoved)
			}
			return err
		}

		// 手势在人类出手之后才生成，与已提交的手势值无关
		if err := moveRepo.Create(ctx, &models.MoveRecord{
			MatchID:     matchID,
			PlayerID:    bot.ID,
			Move:        s.bot.Pick(),
			SubmittedAt: time.Now(),
		}); err != nil {
			if errors.Is(err, repository.ErrMoveExists) {
				return apperrors.New(apperrors.ErrDuplicateSubmission, "自动对手已出手")
			}
			return err
		}

		view = &MatchView{
			MatchID:   match.ID,
			Mode:      match.Mode,
			State:     match.State,
			CreatorID: match.CreatorID,
			Deadline:  match.Deadline,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(func() {
		s.notify(EventMoveSubmitted, matchID, map[string]interface{}{
			"match_id": matchID,
			"bot":      true,
		})
	})

	return view, nil
}

// ResolveAndSettle 判定并结算对局
// 在一个事务内完成：状态推进到 resolved、双方资产战绩更新、
// 质押释放回原所有者、状态推进到 settled、胜者货币奖励入账。
// 没有任何调用方可见的中间状态，事务失败时全部回滚。
// 重复调用返回 ErrAlreadyResolved，战绩不会二次累加。
func (s *matchService) ResolveAndSettle(ctx context.Context, principalID uint, matchID uint) (*Outcome, error) {
	return s.resolveMatch(ctx, matchID, &principalID)
}

// resolveMatch 判定结算的事务主体
// principalID 为 nil 时表示系统触发（超时清扫发现手势已齐的对局），
// 跳过触发者必须占有槽位的校验。
func (s *matchService) resolveMatch(ctx context.Context, matchID uint, principalID *uint) (*Outcome, error) {
	var outcome *Outcome
	var playerIDs []uint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		matchRepo := s.matchRepo.WithTx(tx)
		moveRepo := s.moveRepo.WithTx(tx)

		match, err := matchRepo.FindByIDForUpdate(ctx, matchID)
		if err != nil {
			return s.translateNotFound(err)
		}
		if match.State == models.MatchStateResolved || models.IsTerminal(match.State) {
			return apperrors.New(apperrors.ErrAlreadyResolved)
		}

		slots, err := matchRepo.FindSlots(ctx, matchID)
		if err != nil {
			return err
		}
		if len(slots) < 2 {
			return apperrors.New(apperrors.ErrMovesIncomplete, "对手尚未加入")
		}

		caller := principalID == nil
		for _, slot := range slots {
			playerIDs = append(playerIDs, slot.PlayerID)
			if principalID != nil && slot.PlayerID == *principalID {
				caller = true
			}
		}
		if !caller {
			return apperrors.New(apperrors.ErrAuthorizationFailure)
		}

		moves, err := moveRepo.FindByMatch(ctx, matchID)
		if err != nil {
			return err
		}
		if len(moves) < 2 {
			return apperrors.New(apperrors.ErrMovesIncomplete)
		}
		moveByPlayer := make(map[uint]string, len(moves))
		for _, m := range moves {
			moveByPlayer[m.PlayerID] = m.Move
		}

		result := game.Resolve(moveByPlayer[slots[0].PlayerID], moveByPlayer[slots[1].PlayerID])

		var winnerID *uint
		var winnerAsset, loserAsset uint
		switch result {
		case game.OutcomeSlotOneWins:
			winnerID = &slots[0].PlayerID
			winnerAsset, loserAsset = slots[0].AssetID, slots[1].AssetID
		case game.OutcomeSlotTwoWins:
			winnerID = &slots[1].PlayerID
			winnerAsset, loserAsset = slots[1].AssetID, slots[0].AssetID
		}

		now := time.Now()
		if err := matchRepo.MarkResolved(ctx, matchID, match.State, winnerID, now); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return apperrors.New(apperrors.ErrAlreadyResolved)
			}
			return err
		}

		if err := s.recordStatistics(ctx, tx, result, winnerAsset, loserAsset, slots); err != nil {
			return err
		}

		returned, err := s.releaseStakes(ctx, tx, matchID, now)
		if err != nil {
			return err
		}

		if err := matchRepo.MarkSettled(ctx, matchID, models.MatchStateResolved, models.MatchStateSettled, now); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return apperrors.New(apperrors.ErrAlreadyResolved)
			}
			return err
		}

		reward, err := s.awardWinner(ctx, tx, matchID, winnerID)
		if err != nil {
			return err
		}

		outcome = &Outcome{
			MatchID:        matchID,
			WinnerID:       winnerID,
			Moves:          moveByPlayer,
			ReturnedAssets: returned,
			Tie:            result == game.OutcomeTie,
			Reward:         reward,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(func() {
		s.index.Untrack(matchID, playerIDs...)
		s.notify(EventMatchResolved, matchID, outcome)
	})

	s.log.Info("对局已结算",
		zap.Uint("match_id", matchID),
		zap.Bool("tie", outcome.Tie))

	return outcome, nil
}

// recordStatistics 按判定结果更新双方资产的战绩
func (s *matchService) recordStatistics(ctx context.Context, tx *gorm.DB, result game.Outcome, winnerAsset, loserAsset uint, slots []*models.MatchSlot) error {
	winLossRepo := s.winLossRepo.WithTx(tx)

	if result == game.OutcomeTie {
		for _, slot := range slots {
			if err := winLossRepo.IncrementField(ctx, slot.AssetID, repository.WinLossFieldTies); err != nil {
				return err
			}
		}
		return nil
	}

	if err := winLossRepo.IncrementField(ctx, winnerAsset, repository.WinLossFieldWins); err != nil {
		return err
	}
	return winLossRepo.IncrementField(ctx, loserAsset, repository.WinLossFieldLosses)
}

// releaseStakes 释放对局的全部在押质押，资产回到原所有者持有集
func (s *matchService) releaseStakes(ctx context.Context, tx *gorm.DB, matchID uint, at time.Time) ([]uint, error) {
	assetRepo := s.assetRepo.WithTx(tx)
	escrowRepo := s.escrowRepo.WithTx(tx)

	stakes, err := escrowRepo.FindLiveByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	returned := make([]uint, 0, len(stakes))
	for _, stake := range stakes {
		if err := escrowRepo.MarkReleased(ctx, stake.ID, at); err != nil {
			return nil, err
		}
		if err := assetRepo.Unstake(ctx, stake.AssetID, matchID, stake.ReturnOwner); err != nil {
			return nil, err
		}
		returned = append(returned, stake.AssetID)
	}
	return returned, nil
}

// awardWinner 给胜者发放货币奖励（自动对手不领奖）
func (s *matchService) awardWinner(ctx context.Context, tx *gorm.DB, matchID uint, winnerID *uint) (int64, error) {
	if winnerID == nil || s.cfg.WinReward <= 0 {
		return 0, nil
	}

	userRepo := s.userRepo.WithTx(tx)
	walletRepo := s.walletRepo.WithTx(tx)

	winner, err := userRepo.FindByID(ctx, *winnerID)
	if err != nil {
		return 0, err
	}
	if winner.IsBot {
		return 0, nil
	}

	if err := walletRepo.Credit(ctx, winner.ID, s.cfg.WinReward); err != nil {
		return 0, err
	}

	if err := walletRepo.CreateTransaction(ctx, &models.Transaction{
		UserID:      winner.ID,
		OrderNo:     uuid.NewString(),
		Type:        models.TransactionTypeReward,
		Amount:      s.cfg.WinReward,
		RefID:       fmt.Sprintf("%d", matchID),
		RefType:     "match",
		Description: "对局获胜奖励",
	}); err != nil {
		return 0, err
	}

	return s.cfg.WinReward, nil
}

// ForceSettle 超时作废
// 截止时间过后任何一方（或运维）都可以触发：质押返还原所有者，
// 对局作废，不更新任何战绩。仅对手势不齐的对局生效，双方手势
// 已提交的对局已经有确定结果，拒绝作废，应走正常判定。
func (s *matchService) ForceSettle(ctx context.Context, matchID uint) error {
	var playerIDs []uint

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		matchRepo := s.matchRepo.WithTx(tx)

		match, err := matchRepo.FindByIDForUpdate(ctx, matchID)
		if err != nil {
			return s.translateNotFound(err)
		}
		if match.State == models.MatchStateResolved || models.IsTerminal(match.State) {
			return apperrors.New(apperrors.ErrAlreadyResolved)
		}
		if !time.Now().After(match.Deadline) {
			return apperrors.New(apperrors.ErrStateViolation, "截止时间未到")
		}

		slots, err := matchRepo.FindSlots(ctx, matchID)
		if err != nil {
			return err
		}
		for _, slot := range slots {
			playerIDs = append(playerIDs, slot.PlayerID)
		}

		if len(slots) >= 2 {
			count, err := s.moveRepo.WithTx(tx).CountByMatch(ctx, matchID)
			if err != nil {
				return err
			}
			if count >= int64(len(slots)) {
				return apperrors.New(apperrors.ErrStateViolation, "双方手势已齐，应正常判定")
			}
		}

		now := time.Now()
		if _, err := s.releaseStakes(ctx, tx, matchID, now); err != nil {
			return err
		}

		if err := matchRepo.MarkSettled(ctx, matchID, match.State, models.MatchStateVoided, now); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return apperrors.New(apperrors.ErrAlreadyResolved)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.afterCommit(func() {
		s.index.Untrack(matchID, playerIDs...)
		s.notify(EventMatchVoided, matchID, map[string]interface{}{"match_id": matchID})
	})

	s.log.Info("对局超时作废", zap.Uint("match_id", matchID))
	return nil
}

// SubmitOperation 在一个事务内执行组合操作
// 回调通过 ops 访问绑定到事务的操作集合；回调返回错误时整个事务
// 回滚，其中已执行的判定、战绩更新和质押释放一并消失。
// 调用方因此无法先观察判定结果再决定是否保留它：后置条件失败
// 意味着判定本身也没有发生过，诚实的一方之后仍可正常结算。
func (s *matchService) SubmitOperation(ctx context.Context, fn func(ops MatchOperations) error) error {
	var deferred []func()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		clone := *s
		clone.db = tx
		clone.effects = &deferred
		return fn(&clone)
	})
	if err != nil {
		return err
	}

	for _, fn := range deferred {
		fn()
	}
	return nil
}

// GetMatch 查询对局
func (s *matchService) GetMatch(ctx context.Context, matchID uint) (*MatchView, error) {
	match, err := s.matchRepo.WithTx(s.db).FindWithSlots(ctx, matchID)
	if err != nil {
		return nil, s.translateNotFound(err)
	}

	view := &MatchView{
		MatchID:   match.ID,
		Mode:      match.Mode,
		State:     match.State,
		CreatorID: match.CreatorID,
		Deadline:  match.Deadline,
		WinnerID:  match.WinnerID,
	}
	for _, slot := range match.Slots {
		view.Slots = append(view.Slots, SlotView{
			SlotNo:   slot.SlotNo,
			PlayerID: slot.PlayerID,
			AssetID:  slot.AssetID,
		})
	}
	return view, nil
}

// GetMatchesInLobby 查询主体等待对手的对局
func (s *matchService) GetMatchesInLobby(ctx context.Context, principalID uint) []uint {
	return s.index.LobbyMatches(principalID)
}

// GetMatchesInPlay 查询主体进行中的对局
func (s *matchService) GetMatchesInPlay(ctx context.Context, principalID uint) []uint {
	return s.index.InPlayMatches(principalID)
}

// GetMoveHistory 查询手势历史，判定前返回 nil
func (s *matchService) GetMoveHistory(ctx context.Context, matchID uint) (map[uint]string, error) {
	match, err := s.matchRepo.WithTx(s.db).FindByID(ctx, matchID)
	if err != nil {
		return nil, s.translateNotFound(err)
	}
	if match.State != models.MatchStateResolved && match.State != models.MatchStateSettled {
		return nil, nil
	}

	moves, err := s.moveRepo.WithTx(s.db).FindByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	history := make(map[uint]string, len(moves))
	for _, m := range moves {
		history[m.PlayerID] = m.Move
	}
	return history, nil
}

// GetWinLoss 查询资产战绩，从未完成过对局的资产返回 nil
func (s *matchService) GetWinLoss(ctx context.Context, assetID uint) (*WinLossView, error) {
	record, err := s.winLossRepo.WithTx(s.db).FindByAssetID(ctx, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &WinLossView{
		AssetID: record.AssetID,
		Wins:    record.Wins,
		Losses:  record.Losses,
		Ties:    record.Ties,
	}, nil
}

// SweepExpired 清扫已超过截止时间的对局
func (s *matchService) SweepExpired(ctx context.Context) (int, error) {
	matches, err := s.matchRepo.FindExpired(ctx, time.Now(), 100)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, match := range matches {
		if err := s.ForceSettle(ctx, match.ID); err != nil {
			// 并发结算导致的冲突不算失败
			if apperrors.Is(err, apperrors.ErrAlreadyResolved) {
				continue
			}
			// 手势已齐的过期对局不作废，按结果正常判定
			if apperrors.Is(err, apperrors.ErrStateViolation) {
				if _, rerr := s.resolveMatch(ctx, match.ID, nil); rerr != nil {
					s.log.Warn("超时判定失败",
						zap.Uint("match_id", match.ID),
						zap.Error(rerr))
					continue
				}
				settled++
				continue
			}
			s.log.Warn("超时结算失败",
				zap.Uint("match_id", match.ID),
				zap.Error(err))
			continue
		}
		settled++
	}
	return settled, nil
}

// RebuildIndex 启动时由数据库状态重建会话索引
func (s *matchService) RebuildIndex(ctx context.Context) error {
	matches, err := s.matchRepo.FindByStates(ctx, []string{
		models.MatchStateLobby,
		models.MatchStateActive,
		models.MatchStateAwaitingMove,
	})
	if err != nil {
		return err
	}

	slots := make(map[uint][]*models.MatchSlot, len(matches))
	for _, match := range matches {
		matchSlots, err := s.matchRepo.FindSlots(ctx, match.ID)
		if err != nil {
			return err
		}
		slots[match.ID] = matchSlots
	}

	s.index.Rebuild(matches, slots)
	return nil
}

// translateNotFound 把仓储层的未找到错误翻译为应用错误
func (s *matchService) translateNotFound(err error) error {
	if errors.Is(err, repository.ErrMatchNotFound) {
		return apperrors.New(apperrors.ErrNotFound, "对局不存在")
	}
	return err
}
