package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/duel-game/internal/errors"
	"github.com/wfunc/duel-game/internal/middleware"
	"github.com/wfunc/duel-game/internal/service"
)

// MatchHandler 对局处理器
type MatchHandler struct {
	matchService service.MatchService
}

// NewMatchHandler 创建对局处理器
func NewMatchHandler(matchService service.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

// respondError 把业务错误翻译成HTTP响应
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus(), apperrors.NewErrorResponse(appErr, c.GetHeader("X-Request-ID")))
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    "INTERNAL_ERROR",
		Message: err.Error(),
	})
}

// matchIDParam 解析路径中的对局ID
func matchIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "无效的对局ID",
		})
		return 0, false
	}
	return uint(id), true
}

// CreateMatch 创建对局
// @Summary 创建对局
// @Description 质押一件资产并创建单人或多人对局
// @Tags Match
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body service.CreateMatchRequest true "创建参数"
// @Success 200 {object} service.MatchView
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/matches [post]
func (h *MatchHandler) CreateMatch(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	var req service.CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "请求参数错误",
			Details: err.Error(),
		})
		return
	}

	view, err := h.matchService.CreateMatch(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// JoinMatchRequest 加入对局请求
type JoinMatchRequest struct {
	AssetID uint `json:"asset_id" binding:"required"`
}

// JoinMatch 加入对局
// @Summary 加入对局
// @Description 质押一件资产并占据第二个槽位
// @Tags Match
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path int true "对局ID"
// @Param request body JoinMatchRequest true "质押资产"
// @Success 200 {object} service.MatchView
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/matches/{id}/join [post]
func (h *MatchHandler) JoinMatch(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}

	var req JoinMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "请求参数错误",
			Details: err.Error(),
		})
		return
	}

	view, err := h.matchService.JoinMatch(c.Request.Context(), userID, matchID, req.AssetID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SubmitMoveRequest 提交手势请求
type SubmitMoveRequest struct {
	Move string `json:"move" binding:"required,oneof=rock paper scissors"`
}

// SubmitMove 提交手势
// @Summary 提交手势
// @Description 每名玩家每局只能提交一次手势
// @Tags Match
// @Security Bearer
// @Accept json
// @Produce json
// @Param id path int true "对局ID"
// @Param request body SubmitMoveRequest true "手势"
// @Success 200 {object} service.MatchView
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/matches/{id}/move [post]
func (h *MatchHandler) SubmitMove(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}

	var req SubmitMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "请求参数错误",
			Details: err.Error(),
		})
		return
	}

	view, err := h.matchService.SubmitMove(c.Request.Context(), userID, matchID, req.Move)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SupplyBotMove 补充机器人手势
// @Summary 补充机器人手势
// @Description 单人对局中，在玩家出手后为机器人生成手势
// @Tags Match
// @Security Bearer
// @Produce json
// @Param id path int true "对局ID"
// @Success 200 {object} service.MatchView
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/matches/{id}/bot-move [post]
func (h *MatchHandler) SupplyBotMove(c *gin.Context) {
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}

	view, err := h.matchService.SupplyBotMove(c.Request.Context(), matchID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// ResolveMatch 判定并结算对局
// @Summary 判定并结算
// @Description 双方手势齐全后，判定胜负、记录战绩并释放质押
// @Tags Match
// @Security Bearer
// @Produce json
// @Param id path int true "对局ID"
// @Success 200 {object} service.Outcome
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/matches/{id}/resolve [post]
func (h *MatchHandler) ResolveMatch(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}

	outcome, err := h.matchService.ResolveAndSettle(c.Request.Context(), userID, matchID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// GetMatch 查询对局
// @Summary 查询对局
// @Tags Match
// @Security Bearer
// @Produce json
// @Param id path int true "对局ID"
// @Success 200 {object} service.MatchView
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/matches/{id} [get]
func (h *MatchHandler) GetMatch(c *gin.Context) {
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}

	view, err := h.matchService.GetMatch(c.Request.Context(), matchID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetLobbyMatches 查询等待中的对局
// @Summary 查询当前用户处于等待状态的对局
// @Tags Match
// @Security Bearer
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /api/v1/matches/lobby [get]
func (h *MatchHandler) GetLobbyMatches(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	ids := h.matchService.GetMatchesInLobby(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"match_ids": ids})
}

// GetInPlayMatches 查询进行中的对局
// @Summary 查询当前用户处于进行状态的对局
// @Tags Match
// @Security Bearer
// @Produce json
// @Success 200 {object} SuccessResponse
// @Router /api/v1/matches/in-play [get]
func (h *MatchHandler) GetInPlayMatches(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	ids := h.matchService.GetMatchesInPlay(c.Request.Context(), userID)
	c.JSON(http.StatusOK, gin.H{"match_ids": ids})
}

// GetMoveHistory 查询手势记录
// @Summary 查询对局的手势记录
// @Description 仅在对局判定后可见，判定前返回空
// @Tags Match
// @Security Bearer
// @Produce json
// @Param id path int true "对局ID"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/matches/{id}/moves [get]
func (h *MatchHandler) GetMoveHistory(c *gin.Context) {
	matchID, ok := matchIDParam(c)
	if !ok {
		return
	}

	moves, err := h.matchService.GetMoveHistory(c.Request.Context(), matchID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"match_id": matchID, "moves": moves})
}
