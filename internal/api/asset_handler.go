package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/duel-game/internal/middleware"
	"github.com/wfunc/duel-game/internal/repository"
	"github.com/wfunc/duel-game/internal/service"
)

// AssetHandler 资产与能力授权处理器
type AssetHandler struct {
	userService  service.UserService
	matchService service.MatchService
}

// NewAssetHandler 创建资产处理器
func NewAssetHandler(userService service.UserService, matchService service.MatchService) *AssetHandler {
	return &AssetHandler{
		userService:  userService,
		matchService: matchService,
	}
}

// GetHoldings 查询持有的资产
// @Summary 分页查询当前用户持有的资产集合
// @Tags Asset
// @Security Bearer
// @Produce json
// @Param page query int false "页码，默认1"
// @Param page_size query int false "每页条数，默认10，上限100"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/assets [get]
func (h *AssetHandler) GetHoldings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	pagination := repository.NewPagination(page, pageSize)

	assets, err := h.userService.GetHoldingSet(c.Request.Context(), userID, pagination)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"assets": assets, "pagination": pagination})
}

// MintAssetRequest 铸造资产请求
type MintAssetRequest struct {
	Name string `json:"name" binding:"required,min=1,max=64"`
}

// MintAsset 铸造资产
// @Summary 铸造一件新资产并放入当前用户的持有集合
// @Tags Asset
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body MintAssetRequest true "资产名称"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/assets [post]
func (h *AssetHandler) MintAsset(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	var req MintAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "请求参数错误",
			Details: err.Error(),
		})
		return
	}

	asset, err := h.userService.MintAsset(c.Request.Context(), userID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset": asset})
}

// GetWinLoss 查询资产战绩
// @Summary 查询某件资产的胜负平记录
// @Tags Asset
// @Security Bearer
// @Produce json
// @Param id path int true "资产ID"
// @Success 200 {object} service.WinLossView
// @Router /api/v1/assets/{id}/record [get]
func (h *AssetHandler) GetWinLoss(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "无效的资产ID",
		})
		return
	}

	record, err := h.matchService.GetWinLoss(c.Request.Context(), uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	if record == nil {
		// 从未参与过已判定对局的资产没有记录
		record = &service.WinLossView{AssetID: uint(id)}
	}

	c.JSON(http.StatusOK, record)
}

// CapabilityRequest 能力授权请求
type CapabilityRequest struct {
	GranteeID  uint   `json:"grantee_id" binding:"required"`
	Capability string `json:"capability" binding:"required,oneof=play escrow"`
}

// GrantCapability 授予能力
// @Summary 主账号授予另一账号代表自己行动的能力
// @Tags Capability
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body CapabilityRequest true "授权参数"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/capabilities/grant [post]
func (h *AssetHandler) GrantCapability(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	var req CapabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "请求参数错误",
			Details: err.Error(),
		})
		return
	}

	if err := h.userService.GrantCapability(c.Request.Context(), userID, req.GranteeID, req.Capability); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "授权成功"})
}

// RevokeCapability 撤销能力
// @Summary 撤销先前授予的能力
// @Tags Capability
// @Security Bearer
// @Accept json
// @Produce json
// @Param request body CapabilityRequest true "撤销参数"
// @Success 200 {object} SuccessResponse
// @Router /api/v1/capabilities/revoke [post]
func (h *AssetHandler) RevokeCapability(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Code: "UNAUTHORIZED", Message: "未登录"})
		return
	}

	var req CapabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    "INVALID_REQUEST",
			Message: "请求参数错误",
			Details: err.Error(),
		})
		return
	}

	if err := h.userService.RevokeCapability(c.Request.Context(), userID, req.GranteeID, req.Capability); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "撤销成功"})
}
