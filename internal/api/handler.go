package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/openbroadcast/tally-server/internal/outbound"
	"github.com/openbroadcast/tally-server/internal/protocol/tsl31"
	"github.com/openbroadcast/tally-server/internal/storage/gormrepo"
	"github.com/openbroadcast/tally-server/internal/tally"
)

// Handler tally 查询与发送 API 处理器
type Handler struct {
	reg    *tally.Registry
	sender *outbound.Sender
	repo   *gormrepo.Repository
	logger *zap.Logger
}

// NewHandler 创建 API 处理器；sender 与 repo 未启用时传 nil
func NewHandler(reg *tally.Registry, sender *outbound.Sender, repo *gormrepo.Repository, logger *zap.Logger) *Handler {
	return &Handler{
		reg:    reg,
		sender: sender,
		repo:   repo,
		logger: logger,
	}
}

// ListTallies 查询全部已知地址的最近状态
func (h *Handler) ListTallies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tallies": h.reg.Snapshot()})
}

// GetTally 查询单个地址的最近状态
func (h *Handler) GetTally(c *gin.Context) {
	addr, ok := parseAddress(c)
	if !ok {
		return
	}
	st, found := h.reg.Get(addr)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown address"})
		return
	}
	c.JSON(http.StatusOK, st)
}

// ListEvents 查询最近事件（需要启用数据库）
func (h *Handler) ListEvents(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event store disabled"})
		return
	}
	limit := 100
	if v := c.Query("limit"); v != "" {
		if vv, e := strconv.Atoi(v); e == nil {
			limit = vv
		}
	}
	events, err := h.repo.RecentEvents(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// ListAddressEvents 查询单个地址的事件历史（需要启用数据库）
func (h *Handler) ListAddressEvents(c *gin.Context) {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event store disabled"})
		return
	}
	addr, ok := parseAddress(c)
	if !ok {
		return
	}
	limit := 100
	if v := c.Query("limit"); v != "" {
		if vv, e := strconv.Atoi(v); e == nil {
			limit = vv
		}
	}
	events, err := h.repo.EventsByAddress(c.Request.Context(), addr, limit)
	if err != nil {
		h.logger.Error("list address events failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// SendRequest 发送请求体。Tally 列出置位的通道号（1..4）
type SendRequest struct {
	Address    uint8  `json:"address"`
	Tally      []int  `json:"tally"`
	Brightness uint8  `json:"brightness"`
	Label      string `json:"label"`
}

// Fields 转换为编码器字段
func (r SendRequest) Fields() tsl31.Fields {
	var tally [4]bool
	for _, ch := range r.Tally {
		if ch >= 1 && ch <= 4 {
			tally[ch-1] = true
		}
	}
	return tsl31.Fields{
		Address:    r.Address,
		Tally:      tally,
		Brightness: tsl31.Brightness(r.Brightness),
		Text:       []byte(r.Label),
	}
}

// SendTally 编码并发送一帧（需要启用下行发送）
func (h *Handler) SendTally(c *gin.Context) {
	if h.sender == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sender disabled"})
		return
	}
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.sender.Send(c.Request.Context(), req.Fields())
	if err != nil {
		var rerr *tsl31.RangeError
		if errors.As(err, &rerr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": rerr.Error()})
			return
		}
		h.logger.Error("send tally failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"sent": true, "dest": h.sender.Dest()})
}

// parseAddress 解析路径参数中的地址，越界或非法时返回 400
func parseAddress(c *gin.Context) (uint8, bool) {
	v, err := strconv.Atoi(c.Param("address"))
	if err != nil || v < 0 || v > tsl31.MaxAddress {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address"})
		return 0, false
	}
	return uint8(v), true
}
