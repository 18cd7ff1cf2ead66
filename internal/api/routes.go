package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/openbroadcast/tally-server/internal/outbound"
	"github.com/openbroadcast/tally-server/internal/storage/gormrepo"
	"github.com/openbroadcast/tally-server/internal/tally"
)

// RegisterRoutes 注册 tally API 路由
func RegisterRoutes(
	r *gin.Engine,
	reg *tally.Registry,
	sender *outbound.Sender,
	repo *gormrepo.Repository,
	logger *zap.Logger,
) {
	if r == nil || reg == nil {
		return
	}

	handler := NewHandler(reg, sender, repo, logger)

	api := r.Group("/api")

	// 状态查询
	api.GET("/tallies", handler.ListTallies)
	api.GET("/tallies/:address", handler.GetTally)

	// 事件历史（数据库启用时）
	api.GET("/events", handler.ListEvents)
	api.GET("/tallies/:address/events", handler.ListAddressEvents)

	// 下行发送（发送器启用时）
	api.POST("/send", handler.SendTally)
}
