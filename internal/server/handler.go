package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"olp/compat/internal/compat"
	"olp/compat/internal/monitor"
	"olp/compat/internal/source"
	"olp/compat/pkg/ginx"
	"olp/compat/pkg/logger"
)

// OrderHandler 旧版订单查询入口, 对上游任意版本做转换后以旧版结构返回
type OrderHandler struct {
	provider    source.Provider
	transformer *compat.Transformer
	log         logger.Logger
}

func NewOrderHandler(provider source.Provider, transformer *compat.Transformer, log logger.Logger) *OrderHandler {
	return &OrderHandler{
		provider:    provider,
		transformer: transformer,
		log:         log,
	}
}

// GetOrderRequest 查询参数
type GetOrderRequest struct {
	Case    string `form:"case" binding:"required"`
	Version string `form:"version" binding:"omitempty,oneof=v1 v2 v3"`
}

// Get 查询订单并转换为旧版结构
func (h *OrderHandler) Get(c *gin.Context) {
	var req GetOrderRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		ginx.BadRequestWithValidation(c, err)
		return
	}
	if req.Version == "" {
		req.Version = "v2"
	}

	ctx := context.WithValue(c.Request.Context(), "trace_id", uuid.NewString())
	ctx = context.WithValue(ctx, "case_id", req.Case)

	status, body, err := h.provider.Fetch(ctx, http.MethodGet, "/api/"+req.Version+"/orders", map[string]string{"case": req.Case})
	if err != nil {
		h.log.Errorf(ctx, "fetch upstream failed: %v", err)
		ginx.Error(c, http.StatusBadGateway, "upstream unavailable")
		return
	}

	if cls := monitor.Classify(status, body); cls != monitor.ClassOK {
		info := monitor.NormalizeError(status, body)
		h.log.Warnf(ctx, "upstream returned %s: %s (%s)", cls, info.Error, info.Message)
		ginx.ErrorWithDetails(c, classToHTTP(cls), info.Message, []ginx.ErrorDetail{
			{Path: "upstream", Info: info.Error},
		})
		return
	}

	order, audit, err := h.transformer.ToLegacy(ctx, body)
	if err != nil {
		h.log.Errorf(ctx, "transform failed: %v", err)
		ginx.Error(c, http.StatusBadGateway, "upstream document not convertible")
		return
	}

	h.log.Infof(ctx, "order %s converted, %d decisions", order.OrderID, len(audit.Decisions))
	if audit.HasWarnings() {
		h.log.Warnf(ctx, "order %s converted with warnings: %v", order.OrderID, audit.Warnings)
	}

	// 旧版客户端期望裸结构, 不套统一响应壳
	c.JSON(http.StatusOK, order)
}

// Health 健康检查
func (h *OrderHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "compat",
		"message": "Service is running",
	})
}

func classToHTTP(cls monitor.Class) int {
	switch cls {
	case monitor.ClassDeprecated:
		return http.StatusGone
	case monitor.ClassTransient:
		return http.StatusServiceUnavailable
	case monitor.ClassClientError:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}
