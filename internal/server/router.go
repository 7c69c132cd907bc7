package server

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes 配置代理服务路由
func SetupRoutes(orderHandler *OrderHandler) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", orderHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/orders", orderHandler.Get)
	}

	return r
}
