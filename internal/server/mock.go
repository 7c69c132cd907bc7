package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"olp/compat/internal/source"
)

// SetupMockRoutes 配置模拟上游路由, 三个版本路径均从内嵌用例返回响应
func SetupMockRoutes(fixtures *source.FixtureProvider) *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "mockapi"})
	})

	serve := func(c *gin.Context) {
		query := map[string]string{}
		for k, vs := range c.Request.URL.Query() {
			if len(vs) > 0 {
				query[k] = vs[0]
			}
		}
		status, body, err := fixtures.Fetch(c.Request.Context(), c.Request.Method, c.FullPath(), query)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL", "message": err.Error()})
			return
		}
		c.JSON(status, body)
	}

	r.GET("/api/v1/orders", serve)
	r.GET("/api/v2/orders", serve)
	r.GET("/api/v3/orders", serve)

	return r
}
