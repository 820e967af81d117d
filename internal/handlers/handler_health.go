package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// getHealth godoc
// @Summary Show the status of server.
// @Tags root
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// registerOpsRoutes registers /health and, when a gatherer is given, /metrics.
func registerOpsRoutes(r *gin.Engine, gatherer prometheus.Gatherer) {
	r.GET("/health", getHealth)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}
