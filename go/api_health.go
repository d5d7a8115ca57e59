package marketplaceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthAPI serves liveness and Prometheus scrape endpoints.
type HealthAPI struct {
	metrics http.Handler
}

// NewHealthAPI exposes metrics through handler; nil disables /metrics.
func NewHealthAPI(metrics http.Handler) HealthAPI {
	return HealthAPI{metrics: metrics}
}

// Get /health
func (api *HealthAPI) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Get /metrics
func (api *HealthAPI) Metrics(c *gin.Context) {
	if api.metrics == nil {
		c.Status(http.StatusNotFound)
		return
	}
	api.metrics.ServeHTTP(c.Writer, c.Request)
}
