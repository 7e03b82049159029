package endpoint

import (
	"github.com/gin-gonic/gin"

	"github.com/repronet/predict-gateway/observability"
	"github.com/repronet/predict-gateway/version"
)

// Health reports the service and one component per checker. The service is
// down (503) only when every component is down.
func Health(service string, checkers func() []observability.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		sh := observability.NewServiceHealth(service, version.Short())
		if checkers != nil {
			for _, hc := range checkers() {
				sh.AddComponent(hc.CheckHealth(c.Request.Context()))
			}
		}
		sh.Finalize()
		c.JSON(sh.HTTPStatus(), sh)
	}
}
