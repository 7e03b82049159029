package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/repronet/predict-gateway/version"
)

var startTime = time.Now()

// Info reports the build and uptime.
func Info(service, environment string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := version.Get()
		c.JSON(http.StatusOK, gin.H{
			"service":     service,
			"environment": environment,
			"version":     v.Version,
			"git_commit":  v.GitCommit,
			"build_time":  v.BuildTime,
			"go_version":  v.GoVersion,
			"is_release":  v.IsRelease,
			"uptime":      time.Since(startTime).Round(time.Second).String(),
		})
	}
}
