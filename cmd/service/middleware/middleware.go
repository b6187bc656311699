package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rowdybard/banterbox/app/core"
	"github.com/rowdybard/banterbox/app/response"
	"github.com/rowdybard/banterbox/pkg/errors"
)

func Cors(c *gin.Context) {
	method := c.Request.Method
	origin := c.Request.Header.Get("Origin")
	if origin != "" {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Header("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Expose-Headers", "Content-Length, Access-Control-Allow-Origin, Access-Control-Allow-Headers, Cache-Control, Content-Language, Content-Type")
		c.Header("Access-Control-Allow-Credentials", "true")
	}
	if method == "OPTIONS" {
		c.AbortWithStatus(http.StatusNoContent)
	}
	c.Next()
}

// Authorization verifies the static api token. An empty configured token
// disables the check, which is the expected mode for local development.
func Authorization(core *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := core.Cfg().Security.ApiToken
		if expected == "" {
			c.Next()
			return
		}

		token := strings.TrimPrefix(c.Request.Header.Get("Authorization"), "Bearer ")
		if token != expected {
			response.APIError(c, errors.New("middleware.Authorization", "unauthorized", nil).Code(http.StatusUnauthorized))
			return
		}
		c.Next()
	}
}

// Observe records request latency and error counts per route.
func Observe(core *core.Core) gin.HandlerFunc {
	return func(c *gin.Context) {
		timer := core.Metrics().ApiResponseTimer(c.FullPath())
		c.Next()
		timer.ObserveDuration()
		if c.Writer.Status() >= http.StatusBadRequest {
			core.Metrics().ApiErrorInc(c.Request.Method, c.FullPath(), c.Writer.Status())
		}
	}
}
