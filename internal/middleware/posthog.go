package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/platform/events"
	"github.com/gin-gonic/gin"
)

// pathsToSkip contains paths that are never tracked
var pathsToSkip = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// EventsMiddleware emits one event per successful authenticated API call,
// named after the route, e.g. "/api/v1/portfolio/buy" -> "api_v1_portfolio_buy".
func EventsMiddleware(emitter events.Emitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if emitter == nil || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		eventName := strings.TrimPrefix(c.FullPath(), "/")
		eventName = strings.ReplaceAll(eventName, "/", "_")
		eventName = strings.ReplaceAll(eventName, ":", "")
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"request_id":  GetRequestID(c),
		}
		if len(c.Params) > 0 {
			params := make(map[string]string)
			for _, param := range c.Params {
				params[param.Key] = param.Value
			}
			props["params"] = params
		}

		emitter.Emit(c.Request.Context(), events.Event{
			Name:       eventName,
			DistinctID: userID,
			Timestamp:  time.Now().UTC(),
			Properties: props,
		})
	}
}
