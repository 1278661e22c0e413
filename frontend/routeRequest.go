package frontend

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// routeRequest serves the queued websocket analysis.
func (s *Server) routeRequest(c *gin.Context) {
	ws, err := websocketUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.Error(err)
		return
	}

	s.Queue.Do(c.Request.Context(), ws, remoteAddr(c))
}

func remoteAddr(c *gin.Context) string {
	var addr string
	if v := c.GetHeader("X-Forwarded-For"); v != "" {
		addr = strings.TrimSpace(strings.Split(v, ",")[0])
	}
	if addr == "" {
		if v := c.GetHeader("X-Real-Ip"); v != "" {
			addr = v
		}
	}
	if addr == "" {
		addr = c.Request.RemoteAddr
		if idx := strings.LastIndexByte(addr, ':'); idx >= 0 {
			addr = addr[:idx]
		}
	}
	return addr
}
