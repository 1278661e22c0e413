package frontend

import (
	"net/http"

	"gw2_isac/analysispool"
	"gw2_isac/history"
	"gw2_isac/wingman"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var (
	websocketUpgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
)

// Server holds what the routes serve from.
type Server struct {
	Service *analysispool.Service
	Queue   *analysispool.Queue
	History *history.Store
	Wingman *wingman.Cache
}

func Route(g *gin.Engine, s *Server) {
	g.Use(gin.ErrorLogger())
	g.Use(gin.Recovery())

	g.NoMethod(func(c *gin.Context) { writeError(c, http.StatusMethodNotAllowed, "method not allowed") })
	g.NoRoute(func(c *gin.Context) { writeError(c, http.StatusNotFound, "not found") })

	g.GET("/analysis", s.routeRequest)

	api := g.Group("/api")
	api.POST("/analysis", s.routeAnalysis)
	api.GET("/runs/:id", s.routeRun)
	api.GET("/runs/:id/xlsx", s.routeRunXlsx)
	api.GET("/channels/:channel/evolution", s.routeGroupEvolution)
	api.GET("/channels/:channel/players/:account/evolution", s.routePlayerEvolution)
	api.GET("/channels/:channel/settings", s.routeSettings)
	api.PUT("/channels/:channel/settings", s.routeSaveSettings)
	api.GET("/wingman", s.routeWingman)
}

func writeJson(c *gin.Context, code int, v interface{}) {
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Status(code)

	err := jsoniter.NewEncoder(c.Writer).Encode(v)
	if err != nil {
		c.Error(err)
	}
}

func writeError(c *gin.Context, code int, msg string) {
	writeJson(c, code, gin.H{"error": msg})
}
