package frontend

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gw2_isac/analysispool"
	"gw2_isac/export"
	"gw2_isac/history"
	"gw2_isac/share"

	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

const maxEvolution = 50

func (s *Server) routeAnalysis(c *gin.Context) {
	var req analysispool.Request
	err := jsoniter.NewDecoder(c.Request.Body).Decode(&req)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.Service.Run(c.Request.Context(), &req, nil)
	if err != nil {
		switch {
		case errors.Is(err, analysispool.ErrNoLinks):
			writeError(c, http.StatusBadRequest, analysispool.Message(err))
		case errors.Is(err, analysispool.ErrFetching):
			writeError(c, http.StatusBadGateway, analysispool.Message(err))
		default:
			share.Report(err)
			writeError(c, http.StatusInternalServerError, analysispool.Message(err))
		}
		return
	}

	writeJson(c, http.StatusOK, res)
}

func (s *Server) routeRun(c *gin.Context) {
	r, err := s.History.Run(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.historyError(c, err)
		return
	}

	writeJson(c, http.StatusOK, r)
}

func (s *Server) routeRunXlsx(c *gin.Context) {
	r, err := s.History.Run(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.historyError(c, err)
		return
	}

	f, err := export.Workbook(r.Run)
	if err != nil {
		share.Report(err)
		writeError(c, http.StatusInternalServerError, "export failed")
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, r.ID))
	c.Status(http.StatusOK)

	err = f.Write(c.Writer)
	if err != nil {
		c.Error(err)
	}
}

func (s *Server) historyError(c *gin.Context, err error) {
	if errors.Is(err, history.ErrNotFound) {
		writeError(c, http.StatusNotFound, "run not found")
		return
	}
	share.Report(err)
	writeError(c, http.StatusInternalServerError, "history unavailable")
}

// evolutionQuery reads name and limit, name defaulting to the channel's run name.
func (s *Server) evolutionQuery(c *gin.Context) (name string, limit int, ok bool) {
	name = c.Query("name")
	if name == "" {
		st, err := s.History.Settings(c.Request.Context(), c.Param("channel"))
		if err != nil {
			s.historyError(c, err)
			return "", 0, false
		}
		name = st.Name
	}

	limit = history.DefaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxEvolution {
			writeError(c, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxEvolution))
			return "", 0, false
		}
		limit = n
	}

	return name, limit, true
}

func (s *Server) routeGroupEvolution(c *gin.Context) {
	name, limit, ok := s.evolutionQuery(c)
	if !ok {
		return
	}

	points, err := s.History.GroupEvolution(c.Request.Context(), c.Param("channel"), name, limit)
	if err != nil {
		s.historyError(c, err)
		return
	}

	writeJson(c, http.StatusOK, points)
}

func (s *Server) routePlayerEvolution(c *gin.Context) {
	name, limit, ok := s.evolutionQuery(c)
	if !ok {
		return
	}

	points, err := s.History.PlayerEvolution(c.Request.Context(), c.Param("channel"), name, c.Param("account"), limit)
	if err != nil {
		s.historyError(c, err)
		return
	}

	writeJson(c, http.StatusOK, points)
}

func (s *Server) routeSettings(c *gin.Context) {
	st, err := s.History.Settings(c.Request.Context(), c.Param("channel"))
	if err != nil {
		s.historyError(c, err)
		return
	}

	writeJson(c, http.StatusOK, st)
}

func (s *Server) routeSaveSettings(c *gin.Context) {
	st, err := s.History.Settings(c.Request.Context(), c.Param("channel"))
	if err != nil {
		s.historyError(c, err)
		return
	}

	// fields missing from the body keep their stored value
	err = jsoniter.NewDecoder(c.Request.Body).Decode(&st)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid settings")
		return
	}

	err = s.History.SaveSettings(c.Request.Context(), c.Param("channel"), st)
	if err != nil {
		s.historyError(c, err)
		return
	}

	st, err = s.History.Settings(c.Request.Context(), c.Param("channel"))
	if err != nil {
		s.historyError(c, err)
		return
	}
	writeJson(c, http.StatusOK, st)
}

func (s *Server) routeWingman(c *gin.Context) {
	resp := struct {
		HasData     bool       `json:"has_data"`
		LastUpdated *time.Time `json:"last_updated"`
		Bosses      []int64    `json:"bosses"`
	}{
		HasData: s.Wingman.HasData(),
		Bosses:  s.Wingman.IDs(),
	}
	if t := s.Wingman.LastUpdated(); !t.IsZero() {
		resp.LastUpdated = &t
	}

	writeJson(c, http.StatusOK, resp)
}
