package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/signalvane/signalvane/core"
	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/internal/history"
	"github.com/signalvane/signalvane/schema"
)

// rootInfo lists the available endpoints.
type rootInfo struct {
	Name        string            `json:"name"`
	Version     string            `json:"version"`
	Description string            `json:"description"`
	Endpoints   map[string]string `json:"endpoints"`
}

// refreshResponse is returned by POST /refresh.
type refreshResponse struct {
	Status      string                `json:"status"`
	Refreshed   bool                  `json:"refreshed"`
	Reason      string                `json:"reason"`
	Timestamp   *time.Time            `json:"timestamp"`
	Regenerated bool                  `json:"regenerated"`
	Message     string                `json:"message"`
	Outcome     schema.RefreshOutcome `json:"outcome"`
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, rootInfo{
		Name:        "SignalVane API",
		Version:     "1.0.0",
		Description: "Narrative detection and trend tracking",
		Endpoints: map[string]string{
			"/narratives":        "Get all detected narratives (sort_by, trend, limit)",
			"/narratives/{name}": "Get a specific narrative by name",
			"/trends":            "Get trend indicators for all narratives",
			"/ideas":             "Get build ideas (narrative_name)",
			"/snapshot":          "Get the signal metadata of the last refresh",
			"/history/{name}":    "Get the recorded scores of one narrative",
			"/refresh":           "Trigger a data refresh (POST; force, regenerate)",
			"/health":            "API health check and data freshness",
			"/metrics":           "Prometheus metrics",
		},
	})
}

func (s *Server) handleNarratives(c echo.Context) error {
	cfg := s.cfg.Clone()
	if err := contract.RevalidatePresentation(cfg, c.QueryParam("sort_by"), c.QueryParam("trend"), ""); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cfg.ResultLimit = 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		cfg.ResultLimit = n
	}

	narratives, _, err := core.GetNarrativesResults(c.Request().Context(), cfg)
	if err != nil {
		return mapCoreError(err)
	}
	return c.JSON(http.StatusOK, narratives)
}

func (s *Server) handleNarrative(c echo.Context) error {
	cfg := s.cfg.Clone()
	cfg.NarrativeFilter = c.Param("name")
	cfg.TrendFilter = ""

	narratives, _, err := core.GetNarrativesResults(c.Request().Context(), cfg)
	if err != nil {
		return mapCoreError(err)
	}
	return c.JSON(http.StatusOK, narratives[0])
}

func (s *Server) handleTrends(c echo.Context) error {
	snaps, err := history.NewStore(s.cfg.HistoryPath()).Load()
	if err != nil {
		return mapCoreError(err)
	}
	return c.JSON(http.StatusOK, core.TrendsFromSnapshots(snaps))
}

func (s *Server) handleIdeas(c echo.Context) error {
	cfg := s.cfg.Clone()
	cfg.NarrativeFilter = c.QueryParam("narrative_name")

	sets, _, err := core.GetIdeasResults(c.Request().Context(), cfg)
	if err != nil {
		return mapCoreError(err)
	}
	return c.JSON(http.StatusOK, sets)
}

func (s *Server) handleSnapshot(c echo.Context) error {
	report, err := core.LoadSignalReport(s.cfg)
	if err != nil {
		return mapCoreError(err)
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) handleHistory(c echo.Context) error {
	cfg := s.cfg.Clone()
	cfg.EntityName = c.Param("name")

	result, _, err := core.GetHistoryResults(c.Request().Context(), cfg)
	if err != nil {
		return mapCoreError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// handleRefresh forces a refresh unless force=false is passed, in which case the
// cache window is honored. regenerate=true also regenerates ideas.
func (s *Server) handleRefresh(c echo.Context) error {
	force, err := queryBool(c, "force", true)
	if err != nil {
		return err
	}
	regenerate, err := queryBool(c, "regenerate", false)
	if err != nil {
		return err
	}

	cfg := s.cfg.Clone()
	cfg.Force = force
	cfg.GenerateIdeas = regenerate

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	outcome, err := s.refresh(core.WithSuppressHeader(c.Request().Context()), cfg)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "refresh error: "+err.Error())
	}

	resp := refreshResponse{
		Status:      "success",
		Refreshed:   outcome.Refreshed,
		Reason:      outcome.Reason,
		Regenerated: regenerate && outcome.Refreshed,
		Message:     "Data refreshed successfully",
		Outcome:     outcome,
	}
	if outcome.State.Known {
		ts := outcome.State.LastRefresh
		resp.Timestamp = &ts
	}
	if !outcome.Refreshed {
		resp.Message = "Data is still fresh; refresh skipped"
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c echo.Context) error {
	report, err := core.GetHealthResults(c.Request().Context(), s.cfg)
	if err != nil {
		return mapCoreError(err)
	}
	return c.JSON(http.StatusOK, report)
}

// queryBool parses an optional boolean query parameter.
func queryBool(c echo.Context, name string, def bool) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := contract.ParseBoolString(raw)
	if err != nil {
		return false, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name+": "+err.Error())
	}
	return v, nil
}
