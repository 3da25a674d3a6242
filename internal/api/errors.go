package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/signalvane/signalvane/core"
	"github.com/signalvane/signalvane/internal/history"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Detail string `json:"detail"`
}

// mapCoreError converts a core error into an appropriate echo.HTTPError.
func mapCoreError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, core.ErrNotFound),
		errors.Is(err, core.ErrArtifactNotFound),
		errors.Is(err, core.ErrNoSnapshots):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())

	case errors.Is(err, history.ErrCorrupt):
		return echo.NewHTTPError(http.StatusInternalServerError, "history log is corrupt; repair or remove it")

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// errorHandler renders HTTP errors as {"detail": "..."} and defers everything
// else to fallback.
func (s *Server) errorHandler(fallback echo.HTTPErrorHandler) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			fallback(err, c)
			return
		}
		detail, ok := he.Message.(string)
		if !ok {
			detail = http.StatusText(he.Code)
		}
		if err := c.JSON(he.Code, errorBody{Detail: detail}); err != nil {
			c.Logger().Error(err)
		}
	}
}
