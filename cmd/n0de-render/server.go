package main

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/chazu/n0de/pkg/engine"
	"github.com/chazu/n0de/pkg/geom"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// evalErrorJSON is the wire form of an evaluation error.
type evalErrorJSON struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

func toEvalErrorJSON(errs []engine.EvalError) []evalErrorJSON {
	out := make([]evalErrorJSON, len(errs))
	for i, e := range errs {
		out[i] = evalErrorJSON{Line: e.Line, Col: e.Col, Message: e.Message}
	}
	return out
}

// maxScriptSize bounds the request body of POST /render.
const maxScriptSize = "1M"

// newServer builds the HTTP front end. POST /render takes a script as the
// request body and answers with SVG; the viewport comes from the w and h
// query parameters and falls back to def.
func newServer(r *renderer, def geom.Size) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// logging for server-side latency.
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			begin := time.Now()
			err := next(c)
			r.logger.Info("request",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Int("status", responseStatus(c, err)),
				zap.Duration("elapsed", time.Since(begin)),
				zap.Error(err),
			)
			return err
		}
	})
	e.Use(middleware.BodyLimit(maxScriptSize))

	e.POST("/render", func(c echo.Context) error {
		size := def
		if err := echo.QueryParamsBinder(c).
			Float64("w", &size.W).
			Float64("h", &size.H).
			BindError(); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		source, err := io.ReadAll(c.Request().Body)
		if err != nil {
			var he *echo.HTTPError
			if errors.As(err, &he) {
				// body limit exceeded
				return he
			}
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		var buf bytes.Buffer
		if err := r.render(&buf, string(source), size); err != nil {
			var se *scriptError
			if errors.As(err, &se) {
				return c.JSON(http.StatusUnprocessableEntity, map[string]any{
					"errors": toEvalErrorJSON(se.errs),
				})
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.Blob(http.StatusOK, "image/svg+xml", buf.Bytes())
	})

	return e
}

// responseStatus is the status the client will see. Errors returned from a
// handler are written by echo's error handler only after the middleware
// chain unwinds.
func responseStatus(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
