package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"graphrag/internal/server/middleware"
)

// HealthHandler reports liveness of the two stores. The graph check
// verifies driver connectivity; the vector check runs a trivial count.
func HealthHandler(c echo.Context) error {
	type healthResponse struct {
		Status  string `json:"status"`
		Graph   string `json:"graph"`
		Vector  string `json:"vector"`
		Records int64  `json:"records"`
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	resp := healthResponse{Status: "ok", Graph: "ok", Vector: "ok"}
	healthy := true

	if err := app.Graph.VerifyConnectivity(ctx); err != nil {
		resp.Graph = err.Error()
		healthy = false
	}

	count, err := app.Vector.Count(ctx)
	if err != nil {
		resp.Vector = err.Error()
		healthy = false
	} else {
		resp.Records = count
	}

	if !healthy {
		resp.Status = "degraded"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	return c.JSON(http.StatusOK, resp)
}
