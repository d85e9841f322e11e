package routes

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"graphrag/internal/server/middleware"
	"graphrag/pkg/graph"
	"graphrag/pkg/logger"
)

// GetGraphHandler returns a subgraph for visualization. With a focus term
// it returns the neighborhood of matching nodes; without one it returns
// the edges of the most-connected nodes as an overview.
func GetGraphHandler(c echo.Context) error {
	type graphResponse struct {
		Message string             `json:"message,omitempty"`
		Edges   []graph.BrowseEdge `json:"edges"`
	}

	app := c.(*middleware.AppContext).App
	ctx := c.Request().Context()

	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return c.JSON(http.StatusBadRequest, graphResponse{
				Message: "Invalid limit",
			})
		}
		limit = parsed
	}

	var edges []graph.BrowseEdge
	var err error

	if focus := c.QueryParam("focus"); focus != "" {
		edges, err = app.Browser.Neighborhood(ctx, focus, limit)
	} else {
		edges, err = app.Browser.TopConnected(ctx, limit)
	}
	if err != nil {
		logger.Error("Failed to load subgraph", "err", err)
		return c.JSON(http.StatusInternalServerError, graphResponse{
			Message: "Failed to load subgraph",
		})
	}

	if edges == nil {
		edges = []graph.BrowseEdge{}
	}
	return c.JSON(http.StatusOK, graphResponse{Edges: edges})
}
