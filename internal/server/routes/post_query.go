package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"graphrag/internal/server/middleware"
	"graphrag/pkg/logger"
)

// QueryHandler answers a question over the ingested corpus through the
// hybrid retrieval chain. Retrieval or generation failures surface as a
// bad gateway since they originate in upstream model and store calls.
func QueryHandler(c echo.Context) error {
	type queryBody struct {
		Question string `json:"question" validate:"required"`
	}

	type queryResponse struct {
		Message string `json:"message,omitempty"`
		Answer  string `json:"answer,omitempty"`
	}

	data := new(queryBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, queryResponse{
			Message: "Invalid request body",
		})
	}

	app := c.(*middleware.AppContext).App

	answer, err := app.Chain.Answer(c.Request().Context(), data.Question)
	if err != nil {
		logger.Error("Failed to answer question", "err", err)
		return c.JSON(http.StatusBadGateway, queryResponse{
			Message: "Failed to answer question",
		})
	}

	return c.JSON(http.StatusOK, queryResponse{
		Answer: answer,
	})
}
