package middleware

import (
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"graphrag/pkg/graph"
	"graphrag/pkg/query"
	"graphrag/pkg/vector"
)

// App bundles the shared clients every request handler needs.
type App struct {
	Queue        *amqp091.Channel
	S3           *s3.Client
	Bucket       string
	Graph        *graph.Client
	Browser      *graph.Browser
	Vector       *vector.Store
	Chain        *query.Chain
	MasterAPIKey string
}

// AppContext wraps the echo context with the application dependencies.
type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware injects the shared App into every request.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{c, app})
		}
	}
}
