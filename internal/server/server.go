package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"graphrag/internal/queue"
	mid "graphrag/internal/server/middleware"
	"graphrag/internal/storage"
	"graphrag/internal/util"
	"graphrag/pkg/ai"
	oai "graphrag/pkg/ai/ollama"
	gai "graphrag/pkg/ai/openai"
	"graphrag/pkg/graph"
	"graphrag/pkg/logger"
	"graphrag/pkg/query"
	"graphrag/pkg/vector"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	return cv.validator.Struct(i)
}

// NewGraphConfigFromEnv reads the NEO4J_* connection settings.
func NewGraphConfigFromEnv() graph.Config {
	return graph.Config{
		URI:      util.GetEnvString("NEO4J_URI", "bolt://localhost:7687"),
		Username: util.GetEnv("NEO4J_USERNAME"),
		Password: util.GetEnv("NEO4J_PASSWORD"),
	}
}

// NewAIClientFromEnv builds the configured model client. The default
// adapter is OpenAI-compatible, which also covers Groq and other hosted
// endpoints via AI_CHAT_URL.
func NewAIClientFromEnv() ai.Client {
	embeddingDim := int(util.GetEnvNumeric("AI_EMBED_DIM", 384))

	if util.GetEnv("AI_ADAPTER") == "ollama" {
		client, err := oai.NewGraphOllamaClient(oai.NewGraphOllamaClientParams{
			ChatModel:       util.GetEnv("AI_CHAT_MODEL"),
			ExtractionModel: util.GetEnv("AI_EXTRACT_MODEL"),
			EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
			EmbeddingDim:    embeddingDim,
			BaseURL:         util.GetEnv("AI_CHAT_URL"),
		})
		if err != nil {
			logger.Fatal("Failed to create Ollama client", "err", err)
		}
		return client
	}

	return gai.NewGraphOpenAIClient(gai.NewGraphOpenAIClientParams{
		ChatModel:       util.GetEnv("AI_CHAT_MODEL"),
		ExtractionModel: util.GetEnv("AI_EXTRACT_MODEL"),
		EmbeddingModel:  util.GetEnv("AI_EMBED_MODEL"),
		EmbeddingDim:    embeddingDim,

		ChatURL:      util.GetEnv("AI_CHAT_URL"),
		ChatKey:      util.GetEnv("AI_CHAT_KEY"),
		EmbeddingURL: util.GetEnv("AI_EMBED_URL"),
		EmbeddingKey: util.GetEnv("AI_EMBED_KEY"),
	})
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	aiClient := NewAIClientFromEnv()

	graphClient, err := graph.NewClient(NewGraphConfigFromEnv())
	if err != nil {
		logger.Fatal("Failed to create graph client", "err", err)
	}
	defer graphClient.Close(ctx)

	vectorStore, err := vector.New(
		util.GetEnvString("VECTOR_DB_PATH", "data/vectors.db"),
		int(util.GetEnvNumeric("AI_EMBED_DIM", 384)),
		aiClient,
	)
	if err != nil {
		logger.Fatal("Failed to open vector store", "err", err)
	}
	defer vectorStore.Close()

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch, []string{queue.IngestQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	s3Client, err := storage.NewS3Client(ctx)
	if err != nil {
		logger.Fatal("Failed to create S3 client", "err", err)
	}

	chain := query.NewChain(
		aiClient,
		vectorStore,
		query.NewRecognizer(aiClient),
		graph.NewResolver(graphClient),
	)

	app := &mid.App{
		Queue:        ch,
		S3:           s3Client,
		Bucket:       util.GetEnvString("AWS_BUCKET", "graphrag"),
		Graph:        graphClient,
		Browser:      graph.NewBrowser(graphClient),
		Vector:       vectorStore,
		Chain:        chain,
		MasterAPIKey: util.GetEnv("MASTER_API_KEY"),
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimit("512M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
