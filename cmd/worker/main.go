package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"graphrag/internal/queue"
	"graphrag/internal/server"
	"graphrag/internal/storage"
	"graphrag/internal/util"
	"graphrag/pkg/graph"
	"graphrag/pkg/loader"
	diskio "graphrag/pkg/loader/io"
	s3loader "graphrag/pkg/loader/s3"
	"graphrag/pkg/logger"
	"graphrag/pkg/logger/console"
	"graphrag/pkg/vector"
)

const maxRetries = 10

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	// STORAGE_ADAPTER=disk reads documents from the local filesystem,
	// which makes dev runs possible without an object store.
	var source loader.ContentLoader
	if util.GetEnvString("STORAGE_ADAPTER", "s3") == "disk" {
		source = diskio.NewDiskLoader()
	} else {
		s3Client, err := storage.NewS3Client(ctx)
		if err != nil {
			logger.Fatal("Failed to create S3 client", "err", err)
		}
		source = s3loader.NewS3Loader(util.GetEnvString("AWS_BUCKET", "graphrag"), s3Client)
	}

	aiClient := server.NewAIClientFromEnv()

	graphClient, err := graph.NewClient(server.NewGraphConfigFromEnv())
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

	chunker, err := loader.NewChunker(
		util.GetEnvString("CHUNK_ENCODING", loader.DefaultEncoding),
		int(util.GetEnvNumeric("CHUNK_MAX_TOKENS", loader.DefaultMaxTokens)),
	)
	if err != nil {
		logger.Fatal("Failed to create chunker", "err", err)
	}

	builder := graph.NewBuilder(
		graph.NewExtractor(aiClient),
		graph.NewUpserter(graphClient),
	)
	ingestor := queue.NewIngestor(source, chunker, builder, vectorStore)

	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.IngestQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	if err := consumerCh.Qos(1, 0, true); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := consumerCh.Consume(
		queue.IngestQueue,
		queue.IngestQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.IngestQueue, "err", err)
	}

	logger.Info("Listening for messages")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, exiting...")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("Message channel closed")
				return
			}

			startTime := time.Now()
			logger.Info("Received message", "queue", queue.IngestQueue)

			if err := ingestor.ProcessIngestMessage(ctx, string(msg.Body)); err != nil {
				logger.Error("Error processing message", "err", err)
				handleProcessingError(consumerCh, msg, queue.IngestQueue)
			} else {
				if err := msg.Ack(false); err != nil {
					logger.Error("Failed to ack message", "err", err)
				}
				logger.Info("Message processed successfully", "duration", time.Since(startTime).Round(time.Second))
			}
		}
	}
}

// handleProcessingError routes a failed message to the retry queue, or to
// the dead-letter queue once the retry budget is spent.
func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	if retries >= maxRetries {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = int32(retries + 1)

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
