package queue

import (
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"graphrag/internal/util"
	"graphrag/pkg/logger"
)

// IngestQueue carries document ingestion jobs from the API server to the
// worker.
const IngestQueue = "ingest_queue"

// retryTTL is how long a failed message parks in the retry queue before
// being dead-lettered back onto the work queue.
const retryTTL = int32(10000)

func Init() *amqp091.Connection {
	user := util.GetEnv("RABBITMQ_USER")
	pass := util.GetEnv("RABBITMQ_PASSWORD")
	host := util.GetEnv("RABBITMQ_HOST")
	port := util.GetEnv("RABBITMQ_PORT")

	connURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		user,
		pass,
		host,
		port,
	)

	// The broker is often still starting when the service comes up.
	var conn *amqp091.Connection
	err := util.RetryErr(5, func() error {
		var dialErr error
		conn, dialErr = amqp091.Dial(connURL)
		if dialErr != nil {
			logger.Warn("RabbitMQ not reachable yet, retrying", "err", dialErr)
			time.Sleep(2 * time.Second)
		}
		return dialErr
	})
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}

	return conn
}

// SetupQueues declares each work queue together with its dead-letter and
// retry companions.
func SetupQueues(ch *amqp091.Channel, queueNames []string) error {
	for _, name := range queueNames {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			return fmt.Errorf("declaring queue %q: %w", name, err)
		}

		_, err = ch.QueueDeclare(
			name+"_dlq",
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			return fmt.Errorf("declaring queue %q: %w", name+"_dlq", err)
		}

		_, err = ch.QueueDeclare(
			name+"_retry",
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             retryTTL,
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			return fmt.Errorf("declaring queue %q: %w", name+"_retry", err)
		}
	}

	return nil
}

// PublishFIFO publishes a persistent message directly onto the named
// queue.
func PublishFIFO(ch *amqp091.Channel, queueName string, data []byte) error {
	q, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	return ch.Publish(
		"",
		q.Name,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         data,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
		},
	)
}
