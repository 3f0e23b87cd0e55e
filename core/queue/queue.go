package queue

import (
	"context"

	"temple-services-api/core/logger"

	"github.com/hibiken/asynq"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) asynqOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	}
}

// Client enqueues booking lifecycle tasks for the background worker.
type Client struct {
	client *asynq.Client
}

func NewClient(cfg RedisConfig) *Client {
	return &Client{client: asynq.NewClient(cfg.asynqOpt())}
}

func (c *Client) Publish(ctx context.Context, taskType string, payload BookingEventPayload) error {
	task, err := NewBookingEventTask(taskType, payload)
	if err != nil {
		return err
	}

	info, err := c.client.EnqueueContext(ctx, task, asynq.MaxRetry(3))
	if err != nil {
		return err
	}

	logger.Debug("Queue:Publish", "task_id", info.ID, "type", taskType)
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// NewServer builds the asynq server used by cmd/worker.
func NewServer(cfg RedisConfig, concurrency int) *asynq.Server {
	return asynq.NewServer(cfg.asynqOpt(), asynq.Config{
		Concurrency: concurrency,
	})
}
