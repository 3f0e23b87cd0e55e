package main

import (
	"context"
	"fmt"

	"temple-services-api/core/config"
	"temple-services-api/core/logger"
	"temple-services-api/core/queue"

	"github.com/hibiken/asynq"
)

// The worker consumes booking lifecycle events and hands them to downstream
// collaborators (notifications, payment reconciliation). Dispatch targets are
// wired here; each handler must be idempotent since asynq retries on error.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("load config:", err)
		return
	}

	logger.Init(cfg.Logger.Level, cfg.Logger.JSONFormat)

	srv := queue.NewServer(queue.RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, 10)

	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeBookingCreated, handleBookingEvent)
	mux.HandleFunc(queue.TypeBookingCancelled, handleBookingEvent)
	mux.HandleFunc(queue.TypeBookingRescheduled, handleBookingEvent)

	logger.Info("Worker starting", "redis", cfg.Redis.Addr)
	if err := srv.Run(mux); err != nil {
		logger.Fatal("Worker:Run", err)
	}
}

func handleBookingEvent(ctx context.Context, t *asynq.Task) error {
	payload, err := queue.ParseBookingEventPayload(t)
	if err != nil {
		return fmt.Errorf("parse %s payload: %w", t.Type(), err)
	}

	logger.Info("Worker:BookingEvent",
		"type", t.Type(),
		"booking_id", payload.BookingID,
		"reference", payload.Reference,
		"user_id", payload.UserID,
		"temple_id", payload.TempleID,
		"date", payload.BookingDate,
		"time", payload.StartTime,
		"status", payload.Status,
	)
	return nil
}
