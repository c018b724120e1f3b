package cron

import (
	"context"
	"fmt"
	"time"

	"vendora/config"
	"vendora/services/booking"
	"vendora/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeExpirationSweep = "booking:expiration_sweep"

// InitSweepWorker starts the asynq worker and its periodic scheduler entry
// for the booking expiration sweep. The sweep is idempotent, so an overlap
// between a slow run and the next tick is harmless.
func InitSweepWorker(bookingSvc booking.BookingService) (*asynq.Server, *asynq.Scheduler) {
	logger := utils.GetLogger()

	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeExpirationSweep, handleSweepTask(bookingSvc))

	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Fatal("Sweep worker failed to start", zap.Error(err))
		}
	}()

	interval := config.AppConfig.SweepIntervalMinutes
	if interval <= 0 {
		interval = 60
	}
	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{Location: time.UTC})
	cronspec := fmt.Sprintf("@every %dm", interval)
	if _, err := scheduler.Register(cronspec, asynq.NewTask(TypeExpirationSweep, nil)); err != nil {
		logger.Fatal("Failed to register sweep schedule", zap.Error(err))
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Fatal("Sweep scheduler failed to start", zap.Error(err))
		}
	}()

	logger.Info("Expiration sweep scheduled", zap.String("cronspec", cronspec))
	return srv, scheduler
}

func handleSweepTask(bookingSvc booking.BookingService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		count, err := bookingSvc.RunExpirationSweep(ctx)
		if err != nil {
			logger.Error("Expiration sweep failed", zap.Error(err))
			return err
		}
		logger.Info("Expiration sweep completed", zap.Int("expired", count))
		return nil
	}
}
