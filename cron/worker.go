package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"finehero/config"
	"finehero/services/defense"
	"finehero/services/fine"
	"finehero/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitPipelineWorker runs the async worker in background. It consumes the
// fine processing and defense generation queues.
func InitPipelineWorker(fineSvc fine.FineService, defenseSvc *defense.DefaultDefenseService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	concurrency := config.AppConfig.PipelineWorkers
	if concurrency <= 0 {
		concurrency = 4
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeFineProcess, handleFineProcess(fineSvc))
	mux.HandleFunc(tasks.TypeDefenseGenerate, handleDefenseGenerate(defenseSvc))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[PipelineWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[PipelineWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[PipelineWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleFineProcess(fineSvc fine.FineService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.FineProcessPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[FineProcess] Invalid payload: %v", err)
			return err
		}
		err := fineSvc.Process(ctx, p.FineID)
		if err != nil {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			if retried >= maxRetry {
				// Last attempt: the fine must not stay in processing forever.
				fineSvc.FailTerminal(ctx, p.FineID, "could not fetch or process the notice file; please try uploading it again")
			}
		}
		return err
	}
}

func handleDefenseGenerate(defenseSvc *defense.DefaultDefenseService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p tasks.DefenseGeneratePayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[DefenseGenerate] Invalid payload: %v", err)
			return err
		}

		err := defenseSvc.Generate(ctx, p.DefenseID)
		if err != nil {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			if retried >= maxRetry {
				// Last attempt: refund the credit and surface the failure.
				defenseSvc.FailTerminal(ctx, p.DefenseID, "generation failed after retries")
			}
		}
		return err
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[PipelineWorker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
