package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names handled by the worker.
const (
	TypeFineProcess     = "fine:process"
	TypeDefenseGenerate = "defense:generate"
)

// Enqueuer is the slice of asynq.Client the services need. Satisfied by
// *asynq.Client; faked in tests.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// FineProcessPayload identifies the fine to run through the OCR pipeline.
type FineProcessPayload struct {
	FineID string `json:"fineId"`
}

// DefenseGeneratePayload identifies the defense to generate.
type DefenseGeneratePayload struct {
	DefenseID string `json:"defenseId"`
}

// NewFineProcessTask builds the async OCR/extraction task for a fine.
func NewFineProcessTask(fineID string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(FineProcessPayload{FineID: fineID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeFineProcess, b)
	opts := []asynq.Option{
		asynq.MaxRetry(3),
		asynq.Timeout(5 * time.Minute),
	}
	return task, opts, nil
}

// NewDefenseGenerateTask builds the async generation task for a defense.
func NewDefenseGenerateTask(defenseID string) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(DefenseGeneratePayload{DefenseID: defenseID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeDefenseGenerate, b)
	opts := []asynq.Option{
		asynq.MaxRetry(2),
		asynq.Timeout(3 * time.Minute),
	}
	return task, opts, nil
}
