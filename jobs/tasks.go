// Package jobs wires background work through Asynq.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeInvoiceGenerate runs the monthly invoice batch.
	TaskTypeInvoiceGenerate = "billing:generate"
)

// InvoiceGeneratePayload selects the billing period. A zero month/year
// means "the period at execution time", resolved by the job handler so
// that a scheduler-registered task stays valid across month boundaries.
type InvoiceGeneratePayload struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// NewInvoiceGenerateTask constructs an Asynq task for a billing period.
func NewInvoiceGenerateTask(payload InvoiceGeneratePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeInvoiceGenerate, data), nil
}
