package async

import (
	"context"
	"time"

	"github.com/rsonderegger/dokusort/internal/entity"
)

// Job is the smallest useful unit. Extend as needed later (retry, trace, etc).
type Job struct {
	Doc         entity.Document
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
