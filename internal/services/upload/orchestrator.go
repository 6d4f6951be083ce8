package upload

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

type Status string

const (
	StatusAllSucceeded        Status = "completed"
	StatusCompletedWithErrors Status = "completed_with_errors"
	StatusCancelled           Status = "cancelled"
)

const (
	SuccessMessage   = "All rows uploaded successfully!"
	CancelledMessage = "Upload cancelled"
)

// Outcome summarizes one run over a parsed file.
type Outcome struct {
	Status     Status   `json:"status"`
	Message    string   `json:"message"`
	Rejections []string `json:"rejections"`
	Total      int      `json:"total"`
	Processed  int      `json:"processed"`
	Inserted   int      `json:"inserted"`
	Progress   int      `json:"progress"`
}

type RunOptions struct {
	Attribution Attribution
	// OnProgress receives the percentage after every row and 0 once the run ends.
	OnProgress func(percent int)
	// Refresh runs once after the row loop.
	Refresh func(ctx context.Context) error
}

type Orchestrator struct {
	validator *Validator
	log       *zap.Logger
}

func NewOrchestrator(validator *Validator, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{validator: validator, log: log}
}

// Run validates and inserts rows one at a time in file order. A row's
// lookups and insert finish before the next row starts, so rows inserted
// earlier in the same file are seen by later duplicate checks. Cancellation
// is honoured between rows only.
func (o *Orchestrator) Run(ctx context.Context, rows []UploadRow, opts RunOptions) Outcome {
	out := Outcome{Total: len(rows), Rejections: []string{}}

	for i, row := range rows {
		if ctx.Err() != nil {
			out.Status = StatusCancelled
			break
		}

		// A row that has started runs to completion even if ctx is cancelled
		// mid-row.
		_, err := o.validator.Validate(context.WithoutCancel(ctx), row, opts.Attribution)
		if err != nil {
			var r *Rejection
			if !errors.As(err, &r) {
				r = storageRejection(row, err)
			}
			out.Rejections = append(out.Rejections, r.Reason)
			o.log.Info("Row rejected",
				zap.Int("row", row.Position),
				zap.String("category", string(r.Category)),
				zap.String("reason", r.Reason),
			)
		} else {
			out.Inserted++
		}

		out.Processed = i + 1
		out.Progress = percent(out.Processed, out.Total)
		if opts.OnProgress != nil {
			opts.OnProgress(out.Progress)
		}
	}

	if out.Status == "" {
		if len(out.Rejections) > 0 {
			out.Status = StatusCompletedWithErrors
		} else {
			out.Status = StatusAllSucceeded
		}
	}
	if len(out.Rejections) > 0 {
		out.Message = strings.Join(out.Rejections, "\n")
	} else if out.Status == StatusAllSucceeded {
		out.Message = SuccessMessage
	} else {
		out.Message = CancelledMessage
	}

	out.Progress = 0
	if opts.OnProgress != nil {
		opts.OnProgress(0)
	}

	if opts.Refresh != nil {
		// The run's own context may already be cancelled; committed rows still
		// need to show up.
		if err := opts.Refresh(context.WithoutCancel(ctx)); err != nil {
			o.log.Error("Refresh after upload failed", zap.Error(err))
		}
	}

	o.log.Info("Upload run finished",
		zap.String("status", string(out.Status)),
		zap.Int("total", out.Total),
		zap.Int("inserted", out.Inserted),
		zap.Int("rejected", len(out.Rejections)),
	)
	return out
}

// percent rounds half up.
func percent(done, total int) int {
	if total == 0 {
		return 100
	}
	return (200*done + total) / (2 * total)
}
