package runner

import (
	"context"
	"time"

	"github.com/aretw0/routine/pkg/domain"
)

// ReportHandler defines how a run is presented.
// This allows switching between Text (CLI) and JSON (structured) modes.
type ReportHandler interface {
	// Report presents one tick. It is called once per new report.
	Report(ctx context.Context, rep *domain.TickReport) error

	// Finish presents the outcome of the run. It is called once.
	Finish(ctx context.Context, sum Summary) error
}

// Summary is the outcome of a run.
type Summary struct {
	Status  domain.RunStatus `json:"status"`
	Ticks   uint64           `json:"ticks"`
	Elapsed time.Duration    `json:"elapsed"`
}

// MultiHandler fans reports out to several handlers, stopping at the first error.
func MultiHandler(handlers ...ReportHandler) ReportHandler {
	return multiHandler(handlers)
}

type multiHandler []ReportHandler

func (m multiHandler) Report(ctx context.Context, rep *domain.TickReport) error {
	for _, h := range m {
		if err := h.Report(ctx, rep); err != nil {
			return err
		}
	}
	return nil
}

func (m multiHandler) Finish(ctx context.Context, sum Summary) error {
	for _, h := range m {
		if err := h.Finish(ctx, sum); err != nil {
			return err
		}
	}
	return nil
}

type nopHandler struct{}

func (nopHandler) Report(context.Context, *domain.TickReport) error { return nil }
func (nopHandler) Finish(context.Context, Summary) error            { return nil }
