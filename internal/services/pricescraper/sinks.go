package pricescraper

import (
	"context"
	"errors"

	"pricescout/internal/domain"
	"pricescout/internal/ports"
)

// MultiProgress fans a progress snapshot out to several sinks. The joined
// error carries every individual failure; progress stays fire-and-forget
// because the orchestrator only logs it.
type MultiProgress []ports.ProgressSink

func (m MultiProgress) ReportProgress(ctx context.Context, p domain.JobProgress) error {
	var errs []error
	for _, sink := range m {
		if err := sink.ReportProgress(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
