package repository

import (
	"context"

	"github.com/user/taxsale-crawler/internal/entity"
)

// ReportWriter persists the two result tables of a run.
type ReportWriter interface {
	Write(ctx context.Context, report *entity.Report) error
}

// ResultSink receives the finished report after it has been written.
// Sinks are optional exports; their failures never fail a run.
type ResultSink interface {
	Name() string
	Publish(ctx context.Context, report *entity.Report) error
}
