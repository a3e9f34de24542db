package ports

import (
	"time"

	"go.trai.ch/spool/internal/core/domain"
)

// Renderer presents build progress and the final report.
// It is driven by telemetry spans so the engine stays unaware of the terminal.
//
//go:generate go run go.uber.org/mock/mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// OnPlanEmit is called once the entries of a build are known.
	OnPlanEmit(entries []string)

	// OnTaskStart is called when a span begins.
	// parentID is empty for root spans.
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog is called with console output produced under a span.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a span ends; err is nil on success.
	OnTaskComplete(spanID string, endTime time.Time, err error)

	// RenderReport prints the summary of a finished build.
	RenderReport(report *domain.BuildReport)

	// Stop flushes any buffered output.
	Stop() error
}
