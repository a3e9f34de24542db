package ports

import (
	"context"
	"io"

	"go.trai.ch/spool/internal/core/domain"
)

// Sandbox executes a module and returns the text of its default export.
//
//go:generate go run go.uber.org/mock/mockgen -source=sandbox.go -destination=mocks/mock_sandbox.go -package=mocks
type Sandbox interface {
	// Execute runs unit with its imports already satisfied. Output of the
	// module's console is written to console.
	Execute(
		ctx context.Context,
		unit *domain.SourceUnit,
		imports map[string]domain.Import,
		console io.Writer,
	) (string, error)
}
