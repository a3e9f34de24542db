package domain

import (
	"context"
	"errors"
	"fmt"
)

// Error kinds reported in build reports and HTTP failure bodies.
const (
	KindNotFound          = "NotFound"
	KindInvalidSpecifier  = "InvalidSpecifier"
	KindInsecureScheme    = "InsecureScheme"
	KindIntegrityMismatch = "IntegrityMismatch"
	KindInvalidIntegrity  = "InvalidIntegrity"
	KindUnreachable       = "Unreachable"
	KindHTTPStatus        = "HttpStatus"
	KindThrown            = "Thrown"
	KindInvalidExport     = "InvalidExport"
	KindTimeout           = "Timeout"
	KindCycle             = "Cycle"
	KindCanceled          = "Canceled"
	KindInternal          = "Internal"
)

var errorKinds = []struct {
	target error
	kind   string
}{
	{ErrNotFound, KindNotFound},
	{ErrInvalidSpecifier, KindInvalidSpecifier},
	{ErrInsecureScheme, KindInsecureScheme},
	{ErrIntegrityMismatch, KindIntegrityMismatch},
	{ErrInvalidIntegrity, KindInvalidIntegrity},
	{ErrUnreachable, KindUnreachable},
	{ErrHTTPStatus, KindHTTPStatus},
	{ErrThrown, KindThrown},
	{ErrInvalidExport, KindInvalidExport},
	{ErrExecTimeout, KindTimeout},
	{ErrCycleDetected, KindCycle},
	{context.DeadlineExceeded, KindTimeout},
	{context.Canceled, KindCanceled},
}

// summaryKeys are the metadata keys that may appear in a public summary, in priority order.
var summaryKeys = []string{"cause", "cycle", "status_code", "specifier"}

// KindOf maps an error chain onto the failure taxonomy.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.kind
		}
	}
	return KindInternal
}

// Summarize returns a one-line description of err that names the failure kind
// and, when available, a short detail. It never includes filesystem paths of
// the host or stack traces, so it is safe to send to HTTP clients.
func Summarize(err error) string {
	if err == nil {
		return ""
	}
	kind := KindOf(err)
	if detail := Detail(err); detail != "" {
		return kind + ": " + detail
	}
	return kind
}

// Detail returns the public detail of err that Summarize appends to the
// kind, or "" when the chain carries none.
func Detail(err error) string {
	meta := Metadata(err)
	for _, key := range summaryKeys {
		if v, ok := meta[key]; ok {
			return fmt.Sprint(v)
		}
	}
	return ""
}

type metadataError interface {
	Metadata() map[string]any
}

// Metadata collects zerr metadata along the whole chain of err.
// Keys attached closer to the surface win over keys deeper in the chain.
func Metadata(err error) map[string]any {
	out := make(map[string]any)
	collectMetadata(err, out)
	return out
}

func collectMetadata(err error, out map[string]any) {
	for err != nil {
		if m, ok := err.(metadataError); ok {
			for k, v := range m.Metadata() {
				if _, exists := out[k]; !exists {
					out[k] = v
				}
			}
		}
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range joined.Unwrap() {
				collectMetadata(e, out)
			}
			return
		}
		err = errors.Unwrap(err)
	}
}
