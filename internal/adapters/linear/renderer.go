// Package linear provides a synchronous, line-buffered renderer for builds
// and CI environments.
package linear

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/muesli/termenv"
	"go.trai.ch/spool/internal/core/domain"
	"go.trai.ch/spool/internal/core/ports"
	"go.trai.ch/spool/internal/ui/output"
	"go.trai.ch/spool/internal/ui/style"
)

var _ ports.Renderer = (*Renderer)(nil)

// Renderer implements ports.Renderer with chronological, prefixed lines.
// Only root spans (one per entry or request) announce themselves; console
// output of nested spans is prefixed with the name of their root.
type Renderer struct {
	stdout io.Writer
	stderr io.Writer
	output *termenv.Output

	mu      sync.Mutex
	tasks   map[string]*taskState // spanID -> task state
	buffers map[string]*bytes.Buffer
}

type taskState struct {
	name      string
	root      string
	isRoot    bool
	done      bool
	startTime time.Time
}

// NewRenderer creates a new Renderer. Nil writers mean stdout and stderr.
func NewRenderer(stdout, stderr io.Writer) *Renderer {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	return &Renderer{
		stdout:  stdout,
		stderr:  stderr,
		output:  output.New(stderr),
		tasks:   make(map[string]*taskState),
		buffers: make(map[string]*bytes.Buffer),
	}
}

// Stop flushes all remaining buffers.
func (r *Renderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for spanID := range r.buffers {
		r.flushBufferLocked(spanID)
	}
	return nil
}

// OnPlanEmit prints the planned entries.
func (r *Renderer) OnPlanEmit(entries []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, _ = fmt.Fprintf(r.stderr, "%s Building %d asset module(s)\n",
		r.output.String(style.Arrow).Foreground(r.output.Color(string(style.Accent))), len(entries))
}

// OnTaskStart registers a span. Root spans print a start line.
func (r *Renderer) OnTaskStart(spanID, parentID, name string, startTime time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task := &taskState{name: name, root: name, isRoot: true, startTime: startTime}
	if parent, ok := r.tasks[parentID]; ok {
		task.root = parent.root
		task.isRoot = false
	}

	r.tasks[spanID] = task
	r.buffers[spanID] = new(bytes.Buffer)

	if task.isRoot {
		prefix := r.output.String(fmt.Sprintf("[%s]", name)).Faint().String()
		_, _ = fmt.Fprintf(r.stderr, "%s Starting...\n", prefix)
	}
}

// OnTaskLog buffers console output and prints complete lines with the root prefix.
func (r *Renderer) OnTaskLog(spanID string, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	buf.Write(data)

	for {
		line, err := buf.ReadBytes('\n')
		if err != nil {
			if len(line) > 0 {
				rest := new(bytes.Buffer)
				rest.Write(line)
				r.buffers[spanID] = rest
			}
			break
		}
		r.printLineLocked(task.root, line)
	}
}

// OnTaskComplete flushes the span's buffer. Root spans print their outcome.
// The span stays known, since console output is delivered asynchronously and
// may arrive after the span ended.
func (r *Renderer) OnTaskComplete(spanID string, endTime time.Time, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[spanID]
	if !ok || task.done {
		return
	}
	task.done = true

	r.flushBufferLocked(spanID)

	if !task.isRoot {
		return
	}

	duration := endTime.Sub(task.startTime).Round(time.Millisecond)
	prefix := fmt.Sprintf("[%s]", task.name)

	if err != nil {
		symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
		_, _ = fmt.Fprintf(r.stderr, "%s %s Failed after %v: %v\n", prefix, symbol, duration, err)
		return
	}
	symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
	_, _ = fmt.Fprintf(r.stderr, "%s %s Completed in %v\n", prefix, symbol, duration)
}

// RenderReport prints one line per entry followed by a summary line.
func (r *Renderer) RenderReport(report *domain.BuildReport) {
	if report == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range report.Entries {
		switch {
		case e.Status == domain.StatusFailed:
			symbol := r.output.String(style.Cross).Foreground(termenv.ANSIRed).String()
			_, _ = fmt.Fprintf(r.stdout, "%s %s  %s: %s\n", symbol, e.EntryPath, e.ErrorKind, e.Cause)
		case e.Cached:
			symbol := r.output.String(style.Cached).Faint().String()
			_, _ = fmt.Fprintf(r.stdout, "%s %s %s %s  (cached)\n", symbol, e.EntryPath, style.Arrow, e.OutputPath)
		default:
			symbol := r.output.String(style.Check).Foreground(termenv.ANSIGreen).String()
			fp := r.output.String(e.Fingerprint.Short()).Faint().String()
			_, _ = fmt.Fprintf(r.stdout, "%s %s %s %s  %s\n", symbol, e.EntryPath, style.Arrow, e.OutputPath, fp)
		}
	}

	summary := fmt.Sprintf("%d entries: %d succeeded (%d cached), %d failed in %v",
		len(report.Entries), report.Succeeded(), report.Cached(), report.Failed(),
		report.Duration.Round(time.Millisecond))
	if report.OK() {
		_, _ = fmt.Fprintln(r.stdout, r.output.String(summary).Bold().String())
		return
	}
	_, _ = fmt.Fprintln(r.stdout, r.output.String(summary).Foreground(termenv.ANSIRed).Bold().String())
}

// flushBufferLocked prints a trailing partial line. Must be called with r.mu held.
func (r *Renderer) flushBufferLocked(spanID string) {
	task, ok := r.tasks[spanID]
	if !ok {
		return
	}

	buf := r.buffers[spanID]
	if buf.Len() > 0 {
		r.printLineLocked(task.root, buf.Bytes())
		buf.Reset()
	}
}

// printLineLocked prints a line with the task name prefix. Must be called with r.mu held.
func (r *Renderer) printLineLocked(taskName string, line []byte) {
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 {
		return
	}
	_, _ = fmt.Fprintf(r.stdout, "[%s] %s\n", taskName, line)
}
