// Package logging adds CI runner integration on top of zerolog.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const failureMarker = "_failure"

// InGitHubActions reports whether the process runs inside a GitHub Actions job.
func InGitHubActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

// ActionsWriter passes log lines through to out. Lines produced by Failed are
// additionally emitted as a workflow error command on annotations.
type ActionsWriter struct {
	out           io.Writer
	annotations   io.Writer
	mu            sync.Mutex
	nextIsFailure bool
}

// NewActionsWriter wraps out. A nil annotations writer disables workflow commands.
func NewActionsWriter(out io.Writer, annotations io.Writer) *ActionsWriter {
	return &ActionsWriter{out: out, annotations: annotations}
}

func (w *ActionsWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	isFailure := w.nextIsFailure
	w.nextIsFailure = false
	out, annotations := w.out, w.annotations
	w.mu.Unlock()

	if !isFailure || len(p) == 0 {
		return out.Write(p)
	}

	var logEntry map[string]interface{}
	if err := json.Unmarshal(p, &logEntry); err != nil {
		return out.Write(p)
	}
	delete(logEntry, failureMarker)

	newBytes, err := json.Marshal(logEntry)
	if err != nil {
		return out.Write(p)
	}
	if _, err := out.Write(append(newBytes, '\n')); err != nil {
		return 0, err
	}

	if annotations != nil {
		msg, _ := logEntry[zerolog.MessageFieldName].(string)
		if _, err := io.WriteString(annotations, "::error::"+escapeCommandData(msg)+"\n"); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

func (w *ActionsWriter) markNextAsFailure() {
	w.mu.Lock()
	w.nextIsFailure = true
	w.mu.Unlock()
}

func (w *ActionsWriter) SetOutput(out io.Writer) {
	w.mu.Lock()
	w.out = out
	w.mu.Unlock()
}

func (w *ActionsWriter) SetAnnotations(annotations io.Writer) {
	w.mu.Lock()
	w.annotations = annotations
	w.mu.Unlock()
}

// escapeCommandData escapes a workflow command payload.
func escapeCommandData(s string) string {
	return strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A").Replace(s)
}

// FailureEvent wraps a zerolog.Event logged at error level and annotated for the CI runner.
type FailureEvent struct {
	event  *zerolog.Event
	writer *ActionsWriter
}

func (f *FailureEvent) Str(key, val string) *FailureEvent {
	f.event.Str(key, val)
	return f
}

func (f *FailureEvent) Int(key string, val int) *FailureEvent {
	f.event.Int(key, val)
	return f
}

func (f *FailureEvent) Err(err error) *FailureEvent {
	f.event.Err(err)
	return f
}

func (f *FailureEvent) Msg(msg string) {
	if f.writer != nil {
		f.writer.markNextAsFailure()
	}
	f.event.Bool(failureMarker, true).Msg(msg)
}

var (
	globalActionsWriter *ActionsWriter
	globalWriterMu      sync.RWMutex
)

// SetGlobalActionsWriter registers the writer the global logger writes to.
func SetGlobalActionsWriter(writer *ActionsWriter) {
	globalWriterMu.Lock()
	globalActionsWriter = writer
	globalWriterMu.Unlock()
}

// Failed starts an error event that is also reported as a workflow error annotation.
// Example: logging.Failed().Int("exitCode", 2).Msg("Workflow failed! ...")
func Failed() *FailureEvent {
	globalWriterMu.RLock()
	writer := globalActionsWriter
	globalWriterMu.RUnlock()

	return &FailureEvent{
		event:  log.WithLevel(zerolog.ErrorLevel),
		writer: writer,
	}
}
