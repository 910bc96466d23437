package wpe

import (
	"fmt"
	"io"
	"os"
	"sync"
	"unicode/utf8"
)

// MaxReportLen bounds the length of a single diagnostic message in bytes.
// Longer messages are truncated.
const MaxReportLen = 512

// Reporter writes operator-facing diagnostics. On Windows each message is
// also shown in a modal message box, since nobody watches stderr there.
type Reporter struct {
	mu         sync.Mutex
	w          io.Writer
	messageBox bool
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithMessageBox enables or disables the modal message box duplicate.
// It is enabled by default and only has an effect on Windows.
func WithMessageBox(enabled bool) ReporterOption {
	return func(r *Reporter) {
		r.messageBox = enabled
	}
}

// NewReporter returns a Reporter writing to w, or to stderr if w is nil.
func NewReporter(w io.Writer, opts ...ReporterOption) *Reporter {
	if w == nil {
		w = os.Stderr
	}
	r := &Reporter{w: w, messageBox: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reportf formats and emits a diagnostic. Write errors are ignored.
func (r *Reporter) Reportf(format string, args ...any) {
	msg := truncateReport(fmt.Sprintf(format, args...))

	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(r.w, msg)
	if r.messageBox {
		showMessageBox(msg)
	}
}

func truncateReport(msg string) string {
	if len(msg) <= MaxReportLen {
		return msg
	}
	n := MaxReportLen
	for n > 0 && !utf8.RuneStart(msg[n]) {
		n--
	}
	return msg[:n]
}
