package quickscroll

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/hazyhaar/quickscroll/internal/report"
)

// Report is one collection result.
type Report = report.Report

// Sink is the output interface for reports.
type Sink = report.Sink

// NewStdoutSink creates a JSON-lines sink on w (os.Stdout when nil).
func NewStdoutSink(w io.Writer) Sink {
	return report.NewStdout(w)
}

// NewWebhookSink creates a webhook POST sink with retry.
func NewWebhookSink(url string, retries int, logger *slog.Logger) Sink {
	return report.NewWebhook(url, report.WithWebhookRetries(retries), report.WithWebhookLogger(logger))
}

// NewSinks builds the sinks listed in cfg; stdout ones write to w.
func NewSinks(cfg *Config, w io.Writer, logger *slog.Logger) (Sink, error) {
	var out report.Multi
	for i, sc := range cfg.Sinks {
		switch sc.Type {
		case "stdout":
			out = append(out, NewStdoutSink(w))
		case "webhook":
			out = append(out, NewWebhookSink(sc.URL, sc.Retries, logger))
		default:
			return nil, fmt.Errorf("quickscroll: sinks[%d]: unknown type %q", i, sc.Type)
		}
	}
	return out, nil
}
