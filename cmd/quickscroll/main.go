// Command quickscroll lists the user's own messages on a ChatGPT or Gemini
// conversation and adds a quick-scroll panel to the page.
//
// Usage:
//
//	quickscroll -url https://chatgpt.com/c/...            # interactive browser session
//	quickscroll -url ... -http 127.0.0.1:7070             # plus the local inspect API
//	quickscroll -url ... -mcp                             # plus MCP tools over stdio
//	quickscroll -scan https://gemini.google.com/app/...   # headless one-shot
//	quickscroll -file saved.html -site chatgpt            # saved page
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/quickscroll"
)

const version = "0.1.0"

type options struct {
	configPath string
	url        string
	scan       string
	file       string
	site       string
	httpAddr   string
	mcp        bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "path to quickscroll.yaml config file")
	flag.StringVar(&o.url, "url", "", "open a conversation in a browser window and attach the panel")
	flag.StringVar(&o.scan, "scan", "", "list the messages of a conversation headlessly and exit")
	flag.StringVar(&o.file, "file", "", "list the messages of a saved HTML page and exit")
	flag.StringVar(&o.site, "site", "", "site adapter for -file: chatgpt | gemini")
	flag.StringVar(&o.httpAddr, "http", "", "serve the inspect API on this address (with -url)")
	flag.BoolVar(&o.mcp, "mcp", false, "serve MCP tools over stdio (with -url)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, o); err != nil {
		logger.Error("quickscroll: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, o options) error {
	cfg := quickscroll.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = quickscroll.LoadConfigFile(o.configPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	if o.httpAddr == "" {
		o.httpAddr = cfg.HTTP.Addr
	}

	// MCP owns stdout; reports then go to the other sinks only.
	if o.mcp {
		kept := cfg.Sinks[:0]
		for _, sc := range cfg.Sinks {
			if sc.Type != "stdout" {
				kept = append(kept, sc)
			}
		}
		cfg.Sinks = kept
	}
	sink, err := quickscroll.NewSinks(cfg, os.Stdout, logger)
	if err != nil {
		return err
	}
	defer sink.Close()

	switch {
	case o.file != "":
		return runFile(ctx, sink, cfg, o)
	case o.scan != "":
		return runScan(ctx, logger, sink, cfg, o.scan)
	case o.url != "":
		return runSession(ctx, logger, sink, cfg, o)
	}

	fmt.Fprintln(os.Stderr, "usage: quickscroll -url <url> [-http addr] [-mcp] | -scan <url> | -file <page.html> -site <name>")
	os.Exit(2)
	return nil
}

func runFile(ctx context.Context, sink quickscroll.Sink, cfg *quickscroll.Config, o options) error {
	a, err := quickscroll.AdapterFor(o.site, o.url, cfg)
	if err != nil {
		return err
	}
	f, err := os.Open(o.file)
	if err != nil {
		return err
	}
	defer f.Close()

	msgs, err := quickscroll.ExtractHTML(f, a)
	if err != nil {
		return err
	}
	return sink.Send(ctx, quickscroll.Report{
		URL:       "file://" + o.file,
		Site:      a.Name(),
		Timestamp: time.Now().UnixMilli(),
		Messages:  msgs,
	})
}

func runScan(ctx context.Context, logger *slog.Logger, sink quickscroll.Sink, cfg *quickscroll.Config, url string) error {
	rep, err := quickscroll.Scan(ctx, url, cfg, logger)
	if err != nil {
		return err
	}
	return sink.Send(ctx, rep)
}

func runSession(ctx context.Context, logger *slog.Logger, sink quickscroll.Sink, cfg *quickscroll.Config, o options) error {
	sess, err := quickscroll.Open(ctx, o.url, cfg, logger)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer sess.Close()
	nav := sess.Navigator()

	if o.httpAddr != "" {
		srv := &http.Server{Addr: o.httpAddr, Handler: nav.Routes()}
		go func() {
			logger.Info("quickscroll: http listening", "addr", o.httpAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("quickscroll: http", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	if o.mcp {
		mcpSrv := mcp.NewServer(&mcp.Implementation{Name: "quickscroll", Version: version}, nil)
		nav.RegisterMCP(mcpSrv)
		go func() {
			if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				logger.Error("quickscroll: mcp", "error", err)
			}
		}()
	}

	<-ctx.Done()

	// Final report of what the conversation held when the session ended.
	reportCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rep, err := sess.Report(reportCtx)
	if err != nil {
		logger.Warn("quickscroll: final report", "error", err)
		return nil
	}
	return sink.Send(reportCtx, rep)
}
