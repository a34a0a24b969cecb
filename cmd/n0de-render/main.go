// Command n0de-render renders a n0de script to an SVG document.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/chazu/n0de/pkg/geom"
	"github.com/chazu/n0de/pkg/margins"
	"go.uber.org/zap"
)

var (
	outputFile  = flag.String("o", "", "Output file (default: stdout)")
	width       = flag.Float64("w", 800, "Viewport width")
	height      = flag.Float64("h", 600, "Viewport height")
	marginsFile = flag.String("margins", "", "YAML margins table (default: built-in table)")
	watch       = flag.Bool("watch", false, "Re-render whenever the margins file changes (needs -margins and -o)")
	serve       = flag.String("serve", "", "Start HTTP server on specified address (e.g., ':8080')")
	verbose     = flag.Bool("v", false, "Verbose logging")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `n0de-render - Render n0de scripts to SVG

Usage:
  n0de-render [options] [script.n0de]

If no script is specified, reads from stdin.

Options:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  n0de-render examples/adder.n0de > adder.svg
  n0de-render -w 1024 -h 768 -o adder.svg examples/adder.n0de
  n0de-render -margins margins.yaml -watch -o adder.svg examples/adder.n0de

Server mode:
  n0de-render -serve :8080
  curl -X POST --data-binary @examples/adder.n0de 'http://localhost:8080/render?w=640&h=480'
`)
	}
	flag.Parse()

	logger := newLogger(*verbose)
	defer logger.Sync()

	if err := run(logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func run(logger *zap.Logger) error {
	table := margins.Default()
	if *marginsFile != "" {
		t, err := margins.Load(*marginsFile)
		if err != nil {
			return err
		}
		table = t
	}
	r := newRenderer(table, logger)
	size := geom.S(*width, *height)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *serve != "" {
		if *watch && *marginsFile != "" {
			if err := margins.Watch(ctx, *marginsFile, r.setTable, logger); err != nil {
				return err
			}
		}
		return runServer(ctx, r, size, *serve)
	}

	source, err := readInput(flag.Arg(0))
	if err != nil {
		return err
	}
	if err := renderTo(r, *outputFile, source, size); err != nil {
		return err
	}
	if !*watch {
		return nil
	}

	if *marginsFile == "" || *outputFile == "" {
		return fmt.Errorf("-watch needs both -margins and -o")
	}
	err = margins.Watch(ctx, *marginsFile, func(t margins.Table) {
		r.setTable(t)
		if err := renderTo(r, *outputFile, source, size); err != nil {
			logger.Error("re-render failed", zap.Error(err))
			return
		}
		logger.Info("re-rendered", zap.String("output", *outputFile))
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("watching margins", zap.String("path", *marginsFile))
	<-ctx.Done()
	return nil
}

func runServer(ctx context.Context, r *renderer, size geom.Size, addr string) error {
	e := newServer(r, size)
	go func() {
		<-ctx.Done()
		e.Close()
	}()
	r.logger.Info("starting n0de-render server", zap.String("addr", addr))
	if err := e.Start(addr); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

func readInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

// renderTo renders into memory first so a failed render never truncates
// the previous output.
func renderTo(r *renderer, path, source string, size geom.Size) error {
	var buf bytes.Buffer
	if err := r.render(&buf, source, size); err != nil {
		return err
	}
	if path == "" {
		_, err := os.Stdout.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
