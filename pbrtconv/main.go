// Command pbrtconv parses a PBRT v3 scene file, reports its diagnostics and
// prints a summary of what it contains.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/muesli/termenv"

	"github.com/df07/pbrt-scene/config"
	"github.com/df07/pbrt-scene/diag"
	"github.com/df07/pbrt-scene/preview"
	"github.com/df07/pbrt-scene/scene"
)

const usage = "usage: pbrtconv [flags] input.pbrt [output]"

// watchDelay collapses the bursts of events editors produce on save
const watchDelay = 150 * time.Millisecond

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, rest, err := config.Load("pbrtconv", args, os.Getenv, func(c *config.Config, fs *flag.FlagSet) {
		fs.SetOutput(stderr)
		c.BindFlags(fs)
	})
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "pbrtconv: %v\n", err)
		}
		fmt.Fprintln(stderr, usage)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "pbrtconv: invalid configuration: %v\n", err)
		return 1
	}
	if len(rest) < 1 || len(rest) > 2 {
		fmt.Fprintln(stderr, usage)
		return 1
	}
	input := rest[0]
	if len(rest) == 2 {
		cfg.Output = rest[1]
	}

	sink := newSink(cfg, stderr)
	if !cfg.Watch {
		convert(cfg, input, sink, stdout, stderr)
		return 0
	}
	if err := watch(ctx, cfg, input, sink, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "pbrtconv: %v\n", err)
		return 1
	}
	return 0
}

// banner announces a parse on w
func banner(w io.Writer, input string) {
	out := termenv.NewOutput(w)
	rule := "--------------------------------------------------"
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, out.String("INFO").Foreground(termenv.ANSIGreen).Bold().String()+" parsing scene "+input)
	fmt.Fprintln(w, rule)
}

// newSink builds the diagnostics sink. Progress lines go to stderr without
// timestamps so they line up with the warnings.
func newSink(cfg *config.Config, stderr io.Writer) *diag.Sink {
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
	return diag.NewSink(stderr, append(cfg.SinkOptions(), diag.WithLogger(logger))...)
}

// convert parses input once and writes the results. Scene errors are
// reported, not returned. Messages from an earlier run are dropped first.
func convert(cfg *config.Config, input string, sink *diag.Sink, stdout, stderr io.Writer) {
	sink.Reset()
	banner(stderr, input)

	st, ok := scene.ParseFile(input, cfg.Env(sink))
	if ok {
		cfg.Convert(st.Options(), sink)
	}
	summary := scene.Summarize(st.Options())

	if err := writeSummary(cfg, summary, stdout); err != nil {
		sink.Errorf("unable to write summary: %v", err)
	}
	if ok && !cfg.NoConvert && cfg.Preview != "" {
		if err := writePreview(cfg, st.Options()); err != nil {
			sink.Errorf("unable to write preview %s: %v", cfg.Preview, err)
		} else {
			log.Printf("Wrote preview to %s", cfg.Preview)
		}
	}

	sink.Summary(stderr)
}

// writeSummary prints the summary, or exports it to the output file unless
// conversion is turned off
func writeSummary(cfg *config.Config, summary scene.Summary, stdout io.Writer) error {
	if cfg.Output == "" || cfg.NoConvert {
		return summary.Write(stdout, cfg.Format)
	}
	f, err := os.Create(cfg.Output)
	if err != nil {
		return err
	}
	if err := summary.Write(f, cfg.Format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writePreview(cfg *config.Config, ro *scene.RenderOptions) error {
	f, err := os.Create(cfg.Preview)
	if err != nil {
		return err
	}
	if err := preview.WritePNG(f, ro, preview.DefaultOptions(cfg.PreviewWidth)); err != nil {
		f.Close()
		os.Remove(cfg.Preview)
		return err
	}
	return f.Close()
}

// watch converts input, then again after every change in its directory,
// until ctx is done
func watch(ctx context.Context, cfg *config.Config, input string, sink *diag.Sink, stdout, stderr io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(input)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	ignored := map[string]bool{}
	for _, p := range []string{cfg.Output, cfg.Preview} {
		if p != "" {
			if abs, err := filepath.Abs(p); err == nil {
				ignored[abs] = true
			}
		}
	}

	convert(cfg, input, sink, stdout, stderr)
	log.Printf("Watching %s for changes", dir)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if abs, err := filepath.Abs(event.Name); err == nil && ignored[abs] {
				continue
			}
			pending = time.After(watchDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watch error: %v", err)
		case <-pending:
			pending = nil
			convert(cfg, input, sink, stdout, stderr)
		}
	}
}
