// Package diag collects the warnings, errors and infos raised while a scene
// is parsed. Repeated messages are counted instead of stored twice, printing
// stops after a message was shown a fixed number of times, and a summary of
// everything is available at the end of a run.
package diag

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/muesli/termenv"
)

// DefaultMaxRepeats is how many times the same message is printed
const DefaultMaxRepeats = 10

// Reporter receives diagnostics from the parser and the scene builder
type Reporter interface {
	Warningf(format string, args ...any)
	Errorf(format string, args ...any)
	Infof(format string, args ...any)
	// Progressf reports runtime progress that is not retained
	Progressf(format string, args ...any)
	// Throttledf is Progressf for messages repeated in a loop
	Throttledf(format string, args ...any)
}

// Level classifies a retained message
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// MarshalText lets JSON and YAML encoders print the level name
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Entry is one distinct message and how often it was reported
type Entry struct {
	Level   Level  `json:"level" yaml:"level"`
	Message string `json:"message" yaml:"message"`
	Count   int    `json:"count" yaml:"count"`
}

// Sink is the Reporter used by the command line and the server. It is safe
// for concurrent use.
type Sink struct {
	mu         sync.Mutex
	w          io.Writer
	profile    termenv.Profile
	logger     *slog.Logger
	silent     bool
	maxRepeats int
	onReport   func(Entry)

	entries  [3][]*Entry
	index    map[Level]map[string]*Entry
	lastSpam time.Time
}

// Option configures a Sink
type Option func(*Sink)

// WithSilent suppresses warnings, infos and progress output.
// Errors are still printed.
func WithSilent(silent bool) Option {
	return func(s *Sink) { s.silent = silent }
}

// WithMaxRepeats sets how often the same message is printed
func WithMaxRepeats(n int) Option {
	return func(s *Sink) {
		if n > 0 {
			s.maxRepeats = n
		}
	}
}

// WithLogger routes progress messages to logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sink) { s.logger = logger }
}

// WithPlainText disables terminal colors
func WithPlainText() Option {
	return func(s *Sink) {
		s.profile = termenv.Ascii
	}
}

// WithOnReport registers a callback that receives every retained message
// as it is reported, including the ones no longer printed
func WithOnReport(fn func(Entry)) Option {
	return func(s *Sink) { s.onReport = fn }
}

// NewSink creates a sink printing to w
func NewSink(w io.Writer, opts ...Option) *Sink {
	s := &Sink{
		w:          w,
		profile:    termenv.NewOutput(w).Profile,
		maxRepeats: DefaultMaxRepeats,
		index:      make(map[Level]map[string]*Entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(w, nil))
	}
	return s
}

// Discard returns a silent sink that still counts messages
func Discard() *Sink {
	return NewSink(io.Discard, WithSilent(true), WithPlainText())
}

func (s *Sink) Warningf(format string, args ...any) {
	s.report(LevelWarning, fmt.Sprintf(format, args...))
}

func (s *Sink) Errorf(format string, args ...any) {
	s.report(LevelError, fmt.Sprintf(format, args...))
}

func (s *Sink) Infof(format string, args ...any) {
	s.report(LevelInfo, fmt.Sprintf(format, args...))
}

func (s *Sink) Progressf(format string, args ...any) {
	if s.silent {
		return
	}
	s.logger.Info(fmt.Sprintf(format, args...))
}

// Throttledf is Progressf limited to one message every 200ms, for loops
// that would otherwise flood the console
func (s *Sink) Throttledf(format string, args ...any) {
	s.mu.Lock()
	now := time.Now()
	if now.Sub(s.lastSpam) < 200*time.Millisecond {
		s.mu.Unlock()
		return
	}
	s.lastSpam = now
	s.mu.Unlock()
	s.Progressf(format, args...)
}

func (s *Sink) report(level Level, msg string) {
	s.mu.Lock()
	byMsg := s.index[level]
	if byMsg == nil {
		byMsg = make(map[string]*Entry)
		s.index[level] = byMsg
	}
	e, ok := byMsg[msg]
	if !ok {
		e = &Entry{Level: level, Message: msg}
		byMsg[msg] = e
		s.entries[level] = append(s.entries[level], e)
	}
	e.Count++
	snapshot := *e
	display := e.Count <= s.maxRepeats && (level == LevelError || !s.silent)
	if display {
		fmt.Fprintln(s.w, colorize(s.profile, level, level.String()+": "+msg))
	}
	onReport := s.onReport
	s.mu.Unlock()

	if onReport != nil {
		onReport(snapshot)
	}
}

func colorize(p termenv.Profile, level Level, text string) string {
	var c termenv.Color
	switch level {
	case LevelWarning:
		c = p.Color("11")
	case LevelError:
		c = p.Color("9")
	default:
		c = p.Color("10")
	}
	return p.String(text).Foreground(c).String()
}

// Entries returns a copy of all retained messages: errors first, then
// warnings, then infos, each in first-seen order
func (s *Sink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Entry
	for _, level := range []Level{LevelError, LevelWarning, LevelInfo} {
		for _, e := range s.entries[level] {
			out = append(out, *e)
		}
	}
	return out
}

// Count returns the total number of reports at level, repeats included
func (s *Sink) Count(level Level) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, e := range s.entries[level] {
		total += e.Count
	}
	return total
}

// HasErrors reports whether any error was reported
func (s *Sink) HasErrors() bool {
	return s.Count(LevelError) > 0
}

// Reset forgets every retained message
func (s *Sink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = [3][]*Entry{}
	s.index = make(map[Level]map[string]*Entry)
	s.lastSpam = time.Time{}
}

// Summary writes the end-of-run report. Empty categories are left out.
func (s *Sink) Summary(w io.Writer) {
	titles := map[Level]string{LevelError: "ERRORS", LevelWarning: "WARNINGS", LevelInfo: "INFOS"}
	entries := s.Entries()
	for _, level := range []Level{LevelError, LevelWarning, LevelInfo} {
		total := 0
		for _, e := range entries {
			if e.Level == level {
				total += e.Count
			}
		}
		if total == 0 {
			continue
		}
		fmt.Fprintln(w, colorize(s.profile, level, fmt.Sprintf("%s (%d):", titles[level], total)))
		for _, e := range entries {
			if e.Level == level {
				fmt.Fprintf(w, "(%d) %s\n", e.Count, e.Message)
			}
		}
	}
}
