package diag

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSink(buf *bytes.Buffer, opts ...Option) *Sink {
	return NewSink(buf, append([]Option{WithPlainText()}, opts...)...)
}

func TestSinkDedupes(t *testing.T) {
	var buf bytes.Buffer
	s := newTestSink(&buf)
	s.Warningf("shape %s not yet implemented. Will be ignored", "cone")
	s.Warningf("shape %s not yet implemented. Will be ignored", "cone")
	s.Errorf("texture %s unknown", "foo")

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, LevelError, entries[0].Level)
	assert.Equal(t, "shape cone not yet implemented. Will be ignored", entries[1].Message)
	assert.Equal(t, 2, entries[1].Count)
	assert.Equal(t, 2, strings.Count(buf.String(), "WARNING: shape cone"))
	assert.True(t, s.HasErrors())
}

func TestSinkCapsRepeats(t *testing.T) {
	var buf bytes.Buffer
	s := newTestSink(&buf, WithMaxRepeats(3))
	for i := 0; i < 8; i++ {
		s.Infof("same")
	}
	assert.Equal(t, 3, strings.Count(buf.String(), "INFO: same"))
	assert.Equal(t, 8, s.Count(LevelInfo))
}

func TestSinkSilent(t *testing.T) {
	var buf bytes.Buffer
	s := newTestSink(&buf, WithSilent(true))
	s.Warningf("quiet")
	s.Infof("quiet")
	s.Progressf("quiet")
	s.Errorf("loud")
	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "ERROR: loud")
	assert.Equal(t, 1, s.Count(LevelWarning))
}

func TestSinkSummary(t *testing.T) {
	var buf bytes.Buffer
	s := newTestSink(&buf)
	s.Errorf("e1")
	s.Errorf("e1")
	s.Warningf("w1")

	var sum bytes.Buffer
	s.Summary(&sum)
	assert.Equal(t, "ERRORS (2):\n(2) e1\nWARNINGS (1):\n(1) w1\n", sum.String())
}

func TestSinkOnReport(t *testing.T) {
	var got []Entry
	s := Discard()
	WithOnReport(func(e Entry) { got = append(got, e) })(s)
	s.Warningf("a")
	s.Warningf("a")
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[1].Count)
}

func TestSinkLoggerAndThrottle(t *testing.T) {
	var buf, logged bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logged, nil))
	s := newTestSink(&buf, WithLogger(logger))
	s.Progressf("made texture %s", "wood")
	for i := 0; i < 50; i++ {
		s.Throttledf("object instance %s", "tree")
	}
	assert.Empty(t, buf.String())
	assert.Contains(t, logged.String(), "made texture wood")
	assert.Equal(t, 1, strings.Count(logged.String(), "object instance tree"))
}

func TestSinkReset(t *testing.T) {
	var buf bytes.Buffer
	s := newTestSink(&buf)
	s.Errorf("e1")
	s.Warningf("w1")
	require.True(t, s.HasErrors())

	s.Reset()
	assert.Empty(t, s.Entries())
	assert.False(t, s.HasErrors())

	s.Warningf("w1")
	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Count)
}

func TestSuggest(t *testing.T) {
	vocab := []string{"trianglemesh", "sphere", "plymesh"}
	s, ok := Suggest("trianglemsh", vocab)
	require.True(t, ok)
	assert.Equal(t, "trianglemesh", s)

	_, ok = Suggest("xyz", vocab)
	assert.False(t, ok)
	assert.Equal(t, ` (did you mean "sphere"?)`, DidYouMean("spere", vocab))
}
