package profiler

import (
	"strings"
	"testing"
	"time"

	"github.com/emberforge/ember-go/engine/renderer"
)

type captureSink struct {
	lines []string
}

func (s *captureSink) Debugf(format string, args ...any) {
	s.lines = append(s.lines, format)
}
func (s *captureSink) Warnf(string, ...any)  {}
func (s *captureSink) Errorf(string, ...any) {}

func TestTickReportsOnlyAfterInterval(t *testing.T) {
	sink := &captureSink{}
	p := NewProfiler(WithInterval(time.Hour), WithLogSink(sink))

	for i := 0; i < 10; i++ {
		if p.Tick(renderer.Stats{DrawCalls: 5}) {
			t.Fatal("Tick reported before the interval elapsed")
		}
	}
	if len(sink.lines) != 0 {
		t.Errorf("sink received %d lines before the interval elapsed", len(sink.lines))
	}
}

func TestTickReportsAfterInterval(t *testing.T) {
	sink := &captureSink{}
	p := NewProfiler(WithInterval(time.Nanosecond), WithLogSink(sink))

	time.Sleep(time.Millisecond)
	if !p.Tick(renderer.Stats{DrawCalls: 3, TriangleCount: 900, ShadowPasses: 1}) {
		t.Fatal("Tick did not report after the interval elapsed")
	}
	if len(sink.lines) != 1 || !strings.Contains(sink.lines[0], "fps") {
		t.Errorf("unexpected report output: %v", sink.lines)
	}

	// Counters reset after a report.
	if p.frameCount != 0 || p.drawCalls != 0 || p.triangles != 0 || p.shadowPasses != 0 {
		t.Error("per-interval counters not reset after reporting")
	}
}
