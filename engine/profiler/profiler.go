package profiler

import (
	"runtime"
	"time"

	"github.com/emberforge/ember-go/common"
	"github.com/emberforge/ember-go/engine/renderer"
)

// Profiler tracks frame rate, renderer load, and memory statistics.
// Stats are written to the configured log sink at a fixed interval.
type Profiler struct {
	sink           common.LogSink
	updateInterval time.Duration

	frameCount     int
	lastTime       time.Time
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	drawCalls    int
	triangles    int
	shadowPasses int
}

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often accumulated stats are logged.
//
// Parameters:
//   - interval: the reporting interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(interval time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithLogSink sets the sink stats are written to.
//
// Parameters:
//   - sink: the log sink
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithLogSink(sink common.LogSink) ProfilerBuilderOption {
	return func(p *Profiler) {
		if sink != nil {
			p.sink = sink
		}
	}
}

// NewProfiler creates a Profiler. The reporting interval defaults to one
// second and output goes to the standard sink.
//
// Parameters:
//   - options: functional options configuring the profiler
//
// Returns:
//   - *Profiler: the configured profiler
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		sink:           common.StdSink(),
		updateInterval: time.Second,
		lastTime:       time.Now(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// Tick records one rendered frame and logs accumulated statistics once the
// reporting interval has elapsed. The report covers FPS, per-frame renderer
// averages, heap usage, allocation rate, and GC pause times.
//
// Parameters:
//   - stats: the renderer's stats for the frame just rendered
//
// Returns:
//   - bool: true if stats were logged this tick
func (p *Profiler) Tick(stats renderer.Stats) bool {
	p.frameCount++
	p.drawCalls += stats.DrawCalls
	p.triangles += stats.TriangleCount
	p.shadowPasses += stats.ShadowPasses

	now := time.Now()
	elapsed := now.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()
	avgDraws := float64(p.drawCalls) / float64(p.frameCount)
	avgTris := float64(p.triangles) / float64(p.frameCount)
	avgShadow := float64(p.shadowPasses) / float64(p.frameCount)

	runtime.ReadMemStats(&p.memStats)
	heapMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	p.sink.Debugf("profiler: fps %.2f | draws/frame %.1f | tris/frame %.0f | shadow passes/frame %.1f | heap %.2f MB | alloc %.2f MB/s | gc %d (last %d µs, max %d µs)",
		fps, avgDraws, avgTris, avgShadow, heapMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs)

	p.frameCount = 0
	p.drawCalls = 0
	p.triangles = 0
	p.shadowPasses = 0
	p.lastTime = now
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
