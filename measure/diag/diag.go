package diag

import (
	"fmt"
	"math"
)

const (
	// DefaultFlushIntervalMs is the reporting period.
	DefaultFlushIntervalMs = 250

	// ClipLevel is the magnitude above which a pre-limiter sample clips.
	ClipLevel = 1.0
	// ClickThreshold is the sample-to-sample jump counted as a click.
	ClickThreshold = 0.5
)

// Source names a per-source peak slot.
type Source int

const (
	SourceVoices Source = iota
	SourceDrums
	SourceSampler
	SourceDelay
	SourceLooper
	SourceTape

	// NumSources is the number of Source slots.
	NumSources
)

func (s Source) String() string {
	switch s {
	case SourceVoices:
		return "voices"
	case SourceDrums:
		return "drums"
	case SourceSampler:
		return "sampler"
	case SourceDelay:
		return "delay"
	case SourceLooper:
		return "looper"
	case SourceTape:
		return "tape"
	default:
		return "unknown"
	}
}

// Report summarises one flush period.
type Report struct {
	// PeriodMs is the wall time covered, from the previous flush.
	PeriodMs int64
	// Samples counts pre-limiter observations.
	Samples int64

	PrePeak  float64
	PostPeak float64

	Clips     int64
	Clicks int64
	// NonFinite counts NaN or Inf pre-limiter samples. The other taps skip
	// them so one bad sample is counted once.
	NonFinite int64
	// DCOffset is the mean of finite pre-limiter samples.
	DCOffset float64

	SourcePeaks [NumSources]float64
}

// Healthy reports whether the period saw no clips, clicks or non-finite
// samples.
func (r Report) Healthy() bool {
	return r.Clips == 0 && r.Clicks == 0 && r.NonFinite == 0
}

// Reporter receives every flushed Report.
type Reporter interface {
	Publish(r Report)
}

// Option configures a Diagnostics.
type Option func(*config) error

type config struct {
	intervalMs int64
	enabled    bool
	reporters  []Reporter
}

// WithFlushInterval sets the reporting period in milliseconds.
func WithFlushInterval(ms int64) Option {
	return func(cfg *config) error {
		if ms <= 0 {
			return fmt.Errorf("diagnostics flush interval must be > 0: %d", ms)
		}
		cfg.intervalMs = ms
		return nil
	}
}

// WithEnabled sets the initial enabled state. The default is disabled.
func WithEnabled(enabled bool) Option {
	return func(cfg *config) error {
		cfg.enabled = enabled
		return nil
	}
}

// WithReporter adds a sink for flushed reports.
func WithReporter(r Reporter) Option {
	return func(cfg *config) error {
		if r == nil {
			return fmt.Errorf("diagnostics reporter must not be nil")
		}
		cfg.reporters = append(cfg.reporters, r)
		return nil
	}
}

// Diagnostics is a purely observational accumulator. It never alters the
// signal it is shown.
type Diagnostics struct {
	enabled    bool
	intervalMs int64
	reporters  []Reporter

	started   bool
	lastFlush int64

	samples   int64
	prePeak   float64
	postPeak  float64
	clips     int64
	clicks    int64
	nonFinite int64
	dcSum     float64
	prev      float64
	havePrev  bool
	sources   [NumSources]float64

	last Report
}

// New creates a Diagnostics.
func New(opts ...Option) (*Diagnostics, error) {
	cfg := config{intervalMs: DefaultFlushIntervalMs}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Diagnostics{
		enabled:    cfg.enabled,
		intervalMs: cfg.intervalMs,
		reporters:  cfg.reporters,
	}, nil
}

// Enable toggles accumulation. Any change of state discards partial data
// and restarts the flush clock.
func (d *Diagnostics) Enable(enabled bool) {
	if d.enabled == enabled {
		return
	}
	d.enabled = enabled
	d.reset()
	d.started = false
	d.prev = 0
	d.havePrev = false
}

// Enabled reports whether observations are recorded.
func (d *Diagnostics) Enabled() bool { return d.enabled }

// FlushIntervalMs returns the reporting period.
func (d *Diagnostics) FlushIntervalMs() int64 { return d.intervalMs }

// ObservePreLimiter records one master-bus sample before the limiter.
func (d *Diagnostics) ObservePreLimiter(x float64) {
	if !d.enabled {
		return
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		d.nonFinite++
		return
	}

	d.samples++
	a := math.Abs(x)
	if a > d.prePeak {
		d.prePeak = a
	}
	if a > ClipLevel {
		d.clips++
	}
	if d.havePrev && math.Abs(x-d.prev) > ClickThreshold {
		d.clicks++
	}
	d.prev = x
	d.havePrev = true
	d.dcSum += x
}

// ObservePostLimiter records one master-bus sample after the limiter.
func (d *Diagnostics) ObservePostLimiter(x float64) {
	if !d.enabled || math.IsNaN(x) || math.IsInf(x, 0) {
		return
	}
	if a := math.Abs(x); a > d.postPeak {
		d.postPeak = a
	}
}

// ObserveSource records one sample of a mixer source.
func (d *Diagnostics) ObserveSource(src Source, x float64) {
	if !d.enabled || src < 0 || src >= NumSources {
		return
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return
	}
	if a := math.Abs(x); a > d.sources[src] {
		d.sources[src] = a
	}
}

// ObserveBlock records matching pre- and post-limiter buffers. Either may be
// nil.
func (d *Diagnostics) ObserveBlock(pre, post []float64) {
	if !d.enabled {
		return
	}
	for _, x := range pre {
		d.ObservePreLimiter(x)
	}
	for _, x := range post {
		d.ObservePostLimiter(x)
	}
}

// ObserveSourceBlock records a buffer of one mixer source.
func (d *Diagnostics) ObserveSourceBlock(src Source, buf []float64) {
	if !d.enabled {
		return
	}
	for _, x := range buf {
		d.ObserveSource(src, x)
	}
}

// Snapshot returns the statistics accumulated so far without resetting.
func (d *Diagnostics) Snapshot() Report {
	r := Report{
		Samples:     d.samples,
		PrePeak:     d.prePeak,
		PostPeak:    d.postPeak,
		Clips:       d.clips,
		Clicks:      d.clicks,
		NonFinite:   d.nonFinite,
		SourcePeaks: d.sources,
	}
	if d.samples > 0 {
		r.DCOffset = d.dcSum / float64(d.samples)
	}
	return r
}

// Last returns the most recently flushed report.
func (d *Diagnostics) Last() Report { return d.last }

// FlushIfReady emits a report when at least one flush interval has passed
// since the previous flush. The first call only starts the clock. It
// returns the report and true when a flush happened; accumulators are reset
// after every flush, except the previous sample used for click detection.
func (d *Diagnostics) FlushIfReady(nowMs int64) (Report, bool) {
	if !d.enabled {
		return Report{}, false
	}
	if !d.started {
		d.started = true
		d.lastFlush = nowMs
		return Report{}, false
	}
	elapsed := nowMs - d.lastFlush
	if elapsed < d.intervalMs {
		return Report{}, false
	}

	r := d.Snapshot()
	r.PeriodMs = elapsed
	d.lastFlush = nowMs
	d.last = r
	d.reset()

	for _, rep := range d.reporters {
		rep.Publish(r)
	}
	return r, true
}

func (d *Diagnostics) reset() {
	d.samples = 0
	d.prePeak = 0
	d.postPeak = 0
	d.clips = 0
	d.clicks = 0
	d.nonFinite = 0
	d.dcSum = 0
	d.sources = [NumSources]float64{}
}
