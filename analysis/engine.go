package analysis

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-ephys/detect"
	"github.com/cwbudde/algo-ephys/dsp/spectrum"
	"github.com/cwbudde/algo-ephys/measure"
	"github.com/cwbudde/algo-ephys/recording"
	"github.com/cwbudde/algo-ephys/stats"
)

// Selection addresses one trace of a loaded recording: a trace index for
// flat recordings, a (channel, segment) pair for segmented ones.
type Selection struct {
	Recording *recording.Recording
	Trace     int
	Channel   int
	Segment   int
}

func (s Selection) trace() (recording.Trace, error) {
	if s.Recording == nil {
		return recording.Trace{}, ErrNoRecording
	}
	if s.Recording.IsSegmented() {
		return s.Recording.Segment(s.Channel, s.Segment)
	}
	return s.Recording.Trace(s.Trace)
}

// Params bundles the per-recompute parameter snapshot.
type Params struct {
	Processing ProcessingConfig
	Detection  detect.Config
	Units      string // measure.UnitAuto, measure.UnitMicrovolts, ...
}

// DefaultParams returns the stock parameter set: 0.2 Hz high-pass, 0.05
// prominence, 50 ms separation, 5-500 ms width acceptance, positive peaks.
func DefaultParams() Params {
	return Params{
		Processing: ProcessingConfig{
			HighpassHz:  0.2,
			NotchFreqHz: 50,
			NotchQ:      30,

			SmoothWindow: 11,
		},
		Detection: detect.Config{
			Prominence:    0.05,
			MinDistanceMS: 50,
			Polarity:      detect.Positive,
			MinWidthMS:    5,
			MaxWidthMS:    500,
		},
		Units: measure.UnitAuto,
	}
}

// Measurement holds the per-peak quantities derived from the working signal.
type Measurement struct {
	SampleIndex  int
	RelativeTime float64 // seconds within the selected trace or segment
	AbsoluteTime float64 // seconds from experiment start
	Amplitude    float64 // baseline-corrected, unit-converted
	Unit         string
	WidthMS      float64
}

// AnalysisState is one immutable recompute result. The engine swaps whole
// states; nothing mutates a published state in place.
type AnalysisState struct {
	Working    []float64
	SampleRate float64

	Candidates   []detect.Candidate
	Curated      []detect.Candidate
	Measurements []Measurement

	Unit         string
	TimingMethod string
}

// Recompute runs the full pipeline for one selection: conditioning,
// detection, width acceptance, curation masking, measurement and timing
// reconstruction. It is a pure function of its inputs.
func Recompute(sel Selection, p Params, cur *CurationState) (*AnalysisState, error) {
	tr, err := sel.trace()
	if err != nil {
		return nil, err
	}
	if tr.Len() == 0 {
		return nil, fmt.Errorf("selected trace is empty")
	}

	fs := sel.Recording.SampleRate

	working, err := Process(tr.Values, fs, p.Processing)
	if err != nil {
		return nil, fmt.Errorf("process signal: %w", err)
	}

	candidates, err := detect.Detect(working, fs, p.Detection)
	if err != nil {
		return nil, err
	}
	candidates = detect.FilterByWidth(working, candidates, fs,
		p.Detection.MinWidthMS/1000, p.Detection.MaxWidthMS/1000)

	curated := cur.Apply(candidates)

	indices := make([]int, len(curated))
	relative := make([]float64, len(curated))
	for i, cand := range curated {
		indices[i] = cand.Index
		if cand.Index < len(tr.Times) {
			relative[i] = tr.Times[cand.Index]
		} else if fs > 0 {
			relative[i] = float64(cand.Index) / fs
		}
	}

	amplitudes, unit := measure.ConvertUnits(measure.Amplitudes(working, indices, fs), p.Units)
	widths := measure.Widths(working, indices, fs)
	absolute, method := recording.AbsoluteTimes(sel.Recording, relative, sel.Segment)

	measurements := make([]Measurement, len(curated))
	for i := range curated {
		measurements[i] = Measurement{
			SampleIndex:  indices[i],
			RelativeTime: relative[i],
			AbsoluteTime: absolute[i],
			Amplitude:    amplitudes[i],
			Unit:         unit,
			WidthMS:      widths[i] * 1000,
		}
	}

	return &AnalysisState{
		Working:      working,
		SampleRate:   fs,
		Candidates:   candidates,
		Curated:      curated,
		Measurements: measurements,
		Unit:         unit,
		TimingMethod: method,
	}, nil
}

// Engine holds the current selection, parameters and curation state, and
// republishes an AnalysisState after every mutation. A failed recompute is
// logged and leaves the previously published state untouched.
type Engine struct {
	log   *zap.Logger
	cache *spectrum.Cache

	sel      Selection
	params   Params
	curation *CurationState
	state    *AnalysisState
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. The default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New returns an engine with default parameters and no recording loaded.
func New(opts ...Option) *Engine {
	e := &Engine{
		log:      zap.NewNop(),
		cache:    &spectrum.Cache{},
		params:   DefaultParams(),
		curation: NewCurationState(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load reads a recording from disk and selects its first trace (or first
// channel and segment). Curation is cleared; in-memory state is untouched
// when loading fails.
func (e *Engine) Load(path string) error {
	rec, err := recording.Load(path)
	if err != nil {
		e.log.Error("load recording", zap.String("path", path), zap.Error(err))
		return err
	}

	return e.SetRecording(rec)
}

// SetRecording replaces the active recording and recomputes.
func (e *Engine) SetRecording(rec *recording.Recording) error {
	e.sel = Selection{Recording: rec}
	e.curation.Reset()
	e.cache.Invalidate()

	e.log.Info("recording loaded",
		zap.String("source", rec.Source),
		zap.Float64("sample_rate", rec.SampleRate),
		zap.Bool("segmented", rec.IsSegmented()))

	return e.refresh()
}

// Select switches the active trace or (channel, segment) and recomputes.
// Curation is cleared: positions refer to the previous candidate array.
func (e *Engine) Select(trace, channel, segment int) error {
	e.sel.Trace = trace
	e.sel.Channel = channel
	e.sel.Segment = segment
	e.curation.Reset()

	return e.refresh()
}

// SetParams installs a new parameter snapshot and recomputes. A processing
// or detection change clears the curation state first, since the candidate
// array it indexes is replaced; a units-only change is presentational and
// keeps exclusions.
func (e *Engine) SetParams(p Params) error {
	if p.Processing != e.params.Processing || p.Detection != e.params.Detection {
		e.curation.Reset()
	}
	e.params = p

	return e.refresh()
}

// Params returns the active parameter snapshot.
func (e *Engine) Params() Params { return e.params }

// Selection returns the active selection.
func (e *Engine) Selection() Selection { return e.sel }

// Toggle flips the exclusion of one candidate position and recomputes.
func (e *Engine) Toggle(position int) error {
	e.curation.Toggle(position)
	return e.refresh()
}

// ResetCuration clears all exclusions and recomputes.
func (e *Engine) ResetCuration() error {
	e.curation.Reset()
	return e.refresh()
}

// Removed returns the number of operator-excluded candidate positions.
func (e *Engine) Removed() int { return e.curation.Count() }

// State returns the last successfully published analysis state, or nil
// before the first successful recompute.
func (e *Engine) State() *AnalysisState { return e.state }

func (e *Engine) refresh() error {
	next, err := Recompute(e.sel, e.params, e.curation)
	if err != nil {
		e.log.Warn("recompute failed, keeping previous state", zap.Error(err))
		return err
	}

	e.state = next
	e.log.Debug("recompute",
		zap.Int("candidates", len(next.Candidates)),
		zap.Int("curated", len(next.Curated)),
		zap.String("timing_method", next.TimingMethod))

	return nil
}

// Spectrogram returns the memoized spectrogram of the current working
// signal.
func (e *Engine) Spectrogram() (*spectrum.Result, error) {
	if e.state == nil {
		return nil, ErrNoRecording
	}
	return e.cache.Compute(e.state.Working, e.state.SampleRate)
}

// BandPower returns the mean spectrogram power per time bin inside
// [lowF, hiF] Hz.
func (e *Engine) BandPower(lowF, hiF float64) ([]float64, error) {
	res, err := e.Spectrogram()
	if err != nil {
		return nil, err
	}
	return spectrum.BandPower(res, lowF, hiF), nil
}

// Stats summarizes the current working signal.
func (e *Engine) Stats() (stats.Summary, error) {
	if e.state == nil {
		return stats.Summary{}, ErrNoRecording
	}
	return stats.Calculate(e.state.Working), nil
}
