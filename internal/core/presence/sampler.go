package presence

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"deepwork/internal/core/model"
)

const (
	defaultInterval  = 5 * time.Second
	defaultThreshold = 30
)

// Observer receives every sample the sampler produces.
type Observer func(Sample)

// Sampler polls a frame source at a fixed cadence and classifies each frame
// for user presence. A capture or classification failure downgrades that tick
// to an absent sample; the loop itself never stops on camera errors.
type Sampler struct {
	mu         sync.Mutex
	config     model.SamplerConfig
	source     FrameSource
	classifier Classifier
	observe    Observer
	logger     zerolog.Logger
	stopCh     chan struct{}
	running    bool
}

// NewSampler creates a Sampler with the provided collaborators.
func NewSampler(source FrameSource, classifier Classifier, config model.SamplerConfig, observe Observer, logger zerolog.Logger) *Sampler {
	if config.Interval <= 0 {
		config.Interval = defaultInterval
	}
	if config.Threshold <= 0 {
		config.Threshold = defaultThreshold
	}
	if config.Threshold > 100 {
		config.Threshold = 100
	}

	return &Sampler{
		config:     config,
		source:     source,
		classifier: classifier,
		observe:    observe,
		logger:     logger,
		stopCh:     make(chan struct{}),
	}
}

// SetThreshold adjusts the presence threshold while the sampler runs.
func (sampler *Sampler) SetThreshold(threshold float64) {
	if threshold <= 0 || threshold > 100 {
		return
	}
	sampler.mu.Lock()
	sampler.config.Threshold = threshold
	sampler.mu.Unlock()
}

// Start launches the sampling loop.
func (sampler *Sampler) Start() {
	sampler.mu.Lock()
	if sampler.running {
		sampler.mu.Unlock()
		return
	}
	sampler.running = true
	sampler.mu.Unlock()

	go sampler.run()
}

// Stop terminates the sampling loop.
func (sampler *Sampler) Stop() {
	sampler.mu.Lock()
	if !sampler.running {
		sampler.mu.Unlock()
		return
	}
	close(sampler.stopCh)
	sampler.running = false
	sampler.mu.Unlock()
}

func (sampler *Sampler) run() {
	ticker := time.NewTicker(sampler.config.Interval)
	defer ticker.Stop()

	// Sample immediately so a session that starts with nobody at the desk
	// opens its grace window right away instead of one interval later.
	sampler.sample(time.Now())

	for {
		select {
		case <-sampler.stopCh:
			return
		case tickTime := <-ticker.C:
			sampler.sample(tickTime)
		}
	}
}

func (sampler *Sampler) sample(now time.Time) {
	frame, err := sampler.source.CaptureFrame()
	if err != nil {
		sampler.logger.Warn().Err(err).Msg("frame capture failed, treating tick as absent")
		sampler.deliver(Sample{At: now})
		return
	}

	confidence, err := sampler.classifier.DetectConfidence(frame)
	if err != nil {
		sampler.logger.Warn().Err(err).Msg("classification failed, treating tick as absent")
		sampler.deliver(Sample{At: now})
		return
	}

	sample := Sample{
		At:         now,
		Confidence: confidence,
		Present:    confidence >= sampler.thresholdSnapshot(),
	}
	sampler.logger.Debug().
		Float64("confidence", sample.Confidence).
		Bool("present", sample.Present).
		Msg("presence sample")
	sampler.deliver(sample)
}

func (sampler *Sampler) deliver(sample Sample) {
	if sampler.observe == nil {
		return
	}
	sampler.observe(sample)
}

func (sampler *Sampler) thresholdSnapshot() float64 {
	sampler.mu.Lock()
	defer sampler.mu.Unlock()
	return sampler.config.Threshold
}
