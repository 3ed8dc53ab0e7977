package chime

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/generators"
	"github.com/faiface/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

var (
	initOnce sync.Once
	initErr  error
)

type tone struct {
	frequency int
	duration  time.Duration
}

// Player plays short synthesized notification tones. No audio assets are
// shipped; every tone is generated.
type Player struct {
	mu      sync.Mutex
	enabled bool
	volume  float64
}

// NewPlayer initializes the audio output once. When no audio device is
// available it returns a silent player together with the init error, so a
// session can still run without sound.
func NewPlayer(enabled bool) (*Player, error) {
	initOnce.Do(func() {
		initErr = speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	})
	if initErr != nil {
		return &Player{}, initErr
	}
	return &Player{enabled: enabled, volume: -1}, nil
}

// SetEnabled toggles playback.
func (player *Player) SetEnabled(enabled bool) {
	player.mu.Lock()
	if initErr == nil {
		player.enabled = enabled
	}
	player.mu.Unlock()
}

// Completed plays the rising two-tone completion chime.
func (player *Player) Completed() {
	player.play(
		tone{frequency: 523, duration: 180 * time.Millisecond},
		tone{frequency: 784, duration: 320 * time.Millisecond},
	)
}

// Paused plays a single low blip.
func (player *Player) Paused() {
	player.play(tone{frequency: 392, duration: 140 * time.Millisecond})
}

// Resumed plays a single high blip.
func (player *Player) Resumed() {
	player.play(tone{frequency: 659, duration: 140 * time.Millisecond})
}

func (player *Player) play(tones ...tone) {
	player.mu.Lock()
	enabled := player.enabled
	volume := player.volume
	player.mu.Unlock()
	if !enabled {
		return
	}

	streamers := make([]beep.Streamer, 0, len(tones))
	for _, t := range tones {
		sine, err := generators.SinTone(sampleRate, t.frequency)
		if err != nil {
			continue
		}
		streamers = append(streamers, beep.Take(sampleRate.N(t.duration), sine))
	}
	if len(streamers) == 0 {
		return
	}

	speaker.Play(&effects.Volume{
		Streamer: beep.Seq(streamers...),
		Base:     2,
		Volume:   volume,
	})
}
