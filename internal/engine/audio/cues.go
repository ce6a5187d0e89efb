// Package audio plays the short feedback sounds for capture actions.
package audio

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"

	"github.com/Mingwen111/3d-car-viewer/internal/logger"
)

// DefaultSampleRate is the speaker sample rate.
const DefaultSampleRate = beep.SampleRate(44100)

// Cue identifies a feedback sound.
type Cue int

const (
	Shutter Cue = iota
	RecordStart
	RecordStop
)

func (c Cue) String() string {
	switch c {
	case Shutter:
		return "shutter"
	case RecordStart:
		return "record-start"
	case RecordStop:
		return "record-stop"
	}
	return fmt.Sprintf("Cue(%d)", int(c))
}

// tone is one segment of a synthesized cue.
type tone struct {
	freq float64
	dur  time.Duration
}

var defaultTones = map[Cue][]tone{
	Shutter:     {{1800, 25 * time.Millisecond}, {1100, 45 * time.Millisecond}},
	RecordStart: {{660, 80 * time.Millisecond}, {990, 120 * time.Millisecond}},
	RecordStop:  {{990, 80 * time.Millisecond}, {660, 120 * time.Millisecond}},
}

// Options configures Cues.
type Options struct {
	Enabled bool
	// Volume is linear in [0,1].
	Volume float64
	// Overrides maps a cue to a WAV file played instead of the tone.
	Overrides map[Cue]string
}

// Cues owns the speaker and the decoded cue sounds.
type Cues struct {
	mu sync.Mutex

	opts        Options
	initialized bool
	sampleRate  beep.SampleRate
	mixer       *beep.Mixer
	sounds      map[Cue]*beep.Buffer
	log         *zap.Logger
}

// New creates cues; nothing plays until Init succeeds.
func New(opts Options) *Cues {
	opts.Volume = clamp(opts.Volume, 0, 1)
	return &Cues{
		opts:       opts,
		sampleRate: DefaultSampleRate,
		mixer:      &beep.Mixer{},
		sounds:     make(map[Cue]*beep.Buffer),
		log:        logger.Named("audio"),
	}
}

// Init prepares every cue and opens the audio device. A disabled
// configuration is not an error.
func (c *Cues) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized || !c.opts.Enabled {
		return nil
	}

	for cue, tones := range defaultTones {
		buf, err := c.prepare(cue, tones)
		if err != nil {
			return err
		}
		c.sounds[cue] = buf
	}

	if err := speaker.Init(c.sampleRate, c.sampleRate.N(time.Second/30)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(c.mixer)

	c.initialized = true
	c.log.Info("audio cues ready", zap.Float64("volume", c.opts.Volume))
	return nil
}

// prepare loads the override for cue when one is configured and falls
// back to the synthesized tones.
func (c *Cues) prepare(cue Cue, tones []tone) (*beep.Buffer, error) {
	if path, ok := c.opts.Overrides[cue]; ok && path != "" {
		buf, err := loadWAV(path, c.sampleRate)
		if err == nil {
			return buf, nil
		}
		c.log.Warn("cue override unusable, using tone",
			zap.Stringer("cue", cue), zap.String("path", path), zap.Error(err))
	}
	return synthesize(tones, c.sampleRate)
}

// Play starts cue on the mixer. It never blocks and does nothing when
// audio is unavailable.
func (c *Cues) Play(cue Cue) {
	c.mu.Lock()
	buf, ok := c.sounds[cue]
	ready := c.initialized
	vol := c.opts.Volume
	c.mu.Unlock()

	if !ready || !ok {
		return
	}
	s := &effects.Volume{
		Streamer: buf.Streamer(0, buf.Len()),
		Base:     2,
		Volume:   volumeToLog2(vol),
		Silent:   vol <= 0,
	}
	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
}

// Ready reports whether Play will produce sound.
func (c *Cues) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// Close stops playback.
func (c *Cues) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		speaker.Clear()
		c.initialized = false
	}
}

func format(sr beep.SampleRate) beep.Format {
	return beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2}
}

// synthesize renders tones back to back into a buffer.
func synthesize(tones []tone, sr beep.SampleRate) (*beep.Buffer, error) {
	buf := beep.NewBuffer(format(sr))
	for _, t := range tones {
		sine, err := generators.SineTone(sr, t.freq)
		if err != nil {
			return nil, fmt.Errorf("tone %.0f Hz: %w", t.freq, err)
		}
		// Half amplitude leaves headroom when cues overlap.
		buf.Append(&effects.Volume{
			Streamer: beep.Take(sr.N(t.dur), sine),
			Base:     2,
			Volume:   -1,
		})
	}
	return buf, nil
}

// loadWAV decodes path fully into memory at the speaker rate.
func loadWAV(path string, sr beep.SampleRate) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	streamer, fmtIn, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if fmtIn.SampleRate != sr {
		s = beep.Resample(4, fmtIn.SampleRate, sr, streamer)
	}
	buf := beep.NewBuffer(format(sr))
	buf.Append(s)
	if err := streamer.Err(); err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	return buf, nil
}

// volumeToLog2 maps linear volume onto effects.Volume's base-2 scale:
// 1 is unchanged, 0.5 is one step down.
func volumeToLog2(vol float64) float64 {
	if vol <= 0 {
		return -16
	}
	return math.Log2(vol)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
