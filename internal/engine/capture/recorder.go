package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/Mingwen111/3d-car-viewer/internal/logger"
)

var (
	// ErrAlreadyRecording is returned by Start while a session exists.
	ErrAlreadyRecording = errors.New("capture: already recording")
	// ErrNotRecording is returned by Stop when there is nothing to stop.
	ErrNotRecording = errors.New("capture: not recording")
	// ErrNoFrames is returned by Stop when the session captured nothing.
	ErrNoFrames = errors.New("capture: no frames recorded")
)

// State is the recorder lifecycle.
type State int

const (
	Idle State = iota
	Recording
	Finalizing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Finalizing:
		return "finalizing"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Frame is one recorded image and how long it is shown.
type Frame struct {
	Image *image.RGBA
	Delay time.Duration
}

// Session holds the frames of one recording.
type Session struct {
	Start  time.Time
	Frames []Frame
	// Size is fixed by the first frame; every stored frame has it.
	Size image.Point

	last time.Time
}

// RecorderOptions configures a Recorder.
type RecorderOptions struct {
	// FrameDelay is the delay stored with every frame.
	FrameDelay time.Duration
	// UseTickDelay stores the measured time between frames instead.
	UseTickDelay bool
	GIF          GIFOptions
	Sink         Sink
}

// Recorder captures frames into a GIF. Only one session exists at a time.
type Recorder struct {
	opts    RecorderOptions
	state   State
	session *Session
	log     *zap.Logger
}

// DefaultFrameDelay matches a 10 fps animation.
const DefaultFrameDelay = 100 * time.Millisecond

// NewRecorder creates an idle recorder.
func NewRecorder(opts RecorderOptions) *Recorder {
	if opts.FrameDelay <= 0 {
		opts.FrameDelay = DefaultFrameDelay
	}
	if opts.Sink == nil {
		opts.Sink = DirSink{Dir: "."}
	}
	return &Recorder{opts: opts, log: logger.Named("capture")}
}

// State returns the current lifecycle state.
func (r *Recorder) State() State {
	return r.state
}

// Recording reports whether frames are being accepted.
func (r *Recorder) Recording() bool {
	return r.state == Recording
}

// Start opens a new session.
func (r *Recorder) Start(now time.Time) error {
	if r.state != Idle {
		return ErrAlreadyRecording
	}
	r.session = &Session{Start: now}
	r.state = Recording
	r.log.Info("recording started")
	return nil
}

// AddFrame appends img to the session. The first frame fixes the session
// size, capped at GIF.MaxWidth; later frames are scaled onto it so a window
// resize mid-recording cannot change the animation size. The recorder may
// keep img, so the caller must not reuse it. Frames outside Recording are
// dropped and AddFrame reports false.
func (r *Recorder) AddFrame(img *image.RGBA, now time.Time) bool {
	if r.state != Recording || img == nil {
		return false
	}
	s := r.session
	if len(s.Frames) == 0 {
		s.Size = frameSize(img.Bounds(), r.opts.GIF.MaxWidth)
	}
	if img.Bounds() != (image.Rectangle{Max: s.Size}) {
		img = fitTo(img, s.Size)
	}
	delay := r.opts.FrameDelay
	if r.opts.UseTickDelay && !s.last.IsZero() {
		// The measured gap belongs to the previous frame.
		s.Frames[len(s.Frames)-1].Delay = now.Sub(s.last)
	}
	s.Frames = append(s.Frames, Frame{Image: img, Delay: delay})
	s.last = now
	return true
}

// FrameCount returns the number of frames in the open session.
func (r *Recorder) FrameCount() int {
	if r.session == nil {
		return 0
	}
	return len(r.session.Frames)
}

// Elapsed returns the time since Start, or zero when not recording.
func (r *Recorder) Elapsed(now time.Time) time.Duration {
	if r.state != Recording {
		return 0
	}
	d := now.Sub(r.session.Start)
	if d < 0 {
		return 0
	}
	return d
}

// Stop ends the session, encodes the GIF and hands it to the sink. The
// recorder is Idle again when Stop returns, even on error.
func (r *Recorder) Stop(ctx context.Context) (string, error) {
	if r.state != Recording {
		return "", ErrNotRecording
	}
	r.state = Finalizing
	session := r.session
	r.session = nil
	defer func() { r.state = Idle }()

	if len(session.Frames) == 0 {
		return "", ErrNoFrames
	}

	start := time.Now()
	anim, err := EncodeGIF(ctx, session.Frames, r.opts.GIF)
	if err != nil {
		return "", fmt.Errorf("encoding animation: %w", err)
	}
	r.log.Info("animation encoded",
		zap.Int("frames", len(anim.Image)),
		zap.Duration("took", time.Since(start)),
	)

	path, err := r.opts.Sink.Save(AnimationName, func(w io.Writer) error {
		return gif.EncodeAll(w, anim)
	})
	if err != nil {
		return "", fmt.Errorf("saving animation: %w", err)
	}
	return path, nil
}

// FormatElapsed renders d as MM:SS.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
