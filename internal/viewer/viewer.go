// Package viewer holds the state of one viewing session and the actions
// the UI can take on it. Everything here runs on the render goroutine.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Mingwen111/3d-car-viewer/internal/assets"
	"github.com/Mingwen111/3d-car-viewer/internal/config"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/camera"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/capture"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/debounce"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/director"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/loop"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/scene"
	"github.com/Mingwen111/3d-car-viewer/internal/logger"
	"github.com/Mingwen111/3d-car-viewer/pkg/math"
)

// ErrNotLoaded is returned by actions that need the model.
var ErrNotLoaded = errors.New("viewer: model not loaded")

// messageTTL is how long a transient status line stays up.
const messageTTL = 4 * time.Second

// Surface draws frames for the viewer.
type Surface interface {
	capture.Surface
	Resize(width, height int)
}

// Size is a drawable size in pixels.
type Size struct {
	Width, Height int
}

// Hooks are optional callbacks for feedback outside the viewer.
type Hooks struct {
	OnScreenshot  func(path string)
	OnRecordStart func()
	OnRecordStop  func(path string)
}

// Options configures New.
type Options struct {
	Config  *config.Config
	Surface Surface
	Sink    capture.Sink
	// SaveResults delivers outcomes of saves that finish after the call
	// returned, such as those going through a save dialog.
	SaveResults <-chan capture.SaveResult
	Hooks       Hooks
	Size        Size
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Status is what the HUD needs to draw.
type Status struct {
	Loading   bool
	Progress  float64
	Error     string
	Message   string
	Ready     bool
	Recording bool
	Encoding  bool
	Timer     string
}

// Viewer owns the scene, camera and capture state.
type Viewer struct {
	cfg     *config.Config
	surface Surface
	sink    capture.Sink
	results <-chan capture.SaveResult
	hooks   Hooks
	clock   func() time.Time

	scene    *scene.Scene
	cam      *camera.Perspective
	orbit    *camera.OrbitControls
	director *director.Director
	recorder *capture.Recorder
	limiter  *loop.FrameLimiter
	resize   *debounce.Debouncer[Size]

	bounds   math.AABB
	loaded   bool
	loading  bool
	progress float64
	loadErr  string

	message      string
	messageUntil time.Time

	log *zap.Logger
}

// New creates a viewer waiting for its model.
func New(opts Options) *Viewer {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	sink := opts.Sink
	if sink == nil {
		sink = capture.DirSink{Dir: cfg.Capture.OutputDir}
	}

	var bg *scene.Color
	if !cfg.Render.TransparentBackground {
		b := cfg.Render.Background
		bg = scene.RGB(b[0], b[1], b[2])
	}

	aspect := float32(1)
	if opts.Size.Height > 0 {
		aspect = float32(opts.Size.Width) / float32(opts.Size.Height)
	}
	cam := camera.NewPerspective(cfg.Camera.FOV, aspect, cfg.Camera.Near, cfg.Camera.Far)
	pos, look := camera.Fit(math.EmptyAABB(), cfg.Camera.FOV, cfg.Camera.FitMargin)
	cam.SetPose(pos, look)

	orbit := camera.NewOrbitControls(camera.OrbitOptions{
		FPS:          cfg.Render.TargetFPS,
		Frequency:    cfg.Camera.DampingFreq,
		DampingRatio: cfg.Camera.DampingRatio,
		RotateSpeed:  cfg.Camera.RotateSpeed,
		ZoomSpeed:    cfg.Camera.ZoomSpeed,
	})
	orbit.SyncFrom(cam)

	v := &Viewer{
		cfg:      cfg,
		surface:  opts.Surface,
		sink:     sink,
		results:  opts.SaveResults,
		hooks:    opts.Hooks,
		clock:    clock,
		scene:    scene.New(bg),
		cam:      cam,
		orbit:    orbit,
		director: director.New(cam),
		recorder: capture.NewRecorder(capture.RecorderOptions{
			FrameDelay:   cfg.Capture.FrameDelay,
			UseTickDelay: cfg.Capture.UseTickDelay,
			Sink:         sink,
			GIF: capture.GIFOptions{
				Workers:     cfg.Capture.Workers,
				MaxWidth:    cfg.Capture.MaxWidth,
				Dither:      cfg.Capture.Dither,
				Transparent: cfg.Capture.TransparentRecording,
			},
		}),
		limiter: loop.NewFrameLimiter(cfg.Render.TargetFPS),
		resize:  debounce.New[Size](cfg.Render.ResizeQuiet),
		bounds:  math.EmptyAABB(),
		loading: true,
		log:     logger.Named("viewer"),
	}
	v.director.Clock = clock
	v.director.OnComplete(v.handBack)
	return v
}

// handBack returns the camera to the orbit controls once a transition
// lands, pivoting on its look-at.
func (v *Viewer) handBack(director.Pose) {
	v.orbit.SyncFrom(v.cam)
	v.orbit.Enabled = true
}

// Limiter returns the frame limiter Tick should be paced by.
func (v *Viewer) Limiter() *loop.FrameLimiter { return v.limiter }

// Recorder returns the GIF recorder.
func (v *Viewer) Recorder() *capture.Recorder { return v.recorder }

// HandleLoad applies one loader event.
func (v *Viewer) HandleLoad(ev assets.Event) {
	switch e := ev.(type) {
	case assets.Progress:
		v.progress = e.Ratio
	case assets.Loaded:
		v.scene.SetModel(e.Root)
		v.bounds = e.Bounds
		v.loaded = true
		v.loading = false
		v.loadErr = ""
		v.progress = 1
		v.frame(e.Bounds)
	case assets.Failed:
		v.loading = false
		v.loadErr = e.Message
		v.log.Error("model failed to load", zap.String("reason", e.Message))
	}
}

// frame places the camera for the freshly loaded bounds and resets orbit
// limits to the model's scale.
func (v *Viewer) frame(bounds math.AABB) {
	cc := v.cfg.Camera
	pos, look := camera.Fit(bounds, cc.FOV, cc.FitMargin)
	v.cam.SetPose(pos, look)
	v.cam.Up = math.Vec3{Y: 1}

	d := camera.FitDistance(bounds, cc.FOV, cc.FitMargin)
	v.cam.FitClipPlanes(d, bounds.Radius())
	v.orbit.MinDistance = d * cc.MinDistanceFrac
	v.orbit.MaxDistance = d * cc.MaxDistanceFrac
	v.orbit.SyncFrom(v.cam)
	v.orbit.Enabled = true

	v.log.Info("camera framed model",
		zap.Float32("distance", d),
		zap.Float32("size", bounds.MaxDimension()),
	)
}

// ShowPreset starts an eased transition to a named viewpoint. The orbit
// controls stay disabled until it completes.
func (v *Viewer) ShowPreset(p Preset) error {
	if !v.loaded {
		return ErrNotLoaded
	}
	pose, err := PresetPose(p, v.bounds, v.cfg.Camera.FOV, v.cfg.Camera.FitMargin)
	if err != nil {
		return err
	}
	v.orbit.Enabled = false
	v.director.MoveTo(pose.Position, pose.LookAt, v.cfg.Camera.Transition)
	v.log.Debug("preset transition", zap.String("preset", string(p)))
	return nil
}

// Screenshot saves the current view as PNG.
func (v *Viewer) Screenshot() (string, error) {
	path, err := capture.Screenshot(v.surface, v.scene, v.cam, v.sink, v.cfg.Capture.Transparent)
	if err != nil {
		v.log.Error("screenshot failed", zap.Error(err))
		v.setMessage("Screenshot failed: " + err.Error())
		return "", err
	}
	v.saved("Screenshot", path)
	if v.hooks.OnScreenshot != nil {
		v.hooks.OnScreenshot(path)
	}
	return path, nil
}

// ToggleRecording starts a recording or, when one is running, stops it
// and writes the GIF. The returned path is empty when starting.
func (v *Viewer) ToggleRecording(ctx context.Context) (string, error) {
	if !v.recorder.Recording() {
		if err := v.recorder.Start(v.clock()); err != nil {
			return "", err
		}
		if v.hooks.OnRecordStart != nil {
			v.hooks.OnRecordStart()
		}
		return "", nil
	}

	frames := v.recorder.FrameCount()
	path, err := v.recorder.Stop(ctx)
	// Encoding blocks the loop; pace from the next tick instead of the
	// stale reference.
	v.limiter.Reset()
	if v.hooks.OnRecordStop != nil {
		v.hooks.OnRecordStop(path)
	}
	if err != nil {
		v.log.Error("recording failed", zap.Error(err))
		v.setMessage("Recording failed: " + err.Error())
		return "", err
	}
	v.log.Info("recording saved", zap.String("path", path), zap.Int("frames", frames))
	v.saved("Animation", path)
	return path, nil
}

// Resize records a new drawable size; it is applied once resizing has
// been quiet for the configured period.
func (v *Viewer) Resize(width, height int, now time.Time) {
	v.resize.Trigger(now, Size{width, height})
}

// Drag orbits the camera by a pointer delta in pixels.
func (v *Viewer) Drag(dx, dy float32) {
	v.orbit.Drag(dx, dy)
}

// Zoom moves the camera toward or away from the pivot.
func (v *Viewer) Zoom(delta float32) {
	v.orbit.Zoom(delta)
}

// Tick advances the camera, renders a frame and, while recording, appends
// it to the animation.
func (v *Viewer) Tick(now time.Time) error {
	v.drainSaves()

	if sz, ok := v.resize.Poll(now); ok && sz.Width > 0 && sz.Height > 0 {
		v.surface.Resize(sz.Width, sz.Height)
		v.cam.SetViewport(sz.Width, sz.Height)
		v.log.Debug("viewport resized", zap.Int("width", sz.Width), zap.Int("height", sz.Height))
	}

	if v.director.Active() {
		v.director.Update(now)
	} else {
		v.orbit.Update(v.cam)
	}

	recording := v.recorder.Recording()
	if err := v.render(recording && v.cfg.Capture.TransparentRecording); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if recording {
		img, err := v.surface.ReadImage()
		if err != nil {
			return fmt.Errorf("reading frame: %w", err)
		}
		v.recorder.AddFrame(img, now)
	}

	if !v.messageUntil.IsZero() && now.After(v.messageUntil) {
		v.message = ""
		v.messageUntil = time.Time{}
	}
	return nil
}

func (v *Viewer) render(transparent bool) error {
	if transparent {
		restore := v.scene.WithoutBackground()
		defer restore()
	}
	return v.surface.Render(v.scene, v.cam)
}

// drainSaves picks up results of asynchronous saves.
func (v *Viewer) drainSaves() {
	if v.results == nil {
		return
	}
	for {
		select {
		case res := <-v.results:
			if res.Err != nil {
				v.log.Error("save failed", zap.String("name", res.Name), zap.Error(res.Err))
				v.setMessage("Save failed: " + res.Err.Error())
				continue
			}
			v.log.Info("capture saved", zap.String("path", res.Path))
			v.setMessage("Saved " + res.Path)
		default:
			return
		}
	}
}

// saved reports a finished capture. An empty path means the sink finishes
// later and reports through SaveResults.
func (v *Viewer) saved(what, path string) {
	if path == "" {
		v.setMessage(what + ": choose where to save")
		return
	}
	v.log.Info("capture saved", zap.String("path", path))
	v.setMessage("Saved " + path)
}

func (v *Viewer) setMessage(msg string) {
	v.message = msg
	v.messageUntil = v.clock().Add(messageTTL)
}

// Status reports load progress, errors and the recording timer.
func (v *Viewer) Status(now time.Time) Status {
	st := Status{
		Loading:   v.loading,
		Progress:  v.progress,
		Error:     v.loadErr,
		Message:   v.message,
		Ready:     v.loaded,
		Recording: v.recorder.Recording(),
		Encoding:  v.recorder.State() == capture.Finalizing,
	}
	if st.Recording {
		st.Timer = capture.FormatElapsed(v.recorder.Elapsed(now))
	}
	return st
}
