// Package app wires the window, renderer, HUD and viewer into the main loop.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Mingwen111/3d-car-viewer/internal/assets"
	"github.com/Mingwen111/3d-car-viewer/internal/config"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/audio"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/capture"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/hud"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/input"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/loop"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/renderer"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/window"
	"github.com/Mingwen111/3d-car-viewer/internal/logger"
	"github.com/Mingwen111/3d-car-viewer/internal/viewer"
)

// App is the running viewer.
type App struct {
	cfg      *config.Config
	window   *window.Window
	renderer *renderer.Renderer
	hud      *hud.HUD
	input    *input.Input
	cues     *audio.Cues
	loader   *assets.Loader
	viewer   *viewer.Viewer

	events    <-chan assets.Event
	dragging  bool
	recording bool
	quit      bool
	ctx       context.Context

	log *zap.Logger
}

// New creates the window and everything drawn into it.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		cfg:   cfg,
		input: input.New(),
		log:   logger.Named("app"),
	}
	a.log.Info("initializing viewer",
		zap.String("model", cfg.Asset.Model),
		zap.Int("width", cfg.Display.Width),
		zap.Int("height", cfg.Display.Height),
	)

	var err error
	a.window, err = window.New(window.Config{
		Title:      cfg.Display.Title,
		Width:      cfg.Display.Width,
		Height:     cfg.Display.Height,
		Fullscreen: cfg.Display.Fullscreen,
		VSync:      cfg.Display.VSync,
		HighDPI:    cfg.Display.HighDPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Renderer and HUD need the GL context the window just made current.
	dw, dh := a.window.DrawableSize()
	a.renderer, err = renderer.New(renderer.Config{
		Width:            dw,
		Height:           dh,
		Exposure:         cfg.Render.Exposure,
		ShadowResolution: cfg.Render.ShadowResolution,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	a.hud, err = hud.New(dw, dh, a.window.PixelScale())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create hud: %w", err)
	}

	a.cues = audio.New(audio.Options{
		Enabled: cfg.Audio.Enabled,
		Volume:  float64(cfg.Audio.Volume),
		Overrides: map[audio.Cue]string{
			audio.Shutter:     cfg.Audio.ShutterWAV,
			audio.RecordStart: cfg.Audio.RecStartWAV,
			audio.RecordStop:  cfg.Audio.RecStopWAV,
		},
	})
	if err := a.cues.Init(); err != nil {
		// Cues are feedback only.
		a.log.Warn("audio unavailable", zap.Error(err))
	}

	var sink capture.Sink = capture.DirSink{Dir: cfg.Capture.OutputDir}
	var results <-chan capture.SaveResult
	if cfg.Capture.SaveDialog {
		ds := capture.NewDialogSink(sink)
		sink, results = ds, ds.Results
	}

	a.viewer = viewer.New(viewer.Options{
		Config:      cfg,
		Surface:     a.renderer,
		Sink:        sink,
		SaveResults: results,
		Size:        viewer.Size{Width: dw, Height: dh},
		Hooks: viewer.Hooks{
			OnScreenshot:  func(string) { a.cues.Play(audio.Shutter) },
			OnRecordStart: func() { a.cues.Play(audio.RecordStart) },
			OnRecordStop:  func(string) { a.cues.Play(audio.RecordStop) },
		},
	})
	a.loader = assets.NewLoader(cfg.Asset.SmoothNormals)

	a.log.Info("viewer initialized", zap.Int("drawable_width", dw), zap.Int("drawable_height", dh))
	return a, nil
}

// Run loads the model in the background and drives frames until the
// window closes or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.ctx = ctx

	a.events = a.loader.Load(ctx, a.cfg.Asset.Model)

	ticks := &window.VSyncTicks{Window: a.window, BeforeSwap: a.present}
	start := time.Now()
	stats, err := loop.Run(ctx, ticks, a.viewer.Limiter(), a.tick)

	// A recording still open at exit is saved, even after ctx ended.
	a.ctx = context.WithoutCancel(ctx)
	a.stopRecording()

	a.log.Info("main loop finished",
		zap.Int("ticks", stats.Ticks),
		zap.Int("frames", stats.Accepted),
		zap.Duration("uptime", time.Since(start)),
	)
	if errors.Is(err, loop.ErrStop) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// tick renders one paced frame into the offscreen target.
func (a *App) tick(now time.Time, _ time.Duration) error {
	if err := a.viewer.Tick(now); err != nil {
		return err
	}
	a.updateTitle()
	return nil
}

// present runs once per display refresh: it handles input and loader
// events and draws the last frame with the HUD over it.
func (a *App) present() error {
	now := time.Now()
	if a.input.Update() {
		a.quit = true
	}
	a.handleInput(now)
	a.drainLoader()

	st := a.viewer.Status(now)
	if id, ok := a.hud.Frame(hud.Status(st), a.renderer.ColorTexture()); ok {
		a.handleButton(id)
	}

	if a.quit {
		return loop.ErrStop
	}
	return nil
}

func (a *App) handleInput(now time.Time) {
	scale := a.window.PixelScale()
	hi := a.hud.Input()

	for _, e := range a.input.Events() {
		switch e.Type {
		case input.EventWindowResize:
			dw, dh := a.window.DrawableSize()
			a.hud.Resize(dw, dh, a.window.PixelScale())
			a.viewer.Resize(dw, dh, now)

		case input.EventMouseMove:
			hi.MouseX, hi.MouseY = float32(e.MouseX)*scale, float32(e.MouseY)*scale
			if a.dragging {
				a.viewer.Drag(e.DX*scale, e.DY*scale)
			}

		case input.EventMouseDown:
			if e.Button != 1 {
				continue
			}
			x, y := float32(e.MouseX)*scale, float32(e.MouseY)*scale
			hi.MouseX, hi.MouseY = x, y
			hi.MouseLeftDown = true
			hi.MouseLeftClicked = true
			a.dragging = !a.hud.Covers(x, y)

		case input.EventMouseUp:
			if e.Button == 1 {
				hi.MouseLeftDown = false
				a.dragging = false
			}

		case input.EventMouseWheel:
			a.viewer.Zoom(e.DY)

		case input.EventKeyDown:
			a.handleAction(input.ActionFor(e))
		}
	}
}

func (a *App) handleAction(act input.Action) {
	switch act {
	case input.ActionPresetTop:
		a.showPreset(viewer.PresetTop)
	case input.ActionPresetSide:
		a.showPreset(viewer.PresetSide)
	case input.ActionPresetDriver:
		a.showPreset(viewer.PresetDriver)
	case input.ActionScreenshot:
		a.screenshot()
	case input.ActionToggleRecording:
		a.toggleRecording()
	case input.ActionQuit:
		a.quit = true
	}
}

func (a *App) handleButton(id hud.ButtonID) {
	switch id {
	case hud.ButtonTop:
		a.handleAction(input.ActionPresetTop)
	case hud.ButtonSide:
		a.handleAction(input.ActionPresetSide)
	case hud.ButtonDriver:
		a.handleAction(input.ActionPresetDriver)
	case hud.ButtonScreenshot:
		a.handleAction(input.ActionScreenshot)
	case hud.ButtonRecord:
		a.handleAction(input.ActionToggleRecording)
	}
}

func (a *App) showPreset(p viewer.Preset) {
	if err := a.viewer.ShowPreset(p); err != nil {
		a.log.Debug("preset ignored", zap.String("preset", string(p)), zap.Error(err))
	}
}

func (a *App) screenshot() {
	// The viewer reports failures in the status line.
	_, _ = a.viewer.Screenshot()
}

func (a *App) toggleRecording() {
	if a.viewer.Recorder().Recording() {
		a.showEncoding()
	}
	_, _ = a.viewer.ToggleRecording(a.ctx)
}

// showEncoding puts one frame on screen before the loop blocks in GIF
// encoding, so the HUD says what is happening.
func (a *App) showEncoding() {
	st := a.viewer.Status(time.Now())
	st.Recording, st.Encoding = false, true
	a.hud.Frame(hud.Status(st), a.renderer.ColorTexture())
	a.window.SwapBuffers()
}

// stopRecording finalizes a recording left open at exit.
func (a *App) stopRecording() {
	if a.viewer.Recorder().Recording() {
		a.log.Info("saving recording before exit")
		a.toggleRecording()
	}
}

func (a *App) drainLoader() {
	for a.events != nil {
		select {
		case ev, ok := <-a.events:
			if !ok {
				a.events = nil
				return
			}
			a.viewer.HandleLoad(ev)
		default:
			return
		}
	}
}

func (a *App) updateTitle() {
	rec := a.viewer.Recorder().Recording()
	if rec == a.recording {
		return
	}
	a.recording = rec
	title := a.cfg.Display.Title
	if rec {
		title += " [REC]"
	}
	a.window.SetTitle(title)
}

// Close releases resources in reverse order of creation.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.cues != nil {
		a.cues.Close()
	}
	if a.hud != nil {
		a.hud.Close()
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}
