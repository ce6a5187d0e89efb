package viewer

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/gif"
	"io"
	"testing"
	"time"

	"github.com/Mingwen111/3d-car-viewer/internal/assets"
	"github.com/Mingwen111/3d-car-viewer/internal/config"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/camera"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/capture"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/scene"
	"github.com/Mingwen111/3d-car-viewer/pkg/math"
)

type fakeSurface struct {
	w, h    int
	seen    []scene.Color
	resizes []Size
}

func (f *fakeSurface) Render(s *scene.Scene, _ *camera.Perspective) error {
	f.seen = append(f.seen, s.ClearColor())
	return nil
}

func (f *fakeSurface) ReadImage() (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, f.w, f.h)), nil
}

func (f *fakeSurface) Resize(w, h int) {
	f.w, f.h = w, h
	f.resizes = append(f.resizes, Size{w, h})
}

type memSink struct {
	files map[string][]byte
	err   error
}

func (m *memSink) Save(name string, write func(io.Writer) error) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return "", err
	}
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[name] = buf.Bytes()
	return "mem/" + name, nil
}

// clock is a manual time source.
type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) time.Time {
	c.t = c.t.Add(d)
	return c.t
}

func testViewer(t *testing.T, sink capture.Sink) (*Viewer, *fakeSurface, *clock) {
	t.Helper()
	cfg := config.Default()
	cfg.Render.Background = [3]float32{0.2, 0.3, 0.4}
	surf := &fakeSurface{w: 8, h: 6}
	clk := &clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	v := New(Options{
		Config:  cfg,
		Surface: surf,
		Sink:    sink,
		Size:    Size{8, 6},
		Clock:   clk.now,
	})
	return v, surf, clk
}

func boxModel(t *testing.T) (*scene.Node, math.AABB) {
	t.Helper()
	pos := []math.Vec3{
		{X: -2, Y: 0, Z: -1}, {X: 2, Y: 0, Z: -1}, {X: 2, Y: 1.5, Z: 1}, {X: -2, Y: 1.5, Z: 1},
	}
	mesh, err := scene.NewMesh("body", pos, nil, []uint32{0, 1, 2, 0, 2, 3}, scene.DefaultMaterial())
	if err != nil {
		t.Fatalf("NewMesh: %v", err)
	}
	mesh.ComputeNormals(false)
	n := scene.NewNode("car")
	n.Mesh = mesh
	return n, n.Bounds()
}

func loadBox(t *testing.T, v *Viewer) math.AABB {
	t.Helper()
	root, bounds := boxModel(t)
	v.HandleLoad(assets.Progress{Ratio: 0.5})
	v.HandleLoad(assets.Loaded{Root: root, Bounds: bounds})
	return bounds
}

func TestLoadFramesCamera(t *testing.T) {
	v, _, clk := testViewer(t, &memSink{})

	st := v.Status(clk.now())
	if !st.Loading || st.Ready {
		t.Fatalf("initial status = %+v, want loading", st)
	}

	v.HandleLoad(assets.Progress{Ratio: 0.4})
	if got := v.Status(clk.now()).Progress; got != 0.4 {
		t.Errorf("progress = %v, want 0.4", got)
	}

	bounds := loadBox(t, v)
	st = v.Status(clk.now())
	if st.Loading || !st.Ready || st.Error != "" {
		t.Fatalf("status after load = %+v", st)
	}
	if v.cam.Target != bounds.Center() {
		t.Errorf("camera target = %v, want %v", v.cam.Target, bounds.Center())
	}
	want := camera.FitDistance(bounds, v.cfg.Camera.FOV, v.cfg.Camera.FitMargin)
	if d := v.cam.LookDistance(); d < want*0.99 || d > want*1.01 {
		t.Errorf("camera distance = %v, want %v", d, want)
	}
	if v.orbit.MaxDistance <= v.orbit.MinDistance {
		t.Errorf("orbit range [%v, %v] empty", v.orbit.MinDistance, v.orbit.MaxDistance)
	}
}

func TestLoadFailureReported(t *testing.T) {
	v, _, clk := testViewer(t, &memSink{})
	v.HandleLoad(assets.Failed{Message: "opening model: no such file"})

	st := v.Status(clk.now())
	if st.Loading || st.Ready {
		t.Errorf("status = %+v, want neither loading nor ready", st)
	}
	if st.Error != "opening model: no such file" {
		t.Errorf("error = %q", st.Error)
	}
	if err := v.ShowPreset(PresetSide); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("ShowPreset = %v, want ErrNotLoaded", err)
	}
}

func TestPresetHandsBackToOrbit(t *testing.T) {
	v, _, clk := testViewer(t, &memSink{})
	bounds := loadBox(t, v)

	if err := v.ShowPreset(PresetTop); err != nil {
		t.Fatalf("ShowPreset: %v", err)
	}
	if v.orbit.Enabled {
		t.Fatal("orbit should be disabled during a transition")
	}

	before := v.cam.Position
	v.Drag(100, 0)
	if err := v.Tick(clk.advance(300 * time.Millisecond)); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if v.cam.Position == before {
		t.Error("camera did not move during the transition")
	}

	if err := v.Tick(clk.advance(v.cfg.Camera.Transition)); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if v.director.Active() {
		t.Fatal("transition still active after its duration")
	}
	if !v.orbit.Enabled {
		t.Fatal("orbit not re-enabled after the transition")
	}

	pose, _ := PresetPose(PresetTop, bounds, v.cfg.Camera.FOV, v.cfg.Camera.FitMargin)
	if v.cam.Position != pose.Position || v.cam.Target != pose.LookAt {
		t.Errorf("camera = %v -> %v, want %v -> %v", v.cam.Position, v.cam.Target, pose.Position, pose.LookAt)
	}
	if v.orbit.Pivot != pose.LookAt {
		t.Errorf("orbit pivot = %v, want %v", v.orbit.Pivot, pose.LookAt)
	}
}

func TestPresetUnknown(t *testing.T) {
	v, _, _ := testViewer(t, &memSink{})
	loadBox(t, v)
	if err := v.ShowPreset(Preset("rear")); err == nil {
		t.Error("unknown preset accepted")
	}
	if !v.orbit.Enabled {
		t.Error("unknown preset disabled orbit")
	}
}

func TestScreenshotRestoresBackground(t *testing.T) {
	tests := []struct {
		name    string
		sinkErr error
	}{
		{"saved", nil},
		{"sink fails", errors.New("disk full")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &memSink{err: tt.sinkErr}
			v, surf, clk := testViewer(t, sink)
			var hooked string
			v.hooks.OnScreenshot = func(p string) { hooked = p }
			loadBox(t, v)
			bg := v.scene.ClearColor()

			path, err := v.Screenshot()
			if (err != nil) != (tt.sinkErr != nil) {
				t.Fatalf("Screenshot err = %v", err)
			}
			if got := v.scene.ClearColor(); got != bg {
				t.Errorf("background after screenshot = %v, want %v", got, bg)
			}
			if len(surf.seen) != 2 || surf.seen[0].A != 0 {
				t.Fatalf("renders = %v, want transparent screenshot then live frame", surf.seen)
			}
			if surf.seen[1] != bg {
				t.Errorf("surface left with %v, want live frame on %v", surf.seen[1], bg)
			}
			if tt.sinkErr == nil {
				if path != "mem/"+capture.ScreenshotName || hooked != path {
					t.Errorf("path = %q, hook saw %q", path, hooked)
				}
			} else if hooked != "" {
				t.Error("screenshot hook ran on failure")
			}
			if v.Status(clk.now()).Message == "" {
				t.Error("no status message after screenshot")
			}
		})
	}
}

func TestRecordingCapturesEachTick(t *testing.T) {
	sink := &memSink{}
	v, surf, clk := testViewer(t, sink)
	loadBox(t, v)

	var started, stopped int
	v.hooks.OnRecordStart = func() { started++ }
	v.hooks.OnRecordStop = func(string) { stopped++ }

	if _, err := v.ToggleRecording(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	for range 3 {
		if err := v.Tick(clk.advance(100 * time.Millisecond)); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if n := v.recorder.FrameCount(); n != 3 {
		t.Errorf("frames = %d, want 3", n)
	}
	for i, c := range surf.seen {
		if c.A != 0 {
			t.Errorf("recorded frame %d cleared to %v, want transparent", i, c)
		}
	}
	if got := v.Status(clk.now()).Timer; got != "00:00" {
		t.Errorf("timer = %q, want 00:00", got)
	}

	path, err := v.ToggleRecording(context.Background())
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if path != "mem/"+capture.AnimationName || len(sink.files[capture.AnimationName]) == 0 {
		t.Errorf("animation not saved: path %q", path)
	}
	if started != 1 || stopped != 1 {
		t.Errorf("hooks started=%d stopped=%d", started, stopped)
	}
	if v.Status(clk.now()).Recording {
		t.Error("still recording after stop")
	}

	// Live frames keep the background.
	surf.seen = nil
	if err := v.Tick(clk.advance(time.Second)); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(surf.seen) != 1 || surf.seen[0].A == 0 {
		t.Errorf("live frame cleared to %v", surf.seen)
	}
}

func TestRecordingSurvivesResize(t *testing.T) {
	sink := &memSink{}
	v, surf, clk := testViewer(t, sink)
	surf.w, surf.h = 64, 36
	loadBox(t, v)

	if _, err := v.ToggleRecording(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := v.Tick(clk.advance(100 * time.Millisecond)); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	v.Resize(96, 54, clk.now())
	for range 3 {
		if err := v.Tick(clk.advance(v.cfg.Render.ResizeQuiet)); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}
	if len(surf.resizes) != 1 {
		t.Fatalf("resizes = %v, want one", surf.resizes)
	}

	if _, err := v.ToggleRecording(context.Background()); err != nil {
		t.Fatalf("stop after resize: %v", err)
	}
	anim, err := gif.DecodeAll(bytes.NewReader(sink.files[capture.AnimationName]))
	if err != nil {
		t.Fatalf("decoding GIF: %v", err)
	}
	for i, p := range anim.Image {
		if b := p.Bounds(); b.Dx() != 64 || b.Dy() != 36 {
			t.Errorf("frame %d bounds = %v, want 64x36", i, b)
		}
	}
}

func TestRecordingTimer(t *testing.T) {
	v, _, clk := testViewer(t, &memSink{})
	start := clk.now()
	if _, err := v.ToggleRecording(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := v.Status(start.Add(75 * time.Second)).Timer; got != "01:15" {
		t.Errorf("timer = %q, want 01:15", got)
	}
}

func TestStopWithoutFramesFails(t *testing.T) {
	v, _, _ := testViewer(t, &memSink{})
	if _, err := v.ToggleRecording(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := v.ToggleRecording(context.Background()); !errors.Is(err, capture.ErrNoFrames) {
		t.Errorf("stop = %v, want ErrNoFrames", err)
	}
	if v.recorder.State() != capture.Idle {
		t.Errorf("state = %v, want idle", v.recorder.State())
	}
}

func TestResizeDebounced(t *testing.T) {
	v, surf, clk := testViewer(t, &memSink{})
	quiet := v.cfg.Render.ResizeQuiet

	t0 := clk.now()
	v.Resize(100, 80, t0)
	v.Resize(200, 100, t0.Add(20*time.Millisecond))
	v.Resize(300, 150, t0.Add(40*time.Millisecond))

	if err := v.Tick(t0.Add(50 * time.Millisecond)); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(surf.resizes) != 0 {
		t.Fatalf("resized too early: %v", surf.resizes)
	}

	if err := v.Tick(t0.Add(40*time.Millisecond + quiet)); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if err := v.Tick(t0.Add(time.Second)); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if len(surf.resizes) != 1 || surf.resizes[0] != (Size{300, 150}) {
		t.Fatalf("resizes = %v, want one to 300x150", surf.resizes)
	}
	if v.cam.Aspect != 2 {
		t.Errorf("aspect = %v, want 2", v.cam.Aspect)
	}
}

func TestSaveResultsDrained(t *testing.T) {
	results := make(chan capture.SaveResult, 2)
	cfg := config.Default()
	clk := &clock{t: time.Unix(0, 0)}
	v := New(Options{
		Config:      cfg,
		Surface:     &fakeSurface{w: 4, h: 4},
		Sink:        &memSink{},
		SaveResults: results,
		Clock:       clk.now,
	})

	results <- capture.SaveResult{Name: capture.ScreenshotName, Path: "/tmp/shot.png"}
	if err := v.Tick(clk.advance(time.Millisecond)); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if got := v.Status(clk.now()).Message; got != "Saved /tmp/shot.png" {
		t.Errorf("message = %q", got)
	}

	if err := v.Tick(clk.advance(messageTTL + time.Second)); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if got := v.Status(clk.now()).Message; got != "" {
		t.Errorf("message %q did not expire", got)
	}
}
