// Package config handles viewer configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all viewer settings.
type Config struct {
	Display DisplayConfig `yaml:"display"`
	Render  RenderConfig  `yaml:"render"`
	Camera  CameraConfig  `yaml:"camera"`
	Capture CaptureConfig `yaml:"capture"`
	Asset   AssetConfig   `yaml:"asset"`
	Audio   AudioConfig   `yaml:"audio"`
	Logging LoggingConfig `yaml:"logging"`
}

// DisplayConfig holds window settings.
type DisplayConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	VSync      bool   `yaml:"vsync"`
	HighDPI    bool   `yaml:"high_dpi"`
}

// RenderConfig holds frame pacing and shading settings.
// TransparentBackground starts the live view without a background.
type RenderConfig struct {
	TargetFPS             int           `yaml:"target_fps"`
	Exposure              float32       `yaml:"exposure"`
	ShadowResolution      int32         `yaml:"shadow_resolution"`
	Background            [3]float32    `yaml:"background"`
	TransparentBackground bool          `yaml:"transparent_background"`
	ResizeQuiet           time.Duration `yaml:"resize_quiet"`
}

// CameraConfig holds projection, orbit and transition settings.
type CameraConfig struct {
	FOV             float32       `yaml:"fov"`
	Near            float32       `yaml:"near"`
	Far             float32       `yaml:"far"`
	FitMargin       float32       `yaml:"fit_margin"`
	Transition      time.Duration `yaml:"transition"`
	RotateSpeed     float32       `yaml:"rotate_speed"`
	ZoomSpeed       float32       `yaml:"zoom_speed"`
	DampingFreq     float64       `yaml:"damping_frequency"`
	DampingRatio    float64       `yaml:"damping_ratio"`
	MinDistanceFrac float32       `yaml:"min_distance_fraction"`
	MaxDistanceFrac float32       `yaml:"max_distance_fraction"`
}

// CaptureConfig holds screenshot and recording settings.
// UseTickDelay stamps each GIF frame with the measured time since the
// previous recorded tick instead of FrameDelay.
type CaptureConfig struct {
	OutputDir            string        `yaml:"output_dir"`
	Transparent          bool          `yaml:"transparent"`
	TransparentRecording bool          `yaml:"transparent_recording"`
	FrameDelay           time.Duration `yaml:"frame_delay"`
	UseTickDelay         bool          `yaml:"use_tick_delay"`
	Workers              int           `yaml:"workers"`
	MaxWidth             int           `yaml:"max_width"`
	Dither               bool          `yaml:"dither"`
	SaveDialog           bool          `yaml:"save_dialog"`
}

// AssetConfig holds the model path and geometry options.
type AssetConfig struct {
	Model         string `yaml:"model"`
	SmoothNormals bool   `yaml:"smooth_normals"`
}

// AudioConfig holds feedback cue settings.
type AudioConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Volume      float32 `yaml:"volume"`
	ShutterWAV  string  `yaml:"shutter_wav"`
	RecStartWAV string  `yaml:"record_start_wav"`
	RecStopWAV  string  `yaml:"record_stop_wav"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// DefaultCaptureMaxWidth caps recorded frame width. Frames are held in
// memory until a recording stops, so full window size is too much.
const DefaultCaptureMaxWidth = 640

// Default returns a Config with the viewer's stock values.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Title:   "Car Viewer",
			Width:   1280,
			Height:  720,
			VSync:   true,
			HighDPI: true,
		},
		Render: RenderConfig{
			TargetFPS:        30,
			Exposure:         1.5,
			ShadowResolution: 2048,
			Background:       [3]float32{0, 0, 0},
			ResizeQuiet:      100 * time.Millisecond,
		},
		Camera: CameraConfig{
			FOV:             45,
			Near:            0.1,
			Far:             1000,
			FitMargin:       1.75,
			Transition:      1500 * time.Millisecond,
			RotateSpeed:     0.005,
			ZoomSpeed:       0.1,
			DampingFreq:     6.0,
			DampingRatio:    1.0,
			MinDistanceFrac: 0.5,
			MaxDistanceFrac: 5,
		},
		Capture: CaptureConfig{
			OutputDir:            "./captures",
			Transparent:          true,
			TransparentRecording: true,
			FrameDelay:           100 * time.Millisecond,
			Workers:              2,
			MaxWidth:             DefaultCaptureMaxWidth,
			Dither:               true,
		},
		Asset: AssetConfig{
			Model:         "models/car.glb",
			SmoothNormals: true,
		},
		Audio: AudioConfig{
			Enabled: true,
			Volume:  0.5,
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Validate reports settings that would make the viewer misbehave.
func (c *Config) Validate() error {
	var errs []error
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		errs = append(errs, fmt.Errorf("display size %dx%d must be positive", c.Display.Width, c.Display.Height))
	}
	if c.Render.TargetFPS < 0 {
		errs = append(errs, fmt.Errorf("render.target_fps %d must not be negative", c.Render.TargetFPS))
	}
	if c.Camera.FOV <= 0 || c.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera.fov %.1f must be in (0, 180)", c.Camera.FOV))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = append(errs, fmt.Errorf("camera near/far %.3f/%.3f invalid", c.Camera.Near, c.Camera.Far))
	}
	if c.Capture.Workers < 1 {
		errs = append(errs, fmt.Errorf("capture.workers %d must be at least 1", c.Capture.Workers))
	}
	if c.Capture.MaxWidth < 0 {
		errs = append(errs, fmt.Errorf("capture.max_width %d must not be negative", c.Capture.MaxWidth))
	}
	if c.Capture.FrameDelay < 10*time.Millisecond {
		errs = append(errs, fmt.Errorf("capture.frame_delay %s is below GIF resolution", c.Capture.FrameDelay))
	}
	if c.Asset.Model == "" {
		errs = append(errs, errors.New("asset.model is empty"))
	}
	return errors.Join(errs...)
}
