// Package assets loads the car model in the background and reports
// progress to the render loop over a channel.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Mingwen111/3d-car-viewer/internal/engine/scene"
	"github.com/Mingwen111/3d-car-viewer/internal/logger"
	"github.com/Mingwen111/3d-car-viewer/pkg/math"
)

// Event is one message from a running load. It is one of Progress,
// Loaded or Failed.
type Event interface {
	isEvent()
}

// Progress reports the fraction of the file read so far, in [0,1].
type Progress struct {
	Ratio float64
}

// Loaded is the successful terminal event.
type Loaded struct {
	Root   *scene.Node
	Bounds math.AABB
}

// Failed is the unsuccessful terminal event.
type Failed struct {
	Message string
}

func (Progress) isEvent() {}
func (Loaded) isEvent()   {}
func (Failed) isEvent()   {}

// progressStep is the minimum ratio change between two Progress events.
const progressStep = 0.01

// Loader reads glTF/GLB models.
type Loader struct {
	// SmoothNormals selects smooth over flat normals for primitives that
	// ship without them.
	SmoothNormals bool

	log *zap.Logger
}

// NewLoader creates a loader.
func NewLoader(smoothNormals bool) *Loader {
	return &Loader{
		SmoothNormals: smoothNormals,
		log:           logger.Named("assets"),
	}
}

// Load starts reading path in a new goroutine. The returned channel yields
// zero or more Progress events followed by exactly one Loaded or Failed,
// then closes.
func (l *Loader) Load(ctx context.Context, path string) <-chan Event {
	events := make(chan Event, 8)
	go func() {
		defer close(events)

		root, bounds, err := l.load(ctx, path, events)
		var final Event
		if err != nil {
			l.log.Error("model load failed", zap.String("path", path), zap.Error(err))
			final = Failed{Message: err.Error()}
		} else {
			meshes, tris := root.CountMeshes()
			l.log.Info("model loaded",
				zap.String("path", path),
				zap.Int("meshes", meshes),
				zap.Int("triangles", tris),
				zap.Float32("size", bounds.MaxDimension()),
			)
			final = Loaded{Root: root, Bounds: bounds}
		}

		select {
		case events <- final:
		case <-ctx.Done():
		}
	}()
	return events
}

func (l *Loader) load(ctx context.Context, path string, events chan<- Event) (*scene.Node, math.AABB, error) {
	data, err := l.read(ctx, path, events)
	if err != nil {
		return nil, math.AABB{}, err
	}

	root, err := decodeModel(bytes.NewReader(data), filepath.Dir(path), l.SmoothNormals)
	if err != nil {
		return nil, math.AABB{}, fmt.Errorf("decoding %s: %w", filepath.Base(path), err)
	}
	root.Name = filepath.Base(path)

	bounds := root.Bounds()
	if bounds.IsEmpty() {
		return nil, math.AABB{}, fmt.Errorf("%s contains no geometry", filepath.Base(path))
	}
	return root, bounds, nil
}

// read returns the file contents, emitting progress while bytes arrive.
// Every load reads the disk so an edited model is picked up.
func (l *Loader) read(ctx context.Context, path string, events chan<- Event) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat model: %w", err)
	}

	pr := &progressReader{ctx: ctx, r: f, total: info.Size(), events: events, last: -1}
	var buf bytes.Buffer
	if info.Size() > 0 {
		buf.Grow(int(info.Size()))
	}
	if _, err := io.Copy(&buf, pr); err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	sendProgress(events, 1)
	return buf.Bytes(), nil
}

// progressReader counts bytes and turns them into Progress events.
type progressReader struct {
	ctx    context.Context
	r      io.Reader
	read   int64
	total  int64
	events chan<- Event
	last   float64
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.total > 0 {
		ratio := float64(p.read) / float64(p.total)
		if ratio > 1 {
			ratio = 1
		}
		if ratio-p.last >= progressStep {
			p.last = ratio
			sendProgress(p.events, ratio)
		}
	}
	return n, err
}

// sendProgress never blocks; a slow consumer only misses intermediate
// ratios.
func sendProgress(events chan<- Event, ratio float64) {
	select {
	case events <- Progress{Ratio: ratio}:
	default:
	}
}
