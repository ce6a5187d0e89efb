// Package capture turns rendered frames into PNG screenshots and animated
// GIF recordings.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"go.uber.org/zap"

	"github.com/Mingwen111/3d-car-viewer/internal/engine/camera"
	"github.com/Mingwen111/3d-car-viewer/internal/engine/scene"
	"github.com/Mingwen111/3d-car-viewer/internal/logger"
)

// Output names used when the sink does not pick its own.
const (
	ScreenshotName = "car-screenshot.png"
	AnimationName  = "car-animation.gif"
)

// Surface is something that can draw a scene and hand back the pixels.
type Surface interface {
	Render(s *scene.Scene, cam *camera.Perspective) error
	ReadImage() (*image.RGBA, error)
}

// Screenshot renders one frame and saves it as PNG. With transparent set
// the background is cleared for this frame only; it is put back and the
// live frame rendered again before Screenshot returns, whatever the outcome.
func Screenshot(surface Surface, s *scene.Scene, cam *camera.Perspective, sink Sink, transparent bool) (string, error) {
	if transparent {
		restore := s.WithoutBackground()
		defer func() {
			restore()
			if err := surface.Render(s, cam); err != nil {
				logger.Named("capture").Warn("re-rendering live frame", zap.Error(err))
			}
		}()
	}

	if err := surface.Render(s, cam); err != nil {
		return "", fmt.Errorf("rendering screenshot: %w", err)
	}
	img, err := surface.ReadImage()
	if err != nil {
		return "", fmt.Errorf("reading screenshot pixels: %w", err)
	}

	path, err := sink.Save(ScreenshotName, func(w io.Writer) error {
		return png.Encode(w, img)
	})
	if err != nil {
		return "", fmt.Errorf("saving screenshot: %w", err)
	}
	return path, nil
}
