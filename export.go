package mapcanvas

import (
	"fmt"
	"os"
)

// ExportPNG writes the surface's current frame to a PNG file. The frame is
// whatever the engine last rendered; callers wanting a clean shot (no
// cursor or preview overlays) render one frame without those layers first.
func ExportPNG(surface *RasterSurface, filename string) error {
	if surface == nil {
		return fmt.Errorf("no surface available")
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return surface.EncodePNG(file)
}
