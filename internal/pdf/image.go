package pdf

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	"github.com/go-pdf/fpdf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DrawImage draws the image at path centred in the box, keeping its aspect
// ratio. JPEG files are embedded as they are; every other format is
// converted to PNG first.
func (s *Surface) DrawImage(path string, x, y, width, height float64) error {
	if s.done {
		return ErrFinalized
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("image %s is empty", path)
	}

	if !s.images[path] {
		if err := s.registerImage(path, format, data); err != nil {
			return err
		}
		s.images[path] = true
	}

	scale := min(width/float64(cfg.Width), height/float64(cfg.Height))
	w, h := float64(cfg.Width)*scale, float64(cfg.Height)*scale
	left := x + (width-w)/2
	bottom := y + (height-h)/2

	s.pdf.ImageOptions(path, left, s.height-(bottom+h), w, h, false,
		fpdf.ImageOptions{ImageType: imageTypeFor(format)}, 0, "")
	return s.takeError()
}

func (s *Surface) registerImage(name, format string, data []byte) error {
	if format != "jpeg" {
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to decode image %s: %w", name, err)
		}
		rgba := image.NewNRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

		var buf bytes.Buffer
		if err := png.Encode(&buf, rgba); err != nil {
			return fmt.Errorf("failed to convert image %s: %w", name, err)
		}
		data = buf.Bytes()
	}

	s.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: imageTypeFor(format)}, bytes.NewReader(data))
	return s.takeError()
}

// takeError returns and clears a pending document error, so an unusable
// image does not spoil the rest of the document
func (s *Surface) takeError() error {
	if !s.pdf.Ok() {
		err := s.pdf.Error()
		s.pdf.ClearError()
		return fmt.Errorf("failed to embed image: %w", err)
	}
	return nil
}

func imageTypeFor(format string) string {
	if format == "jpeg" {
		return "JPG"
	}
	return "PNG"
}
