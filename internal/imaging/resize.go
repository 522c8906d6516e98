package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	_ "image/jpeg"

	"golang.org/x/image/draw"
)

const (
	MaxSourcePixels = 25_000_000
	MaxSourceSide   = 10_000
)

var (
	ErrInvalidDimensions = errors.New("target dimensions must be positive")
	ErrSourceTooLarge    = errors.New("source image dimensions too large")
)

// ToPNG decodes a JPEG or PNG image, crops it around the center to the
// target aspect ratio and scales it to exactly width x height. The declared
// source size is checked before any pixel buffer is allocated.
func ToPNG(r io.Reader, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image header: %w", err)
	}
	if cfg.Width > MaxSourceSide || cfg.Height > MaxSourceSide ||
		int64(cfg.Width)*int64(cfg.Height) > MaxSourcePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrSourceTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, coverRect(src.Bounds(), width, height), draw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return buf.Bytes(), nil
}

// coverRect returns the largest centered sub-rectangle of b with the aspect
// ratio width:height.
func coverRect(b image.Rectangle, width, height int) image.Rectangle {
	srcW, srcH := b.Dx(), b.Dy()

	if srcW*height > srcH*width {
		cropW := srcH * width / height
		x0 := b.Min.X + (srcW-cropW)/2
		return image.Rect(x0, b.Min.Y, x0+cropW, b.Max.Y)
	}

	cropH := srcW * height / width
	y0 := b.Min.Y + (srcH-cropH)/2
	return image.Rect(b.Min.X, y0, b.Max.X, y0+cropH)
}
