package debug

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ErrFormat is returned for an unsupported capture format.
var ErrFormat = errors.New("debug: unsupported image format")

// ImageFormat is a capture file encoding.
type ImageFormat string

// Supported capture formats.
const (
	PNG  ImageFormat = "png"
	BMP  ImageFormat = "bmp"
	TIFF ImageFormat = "tiff"
)

// Encode writes img to w in format f.
func (f ImageFormat) Encode(w io.Writer, img image.Image) error {
	switch f {
	case PNG, "":
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return fmt.Errorf("%q: %w", string(f), ErrFormat)
	}
}

func (f ImageFormat) ext() string {
	if f == "" {
		return string(PNG)
	}
	return string(f)
}

// Screenshots writes frame captures into Dir.
type Screenshots struct {
	Dir    string
	Prefix string
	Format ImageFormat

	now func() time.Time
}

// NewScreenshots creates a PNG capture sink writing into dir.
func NewScreenshots(dir, prefix string) *Screenshots {
	return &Screenshots{Dir: dir, Prefix: prefix, Format: PNG, now: time.Now}
}

// Save writes GL-ordered RGBA pixels (bottom row first) and returns the
// file path.
func (s *Screenshots) Save(pixels []byte, width, height int) (string, error) {
	if len(pixels) != width*height*4 {
		return "", fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}

	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	name := fmt.Sprintf("%s_%s.%s", s.Prefix, s.now().Format("2006-01-02_15-04-05.000"), s.Format.ext())
	path := filepath.Join(s.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	if err := s.Format.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("encoding %s: %w", s.Format.ext(), err)
	}
	return path, f.Close()
}
