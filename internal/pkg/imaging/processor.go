package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// Config for capture normalization
type Config struct {
	FrameWidth  int // camera/gallery frame width (default 1200)
	FrameHeight int // camera/gallery frame height (default 900)
	Quality     int // JPEG quality 1-100 (default 90)
	PreviewSize int // longest preview edge (default 300)
}

// DefaultConfig returns the capture frame used by camera and gallery uploads
func DefaultConfig() Config {
	return Config{
		FrameWidth:  1200,
		FrameHeight: 900,
		Quality:     90,
		PreviewSize: 300,
	}
}

// Processor decodes, normalizes and previews scalp photos
type Processor struct {
	config Config
}

// NewProcessor creates image processor
func NewProcessor(config Config) *Processor {
	return &Processor{config: config}
}

// Decoded is a parsed image and the format name reported by the decoder.
type Decoded struct {
	Image  image.Image
	Format string
}

// Decode parses JPEG, PNG, GIF or WebP bytes.
func (p *Processor) Decode(data []byte) (*Decoded, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return &Decoded{Image: img, Format: format}, nil
}

// NormalizeFrame scales img down to fit the capture frame, keeping its
// aspect ratio, and encodes it as JPEG. Smaller images are not enlarged.
func (p *Processor) NormalizeFrame(img image.Image) ([]byte, error) {
	framed := imaging.Fit(img, p.config.FrameWidth, p.config.FrameHeight, imaging.Lanczos)
	return p.encodeJPEG(framed, p.config.Quality)
}

// Preview returns a small JPEG thumbnail as a data URI.
func (p *Processor) Preview(img image.Image) (string, error) {
	thumb := imaging.Fit(img, p.config.PreviewSize, p.config.PreviewSize, imaging.Lanczos)
	data, err := p.encodeJPEG(thumb, 80)
	if err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (p *Processor) encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MimeFromFormat maps an image.Decode format name to its MIME type
func MimeFromFormat(format string) string {
	switch format {
	case "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
