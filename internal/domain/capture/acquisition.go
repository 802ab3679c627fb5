package capture

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/hairtrack/hairtrack-api/internal/domain/analysis"
	"github.com/hairtrack/hairtrack-api/internal/pkg/imaging"
)

// MaxFileSize in bytes (10MB)
const MaxFileSize = 10 * 1024 * 1024

// Upload is a raw image offered for an angle slot.
type Upload struct {
	Method      Method
	Filename    string
	ContentType string
	Data        []byte
}

// Acquirer validates and normalizes captured images.
type Acquirer struct {
	processor *imaging.Processor
	clock     func() time.Time
}

// NewAcquirer creates an acquirer backed by processor.
func NewAcquirer(processor *imaging.Processor) *Acquirer {
	return &Acquirer{processor: processor, clock: time.Now}
}

// Accept turns up into a slot photo or returns a *RejectionError.
// Camera and gallery frames are re-encoded as {angle}.jpg; file picks keep their bytes.
func (a *Acquirer) Accept(angle analysis.Angle, up Upload) (*Photo, error) {
	contentType := detectContentType(up)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, &RejectionError{Notice: NoticeInvalidFile, Reason: contentType}
	}
	if len(up.Data) > MaxFileSize {
		return nil, &RejectionError{Notice: NoticeFileTooLarge, Reason: fmt.Sprintf("%d bytes", len(up.Data))}
	}
	if len(up.Data) == 0 {
		return nil, &RejectionError{Notice: NoticeInvalidFile, Reason: "empty file"}
	}

	decoded, err := a.processor.Decode(up.Data)
	if err != nil {
		return nil, &RejectionError{Notice: NoticeInvalidFile, Reason: err.Error()}
	}

	photo := &Photo{
		Angle:       angle,
		Method:      up.Method,
		Filename:    up.Filename,
		ContentType: contentType,
		Data:        up.Data,
		CapturedAt:  a.clock().UTC(),
	}

	switch up.Method {
	case MethodCamera, MethodGallery:
		framed, err := a.processor.NormalizeFrame(decoded.Image)
		if err != nil {
			return nil, fmt.Errorf("normalize %s frame: %w", angle, err)
		}
		photo.Data = framed
		photo.Filename = string(angle) + ".jpg"
		photo.ContentType = "image/jpeg"
	case MethodFile, "":
		photo.Method = MethodFile
		if photo.Filename == "" {
			photo.Filename = string(angle) + "." + strings.TrimPrefix(imaging.MimeFromFormat(decoded.Format), "image/")
		}
	default:
		return nil, fmt.Errorf("unknown capture method %q", up.Method)
	}

	preview, err := a.processor.Preview(decoded.Image)
	if err != nil {
		return nil, err
	}
	photo.Preview = preview
	return photo, nil
}

// detectContentType trusts the declared type unless it is missing or generic.
func detectContentType(up Upload) string {
	ct := strings.ToLower(strings.TrimSpace(up.ContentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "" || ct == "application/octet-stream" {
		return http.DetectContentType(up.Data)
	}
	return ct
}
