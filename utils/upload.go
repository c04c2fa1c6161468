package utils

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

const MaxUploadSizeBytes int64 = 10 << 20

var (
	PDFMimeTypes   = []string{"application/pdf"}
	ImageMimeTypes = []string{"image/jpeg", "image/png", "image/gif"}
)

// ReadUpload reads at most limit bytes and fails when the body is larger.
func ReadUpload(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, NewValidationError("file", fmt.Sprintf("file size exceeds %dMB limit", limit>>20))
	}
	if len(data) == 0 {
		return nil, NewValidationError("file", "file is empty")
	}
	return data, nil
}

// DetectAllowedType sniffs the content and checks it against allowed.
// It returns the detected mime type and its usual extension.
func DetectAllowedType(data []byte, allowed []string) (string, string, error) {
	mt := mimetype.Detect(data)
	for _, a := range allowed {
		if mt.Is(a) {
			ext := mt.Extension()
			if ext == ".jpeg" {
				ext = ".jpg"
			}
			return a, ext, nil
		}
	}
	return "", "", NewValidationError("file", "unsupported file type: "+mt.String())
}

// MakeThumbnail scales an image to width pixels wide and encodes it as JPEG.
func MakeThumbnail(data []byte, width int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	thumbnail := imaging.Resize(img, width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumbnail, imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ThumbnailObjectKey(objectKey string) string {
	dir := path.Dir(objectKey)
	filename := strings.TrimSuffix(path.Base(objectKey), path.Ext(objectKey)) + ".jpg"
	return path.Join(dir, "thumbnails", filename)
}

func SanitizeSegment(input string) string {
	var out strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(input)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_':
			out.WriteRune(r)
		case r == ' ':
			out.WriteRune('_')
		}
	}
	return out.String()
}
