// Package avatar defines the boundary to the image-transcoding collaborator.
// The core only ever stores the PNG bytes a Processor hands back; resizing
// quality and codecs are the collaborator's problem.
package avatar

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"path/filepath"
	"strings"

	_ "image/jpeg"
)

var ErrUnsupportedImage = errors.New("unsupported image upload")

// AllowedExt reports whether the upload's file extension is on the
// allow-list (jpg, jpeg, png).
func AllowedExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png":
		return true
	}
	return false
}

// Processor turns an accepted upload into the PNG bytes stored against the
// account.
type Processor interface {
	Process(data []byte) ([]byte, error)
}

// PNGProcessor decodes the upload and re-encodes it as PNG. It stands in for
// the external transcoding service in development and tests.
type PNGProcessor struct{}

func (PNGProcessor) Process(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrUnsupportedImage
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
