// Package thumbnail renders the square previews shown next to tenant names.
package thumbnail

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
)

// DefaultSize is the edge length of a thumbnail in pixels.
const DefaultSize = 128

// ContentType is what Render produces.
const ContentType = "image/png"

var ErrUndecodable = errors.New("image could not be decoded")

// Supported reports whether Render can read images of contentType. Vector
// and webp logos are stored without a thumbnail.
func Supported(contentType string) bool {
	switch contentType {
	case "image/png", "image/jpeg":
		return true
	}
	return false
}

// Render decodes data and returns a size x size PNG cropped around the
// centre.
func Render(data []byte, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	thumb := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
