package imagegen

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"net/http"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultThumbnailSize is the longest edge of a history thumbnail.
const DefaultThumbnailSize = 256

// DecodeResult decodes service output (PNG, JPEG, GIF or WebP) into a
// GenerateResult.
func DecodeResult(data []byte) (*GenerateResult, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("imagegen: empty image response")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("imagegen: response is not a decodable image (%s): %w",
			http.DetectContentType(data), err)
	}
	return &GenerateResult{
		Image:    img,
		Data:     data,
		MIMEType: "image/" + format,
	}, nil
}

// EncodePNG returns img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("imagegen: failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// Thumbnail scales img so its longest edge is maxEdge, preserving aspect
// ratio. Images already within bounds are returned unchanged.
func Thumbnail(img image.Image, maxEdge int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return img
	}

	tw, th := maxEdge, maxEdge
	if w >= h {
		th = max(1, h*maxEdge/w)
	} else {
		tw = max(1, w*maxEdge/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// ThumbnailPNG scales img with Thumbnail and encodes the result as PNG.
func ThumbnailPNG(img image.Image, maxEdge int) ([]byte, error) {
	return EncodePNG(Thumbnail(img, maxEdge))
}
