package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	ErrInvalidEncoding   = errors.New("invalid base64 image data")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// Raster is a request-scoped RGB8 pixel buffer. len(Pix) is always
// Width*Height*3, row-major.
type Raster struct {
	Width  int
	Height int
	Pix    []byte
}

// Decode turns a transport payload into a Raster. The payload may carry a
// data-URL header ("data:image/png;base64,....") which is stripped at the
// first comma before decoding.
func Decode(payload string) (*Raster, error) {
	raw, err := base64.StdEncoding.DecodeString(StripDataURL(payload))
	if err != nil {
		return nil, ErrInvalidEncoding
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrUnsupportedFormat
	}

	return fromImage(img), nil
}

// StripDataURL removes an optional "...," data-URL prefix.
func StripDataURL(payload string) string {
	if idx := strings.Index(payload, ","); idx != -1 {
		return payload[idx+1:]
	}
	return payload
}

// MimeExtension infers the artifact file extension from the payload's
// data-URL marker. Payloads without a marker are stored as JPEG.
func MimeExtension(payload string) string {
	switch {
	case strings.HasPrefix(payload, "data:image/png"):
		return ".png"
	case strings.HasPrefix(payload, "data:image/webp"):
		return ".webp"
	default:
		return ".jpg"
	}
}

// Resize returns a raster scaled to the target dimensions using Catmull-Rom
// resampling. Identical input and target always produce byte-identical
// output; matching dimensions return the input untouched.
func Resize(r *Raster, width, height int) *Raster {
	if r.Width == width && r.Height == height {
		return r
	}

	src := toRGBA(r)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	return fromImage(dst)
}

// FlatRGBA expands the RGB buffer into an interleaved RGBA integer sequence
// with constant alpha 255, preserving row-major pixel order. Output length is
// Width*Height*4.
func FlatRGBA(r *Raster) []int {
	out := make([]int, 0, r.Width*r.Height*4)
	for i := 0; i+2 < len(r.Pix); i += 3 {
		out = append(out, int(r.Pix[i]), int(r.Pix[i+1]), int(r.Pix[i+2]), 255)
	}
	return out
}

func fromImage(img image.Image) *Raster {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	pix := make([]byte, 0, w*h*3)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pix = append(pix, byte(r>>8), byte(g>>8), byte(b>>8))
		}
	}

	return &Raster{Width: w, Height: h, Pix: pix}
}

func toRGBA(r *Raster) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	si := 0
	for di := 0; di < len(img.Pix); di += 4 {
		img.Pix[di] = r.Pix[si]
		img.Pix[di+1] = r.Pix[si+1]
		img.Pix[di+2] = r.Pix[si+2]
		img.Pix[di+3] = 255
		si += 3
	}
	return img
}
