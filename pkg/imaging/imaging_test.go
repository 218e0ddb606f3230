package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

// Smallest valid lossless WebP: a single black pixel.
const webpPixel = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

func encodePNG(t *testing.T, width, height int, fill color.RGBA) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, fill)
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecode_PlainBase64(t *testing.T) {
	payload := encodePNG(t, 4, 3, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	raster, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, 4, raster.Width)
	require.Equal(t, 3, raster.Height)
	require.Len(t, raster.Pix, 4*3*3)
	require.Equal(t, byte(200), raster.Pix[0])
	require.Equal(t, byte(100), raster.Pix[1])
	require.Equal(t, byte(50), raster.Pix[2])
}

func TestDecode_DataURLPrefix(t *testing.T) {
	payload := "data:image/png;base64," + encodePNG(t, 2, 2, color.RGBA{A: 255})

	raster, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, 2, raster.Width)
	require.Equal(t, 2, raster.Height)
}

func TestDecode_JPEGRoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 7))
	for y := 0; y < 7; y++ {
		for x := 0; x < 5; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 180, G: 90, B: 45, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	payload := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	raster, err := Decode(payload)
	require.NoError(t, err)
	require.Equal(t, 5, raster.Width)
	require.Equal(t, 7, raster.Height)
	require.Len(t, raster.Pix, 5*7*3)
	// Lossy codec, so only check the channels landed in the right ballpark.
	require.InDelta(t, 180, int(raster.Pix[0]), 16)
	require.InDelta(t, 90, int(raster.Pix[1]), 16)
	require.InDelta(t, 45, int(raster.Pix[2]), 16)
}

func TestDecode_WebP(t *testing.T) {
	raster, err := Decode("data:image/webp;base64," + webpPixel)
	require.NoError(t, err)
	require.Equal(t, 1, raster.Width)
	require.Equal(t, 1, raster.Height)
	require.Len(t, raster.Pix, 1*1*3)
}

func TestDecode_InvalidBase64(t *testing.T) {
	_, err := Decode("this is not base64!!!")
	require.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestDecode_UnsupportedFormat(t *testing.T) {
	payloads := []string{
		base64.StdEncoding.EncodeToString([]byte("GIF89a not really an image")),
		// RIFF container that is not a WebP stream.
		base64.StdEncoding.EncodeToString([]byte("RIFF\x10\x00\x00\x00WAVEfmt data")),
		"data:image/webp;base64," + base64.StdEncoding.EncodeToString([]byte("not webp bytes")),
	}

	for _, payload := range payloads {
		_, err := Decode(payload)
		require.ErrorIs(t, err, ErrUnsupportedFormat)
	}
}

func TestStripDataURL(t *testing.T) {
	require.Equal(t, "abcd", StripDataURL("data:image/jpeg;base64,abcd"))
	require.Equal(t, "abcd", StripDataURL("abcd"))
}

func TestMimeExtension(t *testing.T) {
	require.Equal(t, ".png", MimeExtension("data:image/png;base64,xxx"))
	require.Equal(t, ".webp", MimeExtension("data:image/webp;base64,xxx"))
	require.Equal(t, ".jpg", MimeExtension("data:image/jpeg;base64,xxx"))
	require.Equal(t, ".jpg", MimeExtension("xxx"))
}

func TestResize_NoopOnMatchingDimensions(t *testing.T) {
	r := &Raster{Width: 2, Height: 2, Pix: make([]byte, 12)}
	require.Same(t, r, Resize(r, 2, 2))
}

func TestResize_Deterministic(t *testing.T) {
	payload := encodePNG(t, 8, 8, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	raster, err := Decode(payload)
	require.NoError(t, err)

	first := Resize(raster, 4, 4)
	second := Resize(raster, 4, 4)

	require.Equal(t, 4, first.Width)
	require.Equal(t, 4, first.Height)
	require.Len(t, first.Pix, 4*4*3)
	require.Equal(t, first.Pix, second.Pix)
}

func TestFlatRGBA(t *testing.T) {
	r := &Raster{Width: 2, Height: 1, Pix: []byte{1, 2, 3, 4, 5, 6}}

	flat := FlatRGBA(r)

	require.Equal(t, []int{1, 2, 3, 255, 4, 5, 6, 255}, flat)
	require.Len(t, flat, r.Width*r.Height*4)
}
