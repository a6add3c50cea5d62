package loader

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NCSOPHAL/landscapist"
	pkgerrors "github.com/NCSOPHAL/landscapist/pkg/errors"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 40), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func gifBytes(t *testing.T, frames int) []byte {
	t.Helper()
	anim := &gif.GIF{}
	for i := 0; i < frames; i++ {
		frame := image.NewPaletted(image.Rect(0, 0, 4, 4), palette.Plan9)
		for x := 0; x < 4; x++ {
			frame.SetColorIndex(x, x, uint8(i+1))
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 5)
	}
	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, anim))
	return buf.Bytes()
}

func TestSniffFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, landscapist.FormatPNG, sniffFormat(pngBytes(t, 2, 2)))
	assert.Equal(t, landscapist.FormatJPEG, sniffFormat(jpegBytes(t)))
	assert.Equal(t, landscapist.FormatGIF, sniffFormat(gifBytes(t, 1)))
	assert.Equal(t, landscapist.FormatBMP, sniffFormat([]byte("BM0000")))
	assert.Equal(t, landscapist.FormatTIFF, sniffFormat([]byte{'I', 'I', 0x2a, 0x00, 0x00}))
	assert.Equal(t, landscapist.FormatWebP, sniffFormat([]byte("RIFF\x00\x00\x00\x00WEBPVP8 ")))
	assert.Equal(t, landscapist.FormatUnknown, sniffFormat([]byte("not an image")))
	assert.Equal(t, landscapist.FormatUnknown, sniffFormat(nil))
}

func TestDecodePNG(t *testing.T) {
	t.Parallel()

	l, err := New(WithoutDiskCache())
	require.NoError(t, err)

	payload, err := l.decodeData(pngBytes(t, 3, 5))
	require.NoError(t, err)
	assert.Equal(t, landscapist.FormatPNG, payload.Format)
	assert.Equal(t, 3, payload.Bounds().Dx())
	assert.Equal(t, 5, payload.Bounds().Dy())
	assert.False(t, payload.Animated())
}

func TestDecodeGIFAnimation(t *testing.T) {
	t.Parallel()

	l, err := New(WithoutDiskCache())
	require.NoError(t, err)

	payload, err := l.decodeData(gifBytes(t, 3))
	require.NoError(t, err)
	assert.Equal(t, landscapist.FormatGIF, payload.Format)
	require.Len(t, payload.Frames, 3)
	assert.True(t, payload.Animated())
	assert.Equal(t, 50*time.Millisecond, payload.Frames[0].Delay)
	assert.NotNil(t, payload.Image, "the first frame doubles as the still image")

	for _, frame := range payload.Frames {
		assert.Equal(t, payload.Bounds(), frame.Image.Bounds(),
			"coalesced frames share the canvas bounds")
	}
}

func TestDecodeGIFTruncatedYieldsPartial(t *testing.T) {
	t.Parallel()

	l, err := New(WithoutDiskCache())
	require.NoError(t, err)

	data := gifBytes(t, 3)
	// Chop the stream after the first frame's data has gone through.
	truncated := data[:len(data)-10]

	_, err = l.decodeData(truncated)
	require.Error(t, err)
	if partial := pkgerrors.Partial(err); partial != nil {
		assert.False(t, partial.Bounds().Empty())
	}
}

func TestDecodeGarbage(t *testing.T) {
	t.Parallel()

	l, err := New(WithoutDiskCache())
	require.NoError(t, err)

	_, err = l.decodeData([]byte("definitely not pixels"))
	require.Error(t, err)
	var derr *pkgerrors.DecodeError
	assert.ErrorAs(t, err, &derr)

	_, err = l.decodeData(nil)
	assert.ErrorIs(t, err, pkgerrors.ErrUnsupportedImage)
}

func TestDecodeRejectsHugeDimensions(t *testing.T) {
	t.Parallel()

	// A PNG header declaring 100000x100000 pixels; only the header needs
	// to parse for the guard to trip.
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	data := buf.Bytes()

	// Patch the IHDR width and height fields (big endian, offsets 16/20)
	// and rewrite the chunk CRC so the header still parses.
	for _, off := range []int{16, 20} {
		binary.BigEndian.PutUint32(data[off:off+4], 100000)
	}
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))

	l, err := New(WithoutDiskCache())
	require.NoError(t, err)

	_, err = l.decodeData(data)
	assert.ErrorIs(t, err, pkgerrors.ErrImageTooLarge)
}

func TestFormatFromName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, landscapist.FormatPNG, formatFromName("png"))
	assert.Equal(t, landscapist.FormatWebP, formatFromName("webp"))
	assert.Equal(t, landscapist.FormatUnknown, formatFromName("pcx"))
}

func TestWithDecoderOverride(t *testing.T) {
	t.Parallel()

	replacement := image.NewRGBA(image.Rect(0, 0, 9, 9))
	l, err := New(WithoutDiskCache(), WithDecoder(landscapist.FormatPNG,
		func(data []byte) (*landscapist.Payload, error) {
			return &landscapist.Payload{Image: replacement, Format: landscapist.FormatPNG}, nil
		},
	))
	require.NoError(t, err)

	payload, err := l.decodeData(pngBytes(t, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, 9, payload.Bounds().Dx(), "the registered decoder replaces the default")
}
