package loader

import (
	"bytes"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/NCSOPHAL/landscapist"
	pkgerrors "github.com/NCSOPHAL/landscapist/pkg/errors"
)

// DecodeFunc turns encoded bytes into a payload.
type DecodeFunc func(data []byte) (*landscapist.Payload, error)

const (
	// maxFrames bounds how many animation frames are decoded.
	maxFrames = 128
	// decodePixelCap rejects images whose declared dimensions would
	// decode into an unreasonable amount of memory.
	decodePixelCap = int64(1) << 26
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

// sniffFormat identifies the encoded format from its magic bytes.
func sniffFormat(data []byte) landscapist.Format {
	switch {
	case len(data) >= 8 && bytes.Equal(data[:8], pngMagic):
		return landscapist.FormatPNG
	case len(data) >= 3 && data[0] == 0xff && data[1] == 0xd8 && data[2] == 0xff:
		return landscapist.FormatJPEG
	case bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a")):
		return landscapist.FormatGIF
	case len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return landscapist.FormatWebP
	case bytes.HasPrefix(data, []byte("BM")):
		return landscapist.FormatBMP
	case bytes.HasPrefix(data, []byte{'I', 'I', 0x2a, 0x00}) || bytes.HasPrefix(data, []byte{'M', 'M', 0x00, 0x2a}):
		return landscapist.FormatTIFF
	default:
		return landscapist.FormatUnknown
	}
}

func defaultDecoders() map[landscapist.Format]DecodeFunc {
	return map[landscapist.Format]DecodeFunc{
		landscapist.FormatPNG:  decodeStatic(landscapist.FormatPNG, png.Decode),
		landscapist.FormatJPEG: decodeStatic(landscapist.FormatJPEG, jpeg.Decode),
		landscapist.FormatWebP: decodeStatic(landscapist.FormatWebP, webp.Decode),
		landscapist.FormatBMP:  decodeStatic(landscapist.FormatBMP, bmp.Decode),
		landscapist.FormatTIFF: decodeStatic(landscapist.FormatTIFF, tiff.Decode),
		landscapist.FormatGIF:  decodeGIF,
	}
}

// decodeStatic adapts a single-image decode function to a DecodeFunc.
func decodeStatic(format landscapist.Format, fn func(io.Reader) (image.Image, error)) DecodeFunc {
	return func(data []byte) (*landscapist.Payload, error) {
		img, err := fn(bytes.NewReader(data))
		if err != nil {
			return nil, pkgerrors.NewDecodeError(string(format), err)
		}
		return &landscapist.Payload{Image: img, Format: format}, nil
	}
}

// decodeGIF decodes every frame and coalesces them onto a shared canvas
// so each frame is a complete image. A truncated stream still yields its
// first frame as a partial result.
func decodeGIF(data []byte) (*landscapist.Payload, error) {
	anim, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		if img, _, derr := image.Decode(bytes.NewReader(data)); derr == nil {
			return nil, pkgerrors.NewPartialDecodeError("gif", img, err)
		}
		return nil, pkgerrors.NewDecodeError("gif", err)
	}
	if len(anim.Image) == 0 {
		return nil, pkgerrors.NewDecodeError("gif", pkgerrors.ErrUnsupportedImage)
	}

	frames := coalesceFrames(anim)
	return &landscapist.Payload{
		Image:  frames[0].Image,
		Frames: frames,
		Format: landscapist.FormatGIF,
	}, nil
}

// coalesceFrames composites paletted GIF frames into standalone RGBA
// images, honouring each frame's disposal mode. Frames beyond maxFrames
// are dropped.
func coalesceFrames(anim *gif.GIF) []landscapist.Frame {
	bounds := image.Rect(0, 0, anim.Config.Width, anim.Config.Height)
	if bounds.Empty() {
		bounds = anim.Image[0].Bounds()
	}

	count := len(anim.Image)
	if count > maxFrames {
		count = maxFrames
	}

	canvas := image.NewRGBA(bounds)
	frames := make([]landscapist.Frame, 0, count)
	var prev *image.RGBA

	for i := 0; i < count; i++ {
		src := anim.Image[i]

		var disposal byte
		if i < len(anim.Disposal) {
			disposal = anim.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			prev = cloneRGBA(canvas)
		}

		draw.Draw(canvas, src.Bounds(), src, src.Bounds().Min, draw.Over)

		var delay time.Duration
		if i < len(anim.Delay) {
			// GIF delays count hundredths of a second.
			delay = time.Duration(anim.Delay[i]) * 10 * time.Millisecond
		}
		frames = append(frames, landscapist.Frame{
			Image: cloneRGBA(canvas),
			Delay: delay,
		})

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, src.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			if prev != nil {
				canvas = prev
			}
		}
	}

	return frames
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// decodeAny is the fallback for unrecognised magic bytes: whatever format
// the image registry can make sense of.
func decodeAny(data []byte) (*landscapist.Payload, error) {
	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, pkgerrors.NewDecodeError("unknown", err)
	}
	return &landscapist.Payload{Image: img, Format: formatFromName(name)}, nil
}

func formatFromName(name string) landscapist.Format {
	switch f := landscapist.Format(name); f {
	case landscapist.FormatJPEG, landscapist.FormatPNG, landscapist.FormatGIF,
		landscapist.FormatWebP, landscapist.FormatBMP, landscapist.FormatTIFF:
		return f
	}
	return landscapist.FormatUnknown
}

// checkDimensions rejects images whose header declares dimensions over
// the pixel cap, before any pixels are allocated. Headers the registry
// cannot parse pass through for the real decoder to diagnose.
func checkDimensions(data []byte) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil
	}
	if int64(cfg.Width)*int64(cfg.Height) > decodePixelCap {
		return pkgerrors.ErrImageTooLarge
	}
	return nil
}
