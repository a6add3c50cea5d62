package landscapist

import (
	"image"
	"time"
)

// Format identifies the encoded image codec of a payload.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatGIF     Format = "gif"
	FormatWebP    Format = "webp"
	FormatBMP     Format = "bmp"
	FormatTIFF    Format = "tiff"
	FormatUnknown Format = "unknown"
)

// DataSource records where a payload was ultimately produced from.
type DataSource string

const (
	DataSourceUnknown DataSource = "unknown"
	DataSourceMemory  DataSource = "memory"
	DataSourceDisk    DataSource = "disk"
	DataSourceNetwork DataSource = "network"
	DataSourceLocal   DataSource = "local"
	DataSourceDirect  DataSource = "direct"
)

// Frame is a single frame of an animated payload.
type Frame struct {
	Image image.Image
	Delay time.Duration
}

// Payload is the decoded visual result of a successful load.
type Payload struct {
	// Image is the primary still (for animated sources, the first frame).
	Image image.Image
	// Frames holds the coalesced animation frames; nil or length 1 for
	// still images.
	Frames []Frame
	Format Format
	From   DataSource
	// Elapsed is the wall time the loader spent producing the payload.
	Elapsed time.Duration
}

// Animated reports whether the payload carries more than one frame.
func (p Payload) Animated() bool {
	return len(p.Frames) > 1
}

// Bounds returns the pixel bounds of the primary image, or the zero
// rectangle when no image is present.
func (p Payload) Bounds() image.Rectangle {
	if p.Image == nil {
		return image.Rectangle{}
	}
	return p.Image.Bounds()
}

// State is the presentation state of an image request. Exactly one of the
// four variants (None, Loading, Success, Failure) is current at any time;
// transitions run None → Loading → {Success | Failure} and restart at
// Loading when the request identity changes.
type State interface {
	isState()
}

// None is the state before any request has been issued.
type None struct{}

// Loading is the state while a request is in flight.
type Loading struct{}

// Success carries the decoded payload of a completed load.
type Success struct {
	Payload Payload
}

// Failure carries the load error and, when available, a partial payload
// (stale cache image or the frames decoded before the failure).
type Failure struct {
	Partial image.Image
	Err     error
}

func (None) isState()    {}
func (Loading) isState() {}
func (Success) isState() {}
func (Failure) isState() {}

var (
	_ State = None{}
	_ State = Loading{}
	_ State = Success{}
	_ State = Failure{}
)

// IsTerminal reports whether s ends a load sequence.
func IsTerminal(s State) bool {
	switch s.(type) {
	case Success, Failure:
		return true
	default:
		return false
	}
}

// StateName returns a short lowercase tag for s, for logs and tests.
func StateName(s State) string {
	switch s.(type) {
	case None:
		return "none"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}
