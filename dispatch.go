package landscapist

import (
	"image"
	"image/draw"
)

// bitmapPixelCap bounds the RGBA projection handed to plugins. Larger
// images skip the projection rather than stall the update loop.
const bitmapPixelCap = 1 << 22

// notify dispatches a state transition to every plugin with a matching
// capability, in registration order.
func (c *ImageComponent) notify(e Event) {
	if c == nil {
		return
	}
	for _, p := range c.plugins {
		switch e.State.(type) {
		case Loading:
			if o, ok := p.(LoadingObserver); ok {
				o.OnLoading(e)
			}
		case Success:
			if o, ok := p.(SuccessObserver); ok {
				o.OnSuccess(e)
			}
		case Failure:
			if o, ok := p.(FailureObserver); ok {
				o.OnFailure(e)
			}
		}
	}
}

// decorate folds the rendered view through every decorator in
// registration order.
func (c *ImageComponent) decorate(s State, view string) string {
	if c == nil {
		return view
	}
	for _, p := range c.plugins {
		if d, ok := p.(Decorator); ok {
			view = d.Decorate(s, view)
		}
	}
	return view
}

// deriveBitmap projects img into RGBA for plugin consumption. It returns
// nil for absent or oversized images, and recovers from misbehaving
// image implementations; a failed projection never affects the state
// machine.
func deriveBitmap(img image.Image) (bitmap *image.RGBA) {
	defer func() {
		if recover() != nil {
			bitmap = nil
		}
	}()
	if img == nil {
		return nil
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil
	}
	if bounds.Dx()*bounds.Dy() > bitmapPixelCap {
		return nil
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	dst := image.NewRGBA(bounds)
	draw.Draw(dst, bounds, img, bounds.Min, draw.Src)
	return dst
}

// eventFor assembles the plugin event for a state transition.
func eventFor(req Request, s State) Event {
	e := Event{Request: req, State: s}
	switch st := s.(type) {
	case Success:
		e.Bitmap = deriveBitmap(st.Payload.Image)
	case Failure:
		e.Bitmap = deriveBitmap(st.Partial)
	}
	return e
}
