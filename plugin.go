package landscapist

import "image"

// Plugin is the base interface every extension implements. A plugin
// becomes active by also implementing one or more of the observer and
// decorator interfaces below; the component inspects capabilities at
// dispatch time.
type Plugin interface {
	Name() string
}

// Event carries the context a plugin observes at a state transition.
// Bitmap is a best-effort RGBA projection of the terminal image (the
// payload image on success, the partial image on failure) and may be nil.
type Event struct {
	Request Request
	State   State
	Bitmap  *image.RGBA
}

// LoadingObserver is notified when a request enters the loading state.
type LoadingObserver interface {
	Plugin
	OnLoading(e Event)
}

// SuccessObserver is notified when a request completes successfully.
type SuccessObserver interface {
	Plugin
	OnSuccess(e Event)
}

// FailureObserver is notified when a request fails.
type FailureObserver interface {
	Plugin
	OnFailure(e Event)
}

// Decorator rewrites the rendered view for a state. Decorators run after
// the state renderer, in registration order, each receiving the previous
// decorator's output.
type Decorator interface {
	Plugin
	Decorate(s State, view string) string
}

// ImageComponent is an ordered plugin set shared across image components.
// Registration order is dispatch order. It is not safe for concurrent
// mutation; build the set up front and share it read-only.
type ImageComponent struct {
	plugins []Plugin
}

// NewImageComponent builds a plugin set from ps, skipping nil entries.
func NewImageComponent(ps ...Plugin) *ImageComponent {
	c := &ImageComponent{}
	for _, p := range ps {
		c.Add(p)
	}
	return c
}

// Add appends a plugin and returns the component for chaining.
func (c *ImageComponent) Add(p Plugin) *ImageComponent {
	if p != nil {
		c.plugins = append(c.plugins, p)
	}
	return c
}

// Plugins returns the registered plugins in dispatch order.
func (c *ImageComponent) Plugins() []Plugin {
	out := make([]Plugin, len(c.plugins))
	copy(out, c.plugins)
	return out
}
