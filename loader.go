package landscapist

import "context"

// Loader resolves a request into an image payload. Implementations must
// honour context cancellation: a Load cut short by ctx should return
// ctx.Err() (possibly wrapped) rather than a partial payload.
//
// The loader package provides the production implementation; tests and
// embedders can supply their own through LoaderFunc.
type Loader interface {
	Load(ctx context.Context, req Request) (*Payload, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, req Request) (*Payload, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, req Request) (*Payload, error) {
	return f(ctx, req)
}
