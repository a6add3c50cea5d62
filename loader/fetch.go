package loader

import (
	"context"
	"strings"

	"github.com/NCSOPHAL/landscapist"
)

// Fetcher retrieves encoded image bytes for one or more URL schemes.
// Implementations must honour context cancellation and should return
// errors built with the pkg/errors constructors so failures stay
// inspectable upstream.
type Fetcher interface {
	// Schemes lists the lowercase schemes this fetcher serves. The empty
	// string matches bare filesystem paths.
	Schemes() []string
	// Fetch returns the encoded bytes and where they came from.
	Fetch(ctx context.Context, req landscapist.Request) ([]byte, landscapist.DataSource, error)
}

// schemeOf extracts the lowercase scheme from a source URL. Sources
// without a scheme separator are treated as bare paths.
func schemeOf(source string) string {
	idx := strings.Index(source, "://")
	if idx <= 0 {
		return ""
	}
	return strings.ToLower(source[:idx])
}
