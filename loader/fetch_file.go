package loader

import (
	"context"
	"os"
	"strings"

	"github.com/NCSOPHAL/landscapist"
	pkgerrors "github.com/NCSOPHAL/landscapist/pkg/errors"
)

// fileFetcher reads images from the local filesystem. It serves both
// file:// URLs and bare paths.
type fileFetcher struct {
	maxBytes int64
}

func (f *fileFetcher) Schemes() []string {
	return []string{"", "file"}
}

func (f *fileFetcher) Fetch(ctx context.Context, req landscapist.Request) ([]byte, landscapist.DataSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, landscapist.DataSourceUnknown, err
	}

	path := strings.TrimPrefix(req.URL(), "file://")

	if f.maxBytes > 0 {
		info, err := os.Stat(path)
		if err != nil {
			return nil, landscapist.DataSourceUnknown, pkgerrors.NewFetchError(req.URL(), err)
		}
		if info.Size() > f.maxBytes {
			return nil, landscapist.DataSourceUnknown,
				pkgerrors.NewFetchError(req.URL(), pkgerrors.ErrImageTooLarge)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, landscapist.DataSourceUnknown, pkgerrors.NewFetchError(req.URL(), err)
	}
	return data, landscapist.DataSourceLocal, nil
}
