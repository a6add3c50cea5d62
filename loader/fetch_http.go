package loader

import (
	"context"
	"io"
	"net/http"

	"github.com/NCSOPHAL/landscapist"
	pkgerrors "github.com/NCSOPHAL/landscapist/pkg/errors"
)

// httpFetcher retrieves images over HTTP and HTTPS. Request headers ride
// along verbatim; the User-Agent applies only when the request does not
// set its own.
type httpFetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
}

func (f *httpFetcher) Schemes() []string {
	return []string{"http", "https"}
}

func (f *httpFetcher) Fetch(ctx context.Context, req landscapist.Request) ([]byte, landscapist.DataSource, error) {
	url := req.URL()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, landscapist.DataSourceUnknown, pkgerrors.NewFetchError(url, err)
	}
	if f.userAgent != "" {
		httpReq.Header.Set("User-Agent", f.userAgent)
	}
	for key, value := range req.Headers() {
		httpReq.Header.Set(key, value)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, landscapist.DataSourceUnknown, pkgerrors.NewFetchError(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, landscapist.DataSourceUnknown, pkgerrors.NewFetchStatusError(url, resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		if resp.ContentLength > f.maxBytes {
			return nil, landscapist.DataSourceUnknown,
				pkgerrors.NewFetchError(url, pkgerrors.ErrImageTooLarge)
		}
		// One extra byte distinguishes "exactly at the limit" from over.
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, landscapist.DataSourceUnknown, pkgerrors.NewFetchError(url, err)
	}
	if f.maxBytes > 0 && int64(len(data)) > f.maxBytes {
		return nil, landscapist.DataSourceUnknown,
			pkgerrors.NewFetchError(url, pkgerrors.ErrImageTooLarge)
	}

	return data, landscapist.DataSourceNetwork, nil
}
