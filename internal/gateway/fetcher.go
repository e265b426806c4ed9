package gateway

import (
	"context"
	"io"
	"net/http"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
)

// Fetcher downloads remote documents such as the health report PDFs linked
// from properties.
type Fetcher struct {
	http *http.Client
	lggr *zap.SugaredLogger
}

func NewFetcher(lggr *zap.SugaredLogger) *Fetcher {
	return &Fetcher{http: &http.Client{Timeout: httpTimeout}, lggr: lggr.Named("fetcher")}
}

// Fetch returns the response body of a successful GET. The caller closes it.
func (f *Fetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	return retry.DoWithData(func() (io.ReadCloser, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, retry.Unrecoverable(err)
		}
		resp, err := f.http.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, &StatusError{Service: "document host", Code: resp.StatusCode}
		}
		return resp.Body, nil
	}, retryOpts(ctx, f.lggr, "fetch", defaultAttempts, defaultDelay)...)
}
