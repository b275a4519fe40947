package updater

import (
	"context"
	"fmt"
	"net/http"

	"github.com/adamancini/alfredwf/internal/fsutil"
)

// downloadBufferSize is the write buffer for bundle downloads. Bundles run
// from hundreds of KB to a few MB.
const downloadBufferSize = 1 << 20

// HTTPDownloader downloads bundles over HTTP
type HTTPDownloader struct {
	client *http.Client
}

// NewHTTPDownloader creates a new HTTP downloader. A nil client uses
// http.DefaultClient.
func NewHTTPDownloader(client *http.Client) *HTTPDownloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPDownloader{client: client}
}

// Download streams url to dst, replacing any existing file. The body goes to
// a tmp file next to dst which is renamed into place only after a complete
// read, so a failed download never leaves a file at dst.
func (d *HTTPDownloader) Download(ctx context.Context, url, dst string) (int64, error) {
	op := "download " + url

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, &Error{Kind: ErrNetwork, Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, &Error{Kind: ErrNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, &Error{Kind: ErrNetwork, Op: op, Err: fmt.Errorf("server returned status %d", resp.StatusCode)}
	}

	n, err := fsutil.AtomicCopy(dst, resp.Body, 0o644, downloadBufferSize)
	if err != nil {
		return n, &Error{Kind: ErrIO, Op: op, Err: err}
	}
	return n, nil
}
