package mirror

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mirrorproxy/flexo/internal/cache"
)

// HTTPJob is one attempt at fetching an HTTPOrder from an HTTPProvider.
type HTTPJob struct {
	provider HTTPProvider
	order    HTTPOrder
}

// ServeFromProvider issues a GET (with a Range header when cachedSize > 0)
// and streams the response body into the on-disk cache file, reporting
// bytes served via the channel's progress counter as they arrive.
func (j *HTTPJob) ServeFromProvider(ctx context.Context, channel cache.Channel, properties cache.Properties, cachedSize uint64) cache.JobResult {
	ch, _ := channel.(*HTTPChannel)
	props, _ := properties.(Properties)

	url := strings.TrimRight(j.provider.BaseURL, "/") + "/" + strings.TrimLeft(j.order.Path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return cache.JobResult{Kind: cache.ClientError, Err: err}
	}
	if cachedSize > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", cachedSize))
	}

	resp, err := j.provider.httpClient().Do(req)
	if err != nil {
		return cache.JobResult{Kind: cache.Error, Channel: channel, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		if ch != nil {
			ch.sendUnavailable()
		}
		return cache.JobResult{Kind: cache.Unavailable, Channel: channel}
	case resp.StatusCode >= http.StatusInternalServerError:
		return cache.JobResult{Kind: cache.Error, Channel: channel, Err: fmt.Errorf("mirror: %s: %s", url, resp.Status)}
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent:
		return cache.JobResult{Kind: cache.Error, Channel: channel, Err: fmt.Errorf("mirror: %s: unexpected status %s", url, resp.Status)}
	}

	destPath := filepath.Join(props.CacheDir, filepath.FromSlash(j.order.Path))
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return cache.JobResult{Kind: cache.UnexpectedInternalError, Err: err}
	}

	flags := os.O_CREATE | os.O_WRONLY
	var startOffset int64
	if resp.StatusCode == http.StatusPartialContent {
		flags |= os.O_APPEND
		startOffset = int64(cachedSize)
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(destPath, flags, 0o644)
	if err != nil {
		return cache.JobResult{Kind: cache.UnexpectedInternalError, Err: err}
	}
	defer f.Close()

	if ch != nil {
		if remaining, err := strconv.ParseUint(resp.Header.Get("Content-Length"), 10, 64); err == nil {
			ch.sendJobSize(uint64(startOffset) + remaining)
		}
	}

	written, copyErr := copyTracked(f, resp.Body, ch)
	if copyErr != nil {
		return cache.JobResult{
			Kind:       cache.Partial,
			Channel:    channel,
			ContinueAt: uint64(startOffset) + written,
			Err:        copyErr,
		}
	}

	totalSize := uint64(startOffset) + written
	if err := writeSizeSidecar(destPath, totalSize); err != nil {
		return cache.JobResult{Kind: cache.UnexpectedInternalError, Err: err}
	}

	if ch != nil {
		ch.sendCompleted()
	}
	return cache.JobResult{Kind: cache.Complete, Channel: channel, Size: totalSize}
}

// HandleError converts a channel-acquisition failure into a terminal
// JobResult without contacting the provider.
func (j *HTTPJob) HandleError(err error) cache.JobResult {
	return cache.JobResult{Kind: cache.Error, Err: err}
}

func writeSizeSidecar(destPath string, size uint64) error {
	sidecar := destPath + ".size"
	tmp := sidecar + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.FormatUint(size, 10)), 0o644); err != nil {
		return fmt.Errorf("mirror: write size sidecar: %w", err)
	}
	return os.Rename(tmp, sidecar)
}
