package ofcom

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/celltower/pkg/buildinfo"
	apperrors "github.com/matzehuels/celltower/pkg/errors"
	"github.com/matzehuels/celltower/pkg/httputil"
)

// Fetcher downloads the export and keeps a copy on disk.
type Fetcher struct {
	client  *httputil.Client
	cache   *httputil.Cache
	logger  *log.Logger
	retries int
	backoff time.Duration
}

// NewFetcher creates a fetcher caching payloads for ttl. A nil cache
// disables caching; a nil logger discards log output.
func NewFetcher(client *httputil.Client, cache *httputil.Cache, logger *log.Logger) *Fetcher {
	if client == nil {
		client = httputil.NewClient(nil, map[string]string{
			"Accept":     "application/geo+json, application/json",
			"User-Agent": buildinfo.UserAgent(),
		})
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Fetcher{client: client, cache: cache, logger: logger, retries: 3, backoff: time.Second}
}

// Fetch returns the raw export at url. Unless refresh is set, a fresh cache
// entry is returned without touching the network. The returned bool
// reports a cache hit.
func (f *Fetcher) Fetch(ctx context.Context, url string, refresh bool) ([]byte, bool, error) {
	if err := apperrors.ValidateDatasetURL(url); err != nil {
		return nil, false, err
	}

	if f.cache != nil && !refresh {
		data, ok, err := f.cache.GetBytes(url)
		switch {
		case ok:
			f.logger.Debug("dataset cache hit", "url", url, "bytes", len(data))
			return data, true, nil
		case errors.Is(err, httputil.ErrExpired):
			f.logger.Debug("dataset cache expired", "url", url)
		case err != nil:
			f.logger.Warn("dataset cache read failed", "err", err)
		}
	}

	var data []byte
	err := httputil.Retry(ctx, f.retries, f.backoff, func() error {
		body, err := f.client.GetBytes(ctx, url)
		if err != nil {
			if httputil.IsRetryable(err) {
				f.logger.Debug("download failed, retrying", "url", url, "err", err)
			}
			return err
		}
		data = body
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, false, err
		}
		return nil, false, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "download %s", url)
	}

	if f.cache != nil {
		if err := f.cache.SetBytes(url, data); err != nil {
			f.logger.Warn("dataset cache write failed", "err", err)
		}
	}
	f.logger.Info("downloaded dataset", "url", url, "bytes", len(data))
	return data, false, nil
}

// FetchCollection downloads and decodes the export.
func (f *Fetcher) FetchCollection(ctx context.Context, url string, refresh bool) (*FeatureCollection, bool, error) {
	data, hit, err := f.Fetch(ctx, url, refresh)
	if err != nil {
		return nil, false, err
	}
	fc, err := DecodeBytes(data)
	return fc, hit, err
}
