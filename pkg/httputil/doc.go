// Package httputil provides the HTTP plumbing used to download source
// datasets.
//
// # Overview
//
//   - [Client]: GET requests with a timeout, default headers, status
//     classification and observability hooks
//   - [Cache]: file-based caching of downloaded payloads with a TTL
//   - [Retry]: retry with exponential backoff for transient failures
//
// # Caching
//
// [Cache] stores payloads under ~/.cache/celltower/http/ by default. Keys
// are hashed, so any string (typically the URL) can be used:
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	data, ok, err := cache.GetBytes(url)
//	if !ok {
//	    data = download()
//	    _ = cache.SetBytes(url, data)
//	}
//
// # Retry
//
// Only errors wrapped in [RetryableError] are retried: connection failures
// and 5xx responses. 4xx responses fail immediately.
//
// # Defaults
//
//   - Request timeout: 60 seconds (the OFCOM export is tens of MB)
//   - Cache TTL: 24 hours
//   - Attempts: 3, starting at 1 second and doubling
//
// The cache can be cleared with `celltower cache clear`.
package httputil
