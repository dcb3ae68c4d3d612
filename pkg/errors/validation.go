package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// ValidateDatasetName checks the name stored in an interchange file.
// Names end up in page titles and file names, so control characters and path
// separators are rejected.
func ValidateDatasetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDataset, "dataset name cannot be empty")
	}
	if len(name) > 128 {
		return New(ErrCodeInvalidDataset, "dataset name too long (max 128 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDataset, "dataset name contains control characters")
		}
	}
	if strings.ContainsAny(name, `/\`) {
		return New(ErrCodeInvalidDataset, "dataset name contains path separators: %q", name)
	}
	return nil
}

// ValidateDatasetURL checks that a download URL is absolute http(s).
func ValidateDatasetURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return Wrap(ErrCodeInvalidURL, err, "parse dataset url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return New(ErrCodeInvalidURL, "dataset url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidURL, "dataset url has no host")
	}
	return nil
}
