package services

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var errUnrecognizedImageURL = errors.New("unrecognized image URL")

// StoragePathFromURL extracts the object path from a stored image URL.
//
// Two forms are understood:
//
//	https://firebasestorage.googleapis.com/v0/b/<bucket>/o/<escaped path>?alt=media&token=...
//	gs://<bucket>/<path>
func StoragePathFromURL(imageURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(imageURL))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", errUnrecognizedImageURL, imageURL, err)
	}

	switch u.Scheme {
	case "gs":
		path := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || path == "" {
			return "", fmt.Errorf("%w: %s", errUnrecognizedImageURL, imageURL)
		}
		return path, nil
	case "http", "https":
		// EscapedPath keeps %2F so the object path stays one segment.
		_, escaped, found := strings.Cut(u.EscapedPath(), "/o/")
		if !found || escaped == "" {
			return "", fmt.Errorf("%w: %s", errUnrecognizedImageURL, imageURL)
		}
		path, err := url.PathUnescape(escaped)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", errUnrecognizedImageURL, imageURL, err)
		}
		return path, nil
	default:
		return "", fmt.Errorf("%w: %s", errUnrecognizedImageURL, imageURL)
	}
}
