package imaging

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// Fetcher retrieves remote bytes. Implementations must fail on non-2xx
// responses.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Load resolves an image source: data URIs are decoded in place, http(s)
// URLs go through the fetcher.
func Load(ctx context.Context, src string, f Fetcher) ([]byte, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("image has no source")
	}
	if strings.HasPrefix(src, "data:") {
		return DecodeDataURI(src)
	}

	u, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse image url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		if f == nil {
			return nil, fmt.Errorf("no fetcher configured for %s", src)
		}
		return f.Fetch(ctx, src)
	default:
		return nil, fmt.Errorf("unsupported image source scheme %q", u.Scheme)
	}
}

// DecodeDataURI decodes a data: URI payload (base64 or percent-encoded).
func DecodeDataURI(uri string) ([]byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("data uri has no payload")
	}

	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			// Some producers drop the padding.
			data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
			if err != nil {
				return nil, fmt.Errorf("decode data uri: %w", err)
			}
		}
		return data, nil
	}

	text, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	return []byte(text), nil
}
