// Package imagelist renders the image list script embedded in a gallery page
// and fetches remote JSON image lists.
package imagelist

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	kerrors "github.com/kuvia/kuvia/internal/errors"
)

// GlobalName is the window property the gallery runtime reads its images from.
const GlobalName = "kuviaimagelist"

// maxListBytes bounds the size of a remote list body.
const maxListBytes = 16 << 20

// Source is where the gallery gets its images: either a fixed list of URLs
// or the URL of a JSON array that the page fetches when it loads.
type Source struct {
	URLs    []string
	JSONURL string
}

// IsRemote reports whether the list is fetched at page load.
func (s Source) IsRemote() bool {
	return s.JSONURL != ""
}

// Render returns the script that assigns the image list to the window
// global. Values are JSON encoded, which keeps them safe inside a
// <script> element.
func Render(src Source) (string, error) {
	var value any = src.URLs
	if src.IsRemote() {
		value = src.JSONURL
	} else if src.URLs == nil {
		value = []string{}
	}

	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(value); err != nil {
		return "", fmt.Errorf("encoding image list: %w", err)
	}

	return fmt.Sprintf("window.%s = %s;", GlobalName, strings.TrimSuffix(b.String(), "\n")), nil
}

// Fetch retrieves a JSON array of image URLs with a single GET. Any non-2xx
// status or malformed body is a remote list fetch failure. There is no
// retry; the request is bounded only by ctx.
func Fetch(ctx context.Context, client *http.Client, url string) ([]string, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, kerrors.RemoteListFetchFailure(url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, kerrors.RemoteListFetchFailure(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, kerrors.RemoteListFetchFailure(url, fmt.Errorf("unexpected status %s", resp.Status)).
			WithContext("status", resp.StatusCode)
	}

	var urls []string
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxListBytes)).Decode(&urls); err != nil {
		return nil, kerrors.RemoteListFetchFailure(url, fmt.Errorf("decoding list: %w", err))
	}
	if urls == nil {
		urls = []string{}
	}
	return urls, nil
}
