package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"authgate/core"
)

// postForm issues a form-encoded POST with Accept: application/json and
// returns the raw response body.
func postForm(ctx context.Context, client *http.Client, rawURL string, form url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrClientCallFailed, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	return do(client, req)
}

// getJSON issues a GET with a Bearer authorization header and returns the
// raw response body.
func getJSON(ctx context.Context, client *http.Client, rawURL, accessToken string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrClientCallFailed, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return do(client, req)
}

// do executes the request and classifies failures: transport errors and
// non-2xx statuses as ErrClientCallFailed, a 2xx response without a body as
// ErrEmptyResponseBody.
func do(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrClientCallFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrClientCallFailed, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", core.ErrClientCallFailed, resp.StatusCode, string(body))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, core.ErrEmptyResponseBody
	}

	return body, nil
}
