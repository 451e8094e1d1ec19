package common

import (
	"context"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxBodyPreview = 256

// NewTracedClient returns an http client whose requests carry trace context.
func NewTracedClient() *http.Client {
	return &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
}

// HttpGetBody performs a GET and returns the body text of a 2xx reply.
func HttpGetBody(ctx context.Context, client *http.Client, url string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{Url: url, Err: err}
	}
	req.Header.Set("Accept", "text/plain, application/json")

	res, err := client.Do(req)
	if err != nil {
		return "", &FetchError{Url: url, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", &FetchError{Url: url, Err: err}
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		preview := strings.TrimSpace(string(body))
		if len(preview) > maxBodyPreview {
			preview = preview[:maxBodyPreview]
		}
		return "", &HttpStatusError{Url: url, Status: res.StatusCode, Body: preview}
	}
	return string(body), nil
}
