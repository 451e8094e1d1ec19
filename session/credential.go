package session

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-errors/errors"

	"paidpiper.com/nonce-gateway/common"
)

var ErrEmptyCredential = errors.New("empty client token")

// CredentialSource yields the authorization the SDK session is created with.
type CredentialSource interface {
	Resolve(ctx context.Context) (string, error)
}

// StaticToken is a ready client token or tokenization key.
type StaticToken string

func (t StaticToken) Resolve(ctx context.Context) (string, error) {
	if strings.TrimSpace(string(t)) == "" {
		return "", ErrEmptyCredential
	}
	return string(t), nil
}

type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// RemoteToken fetches the client token from a merchant endpoint.
type RemoteToken struct {
	URL     string
	Fetcher Fetcher
}

func (t RemoteToken) Resolve(ctx context.Context) (string, error) {
	if t.URL == "" {
		return "", errors.New("client token url is empty")
	}
	body, err := t.Fetcher.Fetch(ctx, t.URL)
	if err != nil {
		return "", err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ErrEmptyCredential
	}
	return body, nil
}

type HTTPFetcher struct {
	client  *http.Client
	timeout time.Duration
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:  common.NewTracedClient(),
		timeout: timeout,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	return common.HttpGetBody(ctx, f.client, url)
}
