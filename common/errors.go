package common

import "fmt"

// HttpStatusError is returned for non-2xx replies.
type HttpStatusError struct {
	Url    string
	Status int
	Body   string
}

func (e *HttpStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Url, e.Status)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Url, e.Status, e.Body)
}

// FetchError wraps a transport or read failure with the url it happened on.
type FetchError struct {
	Url string
	Err error
}

func (e *FetchError) Error() string { return e.Url + ": " + e.Err.Error() }

func (e *FetchError) Unwrap() error { return e.Err }
