package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	// Do sends a request with the given method. A nil body sends no payload.
	Do(ctx context.Context, method, url string, headers map[string]string, body any) (Response, error)
}
