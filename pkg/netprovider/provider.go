// Package netprovider executes requests against a JSON API and decodes the
// responses into caller-specified types.
package netprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/placeholder-sync/pkg/httpclient"
)

const (
	// DefaultBaseURL is the endpoint every request path is resolved against.
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"

	headerContentType = "Content-Type"
	mimeJSON          = "application/json"

	defaultTimeout = 15 * time.Second
)

var (
	errEmptyBody = errors.New("response body is empty")
	errNullBody  = errors.New("response body is null")
)

// Validator is implemented by result types with non-optional fields. It runs
// after decoding and a failure is reported as InvalidData.
type Validator interface {
	Validate() error
}

// Logger receives the provider's diagnostics: failures at error level, decoded
// results at debug level.
type Logger interface {
	DebugObj(msg, key string, obj any)
	ErrorObj(msg, key string, obj any)
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, any) {}
func (noopLogger) ErrorObj(string, string, any) {}

// Provider resolves request paths against a base URL and sends them through
// an httpclient.Client. It holds no per-call state and is safe for concurrent use.
type Provider struct {
	baseURL string
	client  httpclient.Client
	log     Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(p *Provider) { p.baseURL = u }
}

// WithClient sets the transport.
func WithClient(c httpclient.Client) Option {
	return func(p *Provider) {
		if c != nil {
			p.client = c
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(log Logger) Option {
	return func(p *Provider) {
		if log != nil {
			p.log = log
		}
	}
}

// New builds a Provider backed by a resty transport unless WithClient is given.
func New(opts ...Option) *Provider {
	p := &Provider{
		baseURL: DefaultBaseURL,
		log:     noopLogger{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = httpclient.NewRestyClient(defaultTimeout)
	}
	return p
}

// BaseURL returns the unparsed base URL.
func (p *Provider) BaseURL() string { return p.baseURL }

// Result is the value delivered by Go.
type Result[T any] struct {
	Value *T
	Err   error
}

// Execute sends req in the background and calls completion exactly once with
// either the decoded value or a classified error, never both.
func Execute[T any](p *Provider, req Request, completion func(*T, error)) {
	ExecuteContext(context.Background(), p, req, completion)
}

// ExecuteContext is Execute with a caller-supplied context. Cancellation is
// reported as InvalidData.
func ExecuteContext[T any](ctx context.Context, p *Provider, req Request, completion func(*T, error)) {
	if completion == nil {
		completion = func(*T, error) {}
	}
	go func() {
		completion(Fetch[T](ctx, p, req))
	}()
}

// Go is Execute with a channel for completion. The channel receives one
// Result and is then closed.
func Go[T any](ctx context.Context, p *Provider, req Request) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	ExecuteContext(ctx, p, req, func(v *T, err error) {
		ch <- Result[T]{Value: v, Err: err}
		close(ch)
	})
	return ch
}

// Fetch performs req synchronously. Exactly one of the return values is nil.
func Fetch[T any](ctx context.Context, p *Provider, req Request) (*T, error) {
	if p == nil {
		p = New()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	target, err := p.resolve(req.Path)
	if err != nil {
		return nil, newError(InvalidURL, err)
	}

	requestID := uuid.NewString()
	headers := map[string]string{headerContentType: mimeJSON}

	resp, err := p.client.Do(ctx, req.method(), target, headers, req.Body)
	if err != nil {
		p.log.ErrorObj("request returned no data", "provider_error", map[string]any{
			"request_id": requestID,
			"method":     req.method(),
			"url":        target,
			"error":      err.Error(),
		})
		return nil, newError(InvalidData, err)
	}

	var body []byte
	if resp != nil {
		body = resp.Body()
	}
	if len(body) == 0 {
		p.log.ErrorObj("request returned no data", "provider_error", map[string]any{
			"request_id": requestID,
			"method":     req.method(),
			"url":        target,
			"error":      errEmptyBody.Error(),
		})
		return nil, newError(InvalidData, errEmptyBody)
	}

	out, err := decode[T](body)
	if err != nil {
		p.log.ErrorObj("response could not be decoded", "provider_error", map[string]any{
			"request_id":  requestID,
			"method":      req.method(),
			"url":         target,
			"status_code": resp.StatusCode(),
			"error":       err.Error(),
		})
		return nil, newError(InvalidData, err)
	}

	p.log.DebugObj("request completed", "provider_result", map[string]any{
		"request_id":  requestID,
		"method":      req.method(),
		"url":         target,
		"status_code": resp.StatusCode(),
		"bytes":       len(body),
	})
	return out, nil
}

func (p *Provider) resolve(path string) (string, error) {
	base, err := url.Parse(p.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("base url %q is not absolute", p.baseURL)
	}
	return base.JoinPath(path).String(), nil
}

func decode[T any](data []byte) (*T, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, errNullBody
	}

	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, err
	}

	v, ok := any(out).(Validator)
	if !ok {
		v, ok = any(*out).(Validator)
	}
	if ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("validate: %w", err)
		}
	}
	return out, nil
}
