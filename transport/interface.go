package transport

import (
	"context"
	nethttp "net/http"
	"time"
)

// Transport defines the HTTP-style transport contract. Implementations
// perform the actual request for each verb; the retry decorator wraps any
// Transport and exposes the same contract, making it a drop-in substitute.
type Transport interface {
	Get(ctx context.Context, req *Request) (*Response, error)
	Post(ctx context.Context, req *Request) (*Response, error)
	Put(ctx context.Context, req *Request) (*Response, error)
	Patch(ctx context.Context, req *Request) (*Response, error)
	Delete(ctx context.Context, req *Request) (*Response, error)
	Head(ctx context.Context, req *Request) (*Response, error)
	Options(ctx context.Context, req *Request) (*Response, error)
	Close() error
}

// Request represents an HTTP request with all necessary data.
// The retry decorator treats it as opaque and forwards it verbatim.
type Request struct {
	URL     string
	Headers map[string]string
	Body    []byte
}

// Response represents an HTTP response returned by a Transport.
type Response struct {
	StatusCode int
	Headers    nethttp.Header
	Body       []byte
}

// MethodPolicy configures retry behavior for a single HTTP verb.
// A verb with RetryLimit <= 0, or absent from Config.Methods, is never
// intercepted.
type MethodPolicy struct {
	RetryLimit int
}

// Config holds the retry transport configuration.
type Config struct {
	// RetryTimeout is the delay before a batch of queued calls is resent.
	// Non-positive values mean immediate resend.
	RetryTimeout time.Duration
	// Methods maps HTTP verb names to their retry policies. Keys are
	// matched case-insensitively.
	Methods map[string]MethodPolicy
}
