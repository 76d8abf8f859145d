package transport

import (
	"context"
	nethttp "net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gaborage/go-requeue/internal/tracking"
	"github.com/gaborage/go-requeue/logger"
)

// DefaultRetryTimeout is the delay used when no retry timeout is configured.
// Zero means queued calls are resent immediately.
const DefaultRetryTimeout = 0 * time.Millisecond

// callResult carries the terminal outcome of a managed call.
type callResult struct {
	resp *Response
	err  error
}

// pendingCall tracks one managed call: the verb, the caller's arguments, the
// retry budget consumed so far, and the one-shot result channel the caller is
// blocked on. The channel is written exactly once over the call's lifetime.
type pendingCall struct {
	id      string
	method  string
	ctx     context.Context
	req     *Request
	retries int
	result  chan callResult
}

// RetryTransport decorates a Transport with queued retry-with-delay
// semantics. Verbs configured with a positive retry limit are managed:
// connectivity-level failures are requeued and resent in timer-driven
// batches until the limit is exhausted. All other verbs pass straight
// through to the underlying transport.
type RetryTransport struct {
	inner    Transport
	log      logger.Logger
	timeout  time.Duration
	policies map[string]MethodPolicy

	// mu guards queue and timer together; a running timer implies the
	// queue is non-empty or about to be.
	mu     sync.Mutex
	queue  []*pendingCall
	timer  *time.Timer
	closed bool
}

// Ensure the decorator remains a drop-in Transport
var _ Transport = (*RetryTransport)(nil)

// NewRetryTransport creates a retry decorator around inner. A nil inner
// transport is a validation error. A nil config disables interception
// entirely; negative retry timeouts are clamped to immediate resend.
func NewRetryTransport(inner Transport, cfg *Config, log logger.Logger) (*RetryTransport, error) {
	if inner == nil {
		return nil, NewValidationError("underlying transport is required", "transport")
	}
	if log == nil {
		log = logger.New("info", false)
	}

	timeout := DefaultRetryTimeout
	policies := make(map[string]MethodPolicy)
	if cfg != nil {
		if cfg.RetryTimeout > 0 {
			timeout = cfg.RetryTimeout
		}
		for method, policy := range cfg.Methods {
			policies[strings.ToUpper(method)] = policy
		}
	}

	return &RetryTransport{
		inner:    inner,
		log:      log,
		timeout:  timeout,
		policies: policies,
	}, nil
}

// Builder provides a fluent interface for configuring a RetryTransport
type Builder struct {
	cfg *Config
	log logger.Logger
}

// NewBuilder creates a new retry transport builder
func NewBuilder(log logger.Logger) *Builder {
	return &Builder{
		cfg: &Config{
			RetryTimeout: DefaultRetryTimeout,
			Methods:      make(map[string]MethodPolicy),
		},
		log: log,
	}
}

// WithRetryTimeout sets the delay before a batch of queued calls is resent
func (b *Builder) WithRetryTimeout(timeout time.Duration) *Builder {
	b.cfg.RetryTimeout = timeout
	return b
}

// WithMethodPolicy enables interception for an HTTP verb with the given
// retry limit. Limits <= 0 leave the verb unmanaged.
func (b *Builder) WithMethodPolicy(method string, retryLimit int) *Builder {
	b.cfg.Methods[method] = MethodPolicy{RetryLimit: retryLimit}
	return b
}

// Build creates the RetryTransport around inner with the configured options
func (b *Builder) Build(inner Transport) (*RetryTransport, error) {
	return NewRetryTransport(inner, b.cfg, b.log)
}

// Get performs a GET request
func (r *RetryTransport) Get(ctx context.Context, req *Request) (*Response, error) {
	return r.call(ctx, nethttp.MethodGet, req)
}

// Post performs a POST request
func (r *RetryTransport) Post(ctx context.Context, req *Request) (*Response, error) {
	return r.call(ctx, nethttp.MethodPost, req)
}

// Put performs a PUT request
func (r *RetryTransport) Put(ctx context.Context, req *Request) (*Response, error) {
	return r.call(ctx, nethttp.MethodPut, req)
}

// Patch performs a PATCH request
func (r *RetryTransport) Patch(ctx context.Context, req *Request) (*Response, error) {
	return r.call(ctx, nethttp.MethodPatch, req)
}

// Delete performs a DELETE request
func (r *RetryTransport) Delete(ctx context.Context, req *Request) (*Response, error) {
	return r.call(ctx, nethttp.MethodDelete, req)
}

// Head performs a HEAD request
func (r *RetryTransport) Head(ctx context.Context, req *Request) (*Response, error) {
	return r.call(ctx, nethttp.MethodHead, req)
}

// Options performs an OPTIONS request
func (r *RetryTransport) Options(ctx context.Context, req *Request) (*Response, error) {
	return r.call(ctx, nethttp.MethodOptions, req)
}

// call decides at invocation time whether the verb is managed. Unmanaged
// verbs delegate directly to the underlying transport with the caller's
// arguments unchanged. Managed verbs are tracked as a pending call whose
// dispatch runs in the background; the caller blocks on the result channel
// until the call succeeds or its retry budget is spent.
func (r *RetryTransport) call(ctx context.Context, method string, req *Request) (*Response, error) {
	policy, ok := r.policies[method]
	if !ok || policy.RetryLimit <= 0 {
		return r.invoke(ctx, method, req)
	}

	pc := &pendingCall{
		id:     uuid.NewString(),
		method: method,
		ctx:    ctx,
		req:    req,
		result: make(chan callResult, 1),
	}

	r.log.Debug().
		Str("call_id", pc.id).
		Str("method", method).
		Int("retry_limit", policy.RetryLimit).
		Msg("Managed transport call")

	go r.dispatch(pc)

	res := <-pc.result
	return res.resp, res.err
}

// invoke routes a verb name to the matching operation on the underlying
// transport. The verb set is fixed, so this is a plain switch rather than
// runtime method lookup.
func (r *RetryTransport) invoke(ctx context.Context, method string, req *Request) (*Response, error) {
	switch method {
	case nethttp.MethodGet:
		return r.inner.Get(ctx, req)
	case nethttp.MethodPost:
		return r.inner.Post(ctx, req)
	case nethttp.MethodPut:
		return r.inner.Put(ctx, req)
	case nethttp.MethodPatch:
		return r.inner.Patch(ctx, req)
	case nethttp.MethodDelete:
		return r.inner.Delete(ctx, req)
	case nethttp.MethodHead:
		return r.inner.Head(ctx, req)
	case nethttp.MethodOptions:
		return r.inner.Options(ctx, req)
	default:
		return nil, NewValidationError("unsupported HTTP method", method)
	}
}

// dispatch sends one pending call to the underlying transport and settles
// its fate: fulfill on success, requeue on a retryable failure with budget
// left, reject otherwise. The original failure descriptor is delivered
// unchanged on exhaustion.
func (r *RetryTransport) dispatch(pc *pendingCall) {
	resp, err := r.invoke(pc.ctx, pc.method, pc.req)
	if err == nil {
		pc.result <- callResult{resp: resp}
		return
	}

	limit := r.policies[pc.method].RetryLimit
	if !IsRetryable(err) || pc.retries >= limit {
		if IsRetryable(err) {
			tracking.RecordExhausted(pc.ctx, pc.method)
			r.log.Warn().
				Err(err).
				Str("call_id", pc.id).
				Str("method", pc.method).
				Int("retries", pc.retries).
				Msg("Retry budget exhausted")
		} else {
			r.log.Debug().
				Err(err).
				Str("call_id", pc.id).
				Str("method", pc.method).
				Msg("HTTP-level failure, not retrying")
		}
		pc.result <- callResult{err: err}
		return
	}

	pc.retries++
	r.enqueue(pc)
}

// enqueue appends a call to the retry queue and arms the shared delay timer
// if none is running. Calls queued while a timer is pending share it, so
// retries go out in coalesced batches. Enqueues after Close are dropped;
// their callers are never notified, matching disposal semantics.
func (r *RetryTransport) enqueue(pc *pendingCall) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		tracking.RecordAbandoned(pc.ctx, 1)
		return
	}

	r.queue = append(r.queue, pc)
	if r.timer == nil {
		r.timer = time.AfterFunc(r.timeout, r.flush)
	}

	tracking.RecordRetryQueued(pc.ctx, pc.method)
	r.log.Info().
		Str("call_id", pc.id).
		Str("method", pc.method).
		Int("retry", pc.retries).
		Dur("resend_in", r.timeout).
		Msg("Transport call queued for retry")
}

// flush is the timer callback. It clears the timer reference before
// draining, so calls that fail again during the drain re-enter the queue
// under a freshly armed timer. The batch is redispatched in FIFO order.
func (r *RetryTransport) flush() {
	r.mu.Lock()
	r.timer = nil
	batch := r.queue
	r.queue = nil
	closed := r.closed
	r.mu.Unlock()

	if closed || len(batch) == 0 {
		return
	}

	tracking.RecordFlush(context.Background(), len(batch))
	r.log.Debug().
		Int("batch_size", len(batch)).
		Msg("Resending queued transport calls")

	for _, pc := range batch {
		r.dispatch(pc)
	}
}

// Close disposes the decorator: queued calls are dropped without resolving
// or rejecting their callers (a documented limitation, see the package
// documentation), the delay timer is cancelled, and disposal is delegated
// to the underlying transport. Close is idempotent; calling it again is a
// no-op returning nil.
func (r *RetryTransport) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	dropped := len(r.queue)
	r.queue = nil
	r.mu.Unlock()

	if dropped > 0 {
		tracking.RecordAbandoned(context.Background(), dropped)
		r.log.Warn().
			Int("dropped", dropped).
			Msg("Disposed with calls still queued; their callers are not notified")
	}

	return r.inner.Close()
}
