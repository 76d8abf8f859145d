// Package transport provides a retry decorator over an HTTP-style transport
// abstraction. RetryTransport wraps any Transport and re-issues failed calls
// after a fixed delay, up to a per-verb retry limit, while remaining a
// drop-in substitute for the transport it wraps.
//
// Interception
//   - Configured via Config.Methods (or Builder.WithMethodPolicy).
//   - Verbs absent from the configuration, or with a retry limit of zero,
//     pass straight through to the underlying transport.
//   - Managed and unmanaged calls are indistinguishable to the caller
//     except for retry behavior.
//
// Failure classification
//   - Failures carrying no HTTP status (the server was never reached) are
//     retryable.
//   - Failures carrying an HTTP status (the server responded, even with an
//     error status) are surfaced immediately, regardless of remaining
//     retry budget.
//   - On retry-limit exhaustion the last failure is delivered unchanged;
//     there is no distinct "exhausted" error kind.
//
// Scheduling
//   - Queued calls share a single delay timer; everything queued while the
//     timer is pending is resent together when it fires (one batch per
//     Config.RetryTimeout period, not one timer per call).
//   - The timer reference is cleared before the batch is drained, so calls
//     that fail again during the drain wait for a newly armed timer.
//   - Within one batch, calls are resent in FIFO enqueue order. Resolution
//     order across calls is not guaranteed.
//
// Disposal
//   - Close drops queued calls without resolving or rejecting them; their
//     callers remain blocked. This mirrors the underlying contract and is
//     a known limitation, not an oversight.
//   - Close cancels the delay timer, delegates to the underlying
//     transport, and is safe to call more than once.
//
// There is no per-call cancellation or timeout: a managed call that the
// underlying transport never answers holds its caller indefinitely.
package transport
