package sidh

import "errors"

// Sentinel error kinds returned by Sign, Verify, and the component
// operations beneath them. Callers should compare with errors.Is; internal
// call sites wrap these with fmt.Errorf("...: %w", ...) to attach context.
var (
	// ErrInvalidParameter is returned when an argument fails a precondition
	// check (nil pointer, wrong-length buffer, out-of-range round index).
	ErrInvalidParameter = errors.New("sidh: invalid parameter")

	// ErrInvalidOrder is returned when a scalar or compressed point fails
	// to decode to a value in the expected order-OB range.
	ErrInvalidOrder = errors.New("sidh: invalid order")

	// ErrNoMemory mirrors original_source's allocation-failure status. Go's
	// allocator reports failure via panic rather than a returned error; the
	// one call site that can fail before any allocation (InvBatch capacity
	// validation) returns this directly so the sentinel stays meaningful.
	ErrNoMemory = errors.New("sidh: allocation failed")

	// ErrUnknown is propagated from the field layer when it produces a
	// result that violates its own contract (e.g. a computed inverse that,
	// re-multiplied by its input, doesn't land back on one). field.go's
	// arithmetic is delegated to math/big and has no failure mode of its
	// own, so this is a defensive invariant check rather than an expected
	// outcome; seeing it means the field layer itself is broken.
	ErrUnknown = errors.New("sidh: field layer invariant violated")

	// ErrVerificationFailed is returned by Verify when the signature does
	// not check out. It is not a fault in the verifier: this is the
	// expected return for a forged or corrupted signature.
	ErrVerificationFailed = errors.New("sidh: signature verification failed")
)
