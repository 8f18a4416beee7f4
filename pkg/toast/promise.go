package toast

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Resolver yields the message shown when an operation settles: either a
// fixed message or one computed from the outcome.
type Resolver[T any] struct {
	msg Message
	fn  func(T) Message
}

// Literal always resolves to msg.
func Literal[T any](msg Message) Resolver[T] {
	return Resolver[T]{msg: msg}
}

// Mapped resolves by calling fn with the outcome.
func Mapped[T any](fn func(T) Message) Resolver[T] {
	return Resolver[T]{fn: fn}
}

func (r Resolver[T]) resolve(v T) Message {
	if r.fn != nil {
		return r.fn(v)
	}
	return r.msg
}

// PromiseMessages are the messages of the three promise stages.
type PromiseMessages[T any] struct {
	Loading Message
	Success Resolver[T]
	Error   Resolver[error]
}

// Result is the outcome of Promise.
//
// A failed operation is reported in Err and nowhere else: Promise never
// panics and has no error return, so callers must check OK or Err.
type Result[T any] struct {
	// ID is the toast that tracked the operation.
	ID int

	Value T
	Err   error
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Reason returns the value the operation settled with: Value on success,
// Err on failure.
func (r Result[T]) Reason() any {
	if r.Err != nil {
		return r.Err
	}
	return r.Value
}

// PanicError wraps a panic raised by a promise operation together with the
// stack captured where it was recovered.
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

func newPanicError(v any) *PanicError {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{Value: v, Stack: string(buf[:n])}
}

// Promise shows a sticky loading toast while op runs, then turns that same
// toast into a success or error toast with msgs. opts apply to all stages,
// except that the loading stage always uses LoadingIcon and never expires.
//
// Promise blocks until op returns. Use PromiseAsync to run op in the
// background.
//
//	res := toast.Promise(ctx, store, saveProject, toast.PromiseMessages[*Project]{
//	    Loading: toast.Text("Saving..."),
//	    Success: toast.Mapped(func(p *Project) toast.Message { return toast.Textf("Saved %s", p.Name) }),
//	    Error:   toast.Literal[error](toast.Text("Could not save")),
//	})
//	if !res.OK() {
//	    return res.Err
//	}
func Promise[T any](ctx context.Context, s *Store, op func(context.Context) (T, error), msgs PromiseMessages[T], opts ...Option) Result[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := s.tracer.Start(ctx, "toast.promise", trace.WithSpanKind(trace.SpanKindInternal))
	id := s.startPromise(msgs.Loading, opts)
	return settle(ctx, span, s, id, op, msgs, opts)
}

// PromiseAsync creates the loading toast, then runs op on a new goroutine.
// It returns the toast id immediately; the result is delivered once on the
// channel, which is then closed.
func PromiseAsync[T any](ctx context.Context, s *Store, op func(context.Context) (T, error), msgs PromiseMessages[T], opts ...Option) (int, <-chan Result[T]) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, span := s.tracer.Start(ctx, "toast.promise", trace.WithSpanKind(trace.SpanKindInternal))
	id := s.startPromise(msgs.Loading, opts)

	out := make(chan Result[T], 1)
	go func() {
		defer close(out)
		out <- settle(ctx, span, s, id, op, msgs, opts)
	}()
	return id, out
}

func (s *Store) startPromise(loading Message, opts []Option) int {
	loadingOpts := append(slices.Clone(opts), WithIcon(LoadingIcon), Sticky())
	return s.Create(loading, TypeLoading, loadingOpts...)
}

func settle[T any](ctx context.Context, span trace.Span, s *Store, id int, op func(context.Context) (T, error), msgs PromiseMessages[T], opts []Option) Result[T] {
	defer span.End()
	span.SetAttributes(attribute.Int("toast.id", id))

	value, err := run(ctx, op)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if !s.Update(id, msgs.Error.resolve(err), TypeError, opts...) {
			s.logger.Debug("promise settled after toast was removed", "id", id, "outcome", "error")
		}
		return Result[T]{ID: id, Value: value, Err: err}
	}

	span.SetStatus(codes.Ok, "")
	if !s.Update(id, msgs.Success.resolve(value), TypeSuccess, opts...) {
		s.logger.Debug("promise settled after toast was removed", "id", id, "outcome", "success")
	}
	return Result[T]{ID: id, Value: value}
}

func run[T any](ctx context.Context, op func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()
	return op(ctx)
}
