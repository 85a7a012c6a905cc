// ABOUTME: Derived-stream operators built on Source
// ABOUTME: Debounce, pairwise combine, and distinct-value suppression

package stream

import (
	"context"
	"time"
)

// Debounce returns a source that republishes values from in after they have
// been stable for d. Rapid successive publishes collapse into the final one.
// The relaying goroutine stops when ctx is done.
func Debounce[T any](ctx context.Context, in *Source[T], d time.Duration) *Source[T] {
	out := NewSource[T]()
	l := in.Subscribe()

	go func() {
		defer in.Unsubscribe(l)

		var (
			pending T
			armed   bool
		)

		timer := time.NewTimer(d)
		if !timer.Stop() {
			<-timer.C
		}
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case v := <-l.C:
				pending = v
				if armed {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
				}
				timer.Reset(d)
				armed = true
			case <-timer.C:
				if armed {
					out.Publish(pending)
					armed = false
				}
			}
		}
	}()

	return out
}

// Combine2 merges two sources through f, publishing whenever either input
// publishes. Nothing is emitted until both inputs have produced a value.
func Combine2[A, B, C any](ctx context.Context, a *Source[A], b *Source[B], f func(A, B) C) *Source[C] {
	out := NewSource[C]()
	la := a.Subscribe()
	lb := b.Subscribe()

	go func() {
		defer a.Unsubscribe(la)
		defer b.Unsubscribe(lb)

		var (
			curA A
			curB B
			gotA bool
			gotB bool
		)

		for {
			select {
			case <-ctx.Done():
				return
			case v := <-la.C:
				curA = v
				gotA = true
			case v := <-lb.C:
				curB = v
				gotB = true
			}

			if gotA && gotB {
				out.Publish(f(curA, curB))
			}
		}
	}()

	return out
}

// DistinctFunc suppresses consecutive values that eq reports as equal.
func DistinctFunc[T any](ctx context.Context, in *Source[T], eq func(T, T) bool) *Source[T] {
	out := NewSource[T]()
	l := in.Subscribe()

	go func() {
		defer in.Unsubscribe(l)

		var (
			last T
			seen bool
		)

		for {
			select {
			case <-ctx.Done():
				return
			case v := <-l.C:
				if seen && eq(last, v) {
					continue
				}
				last = v
				seen = true
				out.Publish(v)
			}
		}
	}()

	return out
}
