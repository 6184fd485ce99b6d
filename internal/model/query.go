package model

import (
	"context"
	"sync"
)

// State is the lifecycle state of an asynchronous result.
type State int

const (
	// StatePending means the operation has not completed yet.
	StatePending State = iota
	// StateSuccess means the operation completed with data.
	StateSuccess
	// StateFailure means the operation completed with an error.
	StateFailure
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// result is the shared single-transition state machine behind Query and Mutation.
type result[T any] struct {
	mu    sync.RWMutex
	state State
	data  T
	err   error
	done  chan struct{}
}

func newResult[T any]() result[T] {
	return result[T]{done: make(chan struct{})}
}

func (r *result[T]) settle(state State, data T, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != StatePending {
		return false
	}
	r.state = state
	r.data = data
	r.err = err
	close(r.done)
	return true
}

func (r *result[T]) snapshot() (State, T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state, r.data, r.err
}

// Query is the result of a read operation: Loading, then Success or Failure.
type Query[T any] struct {
	r result[T]
}

// NewQuery returns a query in the loading state.
func NewQuery[T any]() *Query[T] {
	return &Query[T]{r: newResult[T]()}
}

// Resolve moves the query to Success. It returns false if already settled.
func (q *Query[T]) Resolve(data T) bool {
	return q.r.settle(StateSuccess, data, nil)
}

// Reject moves the query to Failure. It returns false if already settled.
func (q *Query[T]) Reject(err error) bool {
	var zero T
	return q.r.settle(StateFailure, zero, err)
}

// State returns the current state.
func (q *Query[T]) State() State {
	s, _, _ := q.r.snapshot()
	return s
}

// IsLoading reports whether the query is still in flight.
func (q *Query[T]) IsLoading() bool { return q.State() == StatePending }

// Data returns the fetched value. It is the zero value unless State is Success.
func (q *Query[T]) Data() T {
	_, d, _ := q.r.snapshot()
	return d
}

// Err returns the failure cause, or nil.
func (q *Query[T]) Err() error {
	_, _, err := q.r.snapshot()
	return err
}

// Done is closed when the query leaves the loading state.
func (q *Query[T]) Done() <-chan struct{} { return q.r.done }

// Wait blocks until the query settles or ctx is done.
func (q *Query[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-q.r.done:
		_, d, err := q.r.snapshot()
		return d, err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Mutation is the result of a write operation: Pending, then Success or Failure.
type Mutation[T any] struct {
	r result[T]
}

// NewMutation returns a pending mutation.
func NewMutation[T any]() *Mutation[T] {
	return &Mutation[T]{r: newResult[T]()}
}

// Resolve moves the mutation to Success. It returns false if already settled.
func (m *Mutation[T]) Resolve(data T) bool {
	return m.r.settle(StateSuccess, data, nil)
}

// Reject moves the mutation to Failure. It returns false if already settled.
func (m *Mutation[T]) Reject(err error) bool {
	var zero T
	return m.r.settle(StateFailure, zero, err)
}

// State returns the current state.
func (m *Mutation[T]) State() State {
	s, _, _ := m.r.snapshot()
	return s
}

// IsPending reports whether the write is still in flight.
func (m *Mutation[T]) IsPending() bool { return m.State() == StatePending }

// IsSuccess reports whether the write completed successfully.
func (m *Mutation[T]) IsSuccess() bool { return m.State() == StateSuccess }

// Data returns the write response. It is the zero value unless IsSuccess.
func (m *Mutation[T]) Data() T {
	_, d, _ := m.r.snapshot()
	return d
}

// Err returns the failure cause, or nil.
func (m *Mutation[T]) Err() error {
	_, _, err := m.r.snapshot()
	return err
}

// Done is closed when the mutation settles.
func (m *Mutation[T]) Done() <-chan struct{} { return m.r.done }

// Wait blocks until the mutation settles or ctx is done.
func (m *Mutation[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-m.r.done:
		_, d, err := m.r.snapshot()
		return d, err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
