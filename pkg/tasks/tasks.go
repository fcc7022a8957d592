package tasks

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Handle tracks one background task. The task signals completion by
// returning; there is no per-handle cancellation beyond the context the task
// was started with.
type Handle struct {
	name string
	done chan struct{}
	err  error
}

// Spawn runs fn on its own goroutine and returns a handle for it.
func Spawn(name string, fn func() error) *Handle {
	h := &Handle{name: name, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.err = fn()
	}()
	return h
}

func (h *Handle) Name() string { return h.name }

// Done is closed when the task has returned.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err is only meaningful once Done is closed.
func (h *Handle) Err() error { return h.err }

// Group supervises a set of task handles. Completion of any member, clean or
// not, means the composed subscription set is no longer trustworthy, so Wait
// treats the first completion as fatal.
type Group struct {
	handles []*Handle
}

func NewGroup(handles ...*Handle) *Group {
	return &Group{handles: handles}
}

func (g *Group) Add(handles ...*Handle) {
	g.handles = append(g.handles, handles...)
}

func (g *Group) Handles() []*Handle { return g.handles }

// Wait blocks until the first task completes or ctx is done. A task that
// exits without an error still yields a non-nil result: background streams
// and pollers are expected to run for the life of the service. Errors from
// any other already-finished tasks are folded in.
func (g *Group) Wait(ctx context.Context) error {
	if len(g.handles) == 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	first := make(chan *Handle, len(g.handles))
	for _, h := range g.handles {
		h := h
		go func() {
			<-h.Done()
			first <- h
		}()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case h := <-first:
		err := h.Err()
		if err == nil {
			err = errors.Errorf("task %q exited unexpectedly", h.Name())
		} else {
			err = errors.Wrapf(err, "task %q failed", h.Name())
		}
		for _, other := range g.handles {
			if other == h {
				continue
			}
			select {
			case <-other.Done():
				if otherErr := other.Err(); otherErr != nil {
					err = multierr.Append(err, errors.Wrapf(otherErr, "task %q failed", other.Name()))
				}
			default:
			}
		}
		return err
	}
}
