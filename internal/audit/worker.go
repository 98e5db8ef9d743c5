package audit

import "context"

// Worker drains the audit inbox into the backing store. Version lifecycle,
// section edit and export facts all arrive here; the channel hop keeps their
// persistence off the request path.
type Worker struct {
	store Store
	inbox <-chan Event
}

func NewWorker(store Store, inbox <-chan Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

// Run loops until ctx is canceled. Facts already accepted into the inbox are
// flushed before returning so a graceful shutdown loses nothing.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return w.flush(ctx)
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}

func (w *Worker) flush(ctx context.Context) error {
	for {
		select {
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		default:
			return ctx.Err()
		}
	}
}
