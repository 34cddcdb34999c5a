package quizgen

import (
	"context"

	"github.com/emandor/learn2play_service/internal/model"
)

// Task is one in-flight generation run.
type Task struct {
	done   chan struct{}
	cancel context.CancelFunc
	items  []model.QuizItem
	err    error
}

func (t *Task) Done() <-chan struct{} { return t.done }

// Cancel stops the child process. The task still completes, with a
// KindCanceled error unless it had already finished.
func (t *Task) Cancel() { t.cancel() }

// Wait blocks until the run finishes. If ctx ends first the run is canceled
// and Wait returns once the child has been reaped.
func (t *Task) Wait(ctx context.Context) ([]model.QuizItem, error) {
	select {
	case <-t.done:
	case <-ctx.Done():
		t.cancel()
		<-t.done
	}
	return t.items, t.err
}

func (t *Task) finish(items []model.QuizItem, err error) {
	t.items, t.err = items, err
	close(t.done)
}
