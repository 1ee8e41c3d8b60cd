package rtimeout

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTimeoutCompletesBeforeDeadline(t *testing.T) {
	result, err, timedOut := Timeout(100*time.Millisecond, func() (int, error) {
		return 42, nil
	})
	if err != nil || timedOut {
		t.Fatalf("got (%d, %v, %v), want (42, nil, false)", result, err, timedOut)
	}
	if result != 42 {
		t.Fatalf("got %d, want 42", result)
	}
}

func TestTimeoutPropagatesOpError(t *testing.T) {
	wantErr := errors.New("boom")
	_, err, timedOut := Timeout(100*time.Millisecond, func() (int, error) {
		return 0, wantErr
	})
	if timedOut {
		t.Fatalf("unexpected timeout")
	}
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want %v", err, wantErr)
	}
}

// TestTimeoutBoundary covers property 8 from §8: an operation that blocks
// past the deadline is reported as timed out, never as silently hanging or
// silently succeeding with a stale result.
func TestTimeoutBoundary(t *testing.T) {
	never := make(chan struct{})
	_, err, timedOut := Timeout(20*time.Millisecond, func() (int, error) {
		<-never
		return 1, nil
	})
	if !timedOut {
		t.Fatalf("expected timedOut=true")
	}
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
}

func TestTimeoutCtxCancelsOp(t *testing.T) {
	_, err, timedOut := TimeoutCtx(context.Background(), 20*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !timedOut {
		t.Fatalf("expected timedOut=true")
	}
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("got %v, want ErrTimeout", err)
	}
}
