package toast_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vango-dev/toast/pkg/toast"
	"github.com/vango-dev/toast/pkg/toasttest"
)

func TestPromiseSuccess(t *testing.T) {
	s, clock := newTestStore(t)

	var during toast.Toast
	res := toast.Promise(context.Background(), s, func(context.Context) (int, error) {
		during = s.Toasts()[0]
		return 42, nil
	}, toast.PromiseMessages[int]{
		Loading: toast.Text("L"),
		Success: toast.Literal[int](toast.Text("S")),
		Error:   toast.Literal[error](toast.Text("E")),
	})

	if during.Type != toast.TypeLoading || during.Message.Text() != "L" {
		t.Errorf("expected loading toast 'L' while running, got %s %q", during.Type, during.Message.Text())
	}
	if during.Options.Duration != 0 {
		t.Errorf("expected loading toast to be sticky, got %v", during.Options.Duration)
	}
	if !during.Options.Icon.Equal(toast.LoadingIcon) {
		t.Errorf("expected loading icon, got %s", during.Options.Icon)
	}

	if !res.OK() || res.Value != 42 {
		t.Fatalf("expected OK result 42, got %+v", res)
	}
	if res.Reason() != 42 {
		t.Errorf("expected reason 42, got %v", res.Reason())
	}
	if res.ID != during.ID {
		t.Errorf("expected result id %d, got %d", during.ID, res.ID)
	}

	got, ok := s.Get(res.ID)
	if !ok {
		t.Fatal("promise toast missing after success")
	}
	if got.Type != toast.TypeSuccess || got.Message.Text() != "S" {
		t.Errorf("expected success 'S', got %s %q", got.Type, got.Message.Text())
	}

	// The settled toast expires with the default duration.
	clock.Advance(toast.DefaultDuration)
	if _, ok := s.Get(res.ID); ok {
		t.Error("expected settled toast to expire")
	}
}

func TestPromiseFailureResolvesWithError(t *testing.T) {
	s, _ := newTestStore(t)
	boom := errors.New("boom")

	res := toast.Promise(context.Background(), s, func(context.Context) (string, error) {
		return "", boom
	}, toast.PromiseMessages[string]{
		Loading: toast.Text("L"),
		Success: toast.Literal[string](toast.Text("S")),
		Error: toast.Mapped(func(err error) toast.Message {
			return toast.Text("Err:" + err.Error())
		}),
	})

	if res.OK() {
		t.Fatal("expected failed result")
	}
	if !errors.Is(res.Err, boom) {
		t.Errorf("expected boom, got %v", res.Err)
	}
	if res.Reason() != boom {
		t.Errorf("expected reason to be the error, got %v", res.Reason())
	}

	got, _ := s.Get(res.ID)
	if got.Type != toast.TypeError || got.Message.Text() != "Err:boom" {
		t.Errorf("expected error 'Err:boom', got %s %q", got.Type, got.Message.Text())
	}
	if !got.Options.Icon.Equal(toast.ErrorIcon) {
		t.Errorf("expected error icon, got %s", got.Options.Icon)
	}
}

func TestPromiseMappedSuccess(t *testing.T) {
	s, _ := newTestStore(t)

	res := toast.Promise(context.Background(), s, func(context.Context) ([]string, error) {
		return []string{"a", "b"}, nil
	}, toast.PromiseMessages[[]string]{
		Loading: toast.Text("loading"),
		Success: toast.Mapped(func(v []string) toast.Message {
			return toast.Textf("loaded %d", len(v))
		}),
	})

	got, _ := s.Get(res.ID)
	if got.Message.Text() != "loaded 2" {
		t.Errorf("expected 'loaded 2', got %q", got.Message.Text())
	}
}

func TestPromiseOptionsApplyToSettledToast(t *testing.T) {
	s, clock := newTestStore(t)

	res := toast.Promise(context.Background(), s, func(context.Context) (int, error) {
		return 1, nil
	}, toast.PromiseMessages[int]{
		Loading: toast.Text("L"),
		Success: toast.Literal[int](toast.Text("S")),
	}, toast.WithPosition(toast.TopCenter), toast.WithDuration(time.Second))

	got, _ := s.Get(res.ID)
	if got.Options.Position != toast.TopCenter {
		t.Errorf("expected top-center, got %s", got.Options.Position)
	}
	clock.Advance(time.Second)
	if _, ok := s.Get(res.ID); ok {
		t.Error("expected settled toast to use the caller duration")
	}
}

func TestPromiseRecoversPanic(t *testing.T) {
	s, _ := newTestStore(t)

	res := toast.Promise(context.Background(), s, func(context.Context) (int, error) {
		panic("kaboom")
	}, toast.PromiseMessages[int]{
		Loading: toast.Text("L"),
		Error:   toast.Literal[error](toast.Text("failed")),
	})

	var pe *toast.PanicError
	if !errors.As(res.Err, &pe) {
		t.Fatalf("expected PanicError, got %T", res.Err)
	}
	if pe.Value != "kaboom" {
		t.Errorf("expected panic value kaboom, got %v", pe.Value)
	}
	if pe.Stack == "" {
		t.Error("expected stack to be captured")
	}
	got, _ := s.Get(res.ID)
	if got.Type != toast.TypeError {
		t.Errorf("expected error toast, got %s", got.Type)
	}
}

func TestPromiseAfterDismissIsNoop(t *testing.T) {
	s, _ := newTestStore(t)
	rec := toasttest.Record(s)
	defer rec.Stop()

	res := toast.Promise(context.Background(), s, func(context.Context) (int, error) {
		s.Clear()
		return 7, nil
	}, toast.PromiseMessages[int]{
		Loading: toast.Text("L"),
		Success: toast.Literal[int](toast.Text("S")),
	})

	if !res.OK() || res.Value != 7 {
		t.Errorf("expected OK 7, got %+v", res)
	}
	if s.Len() != 0 {
		t.Errorf("expected no toast to be recreated, got %d", s.Len())
	}
	rec.ExpectKinds(t, toast.ChangeCreated, toast.ChangeCleared)
}

func TestPromiseAsync(t *testing.T) {
	s, _ := newTestStore(t)
	release := make(chan struct{})

	id, done := toast.PromiseAsync(context.Background(), s, func(ctx context.Context) (string, error) {
		select {
		case <-release:
			return "ok", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}, toast.PromiseMessages[string]{
		Loading: toast.Text("working"),
		Success: toast.Mapped(func(v string) toast.Message { return toast.Text(v) }),
	})

	got, ok := s.Get(id)
	if !ok || got.Type != toast.TypeLoading {
		t.Fatalf("expected loading toast %d before completion, got %+v", id, got)
	}

	close(release)
	select {
	case res := <-done:
		if !res.OK() || res.Value != "ok" || res.ID != id {
			t.Errorf("unexpected result %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for promise")
	}

	if _, open := <-done; open {
		t.Error("expected result channel to be closed")
	}
	got, _ = s.Get(id)
	if got.Type != toast.TypeSuccess || got.Message.Text() != "ok" {
		t.Errorf("expected success 'ok', got %s %q", got.Type, got.Message.Text())
	}
}

func TestPromiseAsyncCancelled(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	_, done := toast.PromiseAsync(ctx, s, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}, toast.PromiseMessages[int]{
		Loading: toast.Text("waiting"),
		Error:   toast.Mapped(func(err error) toast.Message { return toast.Text(err.Error()) }),
	})
	cancel()

	select {
	case res := <-done:
		if !errors.Is(res.Err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", res.Err)
		}
		got, _ := s.Get(res.ID)
		if got.Type != toast.TypeError {
			t.Errorf("expected error toast, got %s", got.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for promise")
	}
}
