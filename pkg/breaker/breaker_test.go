package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/promocart-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/promocart-backend/pkg/errors"
	"github.com/angelmondragon/promocart-backend/pkg/logger"
	"github.com/sony/gobreaker/v2"
)

func testConfig() config.BreakerConfig {
	return config.BreakerConfig{MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureThreshold: 2}
}

func TestBreakerOpensAfterDependencyFailures(t *testing.T) {
	t.Parallel()

	cb := New[int]("commerce", testConfig(), logger.Nop())
	failure := pkgerrors.New(pkgerrors.CodeDependency, "boom")
	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(func() (int, error) { return 0, failure }); err == nil {
			t.Fatalf("expected failure")
		}
	}

	_, err := cb.Execute(func() (int, error) { return 1, nil })
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected open state, got %v", err)
	}
	translated := Translate("commerce", err)
	if got := pkgerrors.As(translated).Code(); got != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency code, got %s", got)
	}
}

func TestBreakerIgnoresBusinessErrors(t *testing.T) {
	t.Parallel()

	cb := New[int]("commerce", testConfig(), nil)
	conflict := pkgerrors.New(pkgerrors.CodeVersionConflict, "stale")
	for i := 0; i < 5; i++ {
		_, _ = cb.Execute(func() (int, error) { return 0, conflict })
	}
	if state := cb.State(); state != gobreaker.StateClosed {
		t.Fatalf("expected closed breaker, got %s", state)
	}
}

func TestTranslatePassesThrough(t *testing.T) {
	t.Parallel()

	err := errors.New("plain")
	if Translate("x", err) != err {
		t.Fatalf("expected passthrough")
	}
}
