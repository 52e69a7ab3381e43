package round_test

import (
	"testing"
	"time"

	"github.com/krishgupta2521/FIC--sub000/internal/round"
)

func TestController_StartsFrozen(t *testing.T) {
	c := round.New()

	state := c.Snapshot()
	if !state.Frozen {
		t.Error("new controller should be frozen")
	}
	if state.Round != 0 {
		t.Errorf("expected round 0 before start, got %d", state.Round)
	}
}

func TestController_StartRoundIncrements(t *testing.T) {
	c := round.New()

	state := c.StartRound(0)
	if state.Round != 1 || state.Frozen {
		t.Errorf("unexpected state after first start: %+v", state)
	}

	state = c.StartRound(0)
	if state.Round != 2 {
		t.Errorf("expected round 2, got %d", state.Round)
	}
}

func TestController_FreezeAndResume(t *testing.T) {
	c := round.New()
	c.StartRound(0)

	state := c.Freeze()
	if !state.Frozen || state.Round != 1 {
		t.Errorf("unexpected state after freeze: %+v", state)
	}

	state = c.Resume()
	if state.Frozen {
		t.Error("expected trading resumed")
	}
	if state.Round != 1 {
		t.Errorf("resume must not change the round, got %d", state.Round)
	}
}

func TestController_ResumeBeforeFirstRoundIsNoop(t *testing.T) {
	c := round.New()

	state := c.Resume()
	if !state.Frozen {
		t.Error("resume before the first round must keep the market frozen")
	}
}

func TestController_TimerFreezes(t *testing.T) {
	c := round.New()
	frozen := make(chan int, 1)
	c.OnFreeze = func(r int) { frozen <- r }

	state := c.StartRound(20 * time.Millisecond)
	if state.EndsAt == nil {
		t.Fatal("expected ends_at set for timed round")
	}

	select {
	case r := <-frozen:
		if r != 1 {
			t.Errorf("expected freeze callback for round 1, got %d", r)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer never froze the round")
	}

	if !c.Snapshot().Frozen {
		t.Error("expected frozen state after timer expiry")
	}
}

func TestController_StaleTimerIgnored(t *testing.T) {
	c := round.New()
	c.StartRound(30 * time.Millisecond)

	// Starting the next round supersedes the first round's timer.
	c.StartRound(10 * time.Second)

	time.Sleep(100 * time.Millisecond)
	state := c.Snapshot()
	if state.Frozen {
		t.Error("superseded timer must not freeze the new round")
	}
	if state.Round != 2 {
		t.Errorf("expected round 2, got %d", state.Round)
	}
}
