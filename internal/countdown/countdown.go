// Package countdown keeps a days/hours/minutes countdown to a target time,
// recomputed on a fixed interval by a gocron job.
package countdown

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/omarshaarawi/f1bot/internal/models"
)

type State int

const (
	Idle State = iota
	Armed
	Expired
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// PublishFunc receives every recomputed value. It is called without the
// timer's lock held.
type PublishFunc func(models.Countdown, State)

// Remaining splits target-now into whole days, hours and minutes. Seconds are
// truncated. The second result is false once the target has been reached.
func Remaining(target, now time.Time) (models.Countdown, bool) {
	diff := target.Sub(now)
	if diff <= 0 {
		return models.Countdown{}, false
	}
	day := 24 * time.Hour
	return models.Countdown{
		Days:    int(diff / day),
		Hours:   int(diff % day / time.Hour),
		Minutes: int(diff % time.Hour / time.Minute),
	}, true
}

type Timer struct {
	scheduler gocron.Scheduler
	clock     clockwork.Clock
	interval  time.Duration
	publish   PublishFunc

	mu      sync.Mutex
	state   State
	target  time.Time
	current models.Countdown
	gen     int
	jobID   uuid.UUID
	hasJob  bool
}

func New(scheduler gocron.Scheduler, clock clockwork.Clock, interval time.Duration, publish PublishFunc) *Timer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Timer{
		scheduler: scheduler,
		clock:     clock,
		interval:  interval,
		publish:   publish,
	}
}

// Arm starts counting down to target, replacing any previous target. The
// first value is published before Arm returns.
func (t *Timer) Arm(target time.Time) error {
	t.mu.Lock()
	t.removeJobLocked()
	t.gen++
	gen := t.gen
	t.target = target
	t.state = Armed
	t.mu.Unlock()

	if !t.tick(gen) {
		return nil
	}

	job, err := t.scheduler.NewJob(
		gocron.DurationJob(t.interval),
		gocron.NewTask(func() { t.tick(gen) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create countdown job: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gen != gen || t.state != Armed {
		// re-armed or stopped while the job was being created
		if err := t.scheduler.RemoveJob(job.ID()); err != nil {
			slog.Error("Failed to remove countdown job", "error", err)
		}
		return nil
	}
	t.jobID = job.ID()
	t.hasJob = true
	return nil
}

// Stop cancels the recurring job and returns the timer to Idle.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeJobLocked()
	t.gen++
	t.state = Idle
	t.current = models.Countdown{}
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Timer) Current() models.Countdown {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// tick recomputes the countdown for generation gen and reports whether the
// timer is still armed afterwards.
func (t *Timer) tick(gen int) bool {
	t.mu.Lock()
	if t.gen != gen || t.state != Armed {
		t.mu.Unlock()
		return false
	}

	cd, ok := Remaining(t.target, t.clock.Now())
	t.current = cd
	if !ok {
		t.state = Expired
		t.removeJobLocked()
	}
	state := t.state
	t.mu.Unlock()

	if t.publish != nil {
		t.publish(cd, state)
	}
	return ok
}

func (t *Timer) removeJobLocked() {
	if !t.hasJob {
		return
	}
	if err := t.scheduler.RemoveJob(t.jobID); err != nil {
		slog.Error("Failed to remove countdown job", "job", t.jobID, "error", err)
	}
	t.hasJob = false
}
