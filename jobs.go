package main

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron"
)

const intakeResetTimeout = 30 * time.Second

// resetAllIntake zeroes consumed protein on every stored session. It holds
// the handler lock so a request between its load and save cannot write back
// the pre-reset intake.
func (h *Handler) resetAllIntake(ctx context.Context) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store.ResetConsumedProtein(ctx)
}

// resetIntakeJob is the nightly consumed-protein reset.
func resetIntakeJob(h *Handler) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), intakeResetTimeout)
		defer cancel()

		n, err := h.resetAllIntake(ctx)
		if err != nil {
			log.Printf("[resetIntakeJob] failed: %v", err)
			return
		}
		log.Printf("[resetIntakeJob] reset consumed protein on %d session(s)", n)
	}
}

// startJobs schedules the background jobs. schedule uses the six-field cron
// format (seconds first). The caller stops the returned scheduler on exit.
func startJobs(h *Handler, schedule string) (*cron.Cron, error) {
	c := cron.New()
	if err := c.AddFunc(schedule, resetIntakeJob(h)); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
