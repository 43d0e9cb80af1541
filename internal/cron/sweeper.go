package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/labreserve/lab-reservation-backend/internal/reservation"
)

// Sweeper runs the coordinator's expiration sweep on a schedule, so overdue
// pending reservations expire and finished confirmed ones complete without
// waiting for traffic.
type Sweeper struct {
	c   *cron.Cron
	log *zap.Logger
}

// StartSweeper schedules SweepExpirations every interval and starts the
// scheduler immediately.
func StartSweeper(svc reservation.Service, interval time.Duration, log *zap.Logger) (*Sweeper, error) {
	c := cron.New()

	_, err := c.AddFunc("@every "+interval.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		swept, err := svc.SweepExpirations(ctx, time.Now().UTC())
		if err != nil {
			log.Error("expiration sweep failed", zap.Error(err))
			return
		}
		if len(swept) > 0 {
			log.Info("expiration sweep finished", zap.Int("swept", len(swept)))
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return &Sweeper{c: c, log: log}, nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.c.Stop().Done()
}
