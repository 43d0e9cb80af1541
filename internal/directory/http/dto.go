package http

import (
	"time"

	"github.com/labreserve/lab-reservation-backend/internal/directory"
	"github.com/labreserve/lab-reservation-backend/internal/interval"
	"github.com/labreserve/lab-reservation-backend/internal/pkg/request"
)

// OperatingWindow is one weekday's open/close pair, clock times as "HH:MM"
// ("24:00" allowed as close).
type OperatingWindow struct {
	Weekday int    `json:"weekday" binding:"min=0,max=6"` // 0 = Sunday
	Open    string `json:"open" binding:"required"`
	Close   string `json:"close" binding:"required"`
}

type CreateResourceRequest struct {
	Name            string            `json:"name" binding:"required,max=200"`
	Kind            string            `json:"kind" binding:"required,oneof=lab equipment"`
	ParentLabID     string            `json:"parent_lab_id" binding:"omitempty,uuid"`
	AutoApprove     bool              `json:"auto_approve"`
	MinCancelNotice string            `json:"min_cancel_notice" binding:"omitempty"` // e.g. "24h"
	OperatingHours  []OperatingWindow `json:"operating_hours" binding:"required,min=1,dive"`
	BlackoutDates   []string          `json:"blackout_dates" binding:"omitempty,dive,datetime=2006-01-02"`
}

type UpdateResourceRequest struct {
	Name            *string           `json:"name" binding:"omitempty,max=200"`
	AutoApprove     *bool             `json:"auto_approve"`
	MinCancelNotice *string           `json:"min_cancel_notice"`
	OperatingHours  []OperatingWindow `json:"operating_hours" binding:"omitempty,dive"`
	BlackoutDates   []string          `json:"blackout_dates" binding:"omitempty,dive,datetime=2006-01-02"`
}

type ListResourcesRequest struct {
	request.ListParams
	Kind        string `form:"kind" binding:"omitempty,oneof=lab equipment"`
	ParentLabID string `form:"parent_lab_id" binding:"omitempty,uuid"`
}

type ResourceResponse struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Kind            string            `json:"kind"`
	ParentLabID     string            `json:"parent_lab_id,omitempty"`
	AutoApprove     bool              `json:"auto_approve"`
	MinCancelNotice string            `json:"min_cancel_notice"`
	OperatingHours  []OperatingWindow `json:"operating_hours"`
	BlackoutDates   []string          `json:"blackout_dates"`
	CreatedAt       time.Time         `json:"created_at"`
}

func NewResourceResponse(r *directory.Resource) ResourceResponse {
	hours := make([]OperatingWindow, 0, len(r.OperatingHours))
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		w, ok := r.OperatingHours[wd]
		if !ok {
			continue
		}
		hours = append(hours, OperatingWindow{
			Weekday: int(wd),
			Open:    w.Open.String(),
			Close:   w.Close.String(),
		})
	}

	blackouts := make([]string, 0, len(r.BlackoutDates))
	for _, d := range r.BlackoutDates {
		blackouts = append(blackouts, d.Format("2006-01-02"))
	}

	return ResourceResponse{
		ID:              r.ID,
		Name:            r.Name,
		Kind:            string(r.Kind),
		ParentLabID:     r.ParentLabID,
		AutoApprove:     r.AutoApprove,
		MinCancelNotice: r.MinCancelNotice.String(),
		OperatingHours:  hours,
		BlackoutDates:   blackouts,
		CreatedAt:       r.CreatedAt,
	}
}

func parseSchedule(windows []OperatingWindow) (interval.WeekSchedule, error) {
	if len(windows) == 0 {
		return nil, nil
	}
	schedule := make(interval.WeekSchedule, len(windows))
	for _, w := range windows {
		open, err := interval.ParseTimeOfDay(w.Open)
		if err != nil {
			return nil, err
		}
		closeAt, err := interval.ParseTimeOfDay(w.Close)
		if err != nil {
			return nil, err
		}
		schedule[time.Weekday(w.Weekday)] = interval.Window{Open: open, Close: closeAt}
	}
	return schedule, nil
}

func parseBlackouts(dates []string) ([]time.Time, error) {
	if len(dates) == 0 {
		return nil, nil
	}
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
