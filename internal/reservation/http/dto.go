package http

import (
	"time"

	"github.com/labreserve/lab-reservation-backend/internal/pkg/request"
	"github.com/labreserve/lab-reservation-backend/internal/reservation"
)

// CreateReservationRequest is the POST /reservations body.
type CreateReservationRequest struct {
	ResourceID string    `json:"resource_id" binding:"required,uuid"`
	StartTime  time.Time `json:"start_time" binding:"required"`
	EndTime    time.Time `json:"end_time" binding:"required"`
	Purpose    string    `json:"purpose" binding:"omitempty,max=500"`
}

// ListReservationsRequest defines query parameters for listing reservations.
type ListReservationsRequest struct {
	request.ListParams
	ResourceID  string     `form:"resource_id" binding:"omitempty,uuid"`
	RequesterID string     `form:"requester_id" binding:"omitempty,uuid"`
	Status      string     `form:"status" binding:"omitempty,oneof=pending confirmed cancelled completed expired"`
	From        *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To          *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	SortBy      string     `form:"sort_by" binding:"omitempty,oneof=start_time end_time created_at status"`
}

type ResourceTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ReservationResponse struct {
	ID              string      `json:"id"`
	Resource        ResourceTag `json:"resource"`
	RequesterID     string      `json:"requester_id"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         time.Time   `json:"end_time"`
	Purpose         string      `json:"purpose"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
	StatusChangedAt time.Time   `json:"status_changed_at"`
}

func NewReservationResponse(r *reservation.Reservation) ReservationResponse {
	return ReservationResponse{
		ID:              r.ID,
		Resource:        ResourceTag{ID: r.ResourceID, Name: r.ResourceName},
		RequesterID:     r.RequesterID,
		StartTime:       r.Interval.Start,
		EndTime:         r.Interval.End,
		Purpose:         r.Purpose,
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt,
		StatusChangedAt: r.StatusChangedAt,
	}
}

// ConflictDetail points the caller at the reservation holding the slot.
type ConflictDetail struct {
	ID        string    `json:"id,omitempty"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

type ConflictResponse struct {
	Error        string         `json:"error"`
	ConflictWith ConflictDetail `json:"conflict_with"`
}
