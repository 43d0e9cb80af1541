package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labreserve/lab-reservation-backend/internal/auth"
	"github.com/labreserve/lab-reservation-backend/internal/pkg/response"
	"github.com/labreserve/lab-reservation-backend/internal/reservation"
)

type Handler struct {
	service reservation.Service
}

func NewHandler(service reservation.Service) *Handler {
	return &Handler{service: service}
}

func actorFrom(c *gin.Context) reservation.Actor {
	return reservation.Actor{
		ID:       auth.GetUserID(c),
		Approver: auth.IsApprover(c),
	}
}

// respondError maps engine errors onto HTTP responses. ConflictError and
// InvalidTransitionError are not AppErrors and need their own shapes.
func respondError(c *gin.Context, err error) {
	var conflict *reservation.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, ConflictResponse{
			Error: "time slot already reserved",
			ConflictWith: ConflictDetail{
				ID:        conflict.ConflictingID,
				StartTime: conflict.Interval.Start,
				EndTime:   conflict.Interval.End,
			},
		})
		return
	}

	var badMove *reservation.InvalidTransitionError
	if errors.As(err, &badMove) {
		c.JSON(http.StatusConflict, gin.H{"error": badMove.Error()})
		return
	}

	response.Error(c, err)
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateReservationRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	rsv, err := h.service.Create(c.Request.Context(), reservation.CreateRequest{
		ResourceID:  body.ResourceID,
		RequesterID: userID,
		Start:       body.StartTime,
		End:         body.EndTime,
		Purpose:     body.Purpose,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewReservationResponse(rsv))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	rsv, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	// requesters may only see their own reservations
	actor := actorFrom(c)
	if !actor.Approver && actor.ID != rsv.RequesterID {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(rsv))
}

func (h *Handler) List(c *gin.Context) {
	var query ListReservationsRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	actor := actorFrom(c)
	requesterID := query.RequesterID
	if !actor.Approver {
		// normal users are forced to their own reservations
		requesterID = actor.ID
	}

	filter := reservation.Filter{
		RequesterID: requesterID,
		ResourceID:  query.ResourceID,
		Status:      query.Status,
		From:        query.From,
		To:          query.To,
		Page:        query.Page,
		PageSize:    query.PageSize,
		SortBy:      query.SortBy,
		SortOrder:   query.SortOrder,
	}

	reservations, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]ReservationResponse, len(reservations))
	for i, r := range reservations {
		items[i] = NewReservationResponse(r)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, filter.Page, filter.PageSize, total))
}

func (h *Handler) Approve(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	rsv, err := h.service.Approve(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(rsv))
}

func (h *Handler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	rsv, err := h.service.Cancel(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewReservationResponse(rsv))
}

// Sweep triggers the expiration pass on demand (it also runs on a timer).
func (h *Handler) Sweep(c *gin.Context) {
	swept, err := h.service.SweepExpirations(c.Request.Context(), time.Now().UTC())
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]ReservationResponse, len(swept))
	for i, r := range swept {
		items[i] = NewReservationResponse(r)
	}
	c.JSON(http.StatusOK, gin.H{"swept": items})
}
