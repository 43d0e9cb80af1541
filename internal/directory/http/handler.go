package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/labreserve/lab-reservation-backend/internal/directory"
	"github.com/labreserve/lab-reservation-backend/internal/pkg/response"
)

type Handler struct {
	service directory.Service
}

func NewHandler(service directory.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateResourceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	hours, err := parseSchedule(body.OperatingHours)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid operating hours", "details": err.Error()})
		return
	}
	blackouts, err := parseBlackouts(body.BlackoutDates)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid blackout dates", "details": err.Error()})
		return
	}

	var notice time.Duration
	if body.MinCancelNotice != "" {
		notice, err = time.ParseDuration(body.MinCancelNotice)
		if err != nil || notice < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_cancel_notice"})
			return
		}
	}

	res, err := h.service.Create(c.Request.Context(), directory.CreateRequest{
		Name:            body.Name,
		Kind:            directory.Kind(body.Kind),
		ParentLabID:     body.ParentLabID,
		AutoApprove:     body.AutoApprove,
		MinCancelNotice: notice,
		OperatingHours:  hours,
		BlackoutDates:   blackouts,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewResourceResponse(res))
}

func (h *Handler) Get(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	res, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResourceResponse(res))
}

func (h *Handler) List(c *gin.Context) {
	var query ListResourcesRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	resources, total, err := h.service.List(c.Request.Context(), directory.Filter{
		Kind:        query.Kind,
		ParentLabID: query.ParentLabID,
		Page:        query.Page,
		PageSize:    query.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]ResourceResponse, len(resources))
	for i, r := range resources {
		items[i] = NewResourceResponse(r)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, query.Page, query.PageSize, total))
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	var body UpdateResourceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	hours, err := parseSchedule(body.OperatingHours)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid operating hours", "details": err.Error()})
		return
	}
	blackouts, err := parseBlackouts(body.BlackoutDates)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid blackout dates", "details": err.Error()})
		return
	}

	req := directory.UpdateRequest{
		Name:           body.Name,
		AutoApprove:    body.AutoApprove,
		OperatingHours: hours,
		BlackoutDates:  blackouts,
	}
	if body.MinCancelNotice != nil {
		notice, err := time.ParseDuration(*body.MinCancelNotice)
		if err != nil || notice < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid min_cancel_notice"})
			return
		}
		req.MinCancelNotice = &notice
	}

	res, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewResourceResponse(res))
}

func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
