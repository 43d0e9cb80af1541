package directory

import (
	"context"
	"strings"
	"time"

	"github.com/labreserve/lab-reservation-backend/internal/interval"
)

type CreateRequest struct {
	Name            string
	Kind            Kind
	ParentLabID     string
	AutoApprove     bool
	MinCancelNotice time.Duration
	OperatingHours  interval.WeekSchedule
	BlackoutDates   []time.Time
}

type UpdateRequest struct {
	Name            *string
	AutoApprove     *bool
	MinCancelNotice *time.Duration
	OperatingHours  interval.WeekSchedule
	BlackoutDates   []time.Time
}

// Service is the Resource Directory surface the reservation engine consumes:
// resource existence, lab/equipment topology and operating policy.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Resource, error)
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Resource, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Resource, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrEmptyName
	}
	if req.Kind != KindLab && req.Kind != KindEquipment {
		return nil, ErrInvalidKind
	}

	if req.Kind == KindEquipment {
		if req.ParentLabID == "" {
			return nil, ErrParentMissing
		}
		parent, err := s.repo.GetByID(ctx, req.ParentLabID)
		if err != nil {
			return nil, ErrParentMissing
		}
		if parent.Kind != KindLab {
			return nil, ErrParentNotLab
		}
	} else if req.ParentLabID != "" {
		// labs are top-level
		return nil, ErrInvalidKind
	}

	res := &Resource{
		Name:            strings.TrimSpace(req.Name),
		Kind:            req.Kind,
		ParentLabID:     req.ParentLabID,
		AutoApprove:     req.AutoApprove,
		MinCancelNotice: req.MinCancelNotice,
		OperatingHours:  req.OperatingHours,
		BlackoutDates:   req.BlackoutDates,
	}

	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest) (*Resource, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrEmptyName
		}
		res.Name = strings.TrimSpace(*req.Name)
	}
	if req.AutoApprove != nil {
		res.AutoApprove = *req.AutoApprove
	}
	if req.MinCancelNotice != nil {
		res.MinCancelNotice = *req.MinCancelNotice
	}
	if req.OperatingHours != nil {
		res.OperatingHours = req.OperatingHours
	}
	if req.BlackoutDates != nil {
		res.BlackoutDates = req.BlackoutDates
	}

	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if res.Kind == KindLab {
		count, err := s.repo.CountEquipment(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrHasEquipment
		}
	}

	// Deleting a resource out from under its active reservations would leave
	// holds nobody can cancel or sweep.
	active, err := s.repo.CountActiveReservations(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return ErrHasActiveReservations
	}

	return s.repo.Delete(ctx, id)
}
