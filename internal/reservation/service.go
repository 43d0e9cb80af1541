package reservation

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/labreserve/lab-reservation-backend/internal/directory"
	"github.com/labreserve/lab-reservation-backend/internal/interval"
	"github.com/labreserve/lab-reservation-backend/internal/notify"
	"github.com/labreserve/lab-reservation-backend/internal/pkg/apperror"
)

type CreateRequest struct {
	ResourceID  string
	RequesterID string
	Start       time.Time
	End         time.Time
	Purpose     string
}

// Service is the Reservation Coordinator: it validates requests against
// directory policy, atomically checks the availability index and commits or
// rejects, and drives every lifecycle transition.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Reservation, error)
	Approve(ctx context.Context, id string, actor Actor) (*Reservation, error)
	Cancel(ctx context.Context, id string, actor Actor) (*Reservation, error)
	GetByID(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context, filter Filter) ([]*Reservation, int, error)

	// SweepExpirations expires overdue pending reservations and completes
	// finished confirmed ones. Idempotent: terminal reservations are skipped
	// and never re-emit events.
	SweepExpirations(ctx context.Context, now time.Time) ([]*Reservation, error)

	// WarmIndex loads all active reservations into the availability index.
	// Called once at startup before serving traffic.
	WarmIndex(ctx context.Context) error
}

// Config carries the engine-wide policy knobs.
type Config struct {
	// MaxAdvance is how far ahead of now a reservation may start. Zero
	// disables the horizon check.
	MaxAdvance time.Duration
	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

type service struct {
	repo       Repository
	dir        directory.Service
	idx        *Index
	locks      *KeyedMutex
	authz      Authorizer
	notifier   notify.Notifier
	log        *zap.Logger
	maxAdvance time.Duration
	now        func() time.Time
}

func NewService(repo Repository, dir directory.Service, notifier notify.Notifier, authz Authorizer, log *zap.Logger, cfg Config) Service {
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:       repo,
		dir:        dir,
		idx:        NewIndex(),
		locks:      NewKeyedMutex(),
		authz:      authz,
		notifier:   notifier,
		log:        log,
		maxAdvance: cfg.MaxAdvance,
		now:        now,
	}
}

func (s *service) WarmIndex(ctx context.Context) error {
	entries, err := s.repo.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.ParentLabID != "" {
			s.idx.RegisterEquipment(e.ResourceID, e.ParentLabID)
		}
		s.idx.Insert(Hold{
			ReservationID: e.ReservationID,
			ResourceID:    e.ResourceID,
			Interval:      interval.Interval{Start: e.Start, End: e.End},
		})
	}
	s.log.Info("availability index warmed", zap.Int("active_reservations", len(entries)))
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Reservation, error) {
	ivl, err := interval.New(req.Start, req.End)
	if err != nil {
		return nil, ErrInvalidInterval
	}

	res, err := s.dir.GetByID(ctx, req.ResourceID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, apperror.Wrap(err, http.StatusServiceUnavailable, "resource directory unavailable")
	}

	now := s.now()
	if req.Start.Before(now) {
		return nil, ErrInThePast
	}
	if s.maxAdvance > 0 && req.Start.After(now.Add(s.maxAdvance)) {
		return nil, ErrTooFarInAdvance
	}
	if !res.OperatingHours.Covers(ivl) {
		return nil, ErrOutOfOperatingHours
	}
	if res.IsBlackedOut(ivl) {
		return nil, ErrBlackout
	}

	if res.Kind == directory.KindEquipment {
		s.idx.RegisterEquipment(res.ID, res.ParentLabID)
	}

	// Conflict check and insert form one atomic unit per resource scope.
	unlock := s.locks.LockScope(res.ID, res.ParentLabID)
	defer unlock()

	if conflicts := s.scopeConflicts(res, ivl, ""); len(conflicts) > 0 {
		s.emit(notify.Event{
			Type:        notify.EventConflictRejected,
			ResourceID:  req.ResourceID,
			RequesterID: req.RequesterID,
			Start:       req.Start,
			End:         req.End,
		})
		return nil, &ConflictError{
			ConflictingID: conflicts[0].ReservationID,
			Interval:      conflicts[0].Interval,
		}
	}

	status := StatusPending
	if res.AutoApprove {
		status = StatusConfirmed
	}

	rsv := &Reservation{
		ResourceID:      res.ID,
		ResourceName:    res.Name,
		RequesterID:     req.RequesterID,
		Interval:        ivl,
		Purpose:         req.Purpose,
		Status:          status,
		StatusChangedAt: now,
	}

	if err := s.repo.Create(ctx, rsv, s.scopeIDs(res)); err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			return nil, conflict
		}
		return nil, apperror.Wrap(err, http.StatusServiceUnavailable, "storage unavailable")
	}

	s.idx.Insert(Hold{ReservationID: rsv.ID, ResourceID: res.ID, Interval: ivl})

	s.emitFor(notify.EventCreated, rsv)
	if status == StatusConfirmed {
		s.emitFor(notify.EventConfirmed, rsv)
	}
	return rsv, nil
}

func (s *service) Approve(ctx context.Context, id string, actor Actor) (*Reservation, error) {
	rsv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := s.dir.GetByID(ctx, rsv.ResourceID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, apperror.Wrap(err, http.StatusServiceUnavailable, "resource directory unavailable")
	}

	if !s.authz.CanApprove(actor, res) {
		return nil, ErrPermissionDenied
	}

	unlock := s.locks.LockScope(res.ID, res.ParentLabID)
	defer unlock()

	// re-read under the lock, the landscape may have changed
	rsv, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := Transition(rsv, StatusConfirmed, s.now()); err != nil {
		return nil, err
	}

	if conflicts := s.scopeConflicts(res, rsv.Interval, rsv.ID); len(conflicts) > 0 {
		return nil, &ConflictError{
			ConflictingID: conflicts[0].ReservationID,
			Interval:      conflicts[0].Interval,
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusPending, StatusConfirmed, rsv.StatusChangedAt); err != nil {
		return nil, err
	}

	s.emitFor(notify.EventConfirmed, rsv)
	return rsv, nil
}

func (s *service) Cancel(ctx context.Context, id string, actor Actor) (*Reservation, error) {
	rsv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// A removed resource must not strand its holds: skip the policy checks
	// that need the directory row and keep the reservation cancellable.
	res, err := s.dir.GetByID(ctx, rsv.ResourceID)
	if err != nil && !errors.Is(err, directory.ErrNotFound) {
		return nil, apperror.Wrap(err, http.StatusServiceUnavailable, "resource directory unavailable")
	}

	if !s.authz.CanCancel(actor, rsv) {
		return nil, ErrPermissionDenied
	}

	parentLab := ""
	if res != nil {
		parentLab = res.ParentLabID
	}
	unlock := s.locks.LockScope(rsv.ResourceID, parentLab)
	defer unlock()

	rsv, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanTransition(rsv.Status, StatusCancelled) {
		return nil, &InvalidTransitionError{From: rsv.Status, To: StatusCancelled}
	}

	// Confirmed reservations require the notice period, waived for approvers.
	if rsv.Status == StatusConfirmed && !actor.Approver && res != nil && res.MinCancelNotice > 0 {
		if s.now().Add(res.MinCancelNotice).After(rsv.Interval.Start) {
			return nil, ErrCancelNotice
		}
	}

	from := rsv.Status
	if err := Transition(rsv, StatusCancelled, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, from, StatusCancelled, rsv.StatusChangedAt); err != nil {
		return nil, err
	}

	s.idx.Remove(rsv.ResourceID, rsv.ID)
	s.emitFor(notify.EventCancelled, rsv)
	return rsv, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Reservation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Reservation, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) SweepExpirations(ctx context.Context, now time.Time) ([]*Reservation, error) {
	due, err := s.repo.ListDue(ctx, now)
	if err != nil {
		return nil, err
	}

	var swept []*Reservation
	for _, d := range due {
		rsv, err := s.sweepOne(ctx, d, now)
		if err != nil {
			s.log.Warn("sweep failed for reservation",
				zap.String("reservation_id", d.ID), zap.Error(err))
			continue
		}
		if rsv != nil {
			swept = append(swept, rsv)
		}
	}
	return swept, nil
}

// sweepOne transitions a single due reservation under its resource locks.
// Returns nil when the reservation no longer needs sweeping.
func (s *service) sweepOne(ctx context.Context, d *Reservation, now time.Time) (*Reservation, error) {
	// Sweep even when the resource row is gone, otherwise the hold outlives it.
	parentLab := ""
	if res, err := s.dir.GetByID(ctx, d.ResourceID); err == nil {
		parentLab = res.ParentLabID
	} else if !errors.Is(err, directory.ErrNotFound) {
		return nil, err
	}

	unlock := s.locks.LockScope(d.ResourceID, parentLab)
	defer unlock()

	rsv, err := s.repo.GetByID(ctx, d.ID)
	if err != nil {
		return nil, err
	}

	var to Status
	var evType notify.EventType
	switch {
	case rsv.Status == StatusPending && !rsv.Interval.Start.After(now):
		to, evType = StatusExpired, notify.EventExpired
	case rsv.Status == StatusConfirmed && !rsv.Interval.End.After(now):
		to, evType = StatusCompleted, notify.EventCompleted
	default:
		// already terminal or raced with cancel/approve; nothing to do
		return nil, nil
	}

	from := rsv.Status
	if err := Transition(rsv, to, now); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, rsv.ID, from, to, now); err != nil {
		return nil, err
	}

	s.idx.Remove(rsv.ResourceID, rsv.ID)
	s.emitFor(evType, rsv)
	return rsv, nil
}

// scopeConflicts queries the availability index across the resource's
// conflict scope: same-resource overlaps plus lab/equipment cross-checks.
func (s *service) scopeConflicts(res *directory.Resource, ivl interval.Interval, excludeID string) []Hold {
	var conflicts []Hold
	if res.Kind == directory.KindLab {
		conflicts = s.idx.FindCrossResourceConflicts(res.ID, ivl)
	} else {
		conflicts = s.idx.FindConflicts(res.ID, ivl)
		conflicts = append(conflicts, s.idx.FindConflicts(res.ParentLabID, ivl)...)
	}

	if excludeID == "" {
		return conflicts
	}
	out := conflicts[:0]
	for _, h := range conflicts {
		if h.ReservationID != excludeID {
			out = append(out, h)
		}
	}
	return out
}

// scopeIDs lists the resource ids the repository must re-check during insert.
func (s *service) scopeIDs(res *directory.Resource) []string {
	if res.Kind == directory.KindLab {
		return append([]string{res.ID}, s.idx.EquipmentUnder(res.ID)...)
	}
	return []string{res.ID, res.ParentLabID}
}

func (s *service) emitFor(t notify.EventType, rsv *Reservation) {
	s.emit(notify.Event{
		Type:          t,
		ReservationID: rsv.ID,
		ResourceID:    rsv.ResourceID,
		RequesterID:   rsv.RequesterID,
		Start:         rsv.Interval.Start,
		End:           rsv.Interval.End,
	})
}

func (s *service) emit(ev notify.Event) {
	ev.OccurredAt = s.now()
	// fire-and-forget, delivery never gates the engine
	if err := s.notifier.Notify(context.Background(), ev); err != nil {
		s.log.Warn("notify failed", zap.String("type", string(ev.Type)), zap.Error(err))
	}
}
