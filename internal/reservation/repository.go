package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActiveEntry is the slim row shape used to warm the availability index.
type ActiveEntry struct {
	ReservationID string
	ResourceID    string
	ParentLabID   string
	Start         time.Time
	End           time.Time
}

type Repository interface {
	// Create inserts the reservation inside a serializable transaction that
	// re-checks the conflict scope, so a concurrent writer racing past the
	// in-memory index aborts as a ConflictError rather than double-booking.
	Create(ctx context.Context, rsv *Reservation, scopeIDs []string) error
	GetByID(ctx context.Context, id string) (*Reservation, error)
	List(ctx context.Context, filter Filter) ([]*Reservation, int, error)

	// UpdateStatus applies a transition already validated by the state
	// machine, guarded by the expected current status.
	UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error

	// ListActive returns every pending/confirmed reservation with its
	// resource's parent lab, for warming the availability index at startup.
	ListActive(ctx context.Context) ([]ActiveEntry, error)

	// ListDue returns sweep candidates: pending reservations whose start has
	// passed and confirmed reservations whose end has passed.
	ListDue(ctx context.Context, now time.Time) ([]*Reservation, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) Create(ctx context.Context, rsv *Reservation, scopeIDs []string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin create reservation tx failed: %w", err)
	}
	defer tx.Rollback(ctx)

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	// Re-validate the conflict scope inside the transaction.
	checkSQL, checkArgs, err := conflictCheckSQL(rsv, scopeIDs)
	if err != nil {
		return fmt.Errorf("build conflict check query failed: %w", err)
	}

	var conflict ConflictError
	err = tx.QueryRow(ctx, checkSQL, checkArgs...).
		Scan(&conflict.ConflictingID, &conflict.Interval.Start, &conflict.Interval.End)
	switch {
	case err == nil:
		return &conflict
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("conflict check failed: %w", err)
	}

	insertSQL, insertArgs, err := psql.Insert("public.reservations").
		Columns("resource_id", "requester_id", "start_time", "end_time", "purpose", "status", "status_changed_at").
		Values(rsv.ResourceID, rsv.RequesterID, rsv.Interval.Start, rsv.Interval.End, rsv.Purpose, rsv.Status, rsv.StatusChangedAt).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create reservation query failed: %w", err)
	}

	if err := tx.QueryRow(ctx, insertSQL, insertArgs...).Scan(&rsv.ID, &rsv.CreatedAt); err != nil {
		if isOverlapViolation(err) {
			// the DB exclusion constraint caught a racer we did not see
			return r.racedConflict(ctx, rsv, scopeIDs)
		}
		return fmt.Errorf("create reservation failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		if isOverlapViolation(err) {
			return r.racedConflict(ctx, rsv, scopeIDs)
		}
		return fmt.Errorf("commit create reservation failed: %w", err)
	}
	return nil
}

// conflictCheckSQL builds the overlap probe over the resource's conflict
// scope: active statuses only, half-open interval comparison.
func conflictCheckSQL(rsv *Reservation, scopeIDs []string) (string, []any, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	return psql.Select("id", "start_time", "end_time").
		From("public.reservations").
		Where(squirrel.Eq{"resource_id": scopeIDs}).
		Where(squirrel.Eq{"status": []Status{StatusPending, StatusConfirmed}}).
		Where(squirrel.Lt{"start_time": rsv.Interval.End}).
		Where(squirrel.Gt{"end_time": rsv.Interval.Start}).
		Limit(1).
		ToSql()
}

// racedConflict re-reads the winning reservation after the exclusion
// constraint or a serialization abort killed the insert, so the caller still
// learns who holds the slot.
func (r *pgxRepository) racedConflict(ctx context.Context, rsv *Reservation, scopeIDs []string) error {
	sql, args, err := conflictCheckSQL(rsv, scopeIDs)
	if err != nil {
		return &ConflictError{Interval: rsv.Interval}
	}

	var conflict ConflictError
	if err := r.pool.QueryRow(ctx, sql, args...).
		Scan(&conflict.ConflictingID, &conflict.Interval.Start, &conflict.Interval.End); err != nil {
		// the racer may already be gone again; the interval is still ours
		return &ConflictError{Interval: rsv.Interval}
	}
	return &conflict
}

// isOverlapViolation matches the exclusion constraint on
// (resource_id, tstzrange(start_time, end_time)) and serialization aborts.
func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.ExclusionViolation ||
		pgErr.Code == pgerrcode.SerializationFailure
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	// LEFT JOIN: terminal reservations are retained for audit even after
	// their resource row is deleted.
	query, args, err := psql.Select(
		"b.id", "b.resource_id", "COALESCE(r.name, '')", "b.requester_id",
		"b.start_time", "b.end_time", "b.purpose", "b.status",
		"b.created_at", "b.status_changed_at",
	).
		From("public.reservations b").
		LeftJoin("public.resources r ON b.resource_id = r.id").
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get reservation query failed: %w", err)
	}

	row := r.pool.QueryRow(ctx, query, args...)

	var rsv Reservation
	if err := row.Scan(
		&rsv.ID, &rsv.ResourceID, &rsv.ResourceName, &rsv.RequesterID,
		&rsv.Interval.Start, &rsv.Interval.End, &rsv.Purpose, &rsv.Status,
		&rsv.CreatedAt, &rsv.StatusChangedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get reservation failed: %w", err)
	}
	return &rsv, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Reservation, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"b.id", "b.resource_id", "COALESCE(r.name, '')", "b.requester_id",
		"b.start_time", "b.end_time", "b.purpose", "b.status",
		"b.created_at", "b.status_changed_at",
		"count(*) OVER() as total_count",
	).
		From("public.reservations b").
		LeftJoin("public.resources r ON b.resource_id = r.id")

	if filter.RequesterID != "" {
		query = query.Where(squirrel.Eq{"b.requester_id": filter.RequesterID})
	}
	if filter.ResourceID != "" {
		query = query.Where(squirrel.Eq{"b.resource_id": filter.ResourceID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"b.status": filter.Status})
	}
	// Date range filtering (intersection logic)
	if filter.From != nil {
		query = query.Where(squirrel.Gt{"b.end_time": filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"b.start_time": filter.To})
	}

	orderBy := "b.start_time"
	if filter.SortBy != "" {
		orderBy = "b." + filter.SortBy
	}
	orderDir := "DESC"
	if filter.SortOrder != "" {
		orderDir = filter.SortOrder
	}
	query = query.OrderBy(orderBy + " " + orderDir)

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list reservations query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reservations failed: %w", err)
	}
	defer rows.Close()

	var reservations []*Reservation
	var total int

	for rows.Next() {
		var rsv Reservation
		if err := rows.Scan(
			&rsv.ID, &rsv.ResourceID, &rsv.ResourceName, &rsv.RequesterID,
			&rsv.Interval.Start, &rsv.Interval.End, &rsv.Purpose, &rsv.Status,
			&rsv.CreatedAt, &rsv.StatusChangedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan reservation failed: %w", err)
		}
		reservations = append(reservations, &rsv)
	}

	return reservations, total, nil
}

func (r *pgxRepository) UpdateStatus(ctx context.Context, id string, from, to Status, at time.Time) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.reservations").
		Set("status", to).
		Set("status_changed_at", at).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update status query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update reservation status failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) ListActive(ctx context.Context) ([]ActiveEntry, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"b.id", "b.resource_id", "COALESCE(r.parent_lab_id::text, '')",
		"b.start_time", "b.end_time",
	).
		From("public.reservations b").
		LeftJoin("public.resources r ON b.resource_id = r.id").
		Where(squirrel.Eq{"b.status": []Status{StatusPending, StatusConfirmed}}).
		OrderBy("b.resource_id", "b.start_time").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list active query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active reservations failed: %w", err)
	}
	defer rows.Close()

	var entries []ActiveEntry
	for rows.Next() {
		var e ActiveEntry
		if err := rows.Scan(&e.ReservationID, &e.ResourceID, &e.ParentLabID, &e.Start, &e.End); err != nil {
			return nil, fmt.Errorf("scan active reservation failed: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *pgxRepository) ListDue(ctx context.Context, now time.Time) ([]*Reservation, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"b.id", "b.resource_id", "COALESCE(r.name, '')", "b.requester_id",
		"b.start_time", "b.end_time", "b.purpose", "b.status",
		"b.created_at", "b.status_changed_at",
	).
		From("public.reservations b").
		LeftJoin("public.resources r ON b.resource_id = r.id").
		Where(squirrel.Or{
			squirrel.And{
				squirrel.Eq{"b.status": StatusPending},
				squirrel.LtOrEq{"b.start_time": now},
			},
			squirrel.And{
				squirrel.Eq{"b.status": StatusConfirmed},
				squirrel.LtOrEq{"b.end_time": now},
			},
		}).
		OrderBy("b.start_time ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list due query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list due reservations failed: %w", err)
	}
	defer rows.Close()

	var due []*Reservation
	for rows.Next() {
		var rsv Reservation
		if err := rows.Scan(
			&rsv.ID, &rsv.ResourceID, &rsv.ResourceName, &rsv.RequesterID,
			&rsv.Interval.Start, &rsv.Interval.End, &rsv.Purpose, &rsv.Status,
			&rsv.CreatedAt, &rsv.StatusChangedAt,
		); err != nil {
			return nil, fmt.Errorf("scan due reservation failed: %w", err)
		}
		due = append(due, &rsv)
	}
	return due, nil
}
