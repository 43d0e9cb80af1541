package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, res *Resource) error
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	Update(ctx context.Context, res *Resource) error
	Delete(ctx context.Context, id string) error
	CountEquipment(ctx context.Context, labID string) (int, error)

	// CountActiveReservations reports how many pending/confirmed reservations
	// hold the resource. Deletion is refused while any exist.
	CountActiveReservations(ctx context.Context, resourceID string) (int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

// operating hours are stored as a jsonb column keyed by weekday number
func marshalHours(res *Resource) ([]byte, error) {
	return json.Marshal(res.OperatingHours)
}

func (r *pgxRepository) Create(ctx context.Context, res *Resource) error {
	hours, err := marshalHours(res)
	if err != nil {
		return fmt.Errorf("marshal operating hours failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Insert("public.resources").
		Columns("name", "kind", "parent_lab_id", "auto_approve", "min_cancel_notice_seconds", "operating_hours", "blackout_dates").
		Values(res.Name, res.Kind, nullable(res.ParentLabID), res.AutoApprove, int(res.MinCancelNotice.Seconds()), hours, res.BlackoutDates).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create resource query failed: %w", err)
	}

	return r.pool.QueryRow(ctx, query, args...).Scan(&res.ID, &res.CreatedAt)
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Resource, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select(
		"id", "name", "kind", "parent_lab_id", "auto_approve",
		"min_cancel_notice_seconds", "operating_hours", "blackout_dates", "created_at",
	).
		From("public.resources").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get resource query failed: %w", err)
	}

	res, err := scanResource(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get resource failed: %w", err)
	}
	return res, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query := psql.Select(
		"id", "name", "kind", "parent_lab_id", "auto_approve",
		"min_cancel_notice_seconds", "operating_hours", "blackout_dates", "created_at",
		"count(*) OVER() as total_count",
	).
		From("public.resources")

	if filter.Kind != "" {
		query = query.Where(squirrel.Eq{"kind": filter.Kind})
	}
	if filter.ParentLabID != "" {
		query = query.Where(squirrel.Eq{"parent_lab_id": filter.ParentLabID})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	query = query.OrderBy("name ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list resources query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list resources failed: %w", err)
	}
	defer rows.Close()

	var resources []*Resource
	var total int

	for rows.Next() {
		res, err := scanResourceRow(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan resource failed: %w", err)
		}
		resources = append(resources, res)
	}

	return resources, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, res *Resource) error {
	hours, err := marshalHours(res)
	if err != nil {
		return fmt.Errorf("marshal operating hours failed: %w", err)
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Update("public.resources").
		Set("name", res.Name).
		Set("auto_approve", res.AutoApprove).
		Set("min_cancel_notice_seconds", int(res.MinCancelNotice.Seconds())).
		Set("operating_hours", hours).
		Set("blackout_dates", res.BlackoutDates).
		Where(squirrel.Eq{"id": res.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update resource query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update resource failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Delete("public.resources").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete resource query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete resource failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) CountEquipment(ctx context.Context, labID string) (int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("count(*)").
		From("public.resources").
		Where(squirrel.Eq{"parent_lab_id": labID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count equipment query failed: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count equipment failed: %w", err)
	}
	return count, nil
}

func (r *pgxRepository) CountActiveReservations(ctx context.Context, resourceID string) (int, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	query, args, err := psql.Select("count(*)").
		From("public.reservations").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.Eq{"status": []string{"pending", "confirmed"}}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count active reservations query failed: %w", err)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active reservations failed: %w", err)
	}
	return count, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(row rowScanner) (*Resource, error) {
	return scanResourceRow(row, nil)
}

func scanResourceRow(row rowScanner, total *int) (*Resource, error) {
	var (
		res         Resource
		parentLabID *string
		noticeSecs  int
		hoursJSON   []byte
	)

	dest := []any{
		&res.ID, &res.Name, &res.Kind, &parentLabID, &res.AutoApprove,
		&noticeSecs, &hoursJSON, &res.BlackoutDates, &res.CreatedAt,
	}
	if total != nil {
		dest = append(dest, total)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if parentLabID != nil {
		res.ParentLabID = *parentLabID
	}
	res.MinCancelNotice = time.Duration(noticeSecs) * time.Second
	if err := json.Unmarshal(hoursJSON, &res.OperatingHours); err != nil {
		return nil, fmt.Errorf("unmarshal operating hours failed: %w", err)
	}
	return &res, nil
}
