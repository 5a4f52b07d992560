package attendancerepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/postgres"
	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/attendancerepo"
)

// Repo is a Postgres implementation of attendancerepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Add(ctx context.Context, memberID domain.MemberID, date time.Time) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO attendances (member_id, attended_on) VALUES ($1, $2)
	`, int64(memberID), domain.CalendarDate(date))
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return attendancerepo.ErrDuplicate
		}
		return fmt.Errorf("add attendance: %w", err)
	}
	return nil
}

func (r *Repo) Remove(ctx context.Context, memberID domain.MemberID, date time.Time) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		DELETE FROM attendances WHERE member_id = $1 AND attended_on = $2
	`, int64(memberID), domain.CalendarDate(date))
	if err != nil {
		return fmt.Errorf("remove attendance: %w", err)
	}
	return nil
}

func (r *Repo) ListForMember(ctx context.Context, memberID domain.MemberID, limit, offset uint32) ([]time.Time, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}

	q := `
		SELECT attended_on
		FROM attendances
		WHERE member_id = $1
		ORDER BY attended_on DESC
		OFFSET $2`
	args := []any{int64(memberID), int64(offset)}
	if limit > 0 {
		q += ` LIMIT $3`
		args = append(args, int64(limit))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendances: %w", err)
	}
	dates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (time.Time, error) {
		var d time.Time
		if err := row.Scan(&d); err != nil {
			return time.Time{}, err
		}
		return domain.CalendarDate(d), nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan attendances: %w", err)
	}
	return dates, nil
}

func (r *Repo) CountSince(ctx context.Context, memberID domain.MemberID, since time.Time) (uint32, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM attendances WHERE member_id = $1 AND attended_on >= $2
	`, int64(memberID), domain.CalendarDate(since)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count attendances: %w", err)
	}
	return uint32(n), nil
}

func (r *Repo) CountDistinctMonthsSince(ctx context.Context, memberID domain.MemberID, since time.Time) (uint32, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(DISTINCT date_trunc('month', attended_on))
		FROM attendances
		WHERE member_id = $1 AND attended_on >= $2
	`, int64(memberID), domain.CalendarDate(since)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count attendance months: %w", err)
	}
	return uint32(n), nil
}
