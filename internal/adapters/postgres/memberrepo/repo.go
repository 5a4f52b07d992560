package memberrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/postgres"
	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/memberrepo"
)

// Repo is a Postgres implementation of memberrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const memberColumns = `id, first_name, last_name, email, phone_number, birth_date, create_date, notes, active`

func (r *Repo) FindOrCreate(ctx context.Context, m memberrepo.Member) (memberrepo.Member, bool, error) {
	if r.pool == nil {
		return memberrepo.Member{}, false, errors.New("nil postgres pool")
	}

	// The insert yields no row when the natural key already exists; the
	// follow-up select then resolves the existing member.
	row := r.pool.QueryRow(ctx, `
		INSERT INTO members (first_name, last_name, email, phone_number, birth_date, create_date, notes, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT ON CONSTRAINT members_natural_key DO NOTHING
		RETURNING `+memberColumns,
		m.FirstName,
		m.LastName,
		m.Email,
		m.PhoneNumber,
		m.BirthDate,
		m.CreateDate,
		m.Notes,
		m.Active,
	)

	out, err := scanMember(row)
	if err == nil {
		return out, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return memberrepo.Member{}, false, fmt.Errorf("insert member: %w", err)
	}

	key := m.NaturalKey()
	row = r.pool.QueryRow(ctx, `
		SELECT `+memberColumns+`
		FROM members
		WHERE first_name = $1 AND last_name = $2 AND email = $3 AND birth_date = $4
	`, key.FirstName, key.LastName, key.Email, key.BirthDate)

	out, err = scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The conflicting row vanished between statements; the caller
			// may simply retry.
			return memberrepo.Member{}, false, memberrepo.ErrNotFound
		}
		return memberrepo.Member{}, false, fmt.Errorf("select member by natural key: %w", err)
	}
	return out, false, nil
}

func (r *Repo) Update(ctx context.Context, m memberrepo.Member) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}

	ct, err := r.pool.Exec(ctx, `
		UPDATE members
		SET first_name = $2,
		    last_name = $3,
		    email = $4,
		    phone_number = $5,
		    birth_date = $6,
		    create_date = $7,
		    notes = $8,
		    active = $9
		WHERE id = $1
	`,
		int64(m.ID),
		m.FirstName,
		m.LastName,
		m.Email,
		m.PhoneNumber,
		m.BirthDate,
		m.CreateDate,
		m.Notes,
		m.Active,
	)
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return memberrepo.ErrDuplicateKey
		}
		return fmt.Errorf("update member: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return memberrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) SetActive(ctx context.Context, id domain.MemberID, active bool) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}

	ct, err := r.pool.Exec(ctx, `UPDATE members SET active = $2 WHERE id = $1`, int64(id), active)
	if err != nil {
		return fmt.Errorf("set member active: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return memberrepo.ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.MemberID) (memberrepo.Member, error) {
	if r.pool == nil {
		return memberrepo.Member{}, errors.New("nil postgres pool")
	}

	rows, err := r.pool.Query(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, int64(id))
	if err != nil {
		return memberrepo.Member{}, fmt.Errorf("select member: %w", err)
	}
	members, err := pgx.CollectRows(rows, collectMember)
	if err != nil {
		return memberrepo.Member{}, fmt.Errorf("scan members: %w", err)
	}
	switch len(members) {
	case 0:
		return memberrepo.Member{}, memberrepo.ErrNotFound
	case 1:
		return members[0], nil
	default:
		return memberrepo.Member{}, memberrepo.ErrIntegrity
	}
}

func (r *Repo) List(ctx context.Context, f memberrepo.Filter, limit, offset uint32) ([]memberrepo.Member, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}

	where, err := filterClause(f)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + memberColumns + ` FROM members ` + where + ` ORDER BY last_name, first_name, id OFFSET $1`
	args := []any{int64(offset)}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, int64(limit))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	members, err := pgx.CollectRows(rows, collectMember)
	if err != nil {
		return nil, fmt.Errorf("scan members: %w", err)
	}
	return members, nil
}

func (r *Repo) Count(ctx context.Context, f memberrepo.Filter) (uint32, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	if f == memberrepo.FilterUpcomingBirthday {
		return 0, fmt.Errorf("count does not support filter %q", f)
	}

	where, err := filterClause(f)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM members `+where).Scan(&n); err != nil {
		return 0, fmt.Errorf("count members: %w", err)
	}
	return uint32(n), nil
}

func filterClause(f memberrepo.Filter) (string, error) {
	switch f {
	case memberrepo.FilterAll:
		return ``, nil
	case memberrepo.FilterActive:
		return `WHERE active`, nil
	case memberrepo.FilterInactive:
		return `WHERE NOT active`, nil
	case memberrepo.FilterUpcomingBirthday:
		// Distance in days to the next occurrence of the birthday.
		// Whole-year intervals keep Feb 29 births valid off leap years
		// (Postgres clamps them to Feb 28).
		const thisYear = `(birth_date + make_interval(years => extract(year FROM current_date)::int - extract(year FROM birth_date)::int))::date`
		const nextYear = `(birth_date + make_interval(years => extract(year FROM current_date)::int - extract(year FROM birth_date)::int + 1))::date`
		return `WHERE active AND (CASE WHEN ` + thisYear + ` >= current_date THEN ` + thisYear + ` - current_date ELSE ` + nextYear + ` - current_date END) < 30`, nil
	default:
		return ``, fmt.Errorf("unknown member filter %q", f)
	}
}

func scanMember(row pgx.Row) (memberrepo.Member, error) {
	var m memberrepo.Member
	var id int64
	err := row.Scan(&id, &m.FirstName, &m.LastName, &m.Email, &m.PhoneNumber, &m.BirthDate, &m.CreateDate, &m.Notes, &m.Active)
	if err != nil {
		return memberrepo.Member{}, err
	}
	m.ID = domain.MemberID(id)
	m.BirthDate = domain.CalendarDate(m.BirthDate)
	m.CreateDate = domain.CalendarDate(m.CreateDate)
	return m, nil
}

func collectMember(row pgx.CollectableRow) (memberrepo.Member, error) {
	return scanMember(row)
}
