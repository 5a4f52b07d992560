package departmentrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/postgres"
	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/departmentrepo"
)

// Repo is a Postgres implementation of departmentrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) GetByID(ctx context.Context, id domain.DepartmentID) (departmentrepo.Department, error) {
	if r.pool == nil {
		return departmentrepo.Department{}, errors.New("nil postgres pool")
	}

	rows, err := r.pool.Query(ctx, `SELECT id, name FROM departments WHERE id = $1`, int64(id))
	if err != nil {
		return departmentrepo.Department{}, fmt.Errorf("select department: %w", err)
	}
	depts, err := pgx.CollectRows(rows, collectDepartment)
	if err != nil {
		return departmentrepo.Department{}, fmt.Errorf("scan departments: %w", err)
	}
	switch len(depts) {
	case 0:
		return departmentrepo.Department{}, departmentrepo.ErrNotFound
	case 1:
		return depts[0], nil
	default:
		return departmentrepo.Department{}, departmentrepo.ErrIntegrity
	}
}

func (r *Repo) List(ctx context.Context) ([]departmentrepo.Department, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM departments ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	depts, err := pgx.CollectRows(rows, collectDepartment)
	if err != nil {
		return nil, fmt.Errorf("scan departments: %w", err)
	}
	return depts, nil
}

func (r *Repo) Associate(ctx context.Context, memberID domain.MemberID, departmentID domain.DepartmentID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO member_departments (member_id, department_id) VALUES ($1, $2)
	`, int64(memberID), int64(departmentID))
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return departmentrepo.ErrAlreadyAssociated
		}
		return fmt.Errorf("associate member department: %w", err)
	}
	return nil
}

func (r *Repo) Disassociate(ctx context.Context, memberID domain.MemberID, departmentID domain.DepartmentID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		DELETE FROM member_departments WHERE member_id = $1 AND department_id = $2
	`, int64(memberID), int64(departmentID))
	if err != nil {
		return fmt.Errorf("disassociate member department: %w", err)
	}
	return nil
}

func (r *Repo) ListForMember(ctx context.Context, memberID domain.MemberID, limit, offset uint32) ([]departmentrepo.Department, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}

	q := `
		SELECT d.id, d.name
		FROM departments d
		JOIN member_departments md ON md.department_id = d.id
		WHERE md.member_id = $1
		ORDER BY d.id
		OFFSET $2`
	args := []any{int64(memberID), int64(offset)}
	if limit > 0 {
		q += ` LIMIT $3`
		args = append(args, int64(limit))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list member departments: %w", err)
	}
	depts, err := pgx.CollectRows(rows, collectDepartment)
	if err != nil {
		return nil, fmt.Errorf("scan departments: %w", err)
	}
	return depts, nil
}

func collectDepartment(row pgx.CollectableRow) (departmentrepo.Department, error) {
	var d departmentrepo.Department
	var id int64
	if err := row.Scan(&id, &d.Name); err != nil {
		return departmentrepo.Department{}, err
	}
	d.ID = domain.DepartmentID(id)
	return d, nil
}
