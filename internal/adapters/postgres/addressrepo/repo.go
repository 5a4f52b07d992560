package addressrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/postgres"
	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/addressrepo"
)

// Repo is a Postgres implementation of addressrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const addressColumns = `id, street, city, postal_code, country`

func (r *Repo) FindOrCreate(ctx context.Context, a addressrepo.Address) (addressrepo.Address, bool, error) {
	if r.pool == nil {
		return addressrepo.Address{}, false, errors.New("nil postgres pool")
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO addresses (street, city, postal_code, country)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ON CONSTRAINT addresses_natural_key DO NOTHING
		RETURNING `+addressColumns,
		a.Street, a.City, a.PostalCode, a.Country,
	)

	out, err := scanAddress(row)
	if err == nil {
		return out, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return addressrepo.Address{}, false, fmt.Errorf("insert address: %w", err)
	}

	row = r.pool.QueryRow(ctx, `
		SELECT `+addressColumns+`
		FROM addresses
		WHERE street = $1 AND city = $2 AND postal_code = $3 AND country = $4
	`, a.Street, a.City, a.PostalCode, a.Country)

	out, err = scanAddress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return addressrepo.Address{}, false, addressrepo.ErrNotFound
		}
		return addressrepo.Address{}, false, fmt.Errorf("select address by natural key: %w", err)
	}
	return out, false, nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.AddressID) (addressrepo.Address, error) {
	if r.pool == nil {
		return addressrepo.Address{}, errors.New("nil postgres pool")
	}

	rows, err := r.pool.Query(ctx, `SELECT `+addressColumns+` FROM addresses WHERE id = $1`, int64(id))
	if err != nil {
		return addressrepo.Address{}, fmt.Errorf("select address: %w", err)
	}
	addrs, err := pgx.CollectRows(rows, collectAddress)
	if err != nil {
		return addressrepo.Address{}, fmt.Errorf("scan addresses: %w", err)
	}
	switch len(addrs) {
	case 0:
		return addressrepo.Address{}, addressrepo.ErrNotFound
	case 1:
		return addrs[0], nil
	default:
		return addressrepo.Address{}, addressrepo.ErrIntegrity
	}
}

func (r *Repo) Delete(ctx context.Context, id domain.AddressID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	if _, err := r.pool.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, int64(id)); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	return nil
}

func (r *Repo) Link(ctx context.Context, memberID domain.MemberID, addressID domain.AddressID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO member_addresses (member_id, address_id) VALUES ($1, $2)
	`, int64(memberID), int64(addressID))
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UniqueViolationCode {
			return addressrepo.ErrAlreadyLinked
		}
		return fmt.Errorf("link member address: %w", err)
	}
	return nil
}

func (r *Repo) Unlink(ctx context.Context, memberID domain.MemberID, addressID domain.AddressID) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		DELETE FROM member_addresses WHERE member_id = $1 AND address_id = $2
	`, int64(memberID), int64(addressID))
	if err != nil {
		return fmt.Errorf("unlink member address: %w", err)
	}
	return nil
}

func (r *Repo) CountMembers(ctx context.Context, id domain.AddressID) (uint32, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM member_addresses WHERE address_id = $1
	`, int64(id)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count address members: %w", err)
	}
	return uint32(n), nil
}

func (r *Repo) ListForMember(ctx context.Context, memberID domain.MemberID, limit, offset uint32) ([]addressrepo.Address, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}

	q := `
		SELECT ` + addressColumns + `
		FROM addresses a
		JOIN member_addresses ma ON ma.address_id = a.id
		WHERE ma.member_id = $1
		ORDER BY a.id
		OFFSET $2`
	args := []any{int64(memberID), int64(offset)}
	if limit > 0 {
		q += ` LIMIT $3`
		args = append(args, int64(limit))
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list member addresses: %w", err)
	}
	addrs, err := pgx.CollectRows(rows, collectAddress)
	if err != nil {
		return nil, fmt.Errorf("scan addresses: %w", err)
	}
	return addrs, nil
}

func scanAddress(row pgx.Row) (addressrepo.Address, error) {
	var a addressrepo.Address
	var id int64
	if err := row.Scan(&id, &a.Street, &a.City, &a.PostalCode, &a.Country); err != nil {
		return addressrepo.Address{}, err
	}
	a.ID = domain.AddressID(id)
	return a, nil
}

func collectAddress(row pgx.CollectableRow) (addressrepo.Address, error) {
	return scanAddress(row)
}
