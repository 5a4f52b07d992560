package departmentrepo

import (
	"context"

	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
)

// Department is the persistence shape of a club department.
// The catalog is fixed seed data; there is no create or update path.
type Department struct {
	ID   domain.DepartmentID
	Name string
}

// Repository provides access to the department catalog and the
// member-department link table.
type Repository interface {
	// GetByID returns ErrNotFound for zero matches and ErrIntegrity when
	// more than one row carries the id.
	GetByID(ctx context.Context, id domain.DepartmentID) (Department, error)

	// List returns the full catalog ordered by id.
	List(ctx context.Context) ([]Department, error)

	// Associate links a member to a department. A duplicate association
	// returns ErrAlreadyAssociated; the caller must be told rather than
	// the insert being silently ignored.
	Associate(ctx context.Context, memberID domain.MemberID, departmentID domain.DepartmentID) error

	// Disassociate removes the link. Removing a link that does not exist
	// is not an error.
	Disassociate(ctx context.Context, memberID domain.MemberID, departmentID domain.DepartmentID) error

	// ListForMember pages through a member's departments ordered by id.
	// limit == 0 means no limit; fee calculation depends on the full set.
	ListForMember(ctx context.Context, memberID domain.MemberID, limit, offset uint32) ([]Department, error)
}
