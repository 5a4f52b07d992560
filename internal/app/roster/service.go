package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/addressrepo"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/attendancerepo"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/departmentrepo"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/memberrepo"
)

// Service manages member-department and member-address associations and
// per-member attendance records.
//
// Multi-step operations here are not atomic across statements: a failing
// step aborts the remaining steps, but side effects already committed are
// not rolled back. Unique constraints in the store are the safety net for
// concurrent duplicate submissions.
type Service struct {
	members     memberrepo.Repository
	addresses   addressrepo.Repository
	departments departmentrepo.Repository
	attendance  attendancerepo.Repository
	log         *slog.Logger
}

func NewService(
	members memberrepo.Repository,
	addresses addressrepo.Repository,
	departments departmentrepo.Repository,
	attendance attendancerepo.Repository,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		members:     members,
		addresses:   addresses,
		departments: departments,
		attendance:  attendance,
		log:         log,
	}
}

// AssociateDepartment links a member to a department. A link that already
// exists is reported as a conflict, not silently ignored: the caller must
// be told "already associated".
func (s *Service) AssociateDepartment(ctx context.Context, memberID domain.MemberID, departmentID domain.DepartmentID) error {
	d, err := s.departments.GetByID(ctx, departmentID)
	if err != nil {
		return departmentLookupError(err, departmentID)
	}
	if err := s.requireMember(ctx, memberID); err != nil {
		return err
	}

	if err := s.departments.Associate(ctx, memberID, departmentID); err != nil {
		if errors.Is(err, departmentrepo.ErrAlreadyAssociated) {
			return &Error{
				Status:  409,
				Code:    "ALREADY_ASSOCIATED",
				Message: fmt.Sprintf("member %d is likely already in department %d: %v", memberID, departmentID, err),
			}
		}
		return err
	}
	s.log.InfoContext(ctx, "member-department association created",
		"member_id", int64(memberID), "department_id", int64(departmentID), "department", d.Name)
	return nil
}

// DisassociateDepartment removes the member-department link. Removing a
// link that does not exist succeeds; only a store-level error is fatal.
func (s *Service) DisassociateDepartment(ctx context.Context, memberID domain.MemberID, departmentID domain.DepartmentID) error {
	if _, err := s.departments.GetByID(ctx, departmentID); err != nil {
		return departmentLookupError(err, departmentID)
	}
	if err := s.requireMember(ctx, memberID); err != nil {
		return err
	}
	if err := s.departments.Disassociate(ctx, memberID, departmentID); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "member-department association removed",
		"member_id", int64(memberID), "department_id", int64(departmentID))
	return nil
}

// AssociateAddress resolves the submitted address through the
// deduplication engine and links the member to it. created reports
// whether a new address row was inserted.
func (s *Service) AssociateAddress(ctx context.Context, memberID domain.MemberID, in AddressInput) (domain.Address, bool, error) {
	if err := s.requireMember(ctx, memberID); err != nil {
		return domain.Address{}, false, err
	}

	a, created, err := s.addresses.FindOrCreate(ctx, addressrepo.Address{
		Street:     in.Street,
		City:       in.City,
		PostalCode: in.PostalCode,
		Country:    in.Country,
	})
	if err != nil {
		return domain.Address{}, false, err
	}

	if err := s.addresses.Link(ctx, memberID, a.ID); err != nil {
		if errors.Is(err, addressrepo.ErrAlreadyLinked) {
			return domain.Address{}, false, &Error{
				Status:  409,
				Code:    "ALREADY_ASSOCIATED",
				Message: fmt.Sprintf("member %d is already linked to address %d", memberID, a.ID),
			}
		}
		return domain.Address{}, false, err
	}
	s.log.InfoContext(ctx, "member-address association created",
		"member_id", int64(memberID), "address_id", int64(a.ID), "address_created", created)
	return toDomainAddress(a), created, nil
}

// DisassociateAddress removes the member-address link and deletes the
// address when no member references it anymore. The orphan check runs
// strictly after the unlink so the remaining-reference count is accurate.
func (s *Service) DisassociateAddress(ctx context.Context, memberID domain.MemberID, addressID domain.AddressID) error {
	if _, err := s.addresses.GetByID(ctx, addressID); err != nil {
		return addressLookupError(err, addressID)
	}
	if err := s.requireMember(ctx, memberID); err != nil {
		return err
	}

	if err := s.addresses.Unlink(ctx, memberID, addressID); err != nil {
		return err
	}

	remaining, err := s.addresses.CountMembers(ctx, addressID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		if err := s.addresses.Delete(ctx, addressID); err != nil {
			return err
		}
		s.log.InfoContext(ctx, "orphaned address deleted", "address_id", int64(addressID))
	} else {
		s.log.InfoContext(ctx, "address still referenced, keeping it",
			"address_id", int64(addressID), "remaining_members", remaining)
	}
	return nil
}

// AddAttendance records that the member attended on the given date.
func (s *Service) AddAttendance(ctx context.Context, memberID domain.MemberID, date time.Time) error {
	if err := s.requireMember(ctx, memberID); err != nil {
		return err
	}
	if err := s.attendance.Add(ctx, memberID, domain.CalendarDate(date)); err != nil {
		if errors.Is(err, attendancerepo.ErrDuplicate) {
			return &Error{
				Status:  409,
				Code:    "DUPLICATE_ATTENDANCE",
				Message: fmt.Sprintf("attendance already recorded for member %d on %s", memberID, date.Format("2006-01-02")),
			}
		}
		return err
	}
	s.log.InfoContext(ctx, "attendance recorded",
		"member_id", int64(memberID), "date", date.Format("2006-01-02"))
	return nil
}

// RemoveAttendance deletes the attendance record. Removing a record that
// never existed is not distinguished from a successful removal.
func (s *Service) RemoveAttendance(ctx context.Context, memberID domain.MemberID, date time.Time) error {
	if err := s.requireMember(ctx, memberID); err != nil {
		return err
	}
	if err := s.attendance.Remove(ctx, memberID, domain.CalendarDate(date)); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "attendance removed",
		"member_id", int64(memberID), "date", date.Format("2006-01-02"))
	return nil
}

// ListMemberAddresses pages through the member's addresses.
func (s *Service) ListMemberAddresses(ctx context.Context, memberID domain.MemberID, limit, offset uint32) ([]domain.Address, error) {
	if err := s.requireMember(ctx, memberID); err != nil {
		return nil, err
	}
	as, err := s.addresses.ListForMember(ctx, memberID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Address, 0, len(as))
	for _, a := range as {
		out = append(out, toDomainAddress(a))
	}
	return out, nil
}

// ListMemberDepartments pages through the member's departments.
func (s *Service) ListMemberDepartments(ctx context.Context, memberID domain.MemberID, limit, offset uint32) ([]domain.Department, error) {
	if err := s.requireMember(ctx, memberID); err != nil {
		return nil, err
	}
	ds, err := s.departments.ListForMember(ctx, memberID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Department, 0, len(ds))
	for _, d := range ds {
		out = append(out, domain.Department{ID: d.ID, Name: d.Name})
	}
	return out, nil
}

// ListMemberAttendances pages through the member's attendance dates.
func (s *Service) ListMemberAttendances(ctx context.Context, memberID domain.MemberID, limit, offset uint32) ([]time.Time, error) {
	if err := s.requireMember(ctx, memberID); err != nil {
		return nil, err
	}
	return s.attendance.ListForMember(ctx, memberID, limit, offset)
}

// ListDepartments returns the fixed department catalog.
func (s *Service) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	ds, err := s.departments.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Department, 0, len(ds))
	for _, d := range ds {
		out = append(out, domain.Department{ID: d.ID, Name: d.Name})
	}
	return out, nil
}

// requireMember distinguishes three outcomes: absent (not found), exactly
// one (proceed), and more than one (fatal integrity violation).
func (s *Service) requireMember(ctx context.Context, id domain.MemberID) error {
	_, err := s.members.GetByID(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, memberrepo.ErrNotFound):
		return &Error{Status: 404, Code: "MEMBER_NOT_FOUND", Message: fmt.Sprintf("member %d not found", id)}
	case errors.Is(err, memberrepo.ErrIntegrity):
		return &Error{Status: 500, Code: "INTEGRITY_ERROR", Message: fmt.Sprintf("critical database error: more than one member with id %d", id)}
	default:
		return err
	}
}

func departmentLookupError(err error, id domain.DepartmentID) error {
	switch {
	case errors.Is(err, departmentrepo.ErrNotFound):
		return &Error{Status: 404, Code: "DEPARTMENT_NOT_FOUND", Message: fmt.Sprintf("department %d not found", id)}
	case errors.Is(err, departmentrepo.ErrIntegrity):
		return &Error{Status: 500, Code: "INTEGRITY_ERROR", Message: fmt.Sprintf("critical database error: more than one department with id %d", id)}
	default:
		return err
	}
}

func addressLookupError(err error, id domain.AddressID) error {
	switch {
	case errors.Is(err, addressrepo.ErrNotFound):
		return &Error{Status: 404, Code: "ADDRESS_NOT_FOUND", Message: fmt.Sprintf("address %d not found", id)}
	case errors.Is(err, addressrepo.ErrIntegrity):
		return &Error{Status: 500, Code: "INTEGRITY_ERROR", Message: fmt.Sprintf("critical database error: more than one address with id %d", id)}
	default:
		return err
	}
}

func toDomainAddress(a addressrepo.Address) domain.Address {
	return domain.Address{
		ID:         a.ID,
		Street:     a.Street,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// AddressInput carries a validated address submission.
type AddressInput struct {
	Street     string
	City       string
	PostalCode string
	Country    string
}
