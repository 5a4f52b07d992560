package members

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
	clockport "github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/clock"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/memberrepo"
)

type Service struct {
	repo memberrepo.Repository
	clk  clockport.Clock
	log  *slog.Logger
}

func NewService(repo memberrepo.Repository, clk clockport.Clock, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{repo: repo, clk: clk, log: log}
}

func (s *Service) ListMembers(ctx context.Context, f memberrepo.Filter, limit, offset uint32) ([]domain.Member, error) {
	ms, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Member, 0, len(ms))
	for _, m := range ms {
		out = append(out, toDomain(m))
	}
	return out, nil
}

func (s *Service) CountMembers(ctx context.Context, f memberrepo.Filter) (uint32, error) {
	return s.repo.Count(ctx, f)
}

func (s *Service) GetMember(ctx context.Context, id domain.MemberID) (domain.Member, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Member{}, memberLookupError(err)
	}
	return toDomain(m), nil
}

// CreateMember resolves a create request through the deduplication engine:
// a request matching an existing member on (firstName, lastName, email,
// birthDate) returns the existing member with created=false instead of
// inserting a duplicate row. Resubmitting an identical form is therefore
// safe; concurrent identical submissions are resolved by the store's
// natural-key constraint.
func (s *Service) CreateMember(ctx context.Context, in CreateMemberInput) (domain.Member, bool, error) {
	createDate := domain.CalendarDate(in.CreateDate)
	if in.CreateDate.IsZero() {
		createDate = domain.CalendarDate(s.clk.Now())
	}

	m, created, err := s.repo.FindOrCreate(ctx, memberrepo.Member{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		BirthDate:   domain.CalendarDate(in.BirthDate),
		CreateDate:  createDate,
		Notes:       in.Notes,
		Active:      in.Active,
	})
	if err != nil {
		return domain.Member{}, false, err
	}
	if created {
		s.log.InfoContext(ctx, "member created", "member_id", int64(m.ID))
	} else {
		s.log.InfoContext(ctx, "member already exists, returning existing record", "member_id", int64(m.ID))
	}
	return toDomain(m), created, nil
}

// UpdateMember applies the specified fields of in to the stored member.
// A field specified as null is rejected: persisted members never have
// partial identity, so "null" cannot mean "clear".
func (s *Service) UpdateMember(ctx context.Context, in UpdateMemberInput) (domain.Member, error) {
	m, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return domain.Member{}, memberLookupError(err)
	}

	stringFields := []struct {
		dst  *string
		in   Optional[string]
		name string
	}{
		{&m.FirstName, in.FirstName, "firstName"},
		{&m.LastName, in.LastName, "lastName"},
		{&m.Email, in.Email, "email"},
		{&m.PhoneNumber, in.PhoneNumber, "phoneNumber"},
		{&m.Notes, in.Notes, "notes"},
	}
	for _, f := range stringFields {
		if !f.in.IsSpecified() {
			continue
		}
		if f.in.IsNull() {
			return domain.Member{}, nullFieldError(f.name)
		}
		*f.dst = f.in.Value()
	}

	if in.BirthDate.IsSpecified() {
		if in.BirthDate.IsNull() {
			return domain.Member{}, nullFieldError("birthDate")
		}
		m.BirthDate = domain.CalendarDate(in.BirthDate.Value())
	}
	if in.Active.IsSpecified() {
		if in.Active.IsNull() {
			return domain.Member{}, nullFieldError("active")
		}
		m.Active = in.Active.Value()
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return domain.Member{}, memberLookupError(err)
	}
	s.log.InfoContext(ctx, "member updated", "member_id", int64(m.ID))
	return toDomain(m), nil
}

// SetMemberActive activates or deactivates a member. Deactivation is the
// deletion substitute: member rows are never hard-deleted.
func (s *Service) SetMemberActive(ctx context.Context, id domain.MemberID, active bool) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return memberLookupError(err)
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return memberLookupError(err)
	}
	s.log.InfoContext(ctx, "member active flag set", "member_id", int64(id), "active", active)
	return nil
}

func nullFieldError(field string) *Error {
	return &Error{
		Status:  403,
		Code:    "VALIDATION_ERROR",
		Message: "at least one necessary field was null",
		Details: map[string]any{field: "cannot be null"},
	}
}

func memberLookupError(err error) error {
	switch {
	case errors.Is(err, memberrepo.ErrNotFound):
		return &Error{Status: 404, Code: "MEMBER_NOT_FOUND", Message: "member not found"}
	case errors.Is(err, memberrepo.ErrIntegrity):
		return &Error{Status: 500, Code: "INTEGRITY_ERROR", Message: err.Error()}
	default:
		return err
	}
}

func toDomain(m memberrepo.Member) domain.Member {
	return domain.Member{
		ID:          m.ID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Email:       m.Email,
		PhoneNumber: m.PhoneNumber,
		BirthDate:   m.BirthDate,
		CreateDate:  m.CreateDate,
		Notes:       m.Notes,
		Active:      m.Active,
	}
}
