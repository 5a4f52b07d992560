package rules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/attendancerepo"
	clockport "github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/clock"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/departmentrepo"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/memberrepo"
)

// Weapon-purchase eligibility over the trailing 365-day window:
// attendanceThreshold attendances qualify outright; otherwise attending in
// every one of the window's 12 calendar months qualifies.
const (
	eligibilityWindowDays = 365
	attendanceThreshold   = 18
	requiredMonths        = 12
)

// Service computes the two derived business values: annual membership
// dues and weapon-purchase eligibility. Both are read-only.
type Service struct {
	members     memberrepo.Repository
	departments departmentrepo.Repository
	attendance  attendancerepo.Repository
	clk         clockport.Clock
	log         *slog.Logger
}

func NewService(
	members memberrepo.Repository,
	departments departmentrepo.Repository,
	attendance attendancerepo.Repository,
	clk clockport.Clock,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		members:     members,
		departments: departments,
		attendance:  attendance,
		clk:         clk,
		log:         log,
	}
}

// AnnualFee determines the member's yearly dues from their department set.
// The set is fetched unbounded: the bracket depends on the exact count.
func (s *Service) AnnualFee(ctx context.Context, memberID domain.MemberID) (domain.Fee, error) {
	if err := s.requireMember(ctx, memberID); err != nil {
		return 0, err
	}

	ds, err := s.departments.ListForMember(ctx, memberID, 0, 0)
	if err != nil {
		return 0, err
	}
	ids := make([]domain.DepartmentID, 0, len(ds))
	for _, d := range ds {
		ids = append(ids, d.ID)
	}

	class, ok := domain.ClassifyDepartments(ids)
	if !ok {
		return 0, &Error{
			Status:  500,
			Code:    "UNKNOWN_DEPARTMENT",
			Message: fmt.Sprintf("failed to determine membership fee: unrecognized department id %d", ids[0]),
		}
	}

	fee := class.AnnualFee()
	s.log.InfoContext(ctx, "membership fee determined",
		"member_id", int64(memberID), "departments", len(ids), "fee_eur", uint32(fee))
	return fee, nil
}

// CanPurchaseWeapon evaluates the two-tier attendance rule over the
// trailing 365-day window. Adding attendance records can only move a
// member toward eligibility, never away from it.
func (s *Service) CanPurchaseWeapon(ctx context.Context, memberID domain.MemberID) (bool, error) {
	if err := s.requireMember(ctx, memberID); err != nil {
		return false, err
	}

	since := domain.CalendarDate(s.clk.Now().AddDate(0, 0, -eligibilityWindowDays))

	count, err := s.attendance.CountSince(ctx, memberID, since)
	if err != nil {
		return false, err
	}
	if count >= attendanceThreshold {
		s.log.InfoContext(ctx, "weapon purchase allowed by attendance count",
			"member_id", int64(memberID), "attendances", count)
		return true, nil
	}

	months, err := s.attendance.CountDistinctMonthsSince(ctx, memberID, since)
	if err != nil {
		return false, err
	}
	eligible := months == requiredMonths
	s.log.InfoContext(ctx, "weapon purchase checked by monthly coverage",
		"member_id", int64(memberID), "attendances", count, "months", months, "eligible", eligible)
	return eligible, nil
}

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
