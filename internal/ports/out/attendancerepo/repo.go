package attendancerepo

import (
	"context"
	"time"

	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
)

// Repository provides access to per-member attendance records.
// Dates are calendar dates (midnight UTC); at most one record exists per
// member per date.
type Repository interface {
	// Add records an attendance. A record for the same member and date
	// returns ErrDuplicate.
	Add(ctx context.Context, memberID domain.MemberID, date time.Time) error

	// Remove deletes the attendance record. Removing a record that does
	// not exist is not an error.
	Remove(ctx context.Context, memberID domain.MemberID, date time.Time) error

	// ListForMember pages through a member's attendance dates, newest
	// first. limit == 0 means no limit.
	ListForMember(ctx context.Context, memberID domain.MemberID, limit, offset uint32) ([]time.Time, error)

	// CountSince counts attendances with date >= since.
	CountSince(ctx context.Context, memberID domain.MemberID, since time.Time) (uint32, error)

	// CountDistinctMonthsSince counts distinct calendar months (year and
	// month pairs) with at least one attendance on or after since.
	CountDistinctMonthsSince(ctx context.Context, memberID domain.MemberID, since time.Time) (uint32, error)
}
