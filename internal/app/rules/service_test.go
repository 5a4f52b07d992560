package rules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	memattendancerepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/memory/attendancerepo"
	memclock "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/memory/clock"
	memdepartmentrepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/memory/departmentrepo"
	memmemberrepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/memory/memberrepo"
	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/attendancerepo"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/departmentrepo"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/memberrepo"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	svc         *Service
	departments departmentrepo.Repository
	attendance  attendancerepo.Repository
	clk         *memclock.ManualClock
	memberID    domain.MemberID
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	members := memmemberrepo.NewRepo()
	departments := memdepartmentrepo.NewRepo()
	attendance := memattendancerepo.NewRepo()
	clk := memclock.NewManualClock(date(2026, time.August, 31))

	m, _, err := members.FindOrCreate(context.Background(), memberrepo.Member{
		FirstName:  "Hans",
		LastName:   "Schmidt",
		Email:      "hans@example.com",
		BirthDate:  date(1970, time.October, 3),
		CreateDate: date(2010, time.January, 1),
		Active:     true,
	})
	require.NoError(t, err)

	return fixture{
		svc:         NewService(members, departments, attendance, clk, nil),
		departments: departments,
		attendance:  attendance,
		clk:         clk,
		memberID:    m.ID,
	}
}

func TestAnnualFee(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		departments []domain.DepartmentID
		want        domain.Fee
	}{
		{"no departments", nil, 30},
		{"archery only", []domain.DepartmentID{domain.DepartmentBogenschiessen}, 65},
		{"air gun only", []domain.DepartmentID{domain.DepartmentLuftdruck}, 55},
		{"firearms only", []domain.DepartmentID{domain.DepartmentSchusswaffen}, 75},
		{"two departments", []domain.DepartmentID{domain.DepartmentLuftdruck, domain.DepartmentSchusswaffen}, 90},
		{"all departments", []domain.DepartmentID{domain.DepartmentBogenschiessen, domain.DepartmentLuftdruck, domain.DepartmentSchusswaffen}, 90},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			ctx := context.Background()
			for _, id := range tc.departments {
				require.NoError(t, f.departments.Associate(ctx, f.memberID, id))
			}

			fee, err := f.svc.AnnualFee(ctx, f.memberID)
			require.NoError(t, err)
			require.Equal(t, tc.want, fee)
		})
	}
}

func TestAnnualFee_RecomputesAfterAssociation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	// The fee follows the member's current department set, not the one
	// at join time.
	require.NoError(t, f.departments.Associate(ctx, f.memberID, domain.DepartmentLuftdruck))
	fee, err := f.svc.AnnualFee(ctx, f.memberID)
	require.NoError(t, err)
	require.Equal(t, domain.Fee(55), fee)

	require.NoError(t, f.departments.Associate(ctx, f.memberID, domain.DepartmentBogenschiessen))
	fee, err = f.svc.AnnualFee(ctx, f.memberID)
	require.NoError(t, err)
	require.Equal(t, domain.Fee(90), fee)
}

func TestAnnualFee_UnknownMember(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.AnnualFee(context.Background(), domain.MemberID(999))

	ae := (*Error)(nil)
	require.True(t, errors.As(err, &ae))
	require.Equal(t, 404, ae.Status)
	require.Equal(t, "MEMBER_NOT_FOUND", ae.Code)
}

func TestCanPurchaseWeapon_ByAttendanceCount(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	// 18 attendances packed into two months clear the count threshold.
	day := date(2026, time.June, 1)
	for i := 0; i < 18; i++ {
		require.NoError(t, f.attendance.Add(ctx, f.memberID, day.AddDate(0, 0, i*3)))
	}

	eligible, err := f.svc.CanPurchaseWeapon(ctx, f.memberID)
	require.NoError(t, err)
	require.True(t, eligible)
}

func TestCanPurchaseWeapon_ByMonthlyCoverage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	// One attendance in each of the 12 months inside the window. Only 12
	// attendances total, far below the count threshold.
	for i := 0; i < 12; i++ {
		require.NoError(t, f.attendance.Add(ctx, f.memberID, date(2025, time.September, 15).AddDate(0, i, 0)))
	}

	eligible, err := f.svc.CanPurchaseWeapon(ctx, f.memberID)
	require.NoError(t, err)
	require.True(t, eligible)
}

func TestCanPurchaseWeapon_NotEligible(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	// Ten attendances across three months: neither rule satisfied.
	for i := 0; i < 10; i++ {
		require.NoError(t, f.attendance.Add(ctx, f.memberID, date(2026, time.May, 2).AddDate(0, 0, i*9)))
	}

	eligible, err := f.svc.CanPurchaseWeapon(ctx, f.memberID)
	require.NoError(t, err)
	require.False(t, eligible)
}

func TestCanPurchaseWeapon_OldAttendancesExpire(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	// A qualifying record from years back must not count once the window
	// has moved on.
	for i := 0; i < 18; i++ {
		require.NoError(t, f.attendance.Add(ctx, f.memberID, date(2023, time.June, 1).AddDate(0, 0, i*3)))
	}

	eligible, err := f.svc.CanPurchaseWeapon(ctx, f.memberID)
	require.NoError(t, err)
	require.False(t, eligible)

	// Rewinding the clock into that era makes them count again.
	f.clk.Set(date(2023, time.September, 1))
	eligible, err = f.svc.CanPurchaseWeapon(ctx, f.memberID)
	require.NoError(t, err)
	require.True(t, eligible)
}
