package members

import (
	"context"
	"errors"
	"testing"
	"time"

	memclock "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/memory/clock"
	memmemberrepo "github.com/SV-Eichenlaub/club-roster-api/internal/adapters/memory/memberrepo"
	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/memberrepo"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestService() (*Service, *memclock.ManualClock) {
	clk := memclock.NewManualClock(date(2026, time.August, 31))
	return NewService(memmemberrepo.NewRepo(), clk, nil), clk
}

func createInput() CreateMemberInput {
	return CreateMemberInput{
		FirstName:   "Karl",
		LastName:    "Weber",
		Email:       "karl.weber@example.com",
		PhoneNumber: "+49 171 5551234",
		BirthDate:   date(1975, time.May, 20),
		Notes:       "",
		Active:      true,
	}
}

func TestService_CreateMember_DeduplicatesOnNaturalKey(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	first, created, err := svc.CreateMember(ctx, createInput())
	if err != nil {
		t.Fatalf("CreateMember err=%v", err)
	}
	if !created {
		t.Fatalf("expected created=true on first create")
	}
	if !first.CreateDate.Equal(date(2026, time.August, 31)) {
		t.Fatalf("createDate=%v, want clock date", first.CreateDate)
	}

	// Same natural key with different contact data resolves to the
	// existing member and changes nothing.
	in := createInput()
	in.PhoneNumber = "+49 171 9999999"
	second, created, err := svc.CreateMember(ctx, in)
	if err != nil {
		t.Fatalf("CreateMember duplicate err=%v", err)
	}
	if created {
		t.Fatalf("expected created=false on duplicate create")
	}
	if second.ID != first.ID {
		t.Fatalf("id=%d, want %d", second.ID, first.ID)
	}
	if second.PhoneNumber != first.PhoneNumber {
		t.Fatalf("duplicate create overwrote phone: %q", second.PhoneNumber)
	}

	// A different email is a different person.
	in = createInput()
	in.Email = "k.weber@example.com"
	third, created, err := svc.CreateMember(ctx, in)
	if err != nil {
		t.Fatalf("CreateMember distinct err=%v", err)
	}
	if !created || third.ID == first.ID {
		t.Fatalf("expected a new member, got created=%v id=%d", created, third.ID)
	}
}

func TestService_CreateMember_ExplicitCreateDateWins(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	in := createInput()
	in.CreateDate = date(2020, time.February, 2)

	m, _, err := svc.CreateMember(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateMember err=%v", err)
	}
	if !m.CreateDate.Equal(date(2020, time.February, 2)) {
		t.Fatalf("createDate=%v", m.CreateDate)
	}
}

func TestService_UpdateMember_AppliesSpecifiedFields(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	m, _, err := svc.CreateMember(ctx, createInput())
	if err != nil {
		t.Fatalf("CreateMember err=%v", err)
	}

	got, err := svc.UpdateMember(ctx, UpdateMemberInput{
		ID:    m.ID,
		Email: Some("karl.w@example.com"),
		Notes: Some("moved to the city"),
	})
	if err != nil {
		t.Fatalf("UpdateMember err=%v", err)
	}
	if got.Email != "karl.w@example.com" || got.Notes != "moved to the city" {
		t.Fatalf("update not applied: %+v", got)
	}
	// Unspecified fields keep their stored values.
	if got.FirstName != "Karl" || got.PhoneNumber != m.PhoneNumber {
		t.Fatalf("unspecified fields changed: %+v", got)
	}
}

func TestService_UpdateMember_RejectsNullFields(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	m, _, err := svc.CreateMember(ctx, createInput())
	if err != nil {
		t.Fatalf("CreateMember err=%v", err)
	}

	_, err = svc.UpdateMember(ctx, UpdateMemberInput{
		ID:        m.ID,
		FirstName: Some("Karl-Heinz"),
		Email:     Null[string](),
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 403 || ae.Code != "VALIDATION_ERROR" {
		t.Fatalf("err=%v (type=%T), want VALIDATION_ERROR 403", err, err)
	}

	// The rejected update must not have been partially applied.
	got, err := svc.GetMember(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMember err=%v", err)
	}
	if got.FirstName != "Karl" {
		t.Fatalf("partial update leaked: firstName=%q", got.FirstName)
	}
}

func TestService_UpdateMember_NotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()

	_, err := svc.UpdateMember(context.Background(), UpdateMemberInput{
		ID:    domain.MemberID(12345),
		Email: Some("ghost@example.com"),
	})
	ae := (*Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 404 || ae.Code != "MEMBER_NOT_FOUND" {
		t.Fatalf("err=%v, want MEMBER_NOT_FOUND 404", err)
	}
}

func TestService_SetMemberActive_RoundTrip(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	m, _, err := svc.CreateMember(ctx, createInput())
	if err != nil {
		t.Fatalf("CreateMember err=%v", err)
	}

	if err := svc.SetMemberActive(ctx, m.ID, false); err != nil {
		t.Fatalf("deactivate err=%v", err)
	}
	got, err := svc.GetMember(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMember err=%v", err)
	}
	if got.Active {
		t.Fatalf("expected inactive member")
	}

	if err := svc.SetMemberActive(ctx, m.ID, true); err != nil {
		t.Fatalf("activate err=%v", err)
	}
	got, err = svc.GetMember(ctx, m.ID)
	if err != nil {
		t.Fatalf("GetMember err=%v", err)
	}
	if !got.Active {
		t.Fatalf("expected active member")
	}

	if err := svc.SetMemberActive(ctx, domain.MemberID(999), true); err == nil {
		t.Fatalf("expected error for missing member")
	}
}

func TestService_ListAndCount_Filters(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService()
	ctx := context.Background()

	active := createInput()
	inactive := createInput()
	inactive.Email = "other@example.com"
	inactive.Active = false

	if _, _, err := svc.CreateMember(ctx, active); err != nil {
		t.Fatalf("CreateMember err=%v", err)
	}
	if _, _, err := svc.CreateMember(ctx, inactive); err != nil {
		t.Fatalf("CreateMember err=%v", err)
	}

	for _, tc := range []struct {
		filter memberrepo.Filter
		want   uint32
	}{
		{memberrepo.FilterAll, 2},
		{memberrepo.FilterActive, 1},
		{memberrepo.FilterInactive, 1},
	} {
		n, err := svc.CountMembers(ctx, tc.filter)
		if err != nil {
			t.Fatalf("CountMembers(%s) err=%v", tc.filter, err)
		}
		if n != tc.want {
			t.Fatalf("CountMembers(%s)=%d, want %d", tc.filter, n, tc.want)
		}
		ms, err := svc.ListMembers(ctx, tc.filter, 0, 0)
		if err != nil {
			t.Fatalf("ListMembers(%s) err=%v", tc.filter, err)
		}
		if uint32(len(ms)) != tc.want {
			t.Fatalf("ListMembers(%s) len=%d, want %d", tc.filter, len(ms), tc.want)
		}
	}
}
