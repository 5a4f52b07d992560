// Package contracttest holds behavioral suites that every repository
// implementation must pass. The memory and postgres adapters run the same
// suites so the two backends cannot drift apart.
package contracttest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
	addressrepoport "github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/addressrepo"
	attendancerepoport "github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/attendancerepo"
	departmentrepoport "github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/departmentrepo"
	memberrepoport "github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/memberrepo"
)

type CleanupFunc = func()

type MemberRepoFactory func(t *testing.T) (memberrepoport.Repository, CleanupFunc)
type AddressRepoFactory func(t *testing.T) (addressrepoport.Repository, memberrepoport.Repository, CleanupFunc)
type DepartmentRepoFactory func(t *testing.T) (departmentrepoport.Repository, memberrepoport.Repository, CleanupFunc)
type AttendanceRepoFactory func(t *testing.T) (attendancerepoport.Repository, memberrepoport.Repository, CleanupFunc)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// birthdayIn returns a 1988 birth date whose month and day fall the given
// number of days after now. 1988 is a leap year, so a Feb 29 target stays
// a Feb 29 birth date.
func birthdayIn(now time.Time, days int) time.Time {
	d := now.AddDate(0, 0, days)
	return time.Date(1988, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// seedMember creates a member with a unique natural key and returns its id.
// Link tables reference real member rows, so suites that exercise them need
// one.
func seedMember(t *testing.T, ctx context.Context, members memberrepoport.Repository) domain.MemberID {
	t.Helper()
	m, created, err := members.FindOrCreate(ctx, memberrepoport.Member{
		FirstName:  "Seed",
		LastName:   "Member",
		Email:      fmt.Sprintf("seed-%s@example.com", uuid.NewString()),
		BirthDate:  date(1980, time.January, 1),
		CreateDate: date(2020, time.January, 1),
		Active:     true,
	})
	if err != nil {
		t.Fatalf("seed member: %v", err)
	}
	if !created {
		t.Fatalf("seed member: expected fresh row")
	}
	return m.ID
}

func RunMemberRepo(t *testing.T, newRepo MemberRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	email := fmt.Sprintf("anna-%s@example.com", uuid.NewString())
	anna := memberrepoport.Member{
		FirstName:   "Anna",
		LastName:    "Becker",
		Email:       email,
		PhoneNumber: "+49 170 1111111",
		BirthDate:   date(1990, time.March, 14),
		CreateDate:  date(2024, time.June, 1),
		Notes:       "founding member",
		Active:      true,
	}

	created1, wasCreated, err := repo.FindOrCreate(ctx, anna)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if !wasCreated {
		t.Fatalf("expected created=true for a fresh natural key")
	}
	if created1.ID == 0 {
		t.Fatalf("expected a persisted id")
	}

	// Same natural key resolves to the same row even when the mutable
	// fields differ.
	dup := anna
	dup.PhoneNumber = "+49 170 2222222"
	dup.Notes = "should not overwrite"
	found, wasCreated, err := repo.FindOrCreate(ctx, dup)
	if err != nil {
		t.Fatalf("FindOrCreate duplicate: %v", err)
	}
	if wasCreated {
		t.Fatalf("expected created=false for a duplicate natural key")
	}
	if found.ID != created1.ID {
		t.Fatalf("expected id %d, got %d", created1.ID, found.ID)
	}
	if found.PhoneNumber != anna.PhoneNumber {
		t.Fatalf("duplicate create must not overwrite: got phone %q", found.PhoneNumber)
	}

	// A different birth date is a different member.
	other := anna
	other.BirthDate = date(1991, time.March, 14)
	created2, wasCreated, err := repo.FindOrCreate(ctx, other)
	if err != nil {
		t.Fatalf("FindOrCreate second: %v", err)
	}
	if !wasCreated || created2.ID == created1.ID {
		t.Fatalf("expected a distinct member, got created=%v id=%d", wasCreated, created2.ID)
	}

	got, err := repo.GetByID(ctx, created1.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email != email || !got.BirthDate.Equal(anna.BirthDate) {
		t.Fatalf("unexpected member: %+v", got)
	}

	if _, err := repo.GetByID(ctx, domain.MemberID(999999999)); !errors.Is(err, memberrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	upd := created1
	upd.PhoneNumber = "+49 170 3333333"
	upd.Notes = "updated"
	if err := repo.Update(ctx, upd); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = repo.GetByID(ctx, created1.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.PhoneNumber != "+49 170 3333333" || got.Notes != "updated" {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := repo.Update(ctx, memberrepoport.Member{ID: 999999999, Email: "x@example.com"}); !errors.Is(err, memberrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing update target, got %v", err)
	}

	// Updating a member onto another member's natural key must fail and
	// leave the deduplication index untouched.
	steal := created2
	steal.BirthDate = anna.BirthDate
	if err := repo.Update(ctx, steal); !errors.Is(err, memberrepoport.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	resolved, wasCreated, err := repo.FindOrCreate(ctx, anna)
	if err != nil {
		t.Fatalf("FindOrCreate after rejected update: %v", err)
	}
	if wasCreated || resolved.ID != created1.ID {
		t.Fatalf("natural key must still resolve to member %d, got created=%v id=%d",
			created1.ID, wasCreated, resolved.ID)
	}
	got, err = repo.GetByID(ctx, created2.ID)
	if err != nil {
		t.Fatalf("GetByID after rejected update: %v", err)
	}
	if got.BirthDate.Equal(anna.BirthDate) {
		t.Fatalf("rejected update must not change the member: %+v", got)
	}

	if err := repo.SetActive(ctx, created1.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	got, err = repo.GetByID(ctx, created1.ID)
	if err != nil {
		t.Fatalf("GetByID after deactivate: %v", err)
	}
	if got.Active {
		t.Fatalf("expected inactive member")
	}
	if got.Notes != "updated" {
		t.Fatalf("SetActive must not touch other fields: %+v", got)
	}

	active, err := repo.Count(ctx, memberrepoport.FilterActive)
	if err != nil {
		t.Fatalf("Count active: %v", err)
	}
	inactive, err := repo.Count(ctx, memberrepoport.FilterInactive)
	if err != nil {
		t.Fatalf("Count inactive: %v", err)
	}
	all, err := repo.Count(ctx, memberrepoport.FilterAll)
	if err != nil {
		t.Fatalf("Count all: %v", err)
	}
	if active+inactive != all {
		t.Fatalf("count mismatch: active=%d inactive=%d all=%d", active, inactive, all)
	}
	if inactive == 0 {
		t.Fatalf("expected at least one inactive member")
	}

	listed, err := repo.List(ctx, memberrepoport.FilterAll, 0, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if uint32(len(listed)) != all {
		t.Fatalf("expected %d members, got %d", all, len(listed))
	}
	for i := 1; i < len(listed); i++ {
		if listed[i-1].LastName > listed[i].LastName {
			t.Fatalf("list not ordered by last name: %q before %q", listed[i-1].LastName, listed[i].LastName)
		}
	}
	page, err := repo.List(ctx, memberrepoport.FilterAll, 1, 1)
	if err != nil {
		t.Fatalf("List page: %v", err)
	}
	if len(page) != 1 || page[0].ID != listed[1].ID {
		t.Fatalf("unexpected page: %+v", page)
	}

	// The birthday filter runs against each backend's own clock, so the
	// fixtures derive their month and day from today.
	now := time.Now().UTC()
	soonEmail := fmt.Sprintf("soon-%s@example.com", uuid.NewString())
	farEmail := fmt.Sprintf("far-%s@example.com", uuid.NewString())
	for _, m := range []memberrepoport.Member{
		{FirstName: "Soon", LastName: "Geburtstag", Email: soonEmail,
			BirthDate: birthdayIn(now, 10), CreateDate: date(2024, time.June, 1), Active: true},
		{FirstName: "Fern", LastName: "Geburtstag", Email: farEmail,
			BirthDate: birthdayIn(now, 40), CreateDate: date(2024, time.June, 1), Active: true},
	} {
		if _, _, err := repo.FindOrCreate(ctx, m); err != nil {
			t.Fatalf("FindOrCreate birthday fixture: %v", err)
		}
	}
	upcoming, err := repo.List(ctx, memberrepoport.FilterUpcomingBirthday, 0, 0)
	if err != nil {
		t.Fatalf("List upcoming birthdays: %v", err)
	}
	var sawSoon, sawFar bool
	for _, m := range upcoming {
		switch m.Email {
		case soonEmail:
			sawSoon = true
		case farEmail:
			sawFar = true
		}
	}
	if !sawSoon {
		t.Fatalf("birthday in 10 days missing from the window")
	}
	if sawFar {
		t.Fatalf("birthday in 40 days must stay outside the window")
	}
}

func RunAddressRepo(t *testing.T, newRepo AddressRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, members, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	memberID := seedMember(t, ctx, members)

	home := addressrepoport.Address{
		Street:     fmt.Sprintf("Hauptstrasse %s", uuid.NewString()),
		City:       "Eichenlaub",
		PostalCode: "54321",
		Country:    "Deutschland",
	}

	created, wasCreated, err := repo.FindOrCreate(ctx, home)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	if !wasCreated || created.ID == 0 {
		t.Fatalf("expected fresh address with id, got created=%v %+v", wasCreated, created)
	}

	found, wasCreated, err := repo.FindOrCreate(ctx, home)
	if err != nil {
		t.Fatalf("FindOrCreate duplicate: %v", err)
	}
	if wasCreated || found.ID != created.ID {
		t.Fatalf("expected existing address %d, got created=%v id=%d", created.ID, wasCreated, found.ID)
	}

	if err := repo.Link(ctx, memberID, created.ID); err != nil {
		t.Fatalf("Link: %v", err)
	}
	if err := repo.Link(ctx, memberID, created.ID); !errors.Is(err, addressrepoport.ErrAlreadyLinked) {
		t.Fatalf("expected ErrAlreadyLinked, got %v", err)
	}

	n, err := repo.CountMembers(ctx, created.ID)
	if err != nil {
		t.Fatalf("CountMembers: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 linked member, got %d", n)
	}

	addrs, err := repo.ListForMember(ctx, memberID, 0, 0)
	if err != nil {
		t.Fatalf("ListForMember: %v", err)
	}
	if len(addrs) != 1 || addrs[0].ID != created.ID {
		t.Fatalf("unexpected member addresses: %+v", addrs)
	}

	if err := repo.Unlink(ctx, memberID, created.ID); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	// Unlinking twice is fine.
	if err := repo.Unlink(ctx, memberID, created.ID); err != nil {
		t.Fatalf("Unlink again: %v", err)
	}
	n, err = repo.CountMembers(ctx, created.ID)
	if err != nil {
		t.Fatalf("CountMembers after unlink: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 linked members, got %d", n)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); !errors.Is(err, addressrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func RunDepartmentRepo(t *testing.T, newRepo DepartmentRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, members, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	memberID := seedMember(t, ctx, members)

	depts, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(depts) != 3 {
		t.Fatalf("expected 3 departments, got %d", len(depts))
	}
	for i := 1; i < len(depts); i++ {
		if depts[i-1].ID >= depts[i].ID {
			t.Fatalf("catalog not ordered by id: %+v", depts)
		}
	}

	archery, err := repo.GetByID(ctx, domain.DepartmentBogenschiessen)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if archery.Name != "Bogenschiessen" {
		t.Fatalf("unexpected department: %+v", archery)
	}
	if _, err := repo.GetByID(ctx, domain.DepartmentID(42)); !errors.Is(err, departmentrepoport.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Associate(ctx, memberID, domain.DepartmentLuftdruck); err != nil {
		t.Fatalf("Associate: %v", err)
	}
	if err := repo.Associate(ctx, memberID, domain.DepartmentLuftdruck); !errors.Is(err, departmentrepoport.ErrAlreadyAssociated) {
		t.Fatalf("expected ErrAlreadyAssociated, got %v", err)
	}
	if err := repo.Associate(ctx, memberID, domain.DepartmentSchusswaffen); err != nil {
		t.Fatalf("Associate second: %v", err)
	}

	mine, err := repo.ListForMember(ctx, memberID, 0, 0)
	if err != nil {
		t.Fatalf("ListForMember: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != domain.DepartmentLuftdruck || mine[1].ID != domain.DepartmentSchusswaffen {
		t.Fatalf("unexpected member departments: %+v", mine)
	}

	if err := repo.Disassociate(ctx, memberID, domain.DepartmentLuftdruck); err != nil {
		t.Fatalf("Disassociate: %v", err)
	}
	// Disassociating twice is fine.
	if err := repo.Disassociate(ctx, memberID, domain.DepartmentLuftdruck); err != nil {
		t.Fatalf("Disassociate again: %v", err)
	}
	mine, err = repo.ListForMember(ctx, memberID, 0, 0)
	if err != nil {
		t.Fatalf("ListForMember after disassociate: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != domain.DepartmentSchusswaffen {
		t.Fatalf("unexpected member departments: %+v", mine)
	}
}

func RunAttendanceRepo(t *testing.T, newRepo AttendanceRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, members, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	memberID := seedMember(t, ctx, members)

	jan5 := date(2026, time.January, 5)
	jan19 := date(2026, time.January, 19)
	mar2 := date(2026, time.March, 2)

	for _, d := range []time.Time{jan5, jan19, mar2} {
		if err := repo.Add(ctx, memberID, d); err != nil {
			t.Fatalf("Add %v: %v", d, err)
		}
	}
	if err := repo.Add(ctx, memberID, jan5); !errors.Is(err, attendancerepoport.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	dates, err := repo.ListForMember(ctx, memberID, 0, 0)
	if err != nil {
		t.Fatalf("ListForMember: %v", err)
	}
	if len(dates) != 3 || !dates[0].Equal(mar2) || !dates[2].Equal(jan5) {
		t.Fatalf("expected newest-first dates, got %v", dates)
	}

	n, err := repo.CountSince(ctx, memberID, jan19)
	if err != nil {
		t.Fatalf("CountSince: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 attendances since %v, got %d", jan19, n)
	}

	months, err := repo.CountDistinctMonthsSince(ctx, memberID, date(2026, time.January, 1))
	if err != nil {
		t.Fatalf("CountDistinctMonthsSince: %v", err)
	}
	if months != 2 {
		t.Fatalf("expected 2 distinct months, got %d", months)
	}

	if err := repo.Remove(ctx, memberID, mar2); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	// Removing twice is fine.
	if err := repo.Remove(ctx, memberID, mar2); err != nil {
		t.Fatalf("Remove again: %v", err)
	}
	n, err = repo.CountSince(ctx, memberID, date(2026, time.January, 1))
	if err != nil {
		t.Fatalf("CountSince after remove: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 attendances after remove, got %d", n)
	}
}
