package memberrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/memberrepo"
)

// upcomingBirthdayWindowDays matches the postgres adapter's window for the
// birthday list filter.
const upcomingBirthdayWindowDays = 30

// Repo is an in-memory implementation of memberrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID  map[domain.MemberID]memberrepo.Member
	byKey map[memberrepo.Key]domain.MemberID

	nextID domain.MemberID

	// now is swappable so birthday-window behavior is testable.
	now func() time.Time
}

func NewRepo() *Repo {
	return &Repo{
		byID:   make(map[domain.MemberID]memberrepo.Member),
		byKey:  make(map[memberrepo.Key]domain.MemberID),
		nextID: 1,
		now:    time.Now,
	}
}

// SetNowForTest overrides the reference time for the birthday filter.
func (r *Repo) SetNowForTest(fn func() time.Time) {
	if fn != nil {
		r.now = fn
	}
}

func (r *Repo) FindOrCreate(ctx context.Context, m memberrepo.Member) (memberrepo.Member, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byKey[m.NaturalKey()]; ok {
		return r.byID[id], false, nil
	}

	m.ID = r.nextID
	r.nextID++
	r.byID[m.ID] = m
	r.byKey[m.NaturalKey()] = m.ID
	return m, true, nil
}

func (r *Repo) Update(ctx context.Context, m memberrepo.Member) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[m.ID]
	if !ok {
		return memberrepo.ErrNotFound
	}
	if otherID, taken := r.byKey[m.NaturalKey()]; taken && otherID != m.ID {
		return memberrepo.ErrDuplicateKey
	}
	delete(r.byKey, existing.NaturalKey())
	r.byID[m.ID] = m
	r.byKey[m.NaturalKey()] = m.ID
	return nil
}

func (r *Repo) SetActive(ctx context.Context, id domain.MemberID, active bool) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.byID[id]
	if !ok {
		return memberrepo.ErrNotFound
	}
	m.Active = active
	r.byID[id] = m
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.MemberID) (memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byID[id]
	if !ok {
		return memberrepo.Member{}, memberrepo.ErrNotFound
	}
	return m, nil
}

func (r *Repo) List(ctx context.Context, f memberrepo.Filter, limit, offset uint32) ([]memberrepo.Member, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]memberrepo.Member, 0, len(r.byID))
	for _, m := range r.byID {
		if r.matches(m, f) {
			out = append(out, m)
		}
	}
	sortMembers(out)
	return page(out, limit, offset), nil
}

func (r *Repo) Count(ctx context.Context, f memberrepo.Filter) (uint32, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n uint32
	for _, m := range r.byID {
		if r.matches(m, f) {
			n++
		}
	}
	return n, nil
}

func (r *Repo) matches(m memberrepo.Member, f memberrepo.Filter) bool {
	switch f {
	case memberrepo.FilterActive:
		return m.Active
	case memberrepo.FilterInactive:
		return !m.Active
	case memberrepo.FilterUpcomingBirthday:
		return m.Active && daysUntilBirthday(m.BirthDate, r.now().UTC()) < upcomingBirthdayWindowDays
	default:
		return true
	}
}

// daysUntilBirthday returns how many days from today (0 = today) until the
// next occurrence of the birth date's month and day.
func daysUntilBirthday(birthDate, now time.Time) int {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	next := time.Date(now.Year(), birthDate.Month(), birthDate.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(today) {
		next = next.AddDate(1, 0, 0)
	}
	return int(next.Sub(today).Hours() / 24)
}

func page(ms []memberrepo.Member, limit, offset uint32) []memberrepo.Member {
	if offset >= uint32(len(ms)) {
		return []memberrepo.Member{}
	}
	ms = ms[offset:]
	if limit > 0 && uint32(len(ms)) > limit {
		ms = ms[:limit]
	}
	return ms
}

func sortMembers(ms []memberrepo.Member) {
	sort.Slice(ms, func(i, j int) bool {
		li := strings.ToLower(ms[i].LastName)
		lj := strings.ToLower(ms[j].LastName)
		if li != lj {
			return li < lj
		}
		fi := strings.ToLower(ms[i].FirstName)
		fj := strings.ToLower(ms[j].FirstName)
		if fi != fj {
			return fi < fj
		}
		return ms[i].ID < ms[j].ID
	})
}
