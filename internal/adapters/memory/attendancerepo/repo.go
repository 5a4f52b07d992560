package attendancerepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/attendancerepo"
)

const dateLayout = "2006-01-02"

// Repo is an in-memory implementation of attendancerepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	// byMember[memberID] holds attendance dates keyed by their ISO form.
	byMember map[domain.MemberID]map[string]struct{}
}

func NewRepo() *Repo {
	return &Repo{byMember: make(map[domain.MemberID]map[string]struct{})}
}

func (r *Repo) Add(ctx context.Context, memberID domain.MemberID, date time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.byMember[memberID]
	if !ok {
		set = make(map[string]struct{})
		r.byMember[memberID] = set
	}
	k := date.UTC().Format(dateLayout)
	if _, dup := set[k]; dup {
		return attendancerepo.ErrDuplicate
	}
	set[k] = struct{}{}
	return nil
}

func (r *Repo) Remove(ctx context.Context, memberID domain.MemberID, date time.Time) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.byMember[memberID]; ok {
		delete(set, date.UTC().Format(dateLayout))
	}
	return nil
}

func (r *Repo) ListForMember(ctx context.Context, memberID domain.MemberID, limit, offset uint32) ([]time.Time, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]time.Time, 0, len(r.byMember[memberID]))
	for k := range r.byMember[memberID] {
		d, err := time.ParseInLocation(dateLayout, k, time.UTC)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	// Newest first.
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })

	if offset >= uint32(len(out)) {
		return []time.Time{}, nil
	}
	out = out[offset:]
	if limit > 0 && uint32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *Repo) CountSince(ctx context.Context, memberID domain.MemberID, since time.Time) (uint32, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n uint32
	for k := range r.byMember[memberID] {
		d, err := time.ParseInLocation(dateLayout, k, time.UTC)
		if err != nil {
			return 0, err
		}
		if !d.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *Repo) CountDistinctMonthsSince(ctx context.Context, memberID domain.MemberID, since time.Time) (uint32, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	months := make(map[string]struct{})
	for k := range r.byMember[memberID] {
		d, err := time.ParseInLocation(dateLayout, k, time.UTC)
		if err != nil {
			return 0, err
		}
		if !d.Before(since) {
			months[d.Format("2006-01")] = struct{}{}
		}
	}
	return uint32(len(months)), nil
}
