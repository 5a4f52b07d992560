package departmentrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/departmentrepo"
)

// Repo is an in-memory implementation of departmentrepo.Repository.
// The catalog is seeded with the three fixed club departments, matching
// the SQL seed data. It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID map[domain.DepartmentID]departmentrepo.Department

	// assoc[memberID] holds the department ids the member belongs to.
	assoc map[domain.MemberID]map[domain.DepartmentID]struct{}
}

func NewRepo() *Repo {
	r := &Repo{
		byID:  make(map[domain.DepartmentID]departmentrepo.Department),
		assoc: make(map[domain.MemberID]map[domain.DepartmentID]struct{}),
	}
	for _, d := range []departmentrepo.Department{
		{ID: domain.DepartmentBogenschiessen, Name: "Bogenschiessen"},
		{ID: domain.DepartmentLuftdruck, Name: "Luftdruck"},
		{ID: domain.DepartmentSchusswaffen, Name: "Schusswaffen"},
	} {
		r.byID[d.ID] = d
	}
	return r
}

func (r *Repo) GetByID(ctx context.Context, id domain.DepartmentID) (departmentrepo.Department, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[id]
	if !ok {
		return departmentrepo.Department{}, departmentrepo.ErrNotFound
	}
	return d, nil
}

func (r *Repo) List(ctx context.Context) ([]departmentrepo.Department, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]departmentrepo.Department, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repo) Associate(ctx context.Context, memberID domain.MemberID, departmentID domain.DepartmentID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[departmentID]; !ok {
		return departmentrepo.ErrNotFound
	}
	set, ok := r.assoc[memberID]
	if !ok {
		set = make(map[domain.DepartmentID]struct{})
		r.assoc[memberID] = set
	}
	if _, dup := set[departmentID]; dup {
		return departmentrepo.ErrAlreadyAssociated
	}
	set[departmentID] = struct{}{}
	return nil
}

func (r *Repo) Disassociate(ctx context.Context, memberID domain.MemberID, departmentID domain.DepartmentID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.assoc[memberID]; ok {
		delete(set, departmentID)
	}
	return nil
}

func (r *Repo) ListForMember(ctx context.Context, memberID domain.MemberID, limit, offset uint32) ([]departmentrepo.Department, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]departmentrepo.Department, 0)
	for departmentID := range r.assoc[memberID] {
		out = append(out, r.byID[departmentID])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if offset >= uint32(len(out)) {
		return []departmentrepo.Department{}, nil
	}
	out = out[offset:]
	if limit > 0 && uint32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
