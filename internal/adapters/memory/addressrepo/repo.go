package addressrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/SV-Eichenlaub/club-roster-api/internal/domain"
	"github.com/SV-Eichenlaub/club-roster-api/internal/ports/out/addressrepo"
)

type key struct {
	street, city, postalCode, country string
}

// Repo is an in-memory implementation of addressrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID  map[domain.AddressID]addressrepo.Address
	byKey map[key]domain.AddressID

	// links[addressID] holds the member ids linked to the address.
	links map[domain.AddressID]map[domain.MemberID]struct{}

	nextID domain.AddressID
}

func NewRepo() *Repo {
	return &Repo{
		byID:   make(map[domain.AddressID]addressrepo.Address),
		byKey:  make(map[key]domain.AddressID),
		links:  make(map[domain.AddressID]map[domain.MemberID]struct{}),
		nextID: 1,
	}
}

func naturalKey(a addressrepo.Address) key {
	return key{a.Street, a.City, a.PostalCode, a.Country}
}

func (r *Repo) FindOrCreate(ctx context.Context, a addressrepo.Address) (addressrepo.Address, bool, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byKey[naturalKey(a)]; ok {
		return r.byID[id], false, nil
	}

	a.ID = r.nextID
	r.nextID++
	r.byID[a.ID] = a
	r.byKey[naturalKey(a)] = a.ID
	return a, true, nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.AddressID) (addressrepo.Address, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[id]
	if !ok {
		return addressrepo.Address{}, addressrepo.ErrNotFound
	}
	return a, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.AddressID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return addressrepo.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byKey, naturalKey(a))
	delete(r.links, id)
	return nil
}

func (r *Repo) Link(ctx context.Context, memberID domain.MemberID, addressID domain.AddressID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[addressID]; !ok {
		return addressrepo.ErrNotFound
	}
	set, ok := r.links[addressID]
	if !ok {
		set = make(map[domain.MemberID]struct{})
		r.links[addressID] = set
	}
	if _, dup := set[memberID]; dup {
		return addressrepo.ErrAlreadyLinked
	}
	set[memberID] = struct{}{}
	return nil
}

func (r *Repo) Unlink(ctx context.Context, memberID domain.MemberID, addressID domain.AddressID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.links[addressID]; ok {
		delete(set, memberID)
	}
	return nil
}

func (r *Repo) CountMembers(ctx context.Context, id domain.AddressID) (uint32, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	return uint32(len(r.links[id])), nil
}

func (r *Repo) ListForMember(ctx context.Context, memberID domain.MemberID, limit, offset uint32) ([]addressrepo.Address, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]addressrepo.Address, 0)
	for addressID, set := range r.links {
		if _, ok := set[memberID]; ok {
			out = append(out, r.byID[addressID])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if offset >= uint32(len(out)) {
		return []addressrepo.Address{}, nil
	}
	out = out[offset:]
	if limit > 0 && uint32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
