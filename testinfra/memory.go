package testinfra

import (
	"claimflow/bizerror"
	"claimflow/domain/actor"
	"claimflow/domain/claim"
	"claimflow/event"
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/fundwit/go-commons/types"
)

// MemoryDirectory is an actor.Directory over maps, it counts lookups per kind.
type MemoryDirectory struct {
	mutex        sync.Mutex
	lecturers    map[types.ID]actor.Lecturer
	coordinators map[types.ID]actor.ProgrammeCoordinator
	managers     map[types.ID]actor.AcademicManager

	Lookups int
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		lecturers:    map[types.ID]actor.Lecturer{},
		coordinators: map[types.ID]actor.ProgrammeCoordinator{},
		managers:     map[types.ID]actor.AcademicManager{},
	}
}

func (d *MemoryDirectory) PutLecturer(l actor.Lecturer) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.lecturers[l.ID] = l
}

func (d *MemoryDirectory) PutCoordinator(c actor.ProgrammeCoordinator) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.coordinators[c.ID] = c
}

func (d *MemoryDirectory) PutManager(m actor.AcademicManager) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.managers[m.ID] = m
}

func (d *MemoryDirectory) FindLecturer(ctx context.Context, id types.ID) (*actor.Lecturer, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.Lookups++
	if l, found := d.lecturers[id]; found {
		return &l, nil
	}
	return nil, &bizerror.NotFoundError{Kind: "lecturer", ID: id}
}

func (d *MemoryDirectory) FindCoordinator(ctx context.Context, id types.ID) (*actor.ProgrammeCoordinator, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.Lookups++
	if c, found := d.coordinators[id]; found {
		return &c, nil
	}
	return nil, &bizerror.NotFoundError{Kind: "coordinator", ID: id}
}

func (d *MemoryDirectory) FindManager(ctx context.Context, id types.ID) (*actor.AcademicManager, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.Lookups++
	if m, found := d.managers[id]; found {
		return &m, nil
	}
	return nil, &bizerror.NotFoundError{Kind: "manager", ID: id}
}

// MemoryClaimStore is a claim.Store with optimistic units of work: each one works on a copy of the
// committed state and commits only when the claims it wrote were not committed by someone else meanwhile.
type MemoryClaimStore struct {
	mutex  sync.Mutex
	claims map[types.ID]*claim.MonthlyClaim
	events []event.EventRecord

	// BeforeCommit runs once, between the unit of work and its commit.
	BeforeCommit func()
	// AppendEventError makes every AppendEvent fail.
	AppendEventError error
}

func NewMemoryClaimStore() *MemoryClaimStore {
	return &MemoryClaimStore{claims: map[types.ID]*claim.MonthlyClaim{}}
}

func (s *MemoryClaimStore) InTransaction(ctx context.Context, fn func(repo claim.Repository) error) error {
	s.mutex.Lock()
	tx := &memoryTx{
		claims:  map[types.ID]*claim.MonthlyClaim{},
		base:    map[types.ID]uint{},
		touched: map[types.ID]bool{},
		deleted: map[types.ID]bool{},
	}
	for id, c := range s.claims {
		tx.claims[id] = c.Clone()
		tx.base[id] = c.Version
	}
	appendEventError := s.AppendEventError
	s.mutex.Unlock()

	tx.appendEventError = appendEventError
	if err := fn(tx); err != nil {
		return err
	}

	if hook := s.BeforeCommit; hook != nil {
		s.BeforeCommit = nil
		hook()
	}
	return s.commit(tx)
}

func (s *MemoryClaimStore) commit(tx *memoryTx) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for id := range tx.touched {
		committed, exists := s.claims[id]
		baseVersion, existed := tx.base[id]
		if existed != exists || (existed && committed.Version != baseVersion) {
			return &bizerror.ConcurrentModificationError{ClaimID: id}
		}
	}
	for id := range tx.touched {
		if _, existed := tx.base[id]; existed || tx.deleted[id] {
			continue
		}
		c := tx.claims[id]
		for _, other := range s.claims {
			if other.LecturerID == c.LecturerID && other.ClaimMonth == c.ClaimMonth &&
				other.Status != claim.StatusRejected && !tx.touched[other.ID] {
				return &bizerror.DuplicateClaimError{LecturerID: c.LecturerID, ClaimMonth: c.ClaimMonth, ExistingID: other.ID}
			}
		}
	}

	for id := range tx.touched {
		if tx.deleted[id] {
			delete(s.claims, id)
		} else {
			s.claims[id] = tx.claims[id].Clone()
		}
	}
	s.events = append(s.events, tx.events...)
	return nil
}

// Claim returns a copy of the committed claim.
func (s *MemoryClaimStore) Claim(id types.ID) (*claim.MonthlyClaim, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	c, found := s.claims[id]
	if !found {
		return nil, false
	}
	return c.Clone(), true
}

// Events returns the committed events of a claim in commit order.
func (s *MemoryClaimStore) Events(claimID types.ID) []event.EventRecord {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	r := []event.EventRecord{}
	for _, e := range s.events {
		if e.SourceId == claimID {
			r = append(r, e)
		}
	}
	return r
}

type memoryTx struct {
	claims  map[types.ID]*claim.MonthlyClaim
	base    map[types.ID]uint
	touched map[types.ID]bool
	deleted map[types.ID]bool
	events  []event.EventRecord

	appendEventError error
}

func (tx *memoryTx) LoadClaim(id types.ID, forUpdate bool) (*claim.MonthlyClaim, error) {
	c, found := tx.claims[id]
	if !found {
		return nil, &bizerror.NotFoundError{Kind: "claim", ID: id}
	}
	r := c.Clone()
	if r.Items == nil {
		r.Items = []claim.ClaimItem{}
	}
	sort.SliceStable(r.Items, func(i, j int) bool {
		ti, tj := r.Items[i].WorkDate.Time(), r.Items[j].WorkDate.Time()
		if ti.Equal(tj) {
			return r.Items[i].ID < r.Items[j].ID
		}
		return ti.Before(tj)
	})
	return r, nil
}

func (tx *memoryTx) FindClaimsOfMonth(lecturerID types.ID, claimMonth string) ([]claim.MonthlyClaim, error) {
	return tx.query(func(c *claim.MonthlyClaim) bool {
		return c.LecturerID == lecturerID && c.ClaimMonth == claimMonth
	}, func(a, b *claim.MonthlyClaim) bool { return a.ID < b.ID }), nil
}

func (tx *memoryTx) QueryClaims(q claim.ClaimQuery) ([]claim.MonthlyClaim, error) {
	return tx.query(func(c *claim.MonthlyClaim) bool {
		return (q.LecturerID == 0 || c.LecturerID == q.LecturerID) &&
			(q.ClaimMonth == "" || c.ClaimMonth == q.ClaimMonth) &&
			(q.Status == "" || c.Status == q.Status)
	}, func(a, b *claim.MonthlyClaim) bool {
		if a.ClaimMonth == b.ClaimMonth {
			return a.ID > b.ID
		}
		return a.ClaimMonth > b.ClaimMonth
	}), nil
}

func (tx *memoryTx) query(match func(c *claim.MonthlyClaim) bool, less func(a, b *claim.MonthlyClaim) bool) []claim.MonthlyClaim {
	r := []claim.MonthlyClaim{}
	for _, c := range tx.claims {
		if match(c) {
			copied := *c
			copied.Items = nil
			r = append(r, copied)
		}
	}
	sort.Slice(r, func(i, j int) bool { return less(&r[i], &r[j]) })
	return r
}

func (tx *memoryTx) CreateClaim(c *claim.MonthlyClaim) error {
	if _, found := tx.claims[c.ID]; found {
		return errors.New("duplicate claim id " + c.ID.String())
	}
	tx.claims[c.ID] = c.Clone()
	tx.touched[c.ID] = true
	return nil
}

func (tx *memoryTx) SaveClaim(c *claim.MonthlyClaim) error {
	w, found := tx.claims[c.ID]
	if !found || w.Version != c.Version {
		return &bizerror.ConcurrentModificationError{ClaimID: c.ID}
	}
	items := w.Items
	*w = *c.Clone()
	w.Items = items
	w.Version++
	c.Version++
	tx.touched[c.ID] = true
	return nil
}

func (tx *memoryTx) DeleteClaim(c *claim.MonthlyClaim) error {
	w, found := tx.claims[c.ID]
	if !found || w.Version != c.Version {
		return &bizerror.ConcurrentModificationError{ClaimID: c.ID}
	}
	delete(tx.claims, c.ID)
	tx.touched[c.ID] = true
	tx.deleted[c.ID] = true
	return nil
}

func (tx *memoryTx) InsertItem(item *claim.ClaimItem) error {
	w, found := tx.claims[item.ClaimID]
	if !found {
		return &bizerror.NotFoundError{Kind: "claim", ID: item.ClaimID}
	}
	w.Items = append(w.Items, *item)
	tx.touched[item.ClaimID] = true
	return nil
}

func (tx *memoryTx) DeleteItem(item *claim.ClaimItem) error {
	w, found := tx.claims[item.ClaimID]
	if !found {
		return &bizerror.NotFoundError{Kind: "claim", ID: item.ClaimID}
	}
	for idx, existing := range w.Items {
		if existing.ID == item.ID {
			w.Items = append(w.Items[:idx:idx], w.Items[idx+1:]...)
			tx.touched[item.ClaimID] = true
			return nil
		}
	}
	return &bizerror.ConcurrentModificationError{ClaimID: item.ClaimID}
}

func (tx *memoryTx) AppendEvent(record *event.EventRecord) error {
	if tx.appendEventError != nil {
		return tx.appendEventError
	}
	tx.events = append(tx.events, *record)
	return nil
}
