// test/helpers/memstore.go
package helpers

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ammerola/fieldstock-be/internal/core/domain"
	"github.com/ammerola/fieldstock-be/internal/core/ports"
)

// MemStore is an in-memory StockStore and UnitOfWork for service tests.
// A unit of work runs against a copy of the state that replaces it only on
// success, so a failed item leaves nothing behind. Saves follow the same
// version rules as the Postgres repositories.
type MemStore struct {
	mu      sync.Mutex
	state   *memState
	Commits int
}

var (
	_ ports.UnitOfWork = (*MemStore)(nil)
	_ ports.StockStore = (*MemStore)(nil)
)

type memState struct {
	Ledgers  map[uuid.UUID]*domain.StockLedger
	Faulty   map[uuid.UUID]*domain.FaultyStockRecord
	Repairs  map[uuid.UUID]*domain.RepairTransferRecord
	Usages   map[uuid.UUID]*domain.StockUsage
	Entities map[uuid.UUID]*domain.EntityStockUsage
}

func newMemState() *memState {
	return &memState{
		Ledgers:  map[uuid.UUID]*domain.StockLedger{},
		Faulty:   map[uuid.UUID]*domain.FaultyStockRecord{},
		Repairs:  map[uuid.UUID]*domain.RepairTransferRecord{},
		Usages:   map[uuid.UUID]*domain.StockUsage{},
		Entities: map[uuid.UUID]*domain.EntityStockUsage{},
	}
}

func NewMemStore() *MemStore {
	return &MemStore{state: newMemState()}
}

func deepCopy[T any](v *T) *T {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		panic(err)
	}
	return out
}

func copyMap[T any](m map[uuid.UUID]*T) map[uuid.UUID]*T {
	out := make(map[uuid.UUID]*T, len(m))
	for k, v := range m {
		out[k] = deepCopy(v)
	}
	return out
}

func (s *memState) clone() *memState {
	return &memState{
		Ledgers:  copyMap(s.Ledgers),
		Faulty:   copyMap(s.Faulty),
		Repairs:  copyMap(s.Repairs),
		Usages:   copyMap(s.Usages),
		Entities: copyMap(s.Entities),
	}
}

// Execute runs fn against a private copy and publishes it when fn succeeds
func (m *MemStore) Execute(ctx context.Context, fn func(ctx context.Context, store ports.StockStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := m.state.clone()
	if err := fn(ctx, memView{tx}); err != nil {
		return err
	}
	m.state = tx
	m.Commits++
	return nil
}

func (m *MemStore) view() memView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return memView{m.state.clone()}
}

func (m *MemStore) Ledgers() ports.LedgerRepository         { return m.view().Ledgers() }
func (m *MemStore) Faulty() ports.FaultyStockRepository     { return m.view().Faulty() }
func (m *MemStore) Repairs() ports.RepairTransferRepository { return m.view().Repairs() }
func (m *MemStore) Usages() ports.StockUsageRepository      { return m.view().Usages() }
func (m *MemStore) EntityUsage() ports.EntityUsageRepository {
	return m.view().EntityUsage()
}

// Seed stores records directly, outside any unit of work
func (m *MemStore) Seed(records ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		switch v := r.(type) {
		case *domain.StockLedger:
			m.state.Ledgers[v.ID] = deepCopy(v)
		case *domain.FaultyStockRecord:
			m.state.Faulty[v.ID] = deepCopy(v)
		case *domain.RepairTransferRecord:
			m.state.Repairs[v.ID] = deepCopy(v)
		case *domain.StockUsage:
			m.state.Usages[v.ID] = deepCopy(v)
		case *domain.EntityStockUsage:
			m.state.Entities[v.ID] = deepCopy(v)
		default:
			panic("memstore: unsupported record")
		}
	}
}

// Ledger returns a copy of the committed ledger, or nil
func (m *MemStore) Ledger(kind domain.LedgerKind, owner, product uuid.UUID) *domain.StockLedger {
	l, _ := m.Ledgers().Get(context.Background(), kind, owner, product)
	return l
}

func (m *MemStore) FaultyRecords() []*domain.FaultyStockRecord {
	out, _ := m.Faulty().List(context.Background(), ports.FaultyStockFilter{})
	return out
}

func (m *MemStore) RepairTransfers() []*domain.RepairTransferRecord {
	out, _ := m.Repairs().ListAll(context.Background(), ports.RepairTransferFilter{})
	return out
}

type memView struct{ s *memState }

func (v memView) Ledgers() ports.LedgerRepository          { return memLedgers(v) }
func (v memView) Faulty() ports.FaultyStockRepository      { return memFaulty(v) }
func (v memView) Repairs() ports.RepairTransferRepository  { return memRepairs(v) }
func (v memView) Usages() ports.StockUsageRepository       { return memUsages(v) }
func (v memView) EntityUsage() ports.EntityUsageRepository { return memEntities(v) }

func saveVersioned[T any](m map[uuid.UUID]*T, id uuid.UUID, version *int, v *T) error {
	cur, ok := m[id]
	if !ok {
		return domain.ErrConcurrentModification
	}
	if versionOf(cur) != *version {
		return domain.ErrConcurrentModification
	}
	*version++
	m[id] = deepCopy(v)
	return nil
}

func versionOf(v any) int {
	switch r := v.(type) {
	case *domain.StockLedger:
		return r.Version
	case *domain.FaultyStockRecord:
		return r.Version
	case *domain.RepairTransferRecord:
		return r.Version
	case *domain.StockUsage:
		return r.Version
	case *domain.EntityStockUsage:
		return r.Version
	}
	return -1
}

type memLedgers memView

func (r memLedgers) Get(_ context.Context, kind domain.LedgerKind, owner, product uuid.UUID) (*domain.StockLedger, error) {
	for _, l := range r.s.Ledgers {
		if l.Kind == kind && l.OwnerID == owner && l.ProductID == product {
			return deepCopy(l), nil
		}
	}
	return nil, nil
}

func (r memLedgers) Create(ctx context.Context, l *domain.StockLedger) error {
	if existing, _ := r.Get(ctx, l.Kind, l.OwnerID, l.ProductID); existing != nil {
		return domain.ErrConcurrentModification
	}
	r.s.Ledgers[l.ID] = deepCopy(l)
	return nil
}

func (r memLedgers) Save(_ context.Context, l *domain.StockLedger) error {
	return saveVersioned(r.s.Ledgers, l.ID, &l.Version, l)
}

func (r memLedgers) List(_ context.Context, f ports.LedgerFilter) ([]*domain.StockLedger, error) {
	var out []*domain.StockLedger
	for _, l := range r.s.Ledgers {
		if (f.Kind == nil || l.Kind == *f.Kind) && (f.OwnerID == nil || l.OwnerID == *f.OwnerID) &&
			(f.ProductID == nil || l.ProductID == *f.ProductID) {
			out = append(out, deepCopy(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memFaulty memView

func (r memFaulty) Create(_ context.Context, f *domain.FaultyStockRecord) error {
	r.s.Faulty[f.ID] = deepCopy(f)
	return nil
}

func (r memFaulty) Save(_ context.Context, f *domain.FaultyStockRecord) error {
	return saveVersioned(r.s.Faulty, f.ID, &f.Version, f)
}

func (r memFaulty) GetByID(_ context.Context, id uuid.UUID) (*domain.FaultyStockRecord, error) {
	return deepCopy(r.s.Faulty[id]), nil
}

func oldestFirst[T any](items []*T, created func(*T) (int64, string)) {
	sort.Slice(items, func(i, j int) bool {
		ti, idi := created(items[i])
		tj, idj := created(items[j])
		if ti != tj {
			return ti < tj
		}
		return idi < idj
	})
}

func (r memFaulty) FindWithDamaged(ctx context.Context, product uuid.UUID, center *uuid.UUID) ([]*domain.FaultyStockRecord, error) {
	all, _ := r.List(ctx, ports.FaultyStockFilter{ProductID: &product, CenterID: center})
	var out []*domain.FaultyStockRecord
	for _, f := range all {
		if f.DamagedQty > 0 {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r memFaulty) List(_ context.Context, f ports.FaultyStockFilter) ([]*domain.FaultyStockRecord, error) {
	var out []*domain.FaultyStockRecord
	for _, rec := range r.s.Faulty {
		if f.CenterID != nil && rec.CenterID != *f.CenterID {
			continue
		}
		if f.ProductID != nil && rec.ProductID != *f.ProductID {
			continue
		}
		if f.Status != nil && rec.OverallStatus != *f.Status {
			continue
		}
		if f.OnlyOpen && rec.IsTerminal() {
			continue
		}
		out = append(out, deepCopy(rec))
	}
	oldestFirst(out, func(x *domain.FaultyStockRecord) (int64, string) { return x.CreatedAt.UnixNano(), x.ID.String() })
	return out, nil
}

type memRepairs memView

func (r memRepairs) Create(_ context.Context, t *domain.RepairTransferRecord) error {
	r.s.Repairs[t.ID] = deepCopy(t)
	return nil
}

func (r memRepairs) Save(_ context.Context, t *domain.RepairTransferRecord) error {
	return saveVersioned(r.s.Repairs, t.ID, &t.Version, t)
}

func (r memRepairs) GetByID(_ context.Context, id uuid.UUID) (*domain.RepairTransferRecord, error) {
	return deepCopy(r.s.Repairs[id]), nil
}

func (r memRepairs) FindOpenForOrigin(ctx context.Context, product, center uuid.UUID) (*domain.RepairTransferRecord, error) {
	all, _ := r.ListAll(ctx, ports.RepairTransferFilter{ProductID: &product, FromCenterID: &center})
	oldestFirst(all, func(x *domain.RepairTransferRecord) (int64, string) { return x.CreatedAt.UnixNano(), x.ID.String() })
	for _, t := range all {
		if t.UnderRepairQty > 0 {
			return t, nil
		}
	}
	return nil, nil
}

func (r memRepairs) ListAll(_ context.Context, f ports.RepairTransferFilter) ([]*domain.RepairTransferRecord, error) {
	var out []*domain.RepairTransferRecord
	for _, t := range r.s.Repairs {
		switch {
		case f.FromCenterID != nil && t.FromCenterID != *f.FromCenterID,
			f.ToCenterID != nil && t.ToCenterID != *f.ToCenterID,
			f.ProductID != nil && t.ProductID != *f.ProductID,
			f.Status != nil && t.Status != *f.Status,
			f.UpdatedFrom != nil && t.UpdatedAt.Before(*f.UpdatedFrom),
			f.UpdatedTo != nil && t.CreatedAt.After(*f.UpdatedTo):
			continue
		}
		out = append(out, deepCopy(t))
	}
	// newest first, like the default list order
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r memRepairs) List(ctx context.Context, f ports.RepairTransferFilter) (*ports.ListResult[*domain.RepairTransferRecord], error) {
	all, _ := r.ListAll(ctx, f)
	return page(all, f.PageParams), nil
}

func (r memRepairs) StatusSummary(ctx context.Context, f ports.RepairTransferFilter) (map[domain.RepairStatus]ports.StatusSummary, error) {
	f.Status = nil
	all, _ := r.ListAll(ctx, f)
	out := make(map[domain.RepairStatus]ports.StatusSummary)
	for _, t := range all {
		s := out[t.Status]
		s.Count++
		s.TotalQuantity += t.Quantity
		out[t.Status] = s
	}
	return out, nil
}

func page[T any](all []T, p ports.PageParams) *ports.ListResult[T] {
	size := p.PageSize
	if size <= 0 {
		size = 20
	}
	n := p.Page
	if n <= 0 {
		n = 1
	}
	start := min((n-1)*size, len(all))
	end := min(start+size, len(all))
	items := append([]T{}, all[start:end]...)
	return &ports.ListResult[T]{
		Items:      items,
		Page:       n,
		PageSize:   size,
		TotalCount: int64(len(all)),
		TotalPages: (len(all) + size - 1) / size,
	}
}

type memUsages memView

func (r memUsages) Create(_ context.Context, u *domain.StockUsage) error {
	r.s.Usages[u.ID] = deepCopy(u)
	return nil
}

func (r memUsages) Save(_ context.Context, u *domain.StockUsage) error {
	return saveVersioned(r.s.Usages, u.ID, &u.Version, u)
}

func (r memUsages) GetByID(_ context.Context, id uuid.UUID) (*domain.StockUsage, error) {
	return deepCopy(r.s.Usages[id]), nil
}

func (r memUsages) List(_ context.Context, f ports.UsageFilter) (*ports.ListResult[*domain.StockUsage], error) {
	var out []*domain.StockUsage
	for _, u := range r.s.Usages {
		switch {
		case f.CenterID != nil && u.CenterID != *f.CenterID,
			f.ProductID != nil && u.ProductID != *f.ProductID,
			f.Status != nil && u.Status != *f.Status,
			f.EntityType != nil && u.Target.Kind() != *f.EntityType:
			continue
		}
		out = append(out, deepCopy(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.PageParams), nil
}

type memEntities memView

func (r memEntities) Get(_ context.Context, kind domain.EntityKind, entityID, product uuid.UUID) (*domain.EntityStockUsage, error) {
	for _, e := range r.s.Entities {
		if e.EntityType == kind && e.EntityID == entityID && e.ProductID == product {
			return deepCopy(e), nil
		}
	}
	return nil, nil
}

func (r memEntities) Create(_ context.Context, e *domain.EntityStockUsage) error {
	r.s.Entities[e.ID] = deepCopy(e)
	return nil
}

func (r memEntities) Save(_ context.Context, e *domain.EntityStockUsage) error {
	return saveVersioned(r.s.Entities, e.ID, &e.Version, e)
}
