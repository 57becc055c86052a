package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

var (
	_ repository.BusinessRepository      = (*BusinessRepo)(nil)
	_ repository.StoreRepository         = (*StoreRepo)(nil)
	_ repository.UserRepository          = (*UserRepo)(nil)
	_ repository.InventoryItemRepository = (*ItemRepo)(nil)
	_ repository.LendRepository          = (*LendRepo)(nil)
	_ repository.SaleRepository          = (*SaleRepo)(nil)
	_ repository.ReturnRepository        = (*ReturnRepo)(nil)
)

// ─── businesses ──────────────────────────────────────────────────────────────

type BusinessRepo struct{ s *Store }

func (r *BusinessRepo) Create(_ context.Context, b *entity.Business) error {
	return r.s.write(true, func() error {
		b.ID = newID(b.ID)
		if _, ok := r.s.businesses[b.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *b
		r.s.businesses[b.ID] = &c
		return nil
	})
}

func (r *BusinessRepo) GetByID(_ context.Context, id string) (*entity.Business, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.businesses[id]
	if !ok {
		return nil, nil
	}
	c := *b
	return &c, nil
}

func (r *BusinessRepo) Update(_ context.Context, b *entity.Business) error {
	return r.s.write(true, func() error {
		if _, ok := r.s.businesses[b.ID]; !ok {
			return domain.ErrNotFound
		}
		c := *b
		r.s.businesses[b.ID] = &c
		return nil
	})
}

// ─── stores ──────────────────────────────────────────────────────────────────

type StoreRepo struct{ s *Store }

func (r *StoreRepo) Create(_ context.Context, st *entity.Store) error {
	return r.s.write(true, func() error {
		st.ID = newID(st.ID)
		if st.ID == entity.StoreIDAll {
			return domain.ErrInvalidInput
		}
		if _, ok := r.s.stores[st.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *st
		r.s.stores[st.ID] = &c
		return nil
	})
}

func (r *StoreRepo) GetByID(_ context.Context, id string) (*entity.Store, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.stores[id]
	if !ok {
		return nil, nil
	}
	c := *st
	return &c, nil
}

func (r *StoreRepo) ListByBusiness(_ context.Context, businessID string) ([]*entity.Store, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Store, 0)
	for _, st := range r.s.stores {
		if st.BusinessID == businessID {
			c := *st
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *entity.Store) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// ─── users ───────────────────────────────────────────────────────────────────

type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.s.write(true, func() error {
		u.ID = newID(u.ID)
		for _, existing := range r.s.users {
			if u.Email != "" && strings.EqualFold(existing.Email, u.Email) {
				return domain.ErrEmailAlreadyExists
			}
		}
		c := *u
		r.s.users[u.ID] = &c
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	return r.s.write(true, func() error {
		if _, ok := r.s.users[u.ID]; !ok {
			return domain.ErrUserNotFound
		}
		c := *u
		r.s.users[u.ID] = &c
		return nil
	})
}

func (r *UserRepo) ListByBusiness(_ context.Context, businessID string, limit, offset int) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.User, 0)
	for _, u := range r.s.users {
		if u.BusinessID == businessID {
			c := *u
			out = append(out, &c)
		}
	}
	slices.SortFunc(out, func(a, b *entity.User) int { return strings.Compare(a.Email, b.Email) })
	return page(out, limit, offset), nil
}

// ─── inventory ───────────────────────────────────────────────────────────────

// ItemRepo con inTx=true opera dentro de una transacción ya abierta (txMu tomado).
type ItemRepo struct {
	s    *Store
	inTx bool
}

func (r *ItemRepo) Create(_ context.Context, item *entity.InventoryItem) error {
	return r.s.write(r.inTx, func() error {
		item.ID = newID(item.ID)
		for _, existing := range r.s.items {
			if existing.StoreID == item.StoreID && existing.AtNo == item.AtNo {
				return domain.ErrDuplicate
			}
		}
		r.s.items[item.ID] = cloneItem(item)
		return nil
	})
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.InventoryItem, error) {
	defer r.s.read(r.inTx)()
	item, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	return cloneItem(item), nil
}

// GetForUpdate equivale a GetByID: la exclusión la da txMu.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return r.GetByID(ctx, id)
}

func (r *ItemRepo) GetByStoreAndAtNoForUpdate(_ context.Context, storeID, atNo string) (*entity.InventoryItem, error) {
	defer r.s.read(r.inTx)()
	for _, item := range r.s.items {
		if item.StoreID == storeID && item.AtNo == atNo {
			return cloneItem(item), nil
		}
	}
	return nil, nil
}

func (r *ItemRepo) Update(_ context.Context, item *entity.InventoryItem) error {
	return r.s.write(r.inTx, func() error {
		if _, ok := r.s.items[item.ID]; !ok {
			return domain.ErrNotFound
		}
		for _, existing := range r.s.items {
			if existing.ID != item.ID && existing.StoreID == item.StoreID && existing.AtNo == item.AtNo {
				return domain.ErrDuplicate
			}
		}
		r.s.items[item.ID] = cloneItem(item)
		return nil
	})
}

func (r *ItemRepo) List(_ context.Context, f repository.ItemFilter) ([]*entity.InventoryItem, error) {
	defer r.s.read(r.inTx)()
	q := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]*entity.InventoryItem, 0)
	for _, item := range r.s.items {
		if f.BusinessID != "" && item.BusinessID != f.BusinessID {
			continue
		}
		if f.StoreID != "" && f.StoreID != entity.StoreIDAll && item.StoreID != f.StoreID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(item.AtNo), q) &&
			!strings.Contains(strings.ToLower(item.Name), q) &&
			!strings.Contains(strings.ToLower(item.Brand), q) {
			continue
		}
		out = append(out, cloneItem(item))
	}
	slices.SortFunc(out, func(a, b *entity.InventoryItem) int {
		if c := strings.Compare(a.StoreID, b.StoreID); c != 0 {
			return c
		}
		return strings.Compare(a.AtNo, b.AtNo)
	})
	return page(out, f.Limit, f.Offset), nil
}

func (r *ItemRepo) Delete(_ context.Context, id string) error {
	return r.s.write(r.inTx, func() error {
		if _, ok := r.s.items[id]; !ok {
			return domain.ErrNotFound
		}
		delete(r.s.items, id)
		return nil
	})
}

// ─── lentshoes ───────────────────────────────────────────────────────────────

type LendRepo struct {
	s    *Store
	inTx bool
}

func (r *LendRepo) Create(_ context.Context, l *entity.Lend) error {
	return r.s.write(r.inTx, func() error {
		l.ID = newID(l.ID)
		if _, ok := r.s.lends[l.ID]; ok {
			return domain.ErrDuplicate
		}
		r.s.lends[l.ID] = cloneLend(l)
		return nil
	})
}

func (r *LendRepo) GetByID(_ context.Context, id string) (*entity.Lend, error) {
	defer r.s.read(r.inTx)()
	l, ok := r.s.lends[id]
	if !ok {
		return nil, nil
	}
	return cloneLend(l), nil
}

func (r *LendRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lend, error) {
	return r.GetByID(ctx, id)
}

func (r *LendRepo) Update(_ context.Context, l *entity.Lend) error {
	return r.s.write(r.inTx, func() error {
		if _, ok := r.s.lends[l.ID]; !ok {
			return domain.ErrNotFound
		}
		r.s.lends[l.ID] = cloneLend(l)
		return nil
	})
}

func (r *LendRepo) List(_ context.Context, f repository.LendFilter) ([]*entity.Lend, error) {
	defer r.s.read(r.inTx)()
	out := make([]*entity.Lend, 0)
	for _, l := range r.s.lends {
		if f.BusinessID != "" && l.BusinessID != f.BusinessID {
			continue
		}
		if f.StoreID != "" && f.StoreID != entity.StoreIDAll && l.FromStoreID != f.StoreID && l.ToStoreID != f.StoreID {
			continue
		}
		if f.Status != "" && l.Status != f.Status {
			continue
		}
		out = append(out, cloneLend(l))
	}
	slices.SortFunc(out, func(a, b *entity.Lend) int { return b.LentDate.Compare(a.LentDate) })
	return page(out, f.Limit, f.Offset), nil
}

// ─── sales ───────────────────────────────────────────────────────────────────

type SaleRepo struct {
	s    *Store
	inTx bool
}

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	return r.s.write(r.inTx, func() error {
		sale.ID = newID(sale.ID)
		if _, ok := r.s.sales[sale.ID]; ok {
			return domain.ErrDuplicate
		}
		r.s.sales[sale.ID] = cloneSale(sale)
		return nil
	})
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	defer r.s.read(r.inTx)()
	sale, ok := r.s.sales[id]
	if !ok {
		return nil, nil
	}
	return cloneSale(sale), nil
}

func (r *SaleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	defer r.s.read(r.inTx)()
	out := make([]*entity.Sale, 0)
	for _, sale := range r.s.sales {
		if !matchSale(f, sale.BusinessID, sale.StoreID, sale.Timestamp.Unix()) {
			continue
		}
		out = append(out, cloneSale(sale))
	}
	slices.SortFunc(out, func(a, b *entity.Sale) int { return b.Timestamp.Compare(a.Timestamp) })
	return page(out, f.Limit, f.Offset), nil
}

// ─── returns ─────────────────────────────────────────────────────────────────

type ReturnRepo struct {
	s    *Store
	inTx bool
}

func (r *ReturnRepo) Create(_ context.Context, ret *entity.SaleReturn) error {
	return r.s.write(r.inTx, func() error {
		ret.ID = newID(ret.ID)
		for _, existing := range r.s.returns {
			if existing.SaleID == ret.SaleID {
				return domain.ErrDuplicate
			}
		}
		r.s.returns[ret.ID] = cloneReturn(ret)
		return nil
	})
}

func (r *ReturnRepo) GetBySaleID(_ context.Context, saleID string) (*entity.SaleReturn, error) {
	defer r.s.read(r.inTx)()
	for _, ret := range r.s.returns {
		if ret.SaleID == saleID {
			return cloneReturn(ret), nil
		}
	}
	return nil, nil
}

func (r *ReturnRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.SaleReturn, error) {
	defer r.s.read(r.inTx)()
	out := make([]*entity.SaleReturn, 0)
	for _, ret := range r.s.returns {
		if !matchSale(f, ret.BusinessID, ret.StoreID, ret.Timestamp.Unix()) {
			continue
		}
		out = append(out, cloneReturn(ret))
	}
	slices.SortFunc(out, func(a, b *entity.SaleReturn) int { return b.Timestamp.Compare(a.Timestamp) })
	return page(out, f.Limit, f.Offset), nil
}

func matchSale(f repository.SaleFilter, businessID, storeID string, ts int64) bool {
	if f.BusinessID != "" && businessID != f.BusinessID {
		return false
	}
	if f.StoreID != "" && f.StoreID != entity.StoreIDAll && storeID != f.StoreID {
		return false
	}
	if f.From != nil && ts < f.From.Unix() {
		return false
	}
	if f.To != nil && ts > f.To.Unix() {
		return false
	}
	return true
}
