package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/google/uuid"

	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

// Store almacén en memoria para desarrollo y pruebas.
// txMu serializa transacciones, escrituras y lecturas sobre inventario, préstamos, ventas y devoluciones;
// mu protege los mapas en cada operación individual.
// Una lectura fuera de transacción espera al commit o rollback en curso: nunca ve escrituras sin confirmar.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	businesses map[string]*entity.Business
	stores     map[string]*entity.Store
	users      map[string]*entity.User
	items      map[string]*entity.InventoryItem
	lends      map[string]*entity.Lend
	sales      map[string]*entity.Sale
	returns    map[string]*entity.SaleReturn
}

// New crea un almacén vacío.
func New() *Store {
	return &Store{
		businesses: make(map[string]*entity.Business),
		stores:     make(map[string]*entity.Store),
		users:      make(map[string]*entity.User),
		items:      make(map[string]*entity.InventoryItem),
		lends:      make(map[string]*entity.Lend),
		sales:      make(map[string]*entity.Sale),
		returns:    make(map[string]*entity.SaleReturn),
	}
}

// Businesses, Stores, Users devuelven repositorios fuera de transacción.
func (s *Store) Businesses() *BusinessRepo { return &BusinessRepo{s: s} }
func (s *Store) Stores() *StoreRepo        { return &StoreRepo{s: s} }
func (s *Store) Users() *UserRepo          { return &UserRepo{s: s} }

// Items, Lends, Sales, Returns devuelven repositorios que toman txMu en cada operación.
func (s *Store) Items() *ItemRepo     { return &ItemRepo{s: s} }
func (s *Store) Lends() *LendRepo     { return &LendRepo{s: s} }
func (s *Store) Sales() *SaleRepo     { return &SaleRepo{s: s} }
func (s *Store) Returns() *ReturnRepo { return &ReturnRepo{s: s} }

// snapshot copia de los mapas mutables por transacción. Las escrituras reemplazan punteros,
// así que clonar el mapa basta para poder restaurarlo.
type snapshot struct {
	items   map[string]*entity.InventoryItem
	lends   map[string]*entity.Lend
	sales   map[string]*entity.Sale
	returns map[string]*entity.SaleReturn
}

func (s *Store) begin(ctx context.Context) (snapshot, error) {
	if err := ctx.Err(); err != nil {
		return snapshot{}, err
	}
	s.txMu.Lock()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		items:   maps.Clone(s.items),
		lends:   maps.Clone(s.lends),
		sales:   maps.Clone(s.sales),
		returns: maps.Clone(s.returns),
	}, nil
}

func (s *Store) end(snap snapshot, err error) error {
	defer s.txMu.Unlock()
	if err != nil {
		s.mu.Lock()
		s.items, s.lends, s.sales, s.returns = snap.items, snap.lends, snap.sales, snap.returns
		s.mu.Unlock()
	}
	return err
}

// Run ejecuta fn con el repositorio de inventario dentro de una transacción.
func (s *Store) Run(ctx context.Context, fn func(items repository.InventoryItemRepository) error) error {
	snap, err := s.begin(ctx)
	if err != nil {
		return err
	}
	return s.end(snap, fn(&ItemRepo{s: s, inTx: true}))
}

// RunLending ejecuta fn con inventario y préstamos en una misma transacción.
func (s *Store) RunLending(ctx context.Context, fn func(items repository.InventoryItemRepository, lends repository.LendRepository) error) error {
	snap, err := s.begin(ctx)
	if err != nil {
		return err
	}
	return s.end(snap, fn(&ItemRepo{s: s, inTx: true}, &LendRepo{s: s, inTx: true}))
}

// RunSales ejecuta fn con inventario, ventas y devoluciones en una misma transacción.
func (s *Store) RunSales(ctx context.Context, fn func(items repository.InventoryItemRepository, sales repository.SaleRepository, returns repository.ReturnRepository) error) error {
	snap, err := s.begin(ctx)
	if err != nil {
		return err
	}
	return s.end(snap, fn(&ItemRepo{s: s, inTx: true}, &SaleRepo{s: s, inTx: true}, &ReturnRepo{s: s, inTx: true}))
}

// write ejecuta fn con el mapa bloqueado; fuera de transacción también toma txMu.
func (s *Store) write(inTx bool, fn func() error) error {
	if !inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// read bloquea los mapas para lectura y devuelve el desbloqueo; fuera de transacción también toma txMu.
func (s *Store) read(inTx bool) (unlock func()) {
	if !inTx {
		s.txMu.Lock()
	}
	s.mu.RLock()
	return func() {
		s.mu.RUnlock()
		if !inTx {
			s.txMu.Unlock()
		}
	}
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

// ─── copias ──────────────────────────────────────────────────────────────────

func cloneItem(i *entity.InventoryItem) *entity.InventoryItem {
	c := *i
	c.Sizes = append([]string(nil), i.Sizes...)
	c.Colors = append([]string(nil), i.Colors...)
	return &c
}

func cloneLend(l *entity.Lend) *entity.Lend {
	c := *l
	c.ItemDetails.Sizes = append([]string(nil), l.ItemDetails.Sizes...)
	c.ItemDetails.Colors = append([]string(nil), l.ItemDetails.Colors...)
	if l.ReturnDate != nil {
		t := *l.ReturnDate
		c.ReturnDate = &t
	}
	if l.ProcessedAt != nil {
		t := *l.ProcessedAt
		c.ProcessedAt = &t
	}
	return &c
}

func cloneSale(sale *entity.Sale) *entity.Sale {
	c := *sale
	c.Payments = append([]entity.Payment(nil), sale.Payments...)
	return &c
}

func cloneReturn(r *entity.SaleReturn) *entity.SaleReturn {
	c := *r
	return &c
}

func page[T any](in []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(in) {
			return []T{}
		}
		in = in[offset:]
	}
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
