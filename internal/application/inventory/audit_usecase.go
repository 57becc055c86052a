package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/dukastock-api/internal/application/access"
	"github.com/jhoicas/dukastock-api/internal/application/dto"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/inventory"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
	"github.com/jhoicas/dukastock-api/pkg/logger"
)

// AuditUseCase revisa la consistencia del inventario: líneas con 0 <= incompletos <= stock roto
// y préstamos abiertos más allá del plazo. Solo reporta; nunca corrige.
type AuditUseCase struct {
	guard   *access.Guard
	items   repository.InventoryItemRepository
	lends   repository.LendRepository
	overdue time.Duration
	log     *logger.Logger
	nowFunc func() time.Time
}

// NewAuditUseCase construye el caso de uso. overdueDays <= 0 desactiva el conteo de vencidos.
func NewAuditUseCase(
	guard *access.Guard,
	items repository.InventoryItemRepository,
	lends repository.LendRepository,
	overdueDays int,
	log *logger.Logger,
) *AuditUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &AuditUseCase{
		guard:   guard,
		items:   items,
		lends:   lends,
		overdue: time.Duration(overdueDays) * 24 * time.Hour,
		log:     log.Component("audit"),
		nowFunc: time.Now,
	}
}

// RunForUser ejecuta la auditoría del negocio del usuario (solo admin).
func (uc *AuditUseCase) RunForUser(ctx context.Context, userID string) (*dto.AuditReport, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.Admins...)
	if err != nil {
		return nil, err
	}
	return uc.Run(ctx, user.BusinessID)
}

// Run ejecuta la auditoría. businessID vacío = todos los negocios (tarea programada).
func (uc *AuditUseCase) Run(ctx context.Context, businessID string) (*dto.AuditReport, error) {
	items, err := uc.items.List(ctx, repository.ItemFilter{BusinessID: businessID, StoreID: entity.StoreIDAll})
	if err != nil {
		return nil, err
	}
	lends, err := uc.lends.List(ctx, repository.LendFilter{BusinessID: businessID, Status: entity.LendStatusLent})
	if err != nil {
		return nil, err
	}

	now := uc.nowFunc()
	report := &dto.AuditReport{
		ItemsScanned: len(items),
		Violations:   []string{},
		OpenLends:    len(lends),
		OverdueLends: []string{},
		GeneratedAt:  now,
	}
	for _, item := range items {
		if err := inventory.StateOf(item).Check(); err != nil {
			report.Violations = append(report.Violations, item.ID)
			uc.log.Warn().Str("item_id", item.ID).Str("store_id", item.StoreID).
				Int("stock", item.Stock).Int("incomplete_pairs", item.IncompletePairs).
				Msg("línea de inventario inconsistente")
		}
	}
	if uc.overdue > 0 {
		for _, l := range lends {
			if now.Sub(l.LentDate) > uc.overdue {
				report.OverdueLends = append(report.OverdueLends, l.ID)
			}
		}
	}

	uc.log.Info().Str("business_id", businessID).
		Int("items", report.ItemsScanned).Int("violations", len(report.Violations)).
		Int("open_lends", report.OpenLends).Int("overdue_lends", len(report.OverdueLends)).
		Msg("auditoría de inventario")
	return report, nil
}
