package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/dukastock-api/internal/application/access"
	"github.com/jhoicas/dukastock-api/internal/application/dto"
	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/inventory"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

// RecordReturn registra la devolución de una venta (admin, staff-admin). En una transacción
// suma la cantidad vendida al stock de la línea original e inserta la devolución.
// Si la línea fue eliminada la devolución se guarda igual con InventoryRestored=false.
func (uc *UseCase) RecordReturn(ctx context.Context, userID, saleID string, in dto.RecordReturnRequest) (*dto.ReturnResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.Managers...)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: motivo de devolución requerido", domain.ErrInvalidInput)
	}
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil || sale.BusinessID != user.BusinessID {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
	}
	if err := access.CanActOnStore(user, sale.BusinessID, sale.StoreID); err != nil {
		return nil, err
	}

	ret := &entity.SaleReturn{
		ID:           uuid.New().String(),
		BusinessID:   sale.BusinessID,
		SaleID:       sale.ID,
		ProductID:    sale.ProductID,
		StoreID:      sale.StoreID,
		Size:         sale.Size,
		Quantity:     sale.Quantity,
		Price:        sale.Price,
		Total:        sale.Total,
		ReturnReason: reason,
		ProcessedBy:  user.ID,
	}
	err = uc.txRunner.RunSales(ctx, func(items repository.InventoryItemRepository, _ repository.SaleRepository, returns repository.ReturnRepository) error {
		existing, err := returns.GetBySaleID(ctx, sale.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: la venta ya fue devuelta", domain.ErrConflict)
		}

		now := uc.nowFunc()
		ret.InventoryRestored = false
		item, err := items.GetForUpdate(ctx, sale.ProductID)
		if err != nil {
			return err
		}
		if item != nil {
			next, err := inventory.RestoreSale(inventory.StateOf(item), sale.Quantity)
			if err != nil {
				return err
			}
			next.Apply(item)
			item.UpdatedAt = now
			if err := items.Update(ctx, item); err != nil {
				return err
			}
			ret.InventoryRestored = true
		}
		ret.Timestamp = now
		return returns.Create(ctx, ret)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: la venta ya fue devuelta", domain.ErrConflict)
		}
		return nil, err
	}

	ev := uc.log.Info()
	if !ret.InventoryRestored {
		ev = uc.log.Warn()
	}
	ev.Str("return_id", ret.ID).Str("sale_id", ret.SaleID).Int("quantity", ret.Quantity).
		Bool("inventory_restored", ret.InventoryRestored).Msg("devolución registrada")
	return ToReturnResponse(ret), nil
}

// ToReturnResponse convierte la entidad en DTO.
func ToReturnResponse(r *entity.SaleReturn) *dto.ReturnResponse {
	if r == nil {
		return nil
	}
	return &dto.ReturnResponse{
		ID:                r.ID,
		SaleID:            r.SaleID,
		ProductID:         r.ProductID,
		StoreID:           r.StoreID,
		Size:              r.Size,
		Quantity:          r.Quantity,
		Price:             r.Price,
		Total:             r.Total,
		ReturnReason:      r.ReturnReason,
		InventoryRestored: r.InventoryRestored,
		ProcessedBy:       r.ProcessedBy,
		Timestamp:         r.Timestamp,
	}
}
