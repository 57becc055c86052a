package sales

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/dukastock-api/internal/application/access"
	"github.com/jhoicas/dukastock-api/internal/application/dto"
	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/inventory"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
	"github.com/jhoicas/dukastock-api/pkg/logger"
)

// paymentTolerance diferencia máxima aceptada entre la suma de pagos y precio*cantidad.
var paymentTolerance = decimal.RequireFromString("0.01")

// UseCase ventas en punto de venta y devoluciones.
type UseCase struct {
	guard    *access.Guard
	txRunner TxRunner
	sales    repository.SaleRepository
	returns  repository.ReturnRepository
	idem     IdempotencyStore
	log      *logger.Logger
	nowFunc  func() time.Time
}

// NewUseCase construye el caso de uso. idem nil = sin soporte de Idempotency-Key.
func NewUseCase(
	guard *access.Guard,
	txRunner TxRunner,
	sales repository.SaleRepository,
	returns repository.ReturnRepository,
	idem IdempotencyStore,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		guard:    guard,
		txRunner: txRunner,
		sales:    sales,
		returns:  returns,
		idem:     idem,
		log:      log.Component("sales"),
		nowFunc:  time.Now,
	}
}

// RecordSale registra una venta: valida pagos antes de la transacción y, dentro de ella,
// relee el stock bajo bloqueo, descuenta los pares e inserta la venta.
// Con idemKey, un reenvío devuelve la venta original marcada como Replayed.
func (uc *UseCase) RecordSale(ctx context.Context, userID, idemKey string, in dto.RecordSaleRequest) (*dto.SaleResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.AnyRole...)
	if err != nil {
		return nil, err
	}
	payments, err := validateSale(in)
	if err != nil {
		return nil, err
	}

	key := ""
	if idemKey = strings.TrimSpace(idemKey); idemKey != "" && uc.idem != nil {
		key = user.BusinessID + ":" + idemKey
		saleID, reserved, err := uc.idem.Reserve(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("%w: idempotencia: %v", domain.ErrTransient, err)
		}
		if !reserved {
			return uc.replay(ctx, user, saleID)
		}
	}

	sale, err := uc.recordSale(ctx, user, in, payments)
	if key != "" {
		if err != nil {
			if relErr := uc.idem.Release(ctx, key); relErr != nil {
				uc.log.Warn().Err(relErr).Str("key", idemKey).Msg("no se pudo liberar la clave de idempotencia")
			}
		} else if cErr := uc.idem.Complete(ctx, key, sale.ID); cErr != nil {
			uc.log.Warn().Err(cErr).Str("key", idemKey).Str("sale_id", sale.ID).Msg("no se pudo confirmar la clave de idempotencia")
		}
	}
	if err != nil {
		return nil, err
	}

	uc.log.Info().Str("sale_id", sale.ID).Str("item_id", sale.ProductID).Str("store_id", sale.StoreID).
		Int("quantity", sale.Quantity).Str("total", sale.Total.String()).Bool("haggled", sale.IsHaggled).
		Msg("venta registrada")
	return ToSaleResponse(sale), nil
}

func (uc *UseCase) recordSale(ctx context.Context, user *entity.User, in dto.RecordSaleRequest, payments []entity.Payment) (*entity.Sale, error) {
	var sale *entity.Sale
	err := uc.txRunner.RunSales(ctx, func(items repository.InventoryItemRepository, sales repository.SaleRepository, _ repository.ReturnRepository) error {
		item, err := items.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if item == nil || item.BusinessID != user.BusinessID {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
		}
		if err := access.CanActOnStore(user, item.BusinessID, item.StoreID); err != nil {
			return err
		}
		if !slices.Contains(item.Sizes, in.Size) {
			return fmt.Errorf("%w: talla %q no disponible para %s", domain.ErrInvalidInput, in.Size, item.AtNo)
		}
		next, err := inventory.Sell(inventory.StateOf(item), in.Quantity)
		if err != nil {
			return err
		}

		now := uc.nowFunc()
		next.Apply(item)
		item.UpdatedAt = now
		if err := items.Update(ctx, item); err != nil {
			return err
		}

		qty := decimal.NewFromInt(int64(in.Quantity))
		discount := item.Price.Sub(in.Price)
		if discount.IsNegative() {
			discount = decimal.Zero
		}
		sale = &entity.Sale{
			ID:             uuid.New().String(),
			BusinessID:     item.BusinessID,
			ProductID:      item.ID,
			StoreID:        item.StoreID,
			Size:           in.Size,
			Quantity:       in.Quantity,
			Price:          in.Price,
			OriginalPrice:  item.Price,
			IsHaggled:      !in.Price.Equal(item.Price),
			DiscountAmount: discount.Mul(qty),
			Payments:       payments,
			Total:          in.Price.Mul(qty),
			CustomerName:   strings.TrimSpace(in.CustomerName),
			CustomerPhone:  strings.TrimSpace(in.CustomerPhone),
			SoldBy:         user.ID,
			Timestamp:      now,
		}
		return sales.Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}
	return sale, nil
}

func (uc *UseCase) replay(ctx context.Context, user *entity.User, saleID string) (*dto.SaleResponse, error) {
	if saleID == "" {
		return nil, fmt.Errorf("%w: venta con la misma Idempotency-Key en curso", domain.ErrConflict)
	}
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil || sale.BusinessID != user.BusinessID {
		return nil, fmt.Errorf("%w: Idempotency-Key apunta a una venta inexistente", domain.ErrConflict)
	}
	resp := ToSaleResponse(sale)
	resp.Replayed = true
	return resp, nil
}

// validateSale valida la venta antes de abrir la transacción y devuelve los pagos normalizados.
func validateSale(in dto.RecordSaleRequest) ([]entity.Payment, error) {
	switch {
	case strings.TrimSpace(in.ProductID) == "":
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	case strings.TrimSpace(in.Size) == "":
		return nil, fmt.Errorf("%w: talla requerida", domain.ErrInvalidInput)
	case in.Quantity <= 0:
		return nil, fmt.Errorf("%w: cantidad debe ser mayor que cero", domain.ErrInvalidInput)
	case in.Price.IsNegative():
		return nil, fmt.Errorf("%w: precio negativo", domain.ErrInvalidInput)
	case !inventory.FitsMoneyScale(in.Price):
		return nil, fmt.Errorf("%w: precio con más de %d decimales", domain.ErrInvalidInput, inventory.MoneyScale)
	case len(in.Payments) == 0:
		return nil, fmt.Errorf("%w: al menos un pago", domain.ErrInvalidInput)
	}

	payments := make([]entity.Payment, 0, len(in.Payments))
	sum := decimal.Zero
	for _, p := range in.Payments {
		method := strings.ToLower(strings.TrimSpace(p.Method))
		if method == "" {
			return nil, fmt.Errorf("%w: método de pago requerido", domain.ErrInvalidInput)
		}
		if !p.Amount.IsPositive() {
			return nil, fmt.Errorf("%w: monto de pago debe ser mayor que cero", domain.ErrInvalidInput)
		}
		if !inventory.FitsMoneyScale(p.Amount) {
			return nil, fmt.Errorf("%w: monto de pago con más de %d decimales", domain.ErrInvalidInput, inventory.MoneyScale)
		}
		sum = sum.Add(p.Amount)
		payments = append(payments, entity.Payment{Method: method, Amount: p.Amount, Reference: strings.TrimSpace(p.Reference)})
	}
	total := in.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))
	if sum.Sub(total).Abs().GreaterThan(paymentTolerance) {
		return nil, fmt.Errorf("%w: pagos suman %s y el total es %s", domain.ErrInvalidInput, sum.StringFixed(2), total.StringFixed(2))
	}
	return payments, nil
}

// ToSaleResponse convierte la entidad en DTO.
func ToSaleResponse(s *entity.Sale) *dto.SaleResponse {
	if s == nil {
		return nil
	}
	payments := make([]dto.PaymentDTO, 0, len(s.Payments))
	for _, p := range s.Payments {
		payments = append(payments, dto.PaymentDTO{Method: p.Method, Amount: p.Amount, Reference: p.Reference})
	}
	return &dto.SaleResponse{
		ID:             s.ID,
		ProductID:      s.ProductID,
		StoreID:        s.StoreID,
		Size:           s.Size,
		Quantity:       s.Quantity,
		Price:          s.Price,
		OriginalPrice:  s.OriginalPrice,
		IsHaggled:      s.IsHaggled,
		DiscountAmount: s.DiscountAmount,
		Payments:       payments,
		Total:          s.Total,
		CustomerName:   s.CustomerName,
		CustomerPhone:  s.CustomerPhone,
		SoldBy:         s.SoldBy,
		Timestamp:      s.Timestamp,
	}
}
