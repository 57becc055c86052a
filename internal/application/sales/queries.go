package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/dukastock-api/internal/application/access"
	"github.com/jhoicas/dukastock-api/internal/application/dto"
	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
)

// GetSale devuelve una venta visible para el usuario.
func (uc *UseCase) GetSale(ctx context.Context, userID, saleID string) (*dto.SaleResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.AnyRole...)
	if err != nil {
		return nil, err
	}
	sale, err := uc.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil || sale.BusinessID != user.BusinessID {
		return nil, domain.ErrNotFound
	}
	if err := access.CanActOnStore(user, sale.BusinessID, sale.StoreID); err != nil {
		return nil, err
	}
	return ToSaleResponse(sale), nil
}

// ListSales ventas por duka y rango de fechas (from/to nil = sin límite), más recientes primero.
func (uc *UseCase) ListSales(ctx context.Context, userID, storeID string, from, to *time.Time, page dto.PageRequest) (*dto.SaleListResponse, error) {
	filter, err := uc.filter(ctx, userID, storeID, from, to, &page)
	if err != nil {
		return nil, err
	}
	list, err := uc.sales.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *ToSaleResponse(s))
	}
	return &dto.SaleListResponse{Items: out, Page: page.Response()}, nil
}

// ListReturns devoluciones por duka y rango de fechas.
func (uc *UseCase) ListReturns(ctx context.Context, userID, storeID string, from, to *time.Time, page dto.PageRequest) (*dto.ReturnListResponse, error) {
	filter, err := uc.filter(ctx, userID, storeID, from, to, &page)
	if err != nil {
		return nil, err
	}
	list, err := uc.returns.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReturnResponse, 0, len(list))
	for _, r := range list {
		out = append(out, *ToReturnResponse(r))
	}
	return &dto.ReturnListResponse{Items: out, Page: page.Response()}, nil
}

func (uc *UseCase) filter(ctx context.Context, userID, storeID string, from, to *time.Time, page *dto.PageRequest) (repository.SaleFilter, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.AnyRole...)
	if err != nil {
		return repository.SaleFilter{}, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return repository.SaleFilter{}, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	page.DefaultPage()
	return repository.SaleFilter{
		BusinessID: user.BusinessID,
		StoreID:    access.ScopeStore(user, storeID),
		From:       from,
		To:         to,
		Limit:      page.Limit,
		Offset:     page.Offset,
	}, nil
}
