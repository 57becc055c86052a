package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jhoicas/dukastock-api/internal/application/access"
	"github.com/jhoicas/dukastock-api/internal/application/dto"
	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/inventory"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
	"github.com/jhoicas/dukastock-api/pkg/logger"
)

// ItemUseCase casos de uso de las líneas de inventario: alta, edición manual, baja, listados y resumen.
// Stock e incompletos cambian también por préstamos y ventas; la edición manual pasa por la misma transacción.
type ItemUseCase struct {
	guard     *access.Guard
	items     repository.InventoryItemRepository
	storeRepo repository.StoreRepository
	txRunner  TxRunner
	log       *logger.Logger
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(
	guard *access.Guard,
	items repository.InventoryItemRepository,
	storeRepo repository.StoreRepository,
	txRunner TxRunner,
	log *logger.Logger,
) *ItemUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ItemUseCase{
		guard:     guard,
		items:     items,
		storeRepo: storeRepo,
		txRunner:  txRunner,
		log:       log.Component("inventory"),
	}
}

// Create da de alta una línea (admin, staff-admin). Un staff-admin sin store_id crea en su duka.
func (uc *ItemUseCase) Create(ctx context.Context, userID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.Managers...)
	if err != nil {
		return nil, err
	}
	storeID := strings.TrimSpace(in.StoreID)
	if storeID == "" && user.Role != entity.RoleAdmin {
		storeID = user.StoreID
	}
	if storeID == "" || storeID == entity.StoreIDAll {
		return nil, fmt.Errorf("%w: store_id requerido", domain.ErrInvalidInput)
	}
	if err := uc.checkStore(ctx, user, storeID); err != nil {
		return nil, err
	}

	now := time.Now()
	item := &entity.InventoryItem{
		ID:              uuid.New().String(),
		BusinessID:      user.BusinessID,
		StoreID:         storeID,
		AtNo:            strings.TrimSpace(in.AtNo),
		Name:            strings.TrimSpace(in.Name),
		Brand:           TitleCase(in.Brand),
		Category:        TitleCase(in.Category),
		AgeGroup:        TitleCase(in.AgeGroup),
		Gender:          TitleCase(in.Gender),
		Sizes:           inventory.NormalizeLabels(in.Sizes),
		Colors:          inventory.NormalizeLabels(in.Colors),
		Price:           in.Price,
		Stock:           in.Stock,
		IncompletePairs: in.IncompletePairs,
		Notes:           strings.TrimSpace(in.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := inventory.ValidateItem(item); err != nil {
		return nil, err
	}
	if err := uc.items.Create(ctx, item); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: @No %s ya existe en la duka", domain.ErrDuplicate, item.AtNo)
		}
		return nil, err
	}
	uc.log.Info().Str("item_id", item.ID).Str("store_id", storeID).Str("at_no", item.AtNo).Msg("línea de inventario creada")
	return ToItemResponse(item), nil
}

// Get devuelve una línea del negocio del usuario.
func (uc *ItemUseCase) Get(ctx context.Context, userID, id string) (*dto.ItemResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.AnyRole...)
	if err != nil {
		return nil, err
	}
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.BusinessID != user.BusinessID {
		return nil, domain.ErrNotFound
	}
	return ToItemResponse(item), nil
}

// Update edita una línea. Stock e incompletos se releen y escriben bajo bloqueo.
func (uc *ItemUseCase) Update(ctx context.Context, userID, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.Managers...)
	if err != nil {
		return nil, err
	}
	var updated *entity.InventoryItem
	err = uc.txRunner.Run(ctx, func(items repository.InventoryItemRepository) error {
		item, err := items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil || item.BusinessID != user.BusinessID {
			return domain.ErrNotFound
		}
		if err := access.CanActOnStore(user, item.BusinessID, item.StoreID); err != nil {
			return err
		}
		applyUpdate(item, in)
		item.UpdatedAt = time.Now()
		if err := inventory.ValidateItem(item); err != nil {
			return err
		}
		if err := items.Update(ctx, item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ToItemResponse(updated), nil
}

func applyUpdate(item *entity.InventoryItem, in dto.UpdateItemRequest) {
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Brand != nil {
		item.Brand = TitleCase(*in.Brand)
	}
	if in.Category != nil {
		item.Category = TitleCase(*in.Category)
	}
	if in.AgeGroup != nil {
		item.AgeGroup = TitleCase(*in.AgeGroup)
	}
	if in.Gender != nil {
		item.Gender = TitleCase(*in.Gender)
	}
	if in.Sizes != nil {
		item.Sizes = inventory.NormalizeLabels(*in.Sizes)
	}
	if in.Colors != nil {
		item.Colors = inventory.NormalizeLabels(*in.Colors)
	}
	if in.Price != nil {
		item.Price = *in.Price
	}
	if in.Stock != nil {
		item.Stock = *in.Stock
	}
	if in.IncompletePairs != nil {
		item.IncompletePairs = *in.IncompletePairs
	}
	if in.Notes != nil {
		item.Notes = strings.TrimSpace(*in.Notes)
	}
}

// Delete borra una línea (solo admin). Ventas y préstamos que la referencian se conservan.
func (uc *ItemUseCase) Delete(ctx context.Context, userID, id string) error {
	user, err := uc.guard.Authorize(ctx, userID, access.Admins...)
	if err != nil {
		return err
	}
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil || item.BusinessID != user.BusinessID {
		return domain.ErrNotFound
	}
	if err := uc.items.Delete(ctx, id); err != nil {
		return err
	}
	uc.log.Info().Str("item_id", id).Str("store_id", item.StoreID).Msg("línea de inventario eliminada")
	return nil
}

// List lista inventario. storeID vacío o "all" = todas las dukas (solo admin); el resto ve su duka.
func (uc *ItemUseCase) List(ctx context.Context, userID, storeID, search string, page dto.PageRequest) (*dto.ItemListResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.AnyRole...)
	if err != nil {
		return nil, err
	}
	page.DefaultPage()
	list, err := uc.items.List(ctx, repository.ItemFilter{
		BusinessID: user.BusinessID,
		StoreID:    access.ScopeStore(user, storeID),
		Search:     strings.TrimSpace(search),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.ItemResponse, 0, len(list))
	for _, item := range list {
		out = append(out, *ToItemResponse(item))
	}
	return &dto.ItemListResponse{
		Items: out,
		Page:  page.Response(),
	}, nil
}

// Summary totales de pares y valor por duka, más el total del alcance pedido.
func (uc *ItemUseCase) Summary(ctx context.Context, userID, storeID string) (*dto.StockSummaryResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.AnyRole...)
	if err != nil {
		return nil, err
	}
	list, err := uc.items.List(ctx, repository.ItemFilter{
		BusinessID: user.BusinessID,
		StoreID:    access.ScopeStore(user, storeID),
	})
	if err != nil {
		return nil, err
	}
	return Summarize(list), nil
}

// Summarize agrega líneas por duka; el orden de dukas es el de primera aparición.
func Summarize(list []*entity.InventoryItem) *dto.StockSummaryResponse {
	resp := &dto.StockSummaryResponse{
		Stores: []dto.StoreStockSummary{},
		Total:  dto.StoreStockSummary{StoreID: entity.StoreIDAll, StockValue: decimal.Zero},
	}
	idx := map[string]int{}
	for _, item := range list {
		i, ok := idx[item.StoreID]
		if !ok {
			i = len(resp.Stores)
			idx[item.StoreID] = i
			resp.Stores = append(resp.Stores, dto.StoreStockSummary{StoreID: item.StoreID, StockValue: decimal.Zero})
		}
		addItem(&resp.Stores[i], item)
		addItem(&resp.Total, item)
	}
	return resp
}

func addItem(s *dto.StoreStockSummary, item *entity.InventoryItem) {
	complete := inventory.CompletePairs(item)
	s.Items++
	s.Stock += item.Stock
	s.CompletePairs += complete
	s.IncompletePairs += item.IncompletePairs
	s.TotalShoes += inventory.TotalShoes(item)
	s.StockValue = s.StockValue.Add(item.Price.Mul(decimal.NewFromInt(int64(complete))))
}

func (uc *ItemUseCase) checkStore(ctx context.Context, user *entity.User, storeID string) error {
	store, err := uc.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return err
	}
	if store == nil || store.BusinessID != user.BusinessID {
		return fmt.Errorf("%w: duka %s", domain.ErrNotFound, storeID)
	}
	return access.CanActOnStore(user, store.BusinessID, store.ID)
}

// TitleCase normaliza marca/categoría/género ("NIKE air" -> "Nike Air").
// cases.Caser no es seguro para uso concurrente: se crea uno por llamada.
func TitleCase(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	return cases.Title(language.Und).String(s)
}

// ToItemResponse convierte la entidad en DTO con los derivados de pares.
func ToItemResponse(item *entity.InventoryItem) *dto.ItemResponse {
	if item == nil {
		return nil
	}
	return &dto.ItemResponse{
		ID:              item.ID,
		StoreID:         item.StoreID,
		AtNo:            item.AtNo,
		Name:            item.Name,
		Brand:           item.Brand,
		Category:        item.Category,
		AgeGroup:        item.AgeGroup,
		Gender:          item.Gender,
		Sizes:           item.Sizes,
		Colors:          item.Colors,
		Price:           item.Price,
		Stock:           item.Stock,
		IncompletePairs: item.IncompletePairs,
		CompletePairs:   inventory.CompletePairs(item),
		TotalShoes:      inventory.TotalShoes(item),
		Notes:           item.Notes,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}
