package lending

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/dukastock-api/internal/application/access"
	"github.com/jhoicas/dukastock-api/internal/application/dto"
	"github.com/jhoicas/dukastock-api/internal/domain"
	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/inventory"
	"github.com/jhoicas/dukastock-api/internal/domain/repository"
	"github.com/jhoicas/dukastock-api/pkg/logger"
)

// destRetries reintentos de Create cuando la línea destino aparece entre la lectura y la inserción.
const destRetries = 1

// UseCase flujo de préstamos entre dukas: lent -> returned | updated.
type UseCase struct {
	guard     *access.Guard
	txRunner  TxRunner
	items     repository.InventoryItemRepository
	lends     repository.LendRepository
	storeRepo repository.StoreRepository
	userRepo  repository.UserRepository
	log       *logger.Logger
	nowFunc   func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	guard *access.Guard,
	txRunner TxRunner,
	items repository.InventoryItemRepository,
	lends repository.LendRepository,
	storeRepo repository.StoreRepository,
	userRepo repository.UserRepository,
	log *logger.Logger,
) *UseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &UseCase{
		guard:     guard,
		txRunner:  txRunner,
		items:     items,
		lends:     lends,
		storeRepo: storeRepo,
		userRepo:  userRepo,
		log:       log.Component("lending"),
		nowFunc:   time.Now,
	}
}

// Create presta q pares (o un zapato suelto) de la duka origen a la destino. En una sola transacción:
// descuenta en origen, crea o incrementa la línea (atNo, destino) e inserta el registro con estado lent.
func (uc *UseCase) Create(ctx context.Context, userID string, in dto.CreateLendRequest) (*dto.LendResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.AnyRole...)
	if err != nil {
		return nil, err
	}
	if in.LendType == entity.LendTypeSingle && in.Quantity == 0 {
		in.Quantity = 1
	}
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	item, err := uc.items.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil || item.BusinessID != user.BusinessID {
		return nil, fmt.Errorf("%w: ítem %s", domain.ErrNotFound, in.ItemID)
	}
	if item.StoreID != in.FromStoreID {
		return nil, fmt.Errorf("%w: el ítem no pertenece a la duka origen", domain.ErrInvalidInput)
	}
	if err := access.CanActOnStore(user, user.BusinessID, in.FromStoreID); err != nil {
		return nil, err
	}
	for _, id := range []string{in.FromStoreID, in.ToStoreID} {
		if err := uc.requireStore(ctx, user.BusinessID, id); err != nil {
			return nil, err
		}
	}
	for _, id := range []string{in.FromStaffID, in.ToStaffID} {
		if err := uc.requireStaff(ctx, user.BusinessID, id); err != nil {
			return nil, err
		}
	}

	now := uc.nowFunc()
	lend := &entity.Lend{
		ID:          uuid.New().String(),
		BusinessID:  user.BusinessID,
		ItemID:      item.ID,
		FromStoreID: in.FromStoreID,
		ToStoreID:   in.ToStoreID,
		FromStaffID: in.FromStaffID,
		ToStaffID:   in.ToStaffID,
		LendType:    in.LendType,
		Quantity:    in.Quantity,
		Status:      entity.LendStatusLent,
		LentBy:      user.ID,
		LentDate:    now,
	}

	lendTx := func(items repository.InventoryItemRepository, lends repository.LendRepository) error {
		src, err := items.GetForUpdate(ctx, item.ID)
		if err != nil {
			return err
		}
		if src == nil {
			return fmt.Errorf("%w: ítem %s", domain.ErrNotFound, item.ID)
		}
		if src.StoreID != in.FromStoreID {
			return fmt.Errorf("%w: el ítem cambió de duka", domain.ErrConflict)
		}
		srcNext, effect, err := inventory.LendFromSource(inventory.StateOf(src), in.LendType, in.Quantity)
		if err != nil {
			return err
		}

		dst, err := items.GetByStoreAndAtNoForUpdate(ctx, in.ToStoreID, src.AtNo)
		if err != nil {
			return err
		}
		created := dst == nil
		if created {
			dst = destinationFrom(src, in.ToStoreID, now)
		}
		dstNext, err := inventory.ReceiveAtDestination(inventory.StateOf(dst), in.LendType, in.Quantity)
		if err != nil {
			return err
		}

		srcNext.Apply(src)
		src.UpdatedAt = now
		if err := items.Update(ctx, src); err != nil {
			return err
		}
		dstNext.Apply(dst)
		dst.UpdatedAt = now
		if created {
			err = items.Create(ctx, dst)
		} else {
			err = items.Update(ctx, dst)
		}
		if err != nil {
			return err
		}

		lend.DestItemID = dst.ID
		lend.SingleEffect = effect
		lend.ItemDetails = src.Snapshot()
		return lends.Create(ctx, lend)
	}
	for attempt := 0; ; attempt++ {
		err = uc.txRunner.RunLending(ctx, lendTx)
		if !errors.Is(err, domain.ErrDuplicate) || attempt >= destRetries {
			break
		}
		// Otra transacción creó la misma línea destino: al repetir se incrementa la existente.
		uc.log.Debug().Str("item_id", item.ID).Str("to_store", in.ToStoreID).Msg("línea destino creada en paralelo, reintentando")
	}
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: línea destino creada en paralelo", domain.ErrConflict)
		}
		return nil, err
	}

	uc.log.Info().Str("lend_id", lend.ID).Str("item_id", lend.ItemID).Str("dest_item_id", lend.DestItemID).
		Str("from_store", lend.FromStoreID).Str("to_store", lend.ToStoreID).
		Str("type", lend.LendType).Int("quantity", lend.Quantity).Msg("préstamo registrado")
	return ToLendResponse(lend), nil
}

// Return devuelve el préstamo: relee origen y destino, aplica la inversa exacta y marca returned.
func (uc *UseCase) Return(ctx context.Context, userID, lendID string) (*dto.LendResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.AnyRole...)
	if err != nil {
		return nil, err
	}
	if _, err := uc.readForUser(ctx, user, lendID); err != nil {
		return nil, err
	}

	var out *entity.Lend
	err = uc.txRunner.RunLending(ctx, func(items repository.InventoryItemRepository, lends repository.LendRepository) error {
		l, err := lends.GetForUpdate(ctx, lendID)
		if err != nil {
			return err
		}
		if l == nil {
			return domain.ErrNotFound
		}
		if l.IsTerminal() {
			return fmt.Errorf("%w: préstamo %s", domain.ErrTerminalState, l.Status)
		}

		src, err := items.GetForUpdate(ctx, l.ItemID)
		if err != nil {
			return err
		}
		if src == nil {
			return fmt.Errorf("%w: la línea origen fue eliminada", domain.ErrNotFound)
		}
		dst, err := uc.destinationForUpdate(ctx, items, l)
		if err != nil {
			return err
		}
		if dst == nil {
			return fmt.Errorf("%w: la línea destino fue eliminada", domain.ErrNotFound)
		}

		srcNext, err := inventory.ReturnToSource(inventory.StateOf(src), l.LendType, l.Quantity, l.SingleEffect)
		if err != nil {
			return err
		}
		dstNext, err := inventory.TakeBackFromDestination(inventory.StateOf(dst), l.LendType, l.Quantity)
		if err != nil {
			return err
		}

		now := uc.nowFunc()
		srcNext.Apply(src)
		src.UpdatedAt = now
		if err := items.Update(ctx, src); err != nil {
			return err
		}
		dstNext.Apply(dst)
		dst.UpdatedAt = now
		if err := items.Update(ctx, dst); err != nil {
			return err
		}

		l.Status = entity.LendStatusReturned
		l.ReturnDate = &now
		l.ProcessedBy = user.ID
		if err := lends.Update(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("lend_id", out.ID).Str("by", user.ID).Msg("préstamo devuelto")
	return ToLendResponse(out), nil
}

// MarkUpdated cierra el préstamo como asimilado en destino, sin tocar inventario.
// Lo puede hacer quien recibió el préstamo o un admin/staff-admin con acceso a la duka.
func (uc *UseCase) MarkUpdated(ctx context.Context, userID, lendID string) (*dto.LendResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.AnyRole...)
	if err != nil {
		return nil, err
	}
	current, err := uc.readForUser(ctx, user, lendID)
	if err != nil {
		return nil, err
	}
	if user.ID != current.ToStaffID && access.RequireRole(user, access.Managers...) != nil {
		return nil, fmt.Errorf("%w: solo el receptor o un administrador", domain.ErrForbidden)
	}

	var out *entity.Lend
	err = uc.txRunner.RunLending(ctx, func(_ repository.InventoryItemRepository, lends repository.LendRepository) error {
		l, err := lends.GetForUpdate(ctx, lendID)
		if err != nil {
			return err
		}
		if l == nil {
			return domain.ErrNotFound
		}
		if l.IsTerminal() {
			return fmt.Errorf("%w: préstamo %s", domain.ErrTerminalState, l.Status)
		}
		now := uc.nowFunc()
		l.Status = entity.LendStatusUpdated
		l.ProcessedAt = &now
		l.ProcessedBy = user.ID
		if err := lends.Update(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("lend_id", out.ID).Str("by", user.ID).Msg("préstamo marcado como actualizado")
	return ToLendResponse(out), nil
}

// Get devuelve un préstamo visible para el usuario.
func (uc *UseCase) Get(ctx context.Context, userID, lendID string) (*dto.LendResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.AnyRole...)
	if err != nil {
		return nil, err
	}
	l, err := uc.readForUser(ctx, user, lendID)
	if err != nil {
		return nil, err
	}
	return ToLendResponse(l), nil
}

// List lista el libro de préstamos; storeID coincide como origen o destino.
func (uc *UseCase) List(ctx context.Context, userID, storeID, status string, page dto.PageRequest) (*dto.LendListResponse, error) {
	user, err := uc.guard.Authorize(ctx, userID, access.AnyRole...)
	if err != nil {
		return nil, err
	}
	switch status {
	case "", entity.LendStatusLent, entity.LendStatusReturned, entity.LendStatusUpdated:
	default:
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, status)
	}
	page.DefaultPage()
	list, err := uc.lends.List(ctx, repository.LendFilter{
		BusinessID: user.BusinessID,
		StoreID:    access.ScopeStore(user, storeID),
		Status:     status,
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.LendResponse, 0, len(list))
	for _, l := range list {
		out = append(out, *ToLendResponse(l))
	}
	return &dto.LendListResponse{
		Items: out,
		Page:  page.Response(),
	}, nil
}

func validateCreate(in dto.CreateLendRequest) error {
	required := []struct{ name, value string }{
		{"item_id", in.ItemID},
		{"from_store_id", in.FromStoreID},
		{"to_store_id", in.ToStoreID},
		{"from_staff_id", in.FromStaffID},
		{"to_staff_id", in.ToStaffID},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s requerido", domain.ErrInvalidInput, f.name)
		}
	}
	if in.FromStoreID == in.ToStoreID {
		return fmt.Errorf("%w: origen y destino son la misma duka", domain.ErrInvalidInput)
	}
	if in.FromStoreID == entity.StoreIDAll || in.ToStoreID == entity.StoreIDAll {
		return fmt.Errorf("%w: duka %q no válida", domain.ErrInvalidInput, entity.StoreIDAll)
	}
	switch in.LendType {
	case entity.LendTypePair:
		if in.Quantity <= 0 {
			return fmt.Errorf("%w: cantidad debe ser mayor que cero", domain.ErrInvalidInput)
		}
	case entity.LendTypeSingle:
		if in.Quantity != 1 {
			return fmt.Errorf("%w: un préstamo suelto es de un solo zapato", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: lend_type %q", domain.ErrInvalidInput, in.LendType)
	}
	return nil
}

func (uc *UseCase) requireStore(ctx context.Context, businessID, storeID string) error {
	st, err := uc.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return err
	}
	if st == nil || st.BusinessID != businessID {
		return fmt.Errorf("%w: duka %s", domain.ErrNotFound, storeID)
	}
	return nil
}

func (uc *UseCase) requireStaff(ctx context.Context, businessID, userID string) error {
	u, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil || u.BusinessID != businessID {
		return fmt.Errorf("%w: personal %s", domain.ErrNotFound, userID)
	}
	return nil
}

// readForUser lee el préstamo fuera de transacción para autorizar: admin ve todo su negocio,
// el resto solo préstamos que salen o llegan a su duka.
func (uc *UseCase) readForUser(ctx context.Context, user *entity.User, lendID string) (*entity.Lend, error) {
	l, err := uc.lends.GetByID(ctx, lendID)
	if err != nil {
		return nil, err
	}
	if l == nil || l.BusinessID != user.BusinessID {
		return nil, domain.ErrNotFound
	}
	if access.CanActOnStore(user, l.BusinessID, l.FromStoreID) != nil &&
		access.CanActOnStore(user, l.BusinessID, l.ToStoreID) != nil {
		return nil, fmt.Errorf("%w: préstamo de otras dukas", domain.ErrForbidden)
	}
	return l, nil
}

// destinationForUpdate bloquea la línea destino; registros sin DestItemID se resuelven por (atNo, destino).
func (uc *UseCase) destinationForUpdate(ctx context.Context, items repository.InventoryItemRepository, l *entity.Lend) (*entity.InventoryItem, error) {
	if l.DestItemID != "" {
		return items.GetForUpdate(ctx, l.DestItemID)
	}
	return items.GetByStoreAndAtNoForUpdate(ctx, l.ToStoreID, l.ItemDetails.AtNo)
}

// destinationFrom crea la línea destino con los atributos del origen y stock cero.
func destinationFrom(src *entity.InventoryItem, storeID string, now time.Time) *entity.InventoryItem {
	return &entity.InventoryItem{
		ID:         uuid.New().String(),
		BusinessID: src.BusinessID,
		StoreID:    storeID,
		AtNo:       src.AtNo,
		Name:       src.Name,
		Brand:      src.Brand,
		Category:   src.Category,
		AgeGroup:   src.AgeGroup,
		Gender:     src.Gender,
		Sizes:      append([]string(nil), src.Sizes...),
		Colors:     append([]string(nil), src.Colors...),
		Price:      src.Price,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// ToLendResponse convierte la entidad en DTO.
func ToLendResponse(l *entity.Lend) *dto.LendResponse {
	if l == nil {
		return nil
	}
	return &dto.LendResponse{
		ID:          l.ID,
		ItemID:      l.ItemID,
		DestItemID:  l.DestItemID,
		FromStoreID: l.FromStoreID,
		ToStoreID:   l.ToStoreID,
		FromStaffID: l.FromStaffID,
		ToStaffID:   l.ToStaffID,
		LendType:    l.LendType,
		Quantity:    l.Quantity,
		Status:      l.Status,
		ItemDetails: dto.ItemDetailsResponse{
			AtNo:     l.ItemDetails.AtNo,
			Name:     l.ItemDetails.Name,
			Brand:    l.ItemDetails.Brand,
			Category: l.ItemDetails.Category,
			Sizes:    l.ItemDetails.Sizes,
			Colors:   l.ItemDetails.Colors,
			Price:    l.ItemDetails.Price,
		},
		LentDate:    l.LentDate,
		ReturnDate:  l.ReturnDate,
		ProcessedAt: l.ProcessedAt,
	}
}
