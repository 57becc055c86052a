package mongodb

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/jhoicas/dukastock-api/internal/domain/entity"
	"github.com/jhoicas/dukastock-api/internal/domain/inventory"
)

// labelList lista de tallas o colores. Los documentos antiguos guardan "38, 39,40" como texto
// o números sueltos; al decodificar todo se convierte en lista.
type labelList []string

// UnmarshalBSONValue acepta texto separado por comas, arreglos (de texto o números) y números.
func (l *labelList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		*l = labelList{}
		return nil
	case bson.TypeString:
		*l = inventory.ParseLabels(rv.StringValue())
		return nil
	case bson.TypeArray:
		values, err := rv.Array().Values()
		if err != nil {
			return fmt.Errorf("labels: %w", err)
		}
		out := make([]string, 0, len(values))
		for _, v := range values {
			s, err := scalarString(v)
			if err != nil {
				return err
			}
			out = append(out, s)
		}
		*l = inventory.NormalizeLabels(out)
		return nil
	default:
		s, err := scalarString(rv)
		if err != nil {
			return err
		}
		*l = inventory.ParseLabels(s)
		return nil
	}
}

func scalarString(v bson.RawValue) (string, error) {
	switch v.Type {
	case bson.TypeString:
		return v.StringValue(), nil
	case bson.TypeInt32:
		return strconv.FormatInt(int64(v.Int32()), 10), nil
	case bson.TypeInt64:
		return strconv.FormatInt(v.Int64(), 10), nil
	case bson.TypeDouble:
		return strconv.FormatFloat(v.Double(), 'f', -1, 64), nil
	}
	return "", fmt.Errorf("labels: tipo BSON %s no soportado", v.Type)
}

func toLabels(in []string) labelList {
	if in == nil {
		return labelList{}
	}
	return labelList(in)
}

// money precio guardado como Decimal128. Acepta también double, enteros y texto de documentos antiguos.
type money decimal.Decimal

// MarshalBSONValue codifica como Decimal128.
func (m money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d, err := primitive.ParseDecimal128(decimal.Decimal(m).String())
	if err != nil {
		return 0, nil, fmt.Errorf("money: %w", err)
	}
	return bson.MarshalValue(d)
}

// UnmarshalBSONValue decodifica Decimal128, double, int32, int64 o texto.
func (m *money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	var (
		d   decimal.Decimal
		err error
	)
	switch t {
	case bson.TypeNull, bson.TypeUndefined:
		d = decimal.Zero
	case bson.TypeDecimal128:
		d, err = decimal.NewFromString(rv.Decimal128().String())
	case bson.TypeDouble:
		d = decimal.NewFromFloat(rv.Double())
	case bson.TypeInt32:
		d = decimal.NewFromInt(int64(rv.Int32()))
	case bson.TypeInt64:
		d = decimal.NewFromInt(rv.Int64())
	case bson.TypeString:
		d, err = decimal.NewFromString(strings.TrimSpace(rv.StringValue()))
	default:
		err = fmt.Errorf("tipo BSON %s no soportado", t)
	}
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = money(d)
	return nil
}

func (m money) dec() decimal.Decimal { return decimal.Decimal(m) }

// ──────────────────────────────────────────────────────────────────────────────
// Documentos
// ──────────────────────────────────────────────────────────────────────────────

type businessDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Phone     string    `bson:"phone,omitempty"`
	Email     string    `bson:"email,omitempty"`
	OwnerID   string    `bson:"ownerId,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func toBusinessDoc(b *entity.Business) businessDoc {
	return businessDoc{ID: b.ID, Name: b.Name, Phone: b.Phone, Email: b.Email, OwnerID: b.OwnerID,
		CreatedAt: b.CreatedAt, UpdatedAt: b.UpdatedAt}
}

func (d businessDoc) entity() *entity.Business {
	return &entity.Business{ID: d.ID, Name: d.Name, Phone: d.Phone, Email: d.Email, OwnerID: d.OwnerID,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

type storeDoc struct {
	ID         string    `bson:"_id"`
	BusinessID string    `bson:"businessId"`
	Name       string    `bson:"name"`
	Location   string    `bson:"location,omitempty"`
	CreatedAt  time.Time `bson:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

func toStoreDoc(s *entity.Store) storeDoc {
	return storeDoc{ID: s.ID, BusinessID: s.BusinessID, Name: s.Name, Location: s.Location,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt}
}

func (d storeDoc) entity() *entity.Store {
	return &entity.Store{ID: d.ID, BusinessID: d.BusinessID, Name: d.Name, Location: d.Location,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

type userDoc struct {
	ID           string    `bson:"_id"`
	BusinessID   string    `bson:"businessId"`
	StoreID      string    `bson:"storeId,omitempty"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	Name         string    `bson:"name,omitempty"`
	Role         string    `bson:"role"`
	Status       string    `bson:"status"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func toUserDoc(u *entity.User) userDoc {
	return userDoc{ID: u.ID, BusinessID: u.BusinessID, StoreID: u.StoreID, Email: u.Email, PasswordHash: u.PasswordHash,
		Name: u.Name, Role: u.Role, Status: u.Status, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func (d userDoc) entity() *entity.User {
	return &entity.User{ID: d.ID, BusinessID: d.BusinessID, StoreID: d.StoreID, Email: d.Email, PasswordHash: d.PasswordHash,
		Name: d.Name, Role: d.Role, Status: d.Status, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

// itemDoc documento de la colección inventory. Version solo lo incrementa GetForUpdate.
type itemDoc struct {
	ID              string    `bson:"_id,omitempty"`
	BusinessID      string    `bson:"businessId"`
	StoreID         string    `bson:"storeId"`
	AtNo            string    `bson:"atNo"`
	Name            string    `bson:"name"`
	Brand           string    `bson:"brand"`
	Category        string    `bson:"category"`
	AgeGroup        string    `bson:"ageGroup"`
	Gender          string    `bson:"gender"`
	Sizes           labelList `bson:"sizes"`
	Colors          labelList `bson:"colors"`
	Price           money     `bson:"price"`
	Stock           int       `bson:"stock"`
	IncompletePairs int       `bson:"incompletePairs"`
	Notes           string    `bson:"notes"`
	Version         int64     `bson:"version,omitempty"`
	CreatedAt       time.Time `bson:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt"`
}

func toItemDoc(i *entity.InventoryItem) itemDoc {
	return itemDoc{ID: i.ID, BusinessID: i.BusinessID, StoreID: i.StoreID, AtNo: i.AtNo, Name: i.Name, Brand: i.Brand,
		Category: i.Category, AgeGroup: i.AgeGroup, Gender: i.Gender, Sizes: toLabels(i.Sizes), Colors: toLabels(i.Colors),
		Price: money(i.Price), Stock: i.Stock, IncompletePairs: i.IncompletePairs, Notes: i.Notes,
		CreatedAt: i.CreatedAt, UpdatedAt: i.UpdatedAt}
}

func (d itemDoc) entity() *entity.InventoryItem {
	return &entity.InventoryItem{ID: d.ID, BusinessID: d.BusinessID, StoreID: d.StoreID, AtNo: d.AtNo, Name: d.Name,
		Brand: d.Brand, Category: d.Category, AgeGroup: d.AgeGroup, Gender: d.Gender,
		Sizes: []string(d.Sizes), Colors: []string(d.Colors), Price: d.Price.dec(),
		Stock: d.Stock, IncompletePairs: d.IncompletePairs, Notes: d.Notes,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

type snapshotDoc struct {
	AtNo     string    `bson:"atNo"`
	Name     string    `bson:"name"`
	Brand    string    `bson:"brand,omitempty"`
	Category string    `bson:"category,omitempty"`
	Sizes    labelList `bson:"sizes"`
	Colors   labelList `bson:"colors"`
	Price    money     `bson:"price"`
}

type lendDoc struct {
	ID           string      `bson:"_id,omitempty"`
	BusinessID   string      `bson:"businessId"`
	ItemID       string      `bson:"itemId"`
	DestItemID   string      `bson:"destItemId,omitempty"`
	FromStoreID  string      `bson:"fromStoreId"`
	ToStoreID    string      `bson:"toStoreId"`
	FromStaffID  string      `bson:"fromStaffId"`
	ToStaffID    string      `bson:"toStaffId"`
	LendType     string      `bson:"lendType"`
	Quantity     int         `bson:"quantity"`
	SingleEffect string      `bson:"singleEffect,omitempty"`
	Status       string      `bson:"status"`
	ItemDetails  snapshotDoc `bson:"itemDetails"`
	LentBy       string      `bson:"lentBy,omitempty"`
	LentDate     time.Time   `bson:"lentDate"`
	ReturnDate   *time.Time  `bson:"returnDate,omitempty"`
	ProcessedAt  *time.Time  `bson:"processedAt,omitempty"`
	ProcessedBy  string      `bson:"processedBy,omitempty"`
	Version      int64       `bson:"version,omitempty"`
}

func toLendDoc(l *entity.Lend) lendDoc {
	s := l.ItemDetails
	return lendDoc{ID: l.ID, BusinessID: l.BusinessID, ItemID: l.ItemID, DestItemID: l.DestItemID,
		FromStoreID: l.FromStoreID, ToStoreID: l.ToStoreID, FromStaffID: l.FromStaffID, ToStaffID: l.ToStaffID,
		LendType: l.LendType, Quantity: l.Quantity, SingleEffect: l.SingleEffect, Status: l.Status,
		ItemDetails: snapshotDoc{AtNo: s.AtNo, Name: s.Name, Brand: s.Brand, Category: s.Category,
			Sizes: toLabels(s.Sizes), Colors: toLabels(s.Colors), Price: money(s.Price)},
		LentBy: l.LentBy, LentDate: l.LentDate, ReturnDate: l.ReturnDate, ProcessedAt: l.ProcessedAt,
		ProcessedBy: l.ProcessedBy}
}

func (d lendDoc) entity() *entity.Lend {
	s := d.ItemDetails
	return &entity.Lend{ID: d.ID, BusinessID: d.BusinessID, ItemID: d.ItemID, DestItemID: d.DestItemID,
		FromStoreID: d.FromStoreID, ToStoreID: d.ToStoreID, FromStaffID: d.FromStaffID, ToStaffID: d.ToStaffID,
		LendType: d.LendType, Quantity: d.Quantity, SingleEffect: d.SingleEffect, Status: d.Status,
		ItemDetails: entity.ItemSnapshot{AtNo: s.AtNo, Name: s.Name, Brand: s.Brand, Category: s.Category,
			Sizes: []string(s.Sizes), Colors: []string(s.Colors), Price: s.Price.dec()},
		LentBy: d.LentBy, LentDate: d.LentDate, ReturnDate: d.ReturnDate, ProcessedAt: d.ProcessedAt,
		ProcessedBy: d.ProcessedBy}
}

type paymentDoc struct {
	Method    string `bson:"method"`
	Amount    money  `bson:"amount"`
	Reference string `bson:"reference,omitempty"`
}

type saleDoc struct {
	ID             string       `bson:"_id"`
	BusinessID     string       `bson:"businessId"`
	ProductID      string       `bson:"productId"`
	StoreID        string       `bson:"storeId"`
	Size           string       `bson:"size"`
	Quantity       int          `bson:"quantity"`
	Price          money        `bson:"price"`
	OriginalPrice  money        `bson:"originalPrice"`
	IsHaggled      bool         `bson:"isHaggled"`
	DiscountAmount money        `bson:"discountAmount"`
	Payments       []paymentDoc `bson:"payments"`
	Total          money        `bson:"total"`
	CustomerName   string       `bson:"customerName,omitempty"`
	CustomerPhone  string       `bson:"customerPhone,omitempty"`
	SoldBy         string       `bson:"soldBy"`
	Timestamp      time.Time    `bson:"timestamp"`
}

func toSaleDoc(s *entity.Sale) saleDoc {
	payments := make([]paymentDoc, 0, len(s.Payments))
	for _, p := range s.Payments {
		payments = append(payments, paymentDoc{Method: p.Method, Amount: money(p.Amount), Reference: p.Reference})
	}
	return saleDoc{ID: s.ID, BusinessID: s.BusinessID, ProductID: s.ProductID, StoreID: s.StoreID, Size: s.Size,
		Quantity: s.Quantity, Price: money(s.Price), OriginalPrice: money(s.OriginalPrice), IsHaggled: s.IsHaggled,
		DiscountAmount: money(s.DiscountAmount), Payments: payments, Total: money(s.Total),
		CustomerName: s.CustomerName, CustomerPhone: s.CustomerPhone, SoldBy: s.SoldBy, Timestamp: s.Timestamp}
}

func (d saleDoc) entity() *entity.Sale {
	payments := make([]entity.Payment, 0, len(d.Payments))
	for _, p := range d.Payments {
		payments = append(payments, entity.Payment{Method: p.Method, Amount: p.Amount.dec(), Reference: p.Reference})
	}
	return &entity.Sale{ID: d.ID, BusinessID: d.BusinessID, ProductID: d.ProductID, StoreID: d.StoreID, Size: d.Size,
		Quantity: d.Quantity, Price: d.Price.dec(), OriginalPrice: d.OriginalPrice.dec(), IsHaggled: d.IsHaggled,
		DiscountAmount: d.DiscountAmount.dec(), Payments: payments, Total: d.Total.dec(),
		CustomerName: d.CustomerName, CustomerPhone: d.CustomerPhone, SoldBy: d.SoldBy, Timestamp: d.Timestamp}
}

type returnDoc struct {
	ID                string    `bson:"_id"`
	BusinessID        string    `bson:"businessId"`
	SaleID            string    `bson:"saleId"`
	ProductID         string    `bson:"productId"`
	StoreID           string    `bson:"storeId"`
	Size              string    `bson:"size"`
	Quantity          int       `bson:"quantity"`
	Price             money     `bson:"price"`
	Total             money     `bson:"total"`
	ReturnReason      string    `bson:"returnReason"`
	InventoryRestored bool      `bson:"inventoryRestored"`
	ProcessedBy       string    `bson:"processedBy"`
	Timestamp         time.Time `bson:"timestamp"`
}

func toReturnDoc(r *entity.SaleReturn) returnDoc {
	return returnDoc{ID: r.ID, BusinessID: r.BusinessID, SaleID: r.SaleID, ProductID: r.ProductID, StoreID: r.StoreID,
		Size: r.Size, Quantity: r.Quantity, Price: money(r.Price), Total: money(r.Total), ReturnReason: r.ReturnReason,
		InventoryRestored: r.InventoryRestored, ProcessedBy: r.ProcessedBy, Timestamp: r.Timestamp}
}

func (d returnDoc) entity() *entity.SaleReturn {
	return &entity.SaleReturn{ID: d.ID, BusinessID: d.BusinessID, SaleID: d.SaleID, ProductID: d.ProductID,
		StoreID: d.StoreID, Size: d.Size, Quantity: d.Quantity, Price: d.Price.dec(), Total: d.Total.dec(),
		ReturnReason: d.ReturnReason, InventoryRestored: d.InventoryRestored, ProcessedBy: d.ProcessedBy,
		Timestamp: d.Timestamp}
}
