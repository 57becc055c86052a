package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLendRequest body para POST /api/lends.
type CreateLendRequest struct {
	ItemID      string `json:"item_id"`
	FromStoreID string `json:"from_store_id"`
	ToStoreID   string `json:"to_store_id"`
	FromStaffID string `json:"from_staff_id"`
	ToStaffID   string `json:"to_staff_id"`
	LendType    string `json:"lend_type"` // pair | single
	Quantity    int    `json:"quantity"`  // ignorado en single
}

// ItemDetailsResponse copia de atributos del ítem al prestarlo.
type ItemDetailsResponse struct {
	AtNo     string          `json:"at_no"`
	Name     string          `json:"name"`
	Brand    string          `json:"brand"`
	Category string          `json:"category"`
	Sizes    []string        `json:"sizes"`
	Colors   []string        `json:"colors"`
	Price    decimal.Decimal `json:"price"`
}

// LendResponse salida de un registro de préstamo.
type LendResponse struct {
	ID          string              `json:"id"`
	ItemID      string              `json:"item_id"`
	DestItemID  string              `json:"dest_item_id"`
	FromStoreID string              `json:"from_store_id"`
	ToStoreID   string              `json:"to_store_id"`
	FromStaffID string              `json:"from_staff_id"`
	ToStaffID   string              `json:"to_staff_id"`
	LendType    string              `json:"lend_type"`
	Quantity    int                 `json:"quantity"`
	Status      string              `json:"status"`
	ItemDetails ItemDetailsResponse `json:"item_details"`
	LentDate    time.Time           `json:"lent_date"`
	ReturnDate  *time.Time          `json:"return_date,omitempty"`
	ProcessedAt *time.Time          `json:"processed_at,omitempty"`
}

// LendListResponse lista paginada de préstamos.
type LendListResponse struct {
	Items []LendResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
