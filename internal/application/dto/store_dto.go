package dto

import "time"

// CreateBusinessRequest entrada para registrar un negocio.
type CreateBusinessRequest struct {
	Name  string `json:"name" validate:"required,min=1,max=200"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// BusinessResponse salida de un negocio.
type BusinessResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	HasOwner  bool      `json:"has_owner"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateStoreRequest entrada para crear una duka.
type CreateStoreRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Location string `json:"location"`
}

// StoreResponse salida de una duka.
type StoreResponse struct {
	ID         string    `json:"id"`
	BusinessID string    `json:"business_id"`
	Name       string    `json:"name"`
	Location   string    `json:"location"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
