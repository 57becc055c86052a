package entity

import "time"

// Business representa el negocio (tenant) dueño de varias dukas.
type Business struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	OwnerID   string // usuario admin que registró el negocio
	CreatedAt time.Time
	UpdatedAt time.Time
}
