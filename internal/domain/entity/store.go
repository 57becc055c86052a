package entity

import "time"

// StoreIDAll es el centinela de filtro "todas las dukas". Nunca se guarda en un registro.
const StoreIDAll = "all"

// Store representa una duka (sucursal) del negocio.
type Store struct {
	ID         string
	BusinessID string
	Name       string
	Location   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
