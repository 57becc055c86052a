package dto

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// PageRequest ventana de un listado (?limit=&offset=).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// DefaultPage normaliza la ventana: límite 20 si falta, tope 100, offset no negativo.
func (p *PageRequest) DefaultPage() {
	switch {
	case p.Limit <= 0:
		p.Limit = defaultPageLimit
	case p.Limit > maxPageLimit:
		p.Limit = maxPageLimit
	}
	p.Offset = max(p.Offset, 0)
}

// Response devuelve los metadatos de la página ya normalizada.
func (p PageRequest) Response() PageResponse {
	return PageResponse{Limit: p.Limit, Offset: p.Offset}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP: code estable para clientes, message legible.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
