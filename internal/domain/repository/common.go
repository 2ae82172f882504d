package repository

// Page paginación aplicada por los repositorios.
type Page struct {
	Limit  int
	Offset int
}

// Límites de paginación.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Normalize aplica límites por defecto y máximos.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
