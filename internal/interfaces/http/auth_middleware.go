package http

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/stockeasy/stockeasy-api/internal/application/auth"
	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
)

// LocalPrincipal clave de c.Locals donde queda el principal resuelto.
const LocalPrincipal = "principal"

// AuthMiddleware valida el Bearer token con el resolver y deja el principal en c.Locals.
// No hay modo sin autenticación: toda ruta protegida pasa por aquí.
func AuthMiddleware(resolver auth.PrincipalResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fmt.Errorf("%w: Authorization header requerido", domain.ErrUnauthorized)
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fmt.Errorf("%w: formato: Bearer <token>", domain.ErrUnauthorized)
		}
		token := strings.TrimSpace(parts[1])
		if token == "" {
			return fmt.Errorf("%w: token vacío", domain.ErrUnauthorized)
		}
		p, err := resolver.Resolve(c.UserContext(), token)
		if err != nil {
			return err
		}
		c.Locals(LocalPrincipal, p)
		return c.Next()
	}
}

// GetPrincipal devuelve el principal del contexto (después de AuthMiddleware).
func GetPrincipal(c *fiber.Ctx) (authz.Principal, bool) {
	p, ok := c.Locals(LocalPrincipal).(authz.Principal)
	return p, ok
}

// GetRole rol del principal, "" si la petición no está autenticada.
func GetRole(c *fiber.Ctx) string {
	p, _ := GetPrincipal(c)
	return p.Role
}

// RequireRole deja pasar solo a los roles indicados. MASTER pasa siempre.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := GetPrincipal(c)
		if !ok {
			return domain.ErrUnauthorized
		}
		if p.IsMaster() || slices.Contains(roles, p.Role) {
			return c.Next()
		}
		return fmt.Errorf("%w: rol %q sin permiso para esta ruta", domain.ErrForbidden, p.Role)
	}
}

// RequireMaster restringe la ruta al operador de la plataforma.
func RequireMaster() fiber.Handler {
	return RequireRole(entity.RoleMaster)
}

// principal lo usan los handlers; AuthMiddleware garantiza que existe.
func principal(c *fiber.Ctx) (authz.Principal, error) {
	p, ok := GetPrincipal(c)
	if !ok {
		return authz.Principal{}, domain.ErrUnauthorized
	}
	return p, nil
}
