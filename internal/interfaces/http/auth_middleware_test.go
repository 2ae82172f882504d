package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockeasy/stockeasy-api/internal/application/apptest"
	"github.com/stockeasy/stockeasy-api/internal/application/auth"
	"github.com/stockeasy/stockeasy-api/internal/application/auth/authtest"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	apphttp "github.com/stockeasy/stockeasy-api/internal/interfaces/http"
	"github.com/stockeasy/stockeasy-api/pkg/logger"
	pkgjwt "github.com/stockeasy/stockeasy-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testIssuer    = "stockeasy-test"
	testExpMin    = 60
	testCompanyID = "00000000-0000-0000-0000-000000000002"
)

// buildTestApp construye una aplicación Fiber mínima con:
//   - AuthMiddleware para resolver el principal
//   - RequireRole para autorizar el acceso
//   - Un handler dummy que devuelve 200 si pasa los middlewares
func buildTestApp(resolver auth.PrincipalResolver, allowedRoles ...string) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop())})
	app.Get("/protected",
		apphttp.AuthMiddleware(resolver),
		apphttp.RequireRole(allowedRoles...),
		func(c *fiber.Ctx) error {
			p, _ := apphttp.GetPrincipal(c)
			return c.Status(fiber.StatusOK).JSON(fiber.Map{
				"ok":         true,
				"role":       apphttp.GetRole(c),
				"company_id": p.CompanyID,
			})
		},
	)
	return app
}

// staticResolver tokens fijos por rol.
func staticResolver() *authtest.StaticResolver {
	r := authtest.NewStaticResolver()
	r.Add("tok-admin", authz.Principal{UserID: "u1", Role: entity.RoleAdmin, CompanyID: testCompanyID})
	r.Add("tok-gerente", authz.Principal{UserID: "u2", Role: entity.RoleGerente, CompanyID: testCompanyID})
	r.Add("tok-operador", authz.Principal{UserID: "u3", Role: entity.RoleOperador, CompanyID: testCompanyID})
	r.Add("tok-master", authz.Principal{UserID: "u4", Role: entity.RoleMaster})
	// MASTER con empresa: dato corrupto, nunca se acepta.
	r.Add("tok-corrupto", authz.Principal{UserID: "u5", Role: entity.RoleMaster, CompanyID: testCompanyID})
	return r
}

// doRequest lanza una petición GET /protected y devuelve la respuesta.
func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RequireRole
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: El usuario tiene el rol requerido → debe pasar (HTTP 200).
func TestRequireRole_AdminAccedeRutaAdmin(t *testing.T) {
	app := buildTestApp(staticResolver(), entity.RoleAdmin)
	resp := doRequest(t, app, "Bearer tok-admin")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode,
		"admin debe poder acceder a ruta restringida a admin")

	body := decode(t, resp)
	assert.Equal(t, true, body["ok"], "la respuesta debe incluir ok:true")
	assert.Equal(t, "admin", body["role"], "el role debe ser admin")
	assert.Equal(t, testCompanyID, body["company_id"])
}

// Caso 1b: El usuario tiene uno de los roles permitidos (multi-rol) → HTTP 200.
func TestRequireRole_GerenteAccedeRutaAdminOGerente(t *testing.T) {
	app := buildTestApp(staticResolver(), entity.RoleAdmin, entity.RoleGerente)
	resp := doRequest(t, app, "Bearer tok-gerente")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// Caso 2: El usuario tiene un rol diferente al requerido → HTTP 403 Forbidden.
func TestRequireRole_OperadorBloqueadoEnRutaAdmin(t *testing.T) {
	app := buildTestApp(staticResolver(), entity.RoleAdmin)
	resp := doRequest(t, app, "Bearer tok-operador")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode,
		"operador no debe poder acceder a ruta restringida a admin")

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "FORBIDDEN",
		"la respuesta de error debe incluir el código FORBIDDEN")
}

// Caso 2b: MASTER pasa cualquier puerta de rol.
func TestRequireRole_MasterPasaSiempre(t *testing.T) {
	app := buildTestApp(staticResolver(), entity.RoleOperador)
	resp := doRequest(t, app, "Bearer tok-master")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "MASTER", decode(t, resp)["role"])
}

// Caso 2c: RequireMaster bloquea a un admin.
func TestRequireMaster_AdminBloqueado(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(logger.Nop())})
	app.Get("/protected", apphttp.AuthMiddleware(staticResolver()), apphttp.RequireMaster(),
		func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp := doRequest(t, app, "Bearer tok-admin")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, app, "Bearer tok-master")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests AuthMiddleware
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_SinAuthHeader_Retorna401(t *testing.T) {
	app := buildTestApp(staticResolver())
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decode(t, resp)["code"])
}

func TestAuthMiddleware_FormatoInvalido_Retorna401(t *testing.T) {
	app := buildTestApp(staticResolver())
	for _, h := range []string{"tok-admin", "Basic tok-admin", "Bearer ", "Bearer"} {
		resp := doRequest(t, app, h)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "header %q", h)
		resp.Body.Close()
	}
}

func TestAuthMiddleware_TokenDesconocido_Retorna401(t *testing.T) {
	app := buildTestApp(staticResolver())
	resp := doRequest(t, app, "Bearer no-existe")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Un MASTER con empresa viola el invariante rol/empresa: se trata como no autenticado.
func TestAuthMiddleware_MasterConEmpresa_Retorna401(t *testing.T) {
	app := buildTestApp(staticResolver())
	resp := doRequest(t, app, "Bearer tok-corrupto")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Resolver de producción: JWT propio + perfil en users
// ──────────────────────────────────────────────────────────────────────────────

func TestAuthMiddleware_JWTResuelvePerfil(t *testing.T) {
	store := apptest.NewStore()
	company := store.SeedCompany("Pizzaria Bella")
	p := store.SeedUser(entity.RoleGerente, company.ID, "auth-gerente")

	resolver := auth.NewTokenResolver(auth.NewJWTVerifier(testJWTSecret), store.Users(), store.Companies())
	app := buildTestApp(resolver)

	tok, err := pkgjwt.Generate(testJWTSecret, "auth-gerente", p.Email, testIssuer, testExpMin)
	require.NoError(t, err)

	resp := doRequest(t, app, "Bearer "+tok)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, "gerente", body["role"])
	assert.Equal(t, company.ID, body["company_id"], "la empresa sale del perfil, no del token")
}

func TestAuthMiddleware_JWTSecretIncorrecto_Retorna401(t *testing.T) {
	store := apptest.NewStore()
	resolver := auth.NewTokenResolver(auth.NewJWTVerifier(testJWTSecret), store.Users(), store.Companies())
	app := buildTestApp(resolver)

	tok, err := pkgjwt.Generate("otro-secreto", "auth-x", "x@stockeasy.test", testIssuer, testExpMin)
	require.NoError(t, err)

	resp := doRequest(t, app, "Bearer "+tok)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthMiddleware_EmpresaInactiva_Retorna401(t *testing.T) {
	store := apptest.NewStore()
	company := store.SeedCompany("Pizzaria Fechada")
	p := store.SeedUser(entity.RoleAdmin, company.ID, "auth-admin")
	_, err := store.Companies().SetActive(t.Context(), company.ID, false)
	require.NoError(t, err)

	resolver := auth.NewTokenResolver(auth.NewJWTVerifier(testJWTSecret), store.Users(), store.Companies())
	app := buildTestApp(resolver)
	tok, err := pkgjwt.Generate(testJWTSecret, "auth-admin", p.Email, testIssuer, testExpMin)
	require.NoError(t, err)

	resp := doRequest(t, app, "Bearer "+tok)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
