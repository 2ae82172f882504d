package http_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	apphttp "github.com/stockeasy/stockeasy-api/internal/interfaces/http"
	"github.com/stockeasy/stockeasy-api/pkg/logger"
)

func loggedApp(buf *bytes.Buffer) *fiber.App {
	log := logger.FromWriter(buf)
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler(log)})
	app.Use(requestid.New())
	app.Use(apphttp.RequestLogger(log))
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/missing", func(c *fiber.Ctx) error {
		return fmt.Errorf("%w: producto", domain.ErrNotFound)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("pq: password authentication failed for user stockeasy")
	})
	return app
}

// logLines decodifica una línea JSON por evento.
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	sc := bufio.NewScanner(buf)
	for sc.Scan() {
		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
		out = append(out, line)
	}
	return out
}

func TestRequestLogger_RegistraEstadoYRequestID(t *testing.T) {
	var buf bytes.Buffer
	app := loggedApp(&buf)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "/ok", lines[0]["path"])
	assert.EqualValues(t, 200, lines[0]["status"])
	assert.Equal(t, resp.Header.Get(fiber.HeaderXRequestID), lines[0]["request_id"])
}

func TestRequestLogger_ErrorDeDominioEsWarn(t *testing.T) {
	var buf bytes.Buffer
	app := loggedApp(&buf)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.EqualValues(t, 404, lines[0]["status"])
}

// Un error inesperado se registra completo pero nunca llega al cliente.
func TestErrorHandler_ErrorInternoNoSeFiltra(t *testing.T) {
	var buf bytes.Buffer
	app := loggedApp(&buf)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INTERNAL")
	assert.NotContains(t, string(body), "password")
	assert.Contains(t, buf.String(), "password authentication failed")
}
