package http

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockerp/stockerp-api/internal/domain"
)

func responseFor(t *testing.T, err error) (int, string) {
	t.Helper()
	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error { return writeError(c, err) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	resp, reqErr := app.Test(req, -1)
	require.NoError(t, reqErr)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

// Un error de infraestructura no mapeado responde 500 con mensaje genérico:
// el detalle (SQL, hosts, connection strings) nunca viaja al cliente.
func TestWriteError_InternoNoFiltraDetalle(t *testing.T) {
	inner := fmt.Errorf("get balance: %w",
		fmt.Errorf("dial tcp 10.0.0.5:5432: connection refused"))

	status, body := responseFor(t, inner)

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, body, "INTERNAL")
	assert.Contains(t, body, "error interno del servidor")
	assert.NotContains(t, body, "dial tcp", "el detalle de red no debe llegar al cliente")
	assert.NotContains(t, body, "5432", "el detalle de conexión no debe llegar al cliente")
	assert.NotContains(t, body, "get balance", "el contexto interno no debe llegar al cliente")
}

// Los sentinelas de dominio siguen mapeando a su status y código estables.
func TestWriteError_SentinelasMapean(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInsufficientStock, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{domain.ErrItemNotFound, http.StatusNotFound, "ITEM_NOT_FOUND"},
		{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{fmt.Errorf("submit: %w", domain.ErrDuplicate), http.StatusConflict, "DUPLICATE"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			status, body := responseFor(t, tc.err)
			assert.Equal(t, tc.status, status)
			assert.Contains(t, body, tc.code)
		})
	}
}
