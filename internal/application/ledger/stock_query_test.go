package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockerp/stockerp-api/internal/application/dto"
	appledger "github.com/stockerp/stockerp-api/internal/application/ledger"
	"github.com/stockerp/stockerp-api/internal/domain"
	"github.com/stockerp/stockerp-api/internal/domain/entity"
	domledger "github.com/stockerp/stockerp-api/internal/domain/ledger"
)

// El borrado lógico de un ítem o ubicación jamás oculta su historial: las
// filas del ledger que los referencian siguen siendo visibles.
func TestListLedger_HistorialSobreviveBorradoLogico(t *testing.T) {
	h := newHarness(t, false)
	_, err := h.submit(t, staff, inOf("SKU-1", "BOD-1", "10"))
	require.NoError(t, err)
	_, err = h.submit(t, staff, domledger.MovementInput{
		Type: domledger.SubmitTransfer, ItemSKU: "SKU-1",
		FromCode: "BOD-1", ToCode: "BOD-2", Quantity: qty("4"),
	})
	require.NoError(t, err)

	// El ítem y la bodega origen se eliminan lógicamente: las búsquedas activas
	// (GetBySKU/GetByCode) ya no los resuelven, pero el ledger queda intacto.
	deletedItems := &fakeItemRepo{items: map[string]*entity.Item{}}
	deletedLocs := &fakeLocationRepo{locations: map[string]*entity.Location{h.anexo.Code: h.anexo}}
	query := appledger.NewStockQueryUseCase(h.balance, h.ledger, deletedItems, deletedLocs)

	out, err := query.ListLedger(viewer, dto.LedgerQuery{})
	require.NoError(t, err)
	require.Len(t, out.Items, 3, "IN + dos piernas del traslado")
	for _, e := range out.Items {
		assert.Equal(t, h.item.ID, e.ItemID, "las filas siguen referenciando el ítem eliminado")
	}

	// Filtrar por el SKU eliminado sí falla: los filtros resuelven maestros activos.
	_, err = query.ListLedger(viewer, dto.LedgerQuery{ItemSKU: "SKU-1"})
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestListLedger_RequiereLectura(t *testing.T) {
	h := newHarness(t, false)
	query := appledger.NewStockQueryUseCase(h.balance, h.ledger,
		&fakeItemRepo{items: map[string]*entity.Item{}},
		&fakeLocationRepo{locations: map[string]*entity.Location{}})

	sinRol := entity.Principal{UserID: "anon"}
	_, err := query.ListLedger(sinRol, dto.LedgerQuery{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
