package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appledger "github.com/stockerp/stockerp-api/internal/application/ledger"
	"github.com/stockerp/stockerp-api/internal/domain"
	"github.com/stockerp/stockerp-api/internal/domain/entity"
	domledger "github.com/stockerp/stockerp-api/internal/domain/ledger"
	"github.com/stockerp/stockerp-api/internal/domain/repository"
	"github.com/stockerp/stockerp-api/pkg/logger"
)

func qty(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. El fakeTxRunner serializa los envíos (como lo haría el
// bloqueo de fila en la base) y restaura el estado previo si el callback falla,
// emulando el Rollback.
// ──────────────────────────────────────────────────────────────────────────────

type fakeItemRepo struct {
	items map[string]*entity.Item // por SKU
}

func (r *fakeItemRepo) Create(*entity.Item) error               { return nil }
func (r *fakeItemRepo) GetByID(string) (*entity.Item, error)    { return nil, nil }
func (r *fakeItemRepo) Update(*entity.Item) error               { return nil }
func (r *fakeItemRepo) SoftDelete(id, updatedBy string) error   { return nil }
func (r *fakeItemRepo) GetBySKU(sku string) (*entity.Item, error) {
	return r.items[sku], nil
}
func (r *fakeItemRepo) List(bool, int, int) ([]*entity.Item, error) { return nil, nil }

type fakeLocationRepo struct {
	locations map[string]*entity.Location // por código
}

func (r *fakeLocationRepo) Create(*entity.Location) error             { return nil }
func (r *fakeLocationRepo) GetByID(string) (*entity.Location, error)  { return nil, nil }
func (r *fakeLocationRepo) Update(*entity.Location) error             { return nil }
func (r *fakeLocationRepo) SoftDelete(id, updatedBy string) error     { return nil }
func (r *fakeLocationRepo) GetByCode(code string) (*entity.Location, error) {
	return r.locations[code], nil
}
func (r *fakeLocationRepo) List(bool, int, int) ([]*entity.Location, error) { return nil, nil }

type fakeLedgerRepo struct {
	entries []*entity.StockLedgerEntry
	idemKey map[string]bool // clave+tipo ya usados (emula el índice único parcial)
	// failOnType fuerza un error al insertar ese tipo, para probar atomicidad.
	failOnType string
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{idemKey: map[string]bool{}}
}

func (r *fakeLedgerRepo) Append(e *entity.StockLedgerEntry) error {
	if r.failOnType != "" && e.Type == r.failOnType {
		return errors.New("insert fallido")
	}
	if e.IdempotencyKey != nil {
		k := *e.IdempotencyKey + "|" + e.Type
		if r.idemKey[k] {
			return domain.ErrDuplicate
		}
		r.idemKey[k] = true
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *fakeLedgerRepo) GetByTransactionID(id string) (*entity.StockLedgerEntry, error) {
	for _, e := range r.entries {
		if e.TransactionID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (r *fakeLedgerRepo) List(repository.LedgerFilter) ([]*entity.StockLedgerEntry, error) {
	return r.entries, nil
}

type fakeBalanceRepo struct {
	balances map[string]decimal.Decimal // "item|loc" -> qty
}

func newFakeBalanceRepo() *fakeBalanceRepo {
	return &fakeBalanceRepo{balances: map[string]decimal.Decimal{}}
}

func balKey(itemID, locationID string) string { return itemID + "|" + locationID }

func (r *fakeBalanceRepo) Get(itemID, locationID string) (*entity.StockBalance, error) {
	return &entity.StockBalance{ItemID: itemID, LocationID: locationID, Quantity: r.balances[balKey(itemID, locationID)]}, nil
}

func (r *fakeBalanceRepo) GetForUpdate(itemID, locationID string) (*entity.StockBalance, error) {
	return r.Get(itemID, locationID)
}

func (r *fakeBalanceRepo) ApplyDelta(itemID, locationID string, delta decimal.Decimal, at time.Time) (decimal.Decimal, error) {
	k := balKey(itemID, locationID)
	r.balances[k] = r.balances[k].Add(delta)
	return r.balances[k], nil
}

func (r *fakeBalanceRepo) List(repository.BalanceFilter) ([]*repository.StockRow, error) {
	return nil, nil
}
func (r *fakeBalanceRepo) Verify() ([]repository.Discrepancy, error) { return nil, nil }
func (r *fakeBalanceRepo) Rebuild() error                            { return nil }

type fakeTxRunner struct {
	mu      sync.Mutex
	ledger  *fakeLedgerRepo
	balance *fakeBalanceRepo
}

func (tr *fakeTxRunner) Run(ctx context.Context, fn func(
	ledgerRepo repository.StockLedgerRepository,
	balanceRepo repository.StockBalanceRepository,
) error) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	// Snapshot para emular Rollback si fn falla.
	prevEntries := make([]*entity.StockLedgerEntry, len(tr.ledger.entries))
	copy(prevEntries, tr.ledger.entries)
	prevBalances := make(map[string]decimal.Decimal, len(tr.balance.balances))
	for k, v := range tr.balance.balances {
		prevBalances[k] = v
	}

	if err := fn(tr.ledger, tr.balance); err != nil {
		tr.ledger.entries = prevEntries
		tr.balance.balances = prevBalances
		return err
	}
	return nil
}

type fakeAudit struct {
	mu   sync.Mutex
	logs []*entity.AuditLog
}

func (a *fakeAudit) Record(ctx context.Context, log *entity.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Armado del escenario
// ──────────────────────────────────────────────────────────────────────────────

type harness struct {
	uc      *appledger.SubmitMovementUseCase
	ledger  *fakeLedgerRepo
	balance *fakeBalanceRepo
	audit   *fakeAudit
	item    *entity.Item
	bodega  *entity.Location
	anexo   *entity.Location
}

func newHarness(t *testing.T, allowNegative bool) *harness {
	t.Helper()
	item := &entity.Item{ID: uuid.New().String(), SKU: "SKU-1", Name: "Tornillo", Unit: "PCS", Status: entity.ItemStatusActive}
	bodega := &entity.Location{ID: uuid.New().String(), Code: "BOD-1", Name: "Bodega central", Type: entity.LocationTypeWarehouse}
	anexo := &entity.Location{ID: uuid.New().String(), Code: "BOD-2", Name: "Bodega anexa", Type: entity.LocationTypeWarehouse}

	ledgerRepo := newFakeLedgerRepo()
	balanceRepo := newFakeBalanceRepo()
	audit := &fakeAudit{}
	tx := &fakeTxRunner{ledger: ledgerRepo, balance: balanceRepo}
	log := logger.New(logger.Config{Env: "development", Level: "error"})

	uc := appledger.NewSubmitMovementUseCase(
		tx,
		&fakeItemRepo{items: map[string]*entity.Item{item.SKU: item}},
		&fakeLocationRepo{locations: map[string]*entity.Location{bodega.Code: bodega, anexo.Code: anexo}},
		audit, log, allowNegative,
	)
	return &harness{uc: uc, ledger: ledgerRepo, balance: balanceRepo, audit: audit, item: item, bodega: bodega, anexo: anexo}
}

var (
	staff = entity.Principal{UserID: uuid.New().String(), Email: "staff@test.local", Role: entity.RoleStaff}
	admin = entity.Principal{UserID: uuid.New().String(), Email: "admin@test.local", Role: entity.RoleAdmin}
	viewer = entity.Principal{UserID: uuid.New().String(), Email: "viewer@test.local", Role: entity.RoleViewer}
)

func (h *harness) submit(t *testing.T, p entity.Principal, in domledger.MovementInput) (*appledger.MovementResult, error) {
	t.Helper()
	return h.uc.Submit(context.Background(), p, in)
}

func inOf(sku, code, q string) domledger.MovementInput {
	return domledger.MovementInput{Type: domledger.SubmitIN, ItemSKU: sku, LocationCode: code, Quantity: qty(q)}
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestSubmit_IN_CreaFilaYActualizaBalance(t *testing.T) {
	h := newHarness(t, false)

	result, err := h.submit(t, staff, inOf("SKU-1", "BOD-1", "10"))
	require.NoError(t, err)
	require.Len(t, result.Entries, 1)
	require.Len(t, result.Balances, 1)

	e := result.Entries[0]
	assert.Equal(t, entity.TxTypeIN, e.Type)
	assert.True(t, e.Quantity.Equal(qty("10")), "IN guarda cantidad positiva")
	assert.NotEmpty(t, e.TransactionID)
	assert.Equal(t, staff.UserID, e.CreatedBy)
	assert.True(t, result.Balances[0].Quantity.Equal(qty("10")))
}

func TestSubmit_OUT_PoliticaEstricta(t *testing.T) {
	h := newHarness(t, false)
	_, err := h.submit(t, staff, inOf("SKU-1", "BOD-1", "5"))
	require.NoError(t, err)

	t.Run("salida dentro del stock disponible", func(t *testing.T) {
		result, err := h.submit(t, staff, domledger.MovementInput{
			Type: domledger.SubmitOUT, ItemSKU: "SKU-1", LocationCode: "BOD-1", Quantity: qty("3"),
		})
		require.NoError(t, err)
		assert.True(t, result.Entries[0].Quantity.Equal(qty("-3")), "OUT guarda cantidad negativa")
		assert.True(t, result.Balances[0].Quantity.Equal(qty("2")))
	})

	t.Run("sobregiro rechazado sin tocar ledger ni balance", func(t *testing.T) {
		before := len(h.ledger.entries)
		_, err := h.submit(t, staff, domledger.MovementInput{
			Type: domledger.SubmitOUT, ItemSKU: "SKU-1", LocationCode: "BOD-1", Quantity: qty("99"),
		})
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		assert.Len(t, h.ledger.entries, before, "el rechazo no deja filas en el ledger")
		bal, _ := h.balance.Get(h.item.ID, h.bodega.ID)
		assert.True(t, bal.Quantity.Equal(qty("2")), "el balance no cambia")
	})
}

func TestSubmit_OUT_PoliticaRelajadaPermiteNegativo(t *testing.T) {
	h := newHarness(t, true)

	result, err := h.submit(t, staff, domledger.MovementInput{
		Type: domledger.SubmitOUT, ItemSKU: "SKU-1", LocationCode: "BOD-1", Quantity: qty("4"),
	})
	require.NoError(t, err)
	assert.True(t, result.Balances[0].Quantity.Equal(qty("-4")))
}

func TestSubmit_RBAC(t *testing.T) {
	h := newHarness(t, false)

	t.Run("viewer no puede mover stock", func(t *testing.T) {
		_, err := h.submit(t, viewer, inOf("SKU-1", "BOD-1", "1"))
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("staff no puede ajustar", func(t *testing.T) {
		_, err := h.submit(t, staff, domledger.MovementInput{
			Type: domledger.SubmitAdjustment, ItemSKU: "SKU-1", LocationCode: "BOD-1", Quantity: qty("-1"),
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("admin ajusta y queda en auditoría", func(t *testing.T) {
		result, err := h.submit(t, admin, domledger.MovementInput{
			Type: domledger.SubmitAdjustment, ItemSKU: "SKU-1", LocationCode: "BOD-1", Quantity: qty("-2"),
		})
		require.NoError(t, err)
		assert.True(t, result.Balances[0].Quantity.Equal(qty("-2")), "el ajuste puede dejar balance negativo")
		require.Len(t, h.audit.logs, 1)
		assert.Equal(t, entity.AuditActionAdjustment, h.audit.logs[0].Action)
		assert.Equal(t, admin.UserID, h.audit.logs[0].UserID)
	})
}

func TestSubmit_ItemYUbicacionInexistentes(t *testing.T) {
	h := newHarness(t, false)

	_, err := h.submit(t, staff, inOf("NO-EXISTE", "BOD-1", "1"))
	assert.ErrorIs(t, err, domain.ErrItemNotFound)

	_, err = h.submit(t, staff, inOf("SKU-1", "NO-EXISTE", "1"))
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
}

func TestSubmit_Transfer_DosPiernasAtomicas(t *testing.T) {
	h := newHarness(t, false)
	_, err := h.submit(t, staff, inOf("SKU-1", "BOD-1", "8"))
	require.NoError(t, err)

	result, err := h.submit(t, staff, domledger.MovementInput{
		Type: domledger.SubmitTransfer, ItemSKU: "SKU-1",
		FromCode: "BOD-1", ToCode: "BOD-2", Quantity: qty("3"),
		ReferenceNo: "TRF-001",
	})
	require.NoError(t, err)
	require.Len(t, result.Entries, 2)

	out, in := result.Entries[0], result.Entries[1]
	assert.Equal(t, entity.TxTypeTransferOut, out.Type)
	assert.Equal(t, entity.TxTypeTransferIn, in.Type)
	assert.True(t, out.Quantity.Equal(qty("-3")))
	assert.True(t, in.Quantity.Equal(qty("3")))
	assert.NotEqual(t, out.TransactionID, in.TransactionID, "cada pierna tiene su transaction_id")
	assert.Equal(t, out.ReferenceNo, in.ReferenceNo, "ambas piernas comparten la referencia")
	require.NotNil(t, out.FromLocationID)
	require.NotNil(t, in.ToLocationID)
	assert.Equal(t, h.bodega.ID, *out.FromLocationID)
	assert.Equal(t, h.anexo.ID, *in.ToLocationID)

	// La suma total del ítem se conserva: 8 = 5 + 3.
	origen, _ := h.balance.Get(h.item.ID, h.bodega.ID)
	destino, _ := h.balance.Get(h.item.ID, h.anexo.ID)
	assert.True(t, origen.Quantity.Equal(qty("5")))
	assert.True(t, destino.Quantity.Equal(qty("3")))
}

func TestSubmit_Transfer_FalloEnSegundaPiernaRevierteTodo(t *testing.T) {
	h := newHarness(t, false)
	_, err := h.submit(t, staff, inOf("SKU-1", "BOD-1", "8"))
	require.NoError(t, err)

	// La pierna TRANSFER_IN falla: nada del traslado debe quedar confirmado.
	h.ledger.failOnType = entity.TxTypeTransferIn
	before := len(h.ledger.entries)

	_, err = h.submit(t, staff, domledger.MovementInput{
		Type: domledger.SubmitTransfer, ItemSKU: "SKU-1",
		FromCode: "BOD-1", ToCode: "BOD-2", Quantity: qty("3"),
	})
	require.Error(t, err)

	assert.Len(t, h.ledger.entries, before, "ninguna pierna queda en el ledger")
	origen, _ := h.balance.Get(h.item.ID, h.bodega.ID)
	destino, _ := h.balance.Get(h.item.ID, h.anexo.ID)
	assert.True(t, origen.Quantity.Equal(qty("8")), "el origen no cambia")
	assert.True(t, destino.Quantity.IsZero(), "el destino no cambia")
}

func TestSubmit_Transfer_SinStockEnOrigen(t *testing.T) {
	h := newHarness(t, false)

	_, err := h.submit(t, staff, domledger.MovementInput{
		Type: domledger.SubmitTransfer, ItemSKU: "SKU-1",
		FromCode: "BOD-1", ToCode: "BOD-2", Quantity: qty("1"),
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestSubmit_IdempotencyKey_RechazaReenvio(t *testing.T) {
	h := newHarness(t, false)

	in := inOf("SKU-1", "BOD-1", "10")
	in.IdempotencyKey = "req-123"
	_, err := h.submit(t, staff, in)
	require.NoError(t, err)

	_, err = h.submit(t, staff, in)
	assert.ErrorIs(t, err, domain.ErrDuplicate, "misma clave, mismo tipo: rechazado")

	bal, _ := h.balance.Get(h.item.ID, h.bodega.ID)
	assert.True(t, bal.Quantity.Equal(qty("10")), "el reenvío no duplica stock")
}

// El ledger nunca admite una cantidad cero, por ningún camino.
func TestSubmit_CantidadCero(t *testing.T) {
	h := newHarness(t, false)
	for _, typ := range []string{domledger.SubmitIN, domledger.SubmitOUT, domledger.SubmitAdjustment} {
		_, err := h.submit(t, admin, domledger.MovementInput{
			Type: typ, ItemSKU: "SKU-1", LocationCode: "BOD-1", Quantity: decimal.Zero,
		})
		assert.ErrorIs(t, err, domain.ErrZeroQuantity, typ)
	}
}

// Con N salidas concurrentes de 1 unidad sobre un stock de 5, exactamente 5
// deben confirmarse y el resto rechazarse; el balance nunca queda negativo.
func TestSubmit_OUT_ConcurrenciaNoSobregira(t *testing.T) {
	h := newHarness(t, false)
	_, err := h.submit(t, staff, inOf("SKU-1", "BOD-1", "5"))
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	okCount, rejected := 0, 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.submit(t, staff, domledger.MovementInput{
				Type: domledger.SubmitOUT, ItemSKU: "SKU-1", LocationCode: "BOD-1", Quantity: qty("1"),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				okCount++
			case errors.Is(err, domain.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, okCount, "solo caben 5 salidas de 1 unidad")
	assert.Equal(t, workers-5, rejected)
	bal, _ := h.balance.Get(h.item.ID, h.bodega.ID)
	assert.True(t, bal.Quantity.IsZero(), "el balance termina exacto en cero")
}
