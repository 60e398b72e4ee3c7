package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockerp/stockerp-api/internal/application/dto"
	"github.com/stockerp/stockerp-api/internal/application/usecase"
	"github.com/stockerp/stockerp-api/internal/domain"
	"github.com/stockerp/stockerp-api/internal/domain/entity"
	"github.com/stockerp/stockerp-api/pkg/logger"
)

// memLocationRepo fake en memoria del maestro de ubicaciones.
type memLocationRepo struct {
	byID   map[string]*entity.Location
	byCode map[string]*entity.Location
}

func newMemLocationRepo() *memLocationRepo {
	return &memLocationRepo{byID: map[string]*entity.Location{}, byCode: map[string]*entity.Location{}}
}

func (r *memLocationRepo) Create(l *entity.Location) error {
	r.byID[l.ID] = l
	r.byCode[l.Code] = l
	return nil
}

func (r *memLocationRepo) GetByID(id string) (*entity.Location, error) { return r.byID[id], nil }

func (r *memLocationRepo) GetByCode(code string) (*entity.Location, error) {
	l := r.byCode[code]
	if l != nil && l.IsDeleted {
		return nil, nil
	}
	return l, nil
}

func (r *memLocationRepo) Update(l *entity.Location) error {
	if _, ok := r.byID[l.ID]; !ok {
		return domain.ErrLocationNotFound
	}
	r.byID[l.ID] = l
	r.byCode[l.Code] = l
	return nil
}

func (r *memLocationRepo) SoftDelete(id, updatedBy string) error {
	l, ok := r.byID[id]
	if !ok {
		return domain.ErrLocationNotFound
	}
	l.IsDeleted = true
	l.UpdatedBy = updatedBy
	return nil
}

func (r *memLocationRepo) List(includeDeleted bool, limit, offset int) ([]*entity.Location, error) {
	out := []*entity.Location{}
	for _, l := range r.byID {
		if l.IsDeleted && !includeDeleted {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

var adminLoc = entity.Principal{UserID: uuid.New().String(), Email: "admin@test.local", Role: entity.RoleAdmin}

func newLocationUC() (*usecase.LocationUseCase, *memLocationRepo) {
	repo := newMemLocationRepo()
	log := logger.New(logger.Config{Env: "development", Level: "error"})
	return usecase.NewLocationUseCase(repo, nil, log), repo
}

func createLoc(t *testing.T, uc *usecase.LocationUseCase, code string, parentID *string) *dto.LocationResponse {
	t.Helper()
	out, err := uc.Create(context.Background(), adminLoc, dto.CreateLocationRequest{
		Code: code, Name: "Ubicación " + code, ParentID: parentID,
	})
	require.NoError(t, err)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────

func TestLocation_CrearConPadre(t *testing.T) {
	uc, _ := newLocationUC()

	bodega := createLoc(t, uc, "BOD-1", nil)
	zona := createLoc(t, uc, "ZONA-A", &bodega.ID)

	require.NotNil(t, zona.ParentID)
	assert.Equal(t, bodega.ID, *zona.ParentID)
	assert.Equal(t, entity.LocationTypeWarehouse, zona.Type, "tipo por defecto")
}

func TestLocation_CodigoDuplicado(t *testing.T) {
	uc, _ := newLocationUC()
	createLoc(t, uc, "BOD-1", nil)

	_, err := uc.Create(context.Background(), adminLoc, dto.CreateLocationRequest{Code: "BOD-1", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestLocation_PadreInexistente(t *testing.T) {
	uc, _ := newLocationUC()

	fantasma := uuid.New().String()
	_, err := uc.Create(context.Background(), adminLoc, dto.CreateLocationRequest{
		Code: "BOD-1", Name: "Bodega", ParentID: &fantasma,
	})
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)
}

func TestLocation_JerarquiaSinCiclos(t *testing.T) {
	uc, _ := newLocationUC()

	bodega := createLoc(t, uc, "BOD-1", nil)
	zona := createLoc(t, uc, "ZONA-A", &bodega.ID)
	bin := createLoc(t, uc, "BIN-01", &zona.ID)

	t.Run("auto-padre rechazado", func(t *testing.T) {
		_, err := uc.Update(context.Background(), adminLoc, bodega.ID, dto.UpdateLocationRequest{ParentID: &bodega.ID})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("ciclo indirecto rechazado", func(t *testing.T) {
		// bodega -> bin cerraría bodega -> zona -> bin -> bodega.
		_, err := uc.Update(context.Background(), adminLoc, bodega.ID, dto.UpdateLocationRequest{ParentID: &bin.ID})
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("reparentar sin ciclo permitido", func(t *testing.T) {
		// bin cuelga ahora directo de bodega.
		out, err := uc.Update(context.Background(), adminLoc, bin.ID, dto.UpdateLocationRequest{ParentID: &bodega.ID})
		require.NoError(t, err)
		require.NotNil(t, out.ParentID)
		assert.Equal(t, bodega.ID, *out.ParentID)
	})
}

func TestLocation_SoftDeleteConservaFila(t *testing.T) {
	uc, repo := newLocationUC()
	bodega := createLoc(t, uc, "BOD-1", nil)

	require.NoError(t, uc.SoftDelete(context.Background(), adminLoc, bodega.ID))

	got, err := uc.GetByID(bodega.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "eliminada no se expone por ID")

	raw := repo.byID[bodega.ID]
	require.NotNil(t, raw, "la fila sigue existiendo para el historial del ledger")
	assert.True(t, raw.IsDeleted)

	err = uc.SoftDelete(context.Background(), adminLoc, bodega.ID)
	assert.ErrorIs(t, err, domain.ErrLocationNotFound, "borrar dos veces no es idempotente silencioso")
}

func TestLocation_RBACEscritura(t *testing.T) {
	uc, _ := newLocationUC()
	staff := entity.Principal{UserID: uuid.New().String(), Role: entity.RoleStaff}

	_, err := uc.Create(context.Background(), staff, dto.CreateLocationRequest{Code: "BOD-1", Name: "Bodega"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
