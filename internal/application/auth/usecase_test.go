package auth_test

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockerp/stockerp-api/internal/application/auth"
	"github.com/stockerp/stockerp-api/internal/application/dto"
	"github.com/stockerp/stockerp-api/internal/domain"
	"github.com/stockerp/stockerp-api/internal/domain/entity"
	pkgjwt "github.com/stockerp/stockerp-api/pkg/jwt"
)

// memUserRepo fake en memoria del maestro de usuarios.
type memUserRepo struct {
	byID    map[string]*entity.User
	byEmail map[string]*entity.User
	// lookupErr fuerza un fallo en GetByEmail, emulando una base caída.
	lookupErr error
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]*entity.User{}, byEmail: map[string]*entity.User{}}
}

func (r *memUserRepo) Create(u *entity.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return domain.ErrEmailAlreadyExists
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u
	return nil
}

func (r *memUserRepo) GetByID(id string) (*entity.User, error)       { return r.byID[id], nil }
func (r *memUserRepo) GetByEmail(email string) (*entity.User, error) {
	if r.lookupErr != nil {
		return nil, r.lookupErr
	}
	return r.byEmail[email], nil
}

func (r *memUserRepo) Update(u *entity.User) error {
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u
	return nil
}

func (r *memUserRepo) List(limit, offset int) ([]*entity.User, error) {
	out := []*entity.User{}
	for _, u := range r.byID {
		out = append(out, u)
	}
	return out, nil
}

const authTestSecret = "auth-test-secret"

var (
	adminP = entity.Principal{UserID: uuid.New().String(), Email: "admin@test.local", Role: entity.RoleAdmin}
	staffP = entity.Principal{UserID: uuid.New().String(), Email: "staff@test.local", Role: entity.RoleStaff}
)

func newAuthUC() (*auth.AuthUseCase, *memUserRepo) {
	repo := newMemUserRepo()
	return auth.NewAuthUseCase(repo, auth.JWTConfig{Secret: authTestSecret, ExpMinutes: 60, Issuer: "stockerp-test"}), repo
}

// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterUser_HasheaYPersiste(t *testing.T) {
	uc, repo := newAuthUC()

	out, err := uc.RegisterUser(adminP, dto.RegisterRequest{
		Email: "nuevo@test.local", Password: "secreto123", Name: "Nuevo", Role: entity.RoleStaff,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleStaff, out.Role)
	assert.Equal(t, entity.UserStatusActive, out.Status)

	stored := repo.byEmail["nuevo@test.local"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "secreto123", stored.PasswordHash, "la contraseña nunca se guarda en claro")
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestRegisterUser_RolPorDefectoEsViewer(t *testing.T) {
	uc, _ := newAuthUC()

	out, err := uc.RegisterUser(adminP, dto.RegisterRequest{Email: "v@test.local", Password: "secreto123"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleViewer, out.Role)
}

func TestRegisterUser_Restricciones(t *testing.T) {
	uc, _ := newAuthUC()

	t.Run("staff no puede registrar", func(t *testing.T) {
		_, err := uc.RegisterUser(staffP, dto.RegisterRequest{Email: "x@test.local", Password: "secreto123"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("admin no escala por encima de su rol", func(t *testing.T) {
		_, err := uc.RegisterUser(adminP, dto.RegisterRequest{
			Email: "sa@test.local", Password: "secreto123", Role: entity.RoleSuperAdmin,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("rol desconocido rechazado", func(t *testing.T) {
		_, err := uc.RegisterUser(adminP, dto.RegisterRequest{
			Email: "y@test.local", Password: "secreto123", Role: "contratista",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("fallo de la base se propaga, no se confunde con duplicado", func(t *testing.T) {
		brokenUC, repo := newAuthUC()
		repo.lookupErr = errors.New("conexión perdida")
		_, err := brokenUC.RegisterUser(adminP, dto.RegisterRequest{Email: "z@test.local", Password: "secreto123"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrEmailAlreadyExists)
		assert.Empty(t, repo.byID, "nada se persiste si la verificación de email falló")
	})

	t.Run("email duplicado rechazado", func(t *testing.T) {
		_, err := uc.RegisterUser(adminP, dto.RegisterRequest{Email: "dup@test.local", Password: "secreto123"})
		require.NoError(t, err)
		_, err = uc.RegisterUser(adminP, dto.RegisterRequest{Email: "dup@test.local", Password: "otra456789"})
		assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
	})
}

func TestLogin_Flujo(t *testing.T) {
	uc, repo := newAuthUC()
	_, err := uc.RegisterUser(adminP, dto.RegisterRequest{
		Email: "login@test.local", Password: "secreto123", Role: entity.RoleStaff,
	})
	require.NoError(t, err)

	t.Run("credenciales válidas devuelven token con claims", func(t *testing.T) {
		out, err := uc.Login(dto.LoginRequest{Email: "login@test.local", Password: "secreto123"})
		require.NoError(t, err)
		require.NotEmpty(t, out.Token)
		assert.Equal(t, "login@test.local", out.User.Email)

		userID, email, role, err := pkgjwt.Parse(authTestSecret, out.Token)
		require.NoError(t, err)
		assert.Equal(t, out.User.ID, userID)
		assert.Equal(t, "login@test.local", email)
		assert.Equal(t, entity.RoleStaff, role)
	})

	t.Run("contraseña incorrecta", func(t *testing.T) {
		_, err := uc.Login(dto.LoginRequest{Email: "login@test.local", Password: "equivocada"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("usuario inexistente", func(t *testing.T) {
		_, err := uc.Login(dto.LoginRequest{Email: "nadie@test.local", Password: "secreto123"})
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("usuario inactivo no entra", func(t *testing.T) {
		repo.byEmail["login@test.local"].Status = entity.UserStatusInactive
		_, err := uc.Login(dto.LoginRequest{Email: "login@test.local", Password: "secreto123"})
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}
