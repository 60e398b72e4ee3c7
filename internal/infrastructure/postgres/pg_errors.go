package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Códigos SQLSTATE que las tablas de este esquema pueden producir.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation detecta violaciones de constraint único: email de usuario,
// SKU/código activos, idempotency_key del ledger.
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation || strings.Contains(err.Error(), codeUniqueViolation)
}

// isForeignKeyViolation detecta referencias a ítems/ubicaciones inexistentes.
// Los casos de uso ya resuelven los maestros antes de escribir; esto solo
// atrapa carreras entre esa resolución y el insert.
func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// isCheckViolation detecta filas que violan los CHECK del ledger (signo según
// tipo, par de ubicaciones en traslados, cantidad distinta de cero).
func isCheckViolation(err error) bool {
	return pgCode(err) == codeCheckViolation
}
