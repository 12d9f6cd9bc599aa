package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Código SQLSTATE de unique_violation. En esta base lo dispara el índice
// único sobre users.email.
const codeUniqueViolation = "23505"

// isUniqueViolation detecta si un error proviene de un constraint único.
// Si el error no es un *pgconn.PgError (por ejemplo llegó envuelto por un
// driver intermedio), se busca el código en el texto como último recurso.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}
