package entity

import "time"

// Roles conocidos del sistema. RoleID nil = usuario sin rol elevado.
const (
	RoleAdmin  = 1
	RoleEditor = 2
	RoleViewer = 3
)

// User representa una identidad del sistema.
// PasswordHash siempre es salida del hasher vigente (o uno legacy compatible);
// el texto plano nunca se persiste ni se loguea.
type User struct {
	ID           string
	Name         string
	Email        string // único a nivel de storage
	PasswordHash string
	Address      *string
	Phone        *string
	Gender       *string
	Avatar       *string
	RoleID       *int // nil = sin rol elevado
	IsEnabled    bool // bloquea login si es false
	IsVerified   bool // gatea acceso a features, no el login
	CreatedBy    *string
	UpdatedBy    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole indica si el usuario tiene alguno de los roles indicados.
func (u *User) HasRole(roleIDs ...int) bool {
	if u.RoleID == nil {
		return false
	}
	for _, id := range roleIDs {
		if *u.RoleID == id {
			return true
		}
	}
	return false
}
