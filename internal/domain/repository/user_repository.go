package repository

import "github.com/jhoicas/identity-api/internal/domain/entity"

// UserRepository define el puerto de persistencia para User (DIP).
// Las búsquedas devuelven (nil, nil) cuando el registro no existe.
type UserRepository interface {
	Create(user *entity.User) error
	FindByID(id string) (*entity.User, error)
	FindByEmail(email string) (*entity.User, error)
	FindByUsername(name string) (*entity.User, error)
	Update(user *entity.User) error
	List(limit, offset int) ([]*entity.User, error)
	Delete(id string) error
}
