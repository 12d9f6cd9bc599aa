package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/identity-api/internal/domain"
	"github.com/jhoicas/identity-api/internal/domain/entity"
	"github.com/jhoicas/identity-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// querier abstrae *pgxpool.Pool y pgx.Tx para que el mismo repo funcione
// dentro y fuera de una transacción.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	db querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{db: pool}
}

// newUserRepositoryTx ata el repo a una transacción (ver TxRunner).
func newUserRepositoryTx(tx pgx.Tx) *UserRepo {
	return &UserRepo{db: tx}
}

const userColumns = `id, name, email, password_hash, address, phone, gender, avatar,
	role_id, is_enabled, is_verified, created_by, updated_by, created_at, updated_at`

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(user *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.db.Exec(context.Background(), query,
		user.ID, user.Name, user.Email, user.PasswordHash,
		user.Address, user.Phone, user.Gender, user.Avatar,
		user.RoleID, user.IsEnabled, user.IsVerified,
		user.CreatedBy, user.UpdatedBy, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// FindByID busca un usuario por ID. Devuelve (nil, nil) si no existe.
func (r *UserRepo) FindByID(id string) (*entity.User, error) {
	return r.findOne(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// FindByEmail busca un usuario por email. Devuelve (nil, nil) si no existe.
func (r *UserRepo) FindByEmail(email string) (*entity.User, error) {
	return r.findOne(`SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email)
}

// FindByUsername busca un usuario por nombre. Devuelve (nil, nil) si no existe.
func (r *UserRepo) FindByUsername(name string) (*entity.User, error) {
	return r.findOne(`SELECT `+userColumns+` FROM users WHERE name = $1 LIMIT 1`, name)
}

func (r *UserRepo) findOne(query string, arg any) (*entity.User, error) {
	var u entity.User
	err := r.db.QueryRow(context.Background(), query, arg).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Address, &u.Phone, &u.Gender, &u.Avatar,
		&u.RoleID, &u.IsEnabled, &u.IsVerified,
		&u.CreatedBy, &u.UpdatedBy, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Update actualiza un usuario existente.
func (r *UserRepo) Update(user *entity.User) error {
	query := `
		UPDATE users SET name = $2, email = $3, password_hash = $4, address = $5,
			phone = $6, gender = $7, avatar = $8, role_id = $9, is_enabled = $10,
			is_verified = $11, updated_by = $12, updated_at = $13
		WHERE id = $1`
	_, err := r.db.Exec(context.Background(), query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Address,
		user.Phone, user.Gender, user.Avatar, user.RoleID, user.IsEnabled,
		user.IsVerified, user.UpdatedBy, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// List lista usuarios con paginación, más recientes primero.
func (r *UserRepo) List(limit, offset int) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash,
			&u.Address, &u.Phone, &u.Gender, &u.Avatar,
			&u.RoleID, &u.IsEnabled, &u.IsVerified,
			&u.CreatedBy, &u.UpdatedBy, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, &u)
	}
	return list, rows.Err()
}

// Delete elimina un usuario por ID.
func (r *UserRepo) Delete(id string) error {
	_, err := r.db.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
