package dto

import "time"

// UserResponse salida de un usuario (nunca incluye el password hash).
type UserResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Address    *string   `json:"address,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Gender     *string   `json:"gender,omitempty"`
	Avatar     *string   `json:"avatar,omitempty"`
	RoleID     *int      `json:"role_id,omitempty"`
	IsEnabled  bool      `json:"is_enabled"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
