package domain

import "time"

// Роли платформы. Guardrail действует только на AGENT,
// SUPERVISOR и ADMIN управляют лимитами и создают заявки.
const (
	RoleClient     = "CLIENT"
	RoleAgent      = "AGENT"
	RoleSupervisor = "SUPERVISOR"
	RoleAdmin      = "ADMIN"
)

type Employee struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"` // Никогда не отдаем наружу
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
