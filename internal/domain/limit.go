package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// LimitRecord — лимит агента: потолок, текущее потребление и флаг
// обязательного подтверждения. Ровно одна запись на сотрудника с ролью AGENT.
type LimitRecord struct {
	EmployeeID    int64           `json:"employee_id"`
	LimitAmount   decimal.Decimal `json:"limit_amount"`
	UsedLimit     decimal.Decimal `json:"used_limit"`
	NeedsApproval bool            `json:"needs_approval"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// DefaultAgentLimit выдается при назначении роли AGENT.
var DefaultAgentLimit = decimal.NewFromInt(10000)

type EmployeeNotFoundError struct {
	ID int64
}

func (e *EmployeeNotFoundError) Error() string {
	return fmt.Sprintf("employee %d not found", e.ID)
}

type NotAnAgentError struct {
	ID int64
}

func (e *NotAnAgentError) Error() string {
	return fmt.Sprintf("employee %d is not an agent", e.ID)
}

type LimitNotFoundError struct {
	EmployeeID int64
}

func (e *LimitNotFoundError) Error() string {
	return fmt.Sprintf("actuary limit for employee %d not found", e.EmployeeID)
}
