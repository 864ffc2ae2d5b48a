package domain

import (
	"fmt"
	"time"
)

// Статусы State Machine заявки на подтверждение
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "PENDING"
	VerificationApproved VerificationStatus = "APPROVED"
	VerificationDenied   VerificationStatus = "DENIED"
	// VerificationExpired объявлен для совместимости с внешними потребителями,
	// но ни один переход его не записывает: истечение считается на чтении.
	VerificationExpired VerificationStatus = "EXPIRED"
)

// VerificationType — закрытый набор типов операций, требующих второго подтверждения.
type VerificationType string

const (
	TypeLogin       VerificationType = "LOGIN"
	TypeLoan        VerificationType = "LOAN"
	TypePayment     VerificationType = "PAYMENT"
	TypeTransfer    VerificationType = "TRANSFER"
	TypeChangeLimit VerificationType = "CHANGE_LIMIT"
	TypeCardRequest VerificationType = "CARD_REQUEST"
)

// TTL активной заявки с момента создания.
const VerificationTTL = 5 * time.Minute

type VerificationRequest struct {
	ID                int64              `json:"id"`
	RequestingActorID int64              `json:"requesting_actor_id"` // Кому адресована заявка (он же подтверждает)
	TargetID          int64              `json:"target_id"`           // Сущность, над которой выполняется операция
	VerificationType  VerificationType   `json:"verification_type"`
	Status            VerificationStatus `json:"status"`
	ExpirationTime    time.Time          `json:"expiration_time"`
	CreatedAt         time.Time          `json:"created_at"`
	Details           string             `json:"details"`
}

// Active сообщает, можно ли еще принять решение по заявке.
// Истечение ленивое: статус в БД остается PENDING.
func (v *VerificationRequest) Active(now time.Time) bool {
	return v.Status == VerificationPending && v.ExpirationTime.After(now)
}

// Ошибки Workflow Engine. Закрытый набор: каждая маппится на свой HTTP-код на границе.

type RequestNotFoundError struct {
	ID int64
}

func (e *RequestNotFoundError) Error() string {
	return fmt.Sprintf("verification request %d not found", e.ID)
}

type InvalidRequestStatusError struct {
	Message string
}

func (e *InvalidRequestStatusError) Error() string {
	return e.Message
}

type DatabaseError struct {
	Message string
}

func (e *DatabaseError) Error() string {
	return e.Message
}

// BankServiceError означает, что локальное решение уже зафиксировано,
// а внешний вызов не подтвержден. Повторный approve/deny невозможен —
// заявка больше не PENDING.
type BankServiceError struct {
	Message string
}

func (e *BankServiceError) Error() string {
	return e.Message
}

type UnsupportedTypeError struct {
	Type VerificationType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("verification type %s has no bank dispatch", e.Type)
}
