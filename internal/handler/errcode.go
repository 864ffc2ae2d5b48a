package handler

import (
	"errors"
	"net/http"

	"github.com/olegmz/verigate/internal/domain"
)

// StatusForError — чистая функция маппинга доменных ошибок на HTTP-коды.
// Вся таксономия закрытая, поэтому switch по типам исчерпывающий;
// незнакомая ошибка — это баг, отвечаем 500.
func StatusForError(err error) int {
	var (
		notFound    *domain.RequestNotFoundError
		badStatus   *domain.InvalidRequestStatusError
		dbErr       *domain.DatabaseError
		bankErr     *domain.BankServiceError
		unsupported *domain.UnsupportedTypeError
		noEmployee  *domain.EmployeeNotFoundError
		notAgent    *domain.NotAnAgentError
		noLimit     *domain.LimitNotFoundError
	)

	switch {
	case errors.As(err, &notFound),
		errors.As(err, &badStatus),
		errors.As(err, &bankErr),
		errors.As(err, &unsupported),
		errors.As(err, &notAgent):
		return http.StatusBadRequest
	case errors.As(err, &noEmployee), errors.As(err, &noLimit):
		return http.StatusNotFound
	case errors.As(err, &dbErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
