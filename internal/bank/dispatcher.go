package bank

import (
	"context"

	"github.com/olegmz/verigate/internal/domain"
)

// Dispatcher — тонкая таблица диспетчеризации: тип заявки → конкретный
// вызов банка. LOGIN и LOAN подтверждающего вызова не имеют и закрываются
// явной ошибкой, а не тихим успехом.
type Dispatcher struct {
	client *Client
}

func NewDispatcher(client *Client) *Dispatcher {
	return &Dispatcher{client: client}
}

// Confirm выполняет подтверждающий вызов для одобренной заявки.
func (d *Dispatcher) Confirm(ctx context.Context, vt domain.VerificationType, targetID int64) error {
	switch vt {
	case domain.TypeChangeLimit:
		return d.client.ConfirmAccountLimitChange(ctx, targetID)
	case domain.TypePayment:
		return d.client.ConfirmPayment(ctx, targetID)
	case domain.TypeTransfer:
		return d.client.ConfirmTransfer(ctx, targetID)
	case domain.TypeCardRequest:
		return d.client.ApproveCardRequest(ctx, targetID)
	default:
		return &domain.UnsupportedTypeError{Type: vt}
	}
}

// Reject выполняет отклоняющий вызов для отвергнутой заявки.
func (d *Dispatcher) Reject(ctx context.Context, vt domain.VerificationType, targetID int64) error {
	switch vt {
	case domain.TypeChangeLimit:
		return d.client.RejectAccountLimitChange(ctx, targetID)
	case domain.TypePayment:
		return d.client.RejectPayment(ctx, targetID)
	case domain.TypeTransfer:
		return d.client.RejectTransfer(ctx, targetID)
	case domain.TypeCardRequest:
		return d.client.RejectCardRequest(ctx, targetID)
	default:
		return &domain.UnsupportedTypeError{Type: vt}
	}
}
