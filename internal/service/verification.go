package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/olegmz/verigate/internal/audit"
	"github.com/olegmz/verigate/internal/domain"
	"github.com/olegmz/verigate/internal/infra"
	"github.com/olegmz/verigate/internal/metrics"
)

// VerificationStore описывает требования движка к хранилищу заявок.
type VerificationStore interface {
	CreateRequest(ctx context.Context, req *domain.VerificationRequest) (int64, error)
	FindActiveRequests(ctx context.Context, actorID int64) ([]*domain.VerificationRequest, error)
	FindInactiveRequests(ctx context.Context, actorID int64) ([]*domain.VerificationRequest, error)
	FindActiveRequest(ctx context.Context, id, actorID int64) (*domain.VerificationRequest, error)
	MarkDecided(ctx context.Context, id int64, status domain.VerificationStatus) (bool, error)
}

// BankDispatcher — внешняя диспетчеризация решения (подтверждение/отклонение в банке).
type BankDispatcher interface {
	Confirm(ctx context.Context, vt domain.VerificationType, targetID int64) error
	Reject(ctx context.Context, vt domain.VerificationType, targetID int64) error
}

// VerificationService — ядро workflow второго подтверждения.
//
// Порядок в approve/deny принципиален: локальное решение фиксируется в БД
// ДО внешнего вызова. Если банк упал, заявка уже APPROVED/DENIED, и
// BankServiceError означает «решение записано, внешний эффект не подтвержден».
// Компенсирующего перехода назад нет.
type VerificationService struct {
	store  VerificationStore
	bank   BankDispatcher
	rdb    *redis.Client
	trail  audit.Recorder // nil — журнал решений выключен
	m      *metrics.Metrics
	logger *zap.Logger

	now func() time.Time
}

func NewVerificationService(store VerificationStore, bank BankDispatcher, rdb *redis.Client, trail audit.Recorder, m *metrics.Metrics, logger *zap.Logger) *VerificationService {
	if m == nil {
		m = metrics.NewMetrics(nil)
	}
	return &VerificationService{
		store:  store,
		bank:   bank,
		rdb:    rdb,
		trail:  trail,
		m:      m,
		logger: logger.Named("verification-service"),
		now:    time.Now,
	}
}

// Create заводит заявку: PENDING, срок жизни 5 минут.
// Дедупликации нет — каждая заявка независима.
func (s *VerificationService) Create(ctx context.Context, actorID, targetID int64, vt domain.VerificationType, details string) (int64, error) {
	now := s.now()
	req := &domain.VerificationRequest{
		RequestingActorID: actorID,
		TargetID:          targetID,
		VerificationType:  vt,
		Status:            domain.VerificationPending,
		ExpirationTime:    now.Add(domain.VerificationTTL),
		CreatedAt:         now,
		Details:           details,
	}

	id, err := s.store.CreateRequest(ctx, req)
	if err != nil {
		s.m.ErrorTotal.WithLabelValues("database").Inc()
		return 0, &domain.DatabaseError{Message: fmt.Sprintf("failed to save verification request: %v", err)}
	}

	s.logger.Info("verification request created",
		zap.Int64("request_id", id),
		zap.Int64("actor_id", actorID),
		zap.String("type", string(vt)))
	return id, nil
}

// ListActive — заявки актера, по которым еще можно решать (created_at DESC).
func (s *VerificationService) ListActive(ctx context.Context, actorID int64) ([]*domain.VerificationRequest, error) {
	requests, err := s.store.FindActiveRequests(ctx, actorID)
	if err != nil {
		return nil, &domain.DatabaseError{Message: fmt.Sprintf("failed to retrieve active requests: %v", err)}
	}
	return requests, nil
}

// ListHistory — решенные заявки и просроченные PENDING (created_at DESC).
func (s *VerificationService) ListHistory(ctx context.Context, actorID int64) ([]*domain.VerificationRequest, error) {
	requests, err := s.store.FindInactiveRequests(ctx, actorID)
	if err != nil {
		return nil, &domain.DatabaseError{Message: fmt.Sprintf("failed to retrieve request history: %v", err)}
	}
	return requests, nil
}

// Approve одобряет заявку от имени актера из токена.
func (s *VerificationService) Approve(ctx context.Context, requestID, actorID int64) (bool, error) {
	req, err := s.lookupActive(ctx, requestID, actorID)
	if err != nil {
		return false, err
	}

	if err := s.commitDecision(ctx, req, domain.VerificationApproved); err != nil {
		return false, err
	}

	if err := s.dispatch(ctx, req, domain.VerificationApproved, actorID); err != nil {
		return false, err
	}

	s.m.DecisionTotal.WithLabelValues("approve", "ok").Inc()
	return true, nil
}

// Deny отклоняет заявку. Банку уходит отклоняющий вызов.
func (s *VerificationService) Deny(ctx context.Context, requestID, actorID int64) error {
	req, err := s.lookupActive(ctx, requestID, actorID)
	if err != nil {
		return err
	}

	// Избыточно при текущем фильтре выборки, но проверка статуса дешевая
	// и ловит рассинхрон, если фильтр когда-нибудь изменят.
	if req.Status != domain.VerificationPending {
		return &domain.InvalidRequestStatusError{Message: "cannot deny a non-pending request"}
	}

	if err := s.commitDecision(ctx, req, domain.VerificationDenied); err != nil {
		return err
	}

	if err := s.dispatch(ctx, req, domain.VerificationDenied, actorID); err != nil {
		return err
	}

	s.m.DecisionTotal.WithLabelValues("deny", "ok").Inc()
	return nil
}

func (s *VerificationService) lookupActive(ctx context.Context, requestID, actorID int64) (*domain.VerificationRequest, error) {
	req, err := s.store.FindActiveRequest(ctx, requestID, actorID)
	if err != nil {
		s.m.ErrorTotal.WithLabelValues("database").Inc()
		return nil, &domain.DatabaseError{Message: fmt.Sprintf("failed to fetch verification request: %v", err)}
	}
	if req == nil {
		s.m.ErrorTotal.WithLabelValues("not_found").Inc()
		return nil, &domain.RequestNotFoundError{ID: requestID}
	}
	return req, nil
}

// commitDecision — условная запись решения. Проигравший гонку получает
// RequestNotFound: для него заявка уже не PENDING.
func (s *VerificationService) commitDecision(ctx context.Context, req *domain.VerificationRequest, status domain.VerificationStatus) error {
	won, err := s.store.MarkDecided(ctx, req.ID, status)
	if err != nil {
		s.m.ErrorTotal.WithLabelValues("database").Inc()
		return &domain.DatabaseError{Message: fmt.Sprintf("failed to update request status: %v", err)}
	}
	if !won {
		s.m.ErrorTotal.WithLabelValues("not_found").Inc()
		return &domain.RequestNotFoundError{ID: req.ID}
	}
	req.Status = status

	s.publishDecision(ctx, req.ID, status)
	return nil
}

// publishDecision транслирует исход подписчикам (ожидающие фронтовые сессии).
// Сбой сигнала не фатален: решение уже в БД.
func (s *VerificationService) publishDecision(ctx context.Context, requestID int64, status domain.VerificationStatus) {
	if s.rdb == nil {
		return
	}
	payload := fmt.Sprintf("%d:%s", requestID, status)
	if err := s.rdb.Publish(ctx, infra.RedisChanDecisions, payload).Err(); err != nil {
		s.logger.Warn("decision signal delivery failed",
			zap.Int64("request_id", requestID),
			zap.Error(err))
	}
}

func (s *VerificationService) dispatch(ctx context.Context, req *domain.VerificationRequest, status domain.VerificationStatus, actorID int64) error {
	decision := "approve"
	call := s.bank.Confirm
	if status == domain.VerificationDenied {
		decision = "deny"
		call = s.bank.Reject
	}

	started := s.now()
	err := call(ctx, req.VerificationType, req.TargetID)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	s.m.DispatchDuration.WithLabelValues(string(req.VerificationType), decision, outcome).
		Observe(time.Since(started).Seconds())

	if err == nil {
		s.recordDecision(req, status, actorID, "ok", nil)
		return nil
	}

	// Тип без диспетчеризации — контрактная ошибка вызывающего, не сбой банка.
	var unsupported *domain.UnsupportedTypeError
	if errors.As(err, &unsupported) {
		s.m.ErrorTotal.WithLabelValues("unsupported_type").Inc()
		s.m.DecisionTotal.WithLabelValues(decision, "unsupported").Inc()
		s.recordDecision(req, status, actorID, "unsupported", err)
		s.logger.Error("no bank dispatch for verification type",
			zap.Int64("request_id", req.ID),
			zap.String("type", string(req.VerificationType)))
		return err
	}

	s.m.ErrorTotal.WithLabelValues("bank_failure").Inc()
	s.m.DecisionTotal.WithLabelValues(decision, "bank_failure").Inc()
	s.recordDecision(req, status, actorID, "bank_failure", err)
	s.logger.Error("decision committed but bank dispatch failed",
		zap.Int64("request_id", req.ID),
		zap.String("status", string(status)),
		zap.Error(err))
	return &domain.BankServiceError{Message: fmt.Sprintf("bank service error: %v", err)}
}

// recordDecision отправляет событие в журнал решений. Неблокирующе и не фатально.
func (s *VerificationService) recordDecision(req *domain.VerificationRequest, status domain.VerificationStatus, actorID int64, outcome string, cause error) {
	if s.trail == nil {
		return
	}
	event := audit.DecisionEvent{
		RequestID:        req.ID,
		ActorID:          actorID,
		VerificationType: req.VerificationType,
		Decision:         status,
		Outcome:          outcome,
		Timestamp:        s.now(),
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	s.trail.Record(event)
}
