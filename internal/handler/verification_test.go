package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegmz/verigate/internal/domain"
	"github.com/olegmz/verigate/internal/infra/auth"
)

type fakeVerificationService struct {
	createID  int64
	createErr error

	active  []*domain.VerificationRequest
	history []*domain.VerificationRequest
	listErr error

	decideErr error

	// Что реально пришло в сервис
	gotRequestID int64
	gotActorID   int64
}

func (f *fakeVerificationService) Create(_ context.Context, actorID, targetID int64, vt domain.VerificationType, details string) (int64, error) {
	return f.createID, f.createErr
}

func (f *fakeVerificationService) ListActive(_ context.Context, actorID int64) ([]*domain.VerificationRequest, error) {
	f.gotActorID = actorID
	return f.active, f.listErr
}

func (f *fakeVerificationService) ListHistory(_ context.Context, actorID int64) ([]*domain.VerificationRequest, error) {
	f.gotActorID = actorID
	return f.history, f.listErr
}

func (f *fakeVerificationService) Approve(_ context.Context, requestID, actorID int64) (bool, error) {
	f.gotRequestID = requestID
	f.gotActorID = actorID
	return f.decideErr == nil, f.decideErr
}

func (f *fakeVerificationService) Deny(_ context.Context, requestID, actorID int64) error {
	f.gotRequestID = requestID
	f.gotActorID = actorID
	return f.decideErr
}

// verificationRouter собирает маршруты так же, как боевой сервер,
// но личность актера кладет в контекст напрямую.
func verificationRouter(svc VerificationService, actorID int64) http.Handler {
	h := NewVerificationHandler(svc)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := auth.WithIdentity(req.Context(), actorID, domain.RoleAgent)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/request", h.Create)
	r.Get("/active-requests", h.ListActive)
	r.Get("/history", h.ListHistory)
	r.Post("/approve/{requestId}", h.Approve)
	r.Post("/deny/{requestId}", h.Deny)
	return r
}

func TestCreateReturnsID(t *testing.T) {
	svc := &fakeVerificationService{createID: 42}
	router := verificationRouter(svc, 1)

	body := bytes.NewBufferString(`{"requesting_actor_id": 7, "target_id": 99, "verification_type": "TRANSFER", "details": "{}"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/request", body))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp["id"])
}

func TestCreateRejectsUnknownType(t *testing.T) {
	svc := &fakeVerificationService{}
	router := verificationRouter(svc, 1)

	body := bytes.NewBufferString(`{"requesting_actor_id": 7, "target_id": 99, "verification_type": "WIRE_FRAUD"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/request", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRejectsMalformedBody(t *testing.T) {
	router := verificationRouter(&fakeVerificationService{}, 1)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/request", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListActiveUsesActorFromContext(t *testing.T) {
	svc := &fakeVerificationService{
		active: []*domain.VerificationRequest{
			{ID: 5, RequestingActorID: 7, Status: domain.VerificationPending, VerificationType: domain.TypePayment},
		},
	}
	router := verificationRouter(svc, 7)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/active-requests", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), svc.gotActorID)

	var resp []*domain.VerificationRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, int64(5), resp[0].ID)
}

func TestApproveSuccess(t *testing.T) {
	svc := &fakeVerificationService{}
	router := verificationRouter(svc, 7)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/approve/12", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Request approved successfully.")
	assert.Equal(t, int64(12), svc.gotRequestID)
	assert.Equal(t, int64(7), svc.gotActorID)
}

func TestApproveFailureReportsReason(t *testing.T) {
	svc := &fakeVerificationService{decideErr: &domain.RequestNotFoundError{ID: 12}}
	router := verificationRouter(svc, 7)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/approve/12", nil))

	// Любой отказ решения — 400 с текстом доменной ошибки
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "verification request 12 not found")
}

func TestApproveBankFailureStillBadRequest(t *testing.T) {
	svc := &fakeVerificationService{decideErr: &domain.BankServiceError{Message: "bank dispatch failed: timeout"}}
	router := verificationRouter(svc, 7)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/approve/12", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "bank dispatch failed")
}

func TestDenySuccess(t *testing.T) {
	svc := &fakeVerificationService{}
	router := verificationRouter(svc, 7)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/deny/12", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Request denied successfully.")
}

func TestDecisionRejectsGarbageID(t *testing.T) {
	router := verificationRouter(&fakeVerificationService{}, 7)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/approve/abc", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"request not found", &domain.RequestNotFoundError{ID: 1}, http.StatusBadRequest},
		{"invalid status", &domain.InvalidRequestStatusError{Message: "x"}, http.StatusBadRequest},
		{"bank failure", &domain.BankServiceError{Message: "x"}, http.StatusBadRequest},
		{"unsupported type", &domain.UnsupportedTypeError{Type: domain.TypeLogin}, http.StatusBadRequest},
		{"not an agent", &domain.NotAnAgentError{ID: 1}, http.StatusBadRequest},
		{"employee not found", &domain.EmployeeNotFoundError{ID: 1}, http.StatusNotFound},
		{"limit not found", &domain.LimitNotFoundError{EmployeeID: 1}, http.StatusNotFound},
		{"database failure", &domain.DatabaseError{Message: "x"}, http.StatusInternalServerError},
		{"unknown error", context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusForError(tt.err))
		})
	}
}
