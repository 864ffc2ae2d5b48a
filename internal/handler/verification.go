package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegmz/verigate/internal/domain"
	"github.com/olegmz/verigate/internal/infra/auth"
)

// VerificationService Описываем, что нам нужно от движка workflow
type VerificationService interface {
	Create(ctx context.Context, actorID, targetID int64, vt domain.VerificationType, details string) (int64, error)
	ListActive(ctx context.Context, actorID int64) ([]*domain.VerificationRequest, error)
	ListHistory(ctx context.Context, actorID int64) ([]*domain.VerificationRequest, error)
	Approve(ctx context.Context, requestID, actorID int64) (bool, error)
	Deny(ctx context.Context, requestID, actorID int64) error
}

type VerificationHandler struct {
	service VerificationService
}

func NewVerificationHandler(s VerificationService) *VerificationHandler {
	return &VerificationHandler{service: s}
}

type CreateVerificationRequest struct {
	RequestingActorID int64                   `json:"requesting_actor_id"`
	TargetID          int64                   `json:"target_id"`
	VerificationType  domain.VerificationType `json:"verification_type"`
	Details           string                  `json:"details"`
}

var knownTypes = map[domain.VerificationType]struct{}{
	domain.TypeLogin:       {},
	domain.TypeLoan:        {},
	domain.TypePayment:     {},
	domain.TypeTransfer:    {},
	domain.TypeChangeLimit: {},
	domain.TypeCardRequest: {},
}

// Create — POST /api/verification/request.
// requesting_actor_id задает, КОМУ адресована заявка; создать ее может
// любой привилегированный вызывающий.
func (h *VerificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if _, ok := knownTypes[req.VerificationType]; !ok {
		http.Error(w, "unknown verification type", http.StatusBadRequest)
		return
	}

	id, err := h.service.Create(r.Context(), req.RequestingActorID, req.TargetID, req.VerificationType, req.Details)
	if err != nil {
		http.Error(w, err.Error(), StatusForError(err))
		return
	}

	writeJSON(w, map[string]int64{"id": id})
}

// ListActive — GET /api/verification/active-requests. Актер — из токена.
func (h *VerificationHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListActive)
}

// ListHistory — GET /api/verification/history.
func (h *VerificationHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.service.ListHistory)
}

func (h *VerificationHandler) list(w http.ResponseWriter, r *http.Request, fetch func(context.Context, int64) ([]*domain.VerificationRequest, error)) {
	actorID, ok := auth.ActorIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requests, err := fetch(r.Context(), actorID)
	if err != nil {
		http.Error(w, err.Error(), StatusForError(err))
		return
	}

	writeJSON(w, requests)
}

// Approve — POST /api/verification/approve/{requestId}.
// 200 с сообщением при успехе, 400 с текстом ошибки при отказе.
func (h *VerificationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	requestID, actorID, ok := h.decisionParams(w, r)
	if !ok {
		return
	}

	if _, err := h.service.Approve(r.Context(), requestID, actorID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]string{"message": "Request approved successfully."})
}

// Deny — POST /api/verification/deny/{requestId}.
func (h *VerificationHandler) Deny(w http.ResponseWriter, r *http.Request) {
	requestID, actorID, ok := h.decisionParams(w, r)
	if !ok {
		return
	}

	if err := h.service.Deny(r.Context(), requestID, actorID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]string{"message": "Request denied successfully."})
}

func (h *VerificationHandler) decisionParams(w http.ResponseWriter, r *http.Request) (requestID, actorID int64, ok bool) {
	requestID, err := strconv.ParseInt(chi.URLParam(r, "requestId"), 10, 64)
	if err != nil {
		http.Error(w, "invalid request id", http.StatusBadRequest)
		return 0, 0, false
	}

	actorID, found := auth.ActorIDFromContext(r.Context())
	if !found {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return 0, 0, false
	}
	return requestID, actorID, true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
