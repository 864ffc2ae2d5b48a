package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/olegmz/verigate/internal/domain"
)

// LimitService Описываем, что нам нужно от guardrail
type LimitService interface {
	ChangeLimit(ctx context.Context, employeeID int64, newLimit decimal.Decimal) error
	ResetUsage(ctx context.Context, employeeID int64) error
	RecordUsage(ctx context.Context, employeeID int64, newUsed decimal.Decimal) error
	SetApprovalFlag(ctx context.Context, employeeID int64, value bool) error
	GetLimit(ctx context.Context, employeeID int64) (*domain.LimitRecord, error)
	PromoteToAgent(ctx context.Context, employeeID int64) error
	DemoteFromAgent(ctx context.Context, employeeID int64, newRole string) error
}

type LimitHandler struct {
	service LimitService
}

func NewLimitHandler(s LimitService) *LimitHandler {
	return &LimitHandler{service: s}
}

type changeLimitRequest struct {
	NewLimit decimal.Decimal `json:"new_limit"`
}

type usedLimitRequest struct {
	NewUsedLimit decimal.Decimal `json:"new_used_limit"`
}

type approvalFlagRequest struct {
	NeedsApproval bool `json:"needs_approval"`
}

type demoteRequest struct {
	NewRole string `json:"new_role"`
}

// GetLimit — GET /api/actuaries/{id}/limit
func (h *LimitHandler) GetLimit(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	rec, err := h.service.GetLimit(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), StatusForError(err))
		return
	}
	writeJSON(w, rec)
}

// ChangeLimit — PUT /api/actuaries/{id}/limit
func (h *LimitHandler) ChangeLimit(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	var req changeLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.ChangeLimit(r.Context(), id, req.NewLimit); err != nil {
		http.Error(w, err.Error(), StatusForError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetUsage — PATCH /api/actuaries/{id}/limit/reset
func (h *LimitHandler) ResetUsage(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	if err := h.service.ResetUsage(r.Context(), id); err != nil {
		http.Error(w, err.Error(), StatusForError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordUsage — PATCH /api/actuaries/{id}/limit/used
func (h *LimitHandler) RecordUsage(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	var req usedLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.RecordUsage(r.Context(), id, req.NewUsedLimit); err != nil {
		http.Error(w, err.Error(), StatusForError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetApprovalFlag — PUT /api/actuaries/{id}/approval
func (h *LimitHandler) SetApprovalFlag(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	var req approvalFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.SetApprovalFlag(r.Context(), id, req.NeedsApproval); err != nil {
		http.Error(w, err.Error(), StatusForError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Promote — POST /api/actuaries/{id}/promote
func (h *LimitHandler) Promote(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	if err := h.service.PromoteToAgent(r.Context(), id); err != nil {
		http.Error(w, err.Error(), StatusForError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Demote — POST /api/actuaries/{id}/demote
func (h *LimitHandler) Demote(w http.ResponseWriter, r *http.Request) {
	id, ok := employeeID(w, r)
	if !ok {
		return
	}

	var req demoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.NewRole == "" {
		req.NewRole = domain.RoleClient
	}

	if err := h.service.DemoteFromAgent(r.Context(), id, req.NewRole); err != nil {
		http.Error(w, err.Error(), StatusForError(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func employeeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid employee id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
