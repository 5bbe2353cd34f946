package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adjudex/tribunal/internal/domain"
	"github.com/adjudex/tribunal/internal/service"
	"github.com/google/uuid"
)

type AdjudicateHandler struct {
	svc *service.AdjudicationService
}

func NewAdjudicateHandler(svc *service.AdjudicationService) *AdjudicateHandler {
	return &AdjudicateHandler{svc: svc}
}

type adjudicateRequest struct {
	ClaimID     string            `json:"claim_id,omitempty"`
	Text        string            `json:"text"`
	SeedContext map[string]string `json:"seed_context,omitempty"`
}

func (h *AdjudicateHandler) Adjudicate(w http.ResponseWriter, r *http.Request) {
	var req adjudicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim := domain.Claim{
		Text:        req.Text,
		SeedContext: req.SeedContext,
	}
	if req.ClaimID != "" {
		id, err := uuid.Parse(req.ClaimID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid claim_id")
			return
		}
		claim.ID = id
	}

	verdict, err := h.svc.Adjudicate(r.Context(), claim)
	if err != nil {
		if errors.Is(err, service.ErrClaimTextEmpty) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to adjudicate claim")
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}
