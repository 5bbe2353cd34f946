package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/adjudex/tribunal/internal/domain"
	"github.com/adjudex/tribunal/internal/service"
	"github.com/adjudex/tribunal/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type VerdictHandler struct {
	verdictStore domain.VerdictStore
	precedents   *service.PrecedentService
}

func NewVerdictHandler(vs domain.VerdictStore, ps *service.PrecedentService) *VerdictHandler {
	return &VerdictHandler{verdictStore: vs, precedents: ps}
}

func (h *VerdictHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid verdict id")
		return
	}

	verdict, err := h.verdictStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "verdict not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get verdict")
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}

func (h *VerdictHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	verdicts, err := h.verdictStore.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list verdicts")
		return
	}
	if verdicts == nil {
		verdicts = []domain.VerdictRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"verdicts": verdicts})
}

func (h *VerdictHandler) Precedents(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	topK, _ := strconv.Atoi(r.URL.Query().Get("top_k"))

	results, err := h.precedents.Search(r.Context(), query, topK)
	if err != nil {
		if errors.Is(err, service.ErrPrecedentQueryEmpty) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to search precedents")
		return
	}
	if results == nil {
		results = []domain.VerdictWithScore{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"precedents": results})
}
