package handler

import (
	"encoding/json"
	"net/http"

	"github.com/user/taxsale-crawler/internal/delivery/http/response"
	"github.com/user/taxsale-crawler/internal/entity"
	"go.uber.org/zap"
)

// StatusReader exposes the progress of the current run.
type StatusReader interface {
	Snapshot() entity.RunStatus
}

type Handler struct {
	status StatusReader
	logger *zap.Logger
}

func NewHandler(status StatusReader, logger *zap.Logger) *Handler {
	return &Handler{
		status: status,
		logger: logger,
	}
}

func (h *Handler) HandleGetRunStatus(w http.ResponseWriter, r *http.Request) {
	st := h.status.Snapshot()
	resp := response.RunStatusResponse{
		State:         st.State,
		CurrentCounty: st.CurrentCounty,
		CurrentPage:   st.CurrentPage,
		PagesTotal:    st.PagesTotal,
		PagesDone:     st.PagesDone,
		PageErrors:    st.PageErrors,
		LinksFound:    st.LinksFound,
		Downloads:     st.Downloads,
		StartedAt:     st.StartedAt,
		FinishedAt:    st.FinishedAt,
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}
