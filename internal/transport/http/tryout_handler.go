package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"tryout-service/internal/app"
	"tryout-service/internal/domain"
)

// TryOutHandler serves try-out authoring, attempt submission and analytics.
type TryOutHandler struct {
	tryouts   *app.TryOutService
	attempts  *app.AttemptService
	analytics *app.AnalyticsService
	log       *zap.Logger
}

func NewTryOutHandler(tryouts *app.TryOutService, attempts *app.AttemptService, analytics *app.AnalyticsService, log *zap.Logger) *TryOutHandler {
	return &TryOutHandler{tryouts: tryouts, attempts: attempts, analytics: analytics, log: log}
}

func (h *TryOutHandler) register(r *mux.Router) {
	r.HandleFunc("/tryouts", h.list).Methods(http.MethodGet)
	r.HandleFunc("/tryouts", h.create).Methods(http.MethodPost)
	r.HandleFunc("/tryouts/{id}", h.get).Methods(http.MethodGet)
	r.HandleFunc("/tryouts/{id}", h.replace).Methods(http.MethodPut)
	r.HandleFunc("/tryouts/{id}", h.remove).Methods(http.MethodDelete)
	r.HandleFunc("/tryouts/{id}/attempts", h.submit).Methods(http.MethodPost)
	r.HandleFunc("/analytics/tryout/{id}", h.stats).Methods(http.MethodGet)
}

func (h *TryOutHandler) list(w http.ResponseWriter, r *http.Request) {
	tryouts, err := h.tryouts.List(r.Context())
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, tryouts)
}

func (h *TryOutHandler) create(w http.ResponseWriter, r *http.Request) {
	var draft domain.TryOutDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, h.log, err)
		return
	}
	tryout, err := h.tryouts.Build(r.Context(), draft)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, tryout)
}

func (h *TryOutHandler) get(w http.ResponseWriter, r *http.Request) {
	tryout, err := h.tryouts.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, tryout)
}

func (h *TryOutHandler) replace(w http.ResponseWriter, r *http.Request) {
	var draft domain.TryOutDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, h.log, err)
		return
	}
	tryout, err := h.tryouts.Replace(r.Context(), mux.Vars(r)["id"], draft)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, tryout)
}

func (h *TryOutHandler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.tryouts.Remove(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TryOutHandler) submit(w http.ResponseWriter, r *http.Request) {
	var sub domain.Submission
	if err := decodeJSON(r, &sub); err != nil {
		writeError(w, h.log, err)
		return
	}
	attempt, err := h.attempts.Submit(r.Context(), mux.Vars(r)["id"], sub)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusCreated, attempt)
}

func (h *TryOutHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Summary(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeData(w, http.StatusOK, stats)
}
