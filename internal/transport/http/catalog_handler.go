package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"tryout-service/internal/app"
	"tryout-service/internal/domain"
)

// CatalogHandler serves subjects, chapters and chapter question banks.
type CatalogHandler struct {
	catalog *app.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(catalog *app.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

func (h *CatalogHandler) register(r *mux.Router) {
	r.HandleFunc("/subjects", h.listSubjects).Methods(http.MethodGet)
	r.HandleFunc("/subjects", h.createSubject).Methods(http.MethodPost)
	r.HandleFunc("/subjects/{id}", h.getSubject).Methods(http.MethodGet)
	r.HandleFunc("/subjects/{id}", h.updateSubject).Methods(http.MethodPut)
	r.HandleFunc("/subjects/{id}", h.deleteSubject).Methods(http.MethodDelete)

	r.HandleFunc("/chapters/for-subject/{id}", h.listChapters).Methods(http.MethodGet)
	r.HandleFunc("/chapters", h.createChapter).Methods(http.MethodPost)
	r.HandleFunc("/chapters/{id}", h.getChapter).Methods(http.MethodGet)
	r.HandleFunc("/chapters/{id}", h.updateChapter).Methods(http.MethodPut)
	r.HandleFunc("/chapters/{id}", h.deleteChapter).Methods(http.MethodDelete)

	r.HandleFunc("/quizzes/for-chapter/{id}", h.listQuestions).Methods(http.MethodGet)
	r.HandleFunc("/quizzes", h.createQuestion).Methods(http.MethodPost)
	r.HandleFunc("/quizzes/{id}", h.getQuestion).Methods(http.MethodGet)
	r.HandleFunc("/quizzes/{id}", h.updateQuestion).Methods(http.MethodPut)
	r.HandleFunc("/quizzes/{id}", h.deleteQuestion).Methods(http.MethodDelete)
}

// respond writes data with status, or the mapped error.
func (h *CatalogHandler) respond(w http.ResponseWriter, status int, data any, err error) {
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	if data == nil {
		w.WriteHeader(status)
		return
	}
	writeData(w, status, data)
}

func (h *CatalogHandler) listSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.catalog.ListSubjects(r.Context())
	h.respond(w, http.StatusOK, subjects, err)
}

func (h *CatalogHandler) getSubject(w http.ResponseWriter, r *http.Request) {
	subject, err := h.catalog.GetSubject(r.Context(), mux.Vars(r)["id"])
	h.respond(w, http.StatusOK, subject, err)
}

func (h *CatalogHandler) createSubject(w http.ResponseWriter, r *http.Request) {
	var subject domain.Subject
	if err := decodeJSON(r, &subject); err != nil {
		writeError(w, h.log, err)
		return
	}
	created, err := h.catalog.CreateSubject(r.Context(), subject)
	h.respond(w, http.StatusCreated, created, err)
}

func (h *CatalogHandler) updateSubject(w http.ResponseWriter, r *http.Request) {
	var subject domain.Subject
	if err := decodeJSON(r, &subject); err != nil {
		writeError(w, h.log, err)
		return
	}
	updated, err := h.catalog.UpdateSubject(r.Context(), mux.Vars(r)["id"], subject)
	h.respond(w, http.StatusOK, updated, err)
}

func (h *CatalogHandler) deleteSubject(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusNoContent, nil, h.catalog.DeleteSubject(r.Context(), mux.Vars(r)["id"]))
}

func (h *CatalogHandler) listChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := h.catalog.ListChapters(r.Context(), mux.Vars(r)["id"])
	h.respond(w, http.StatusOK, chapters, err)
}

func (h *CatalogHandler) getChapter(w http.ResponseWriter, r *http.Request) {
	chapter, err := h.catalog.GetChapter(r.Context(), mux.Vars(r)["id"])
	h.respond(w, http.StatusOK, chapter, err)
}

func (h *CatalogHandler) createChapter(w http.ResponseWriter, r *http.Request) {
	var chapter domain.Chapter
	if err := decodeJSON(r, &chapter); err != nil {
		writeError(w, h.log, err)
		return
	}
	created, err := h.catalog.CreateChapter(r.Context(), chapter)
	h.respond(w, http.StatusCreated, created, err)
}

func (h *CatalogHandler) updateChapter(w http.ResponseWriter, r *http.Request) {
	var chapter domain.Chapter
	if err := decodeJSON(r, &chapter); err != nil {
		writeError(w, h.log, err)
		return
	}
	updated, err := h.catalog.UpdateChapter(r.Context(), mux.Vars(r)["id"], chapter)
	h.respond(w, http.StatusOK, updated, err)
}

func (h *CatalogHandler) deleteChapter(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusNoContent, nil, h.catalog.DeleteChapter(r.Context(), mux.Vars(r)["id"]))
}

func (h *CatalogHandler) listQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.catalog.ListQuestions(r.Context(), mux.Vars(r)["id"])
	h.respond(w, http.StatusOK, questions, err)
}

func (h *CatalogHandler) getQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := h.catalog.GetQuestion(r.Context(), mux.Vars(r)["id"])
	h.respond(w, http.StatusOK, question, err)
}

func (h *CatalogHandler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var question domain.BankQuestion
	if err := decodeJSON(r, &question); err != nil {
		writeError(w, h.log, err)
		return
	}
	created, err := h.catalog.CreateQuestion(r.Context(), question)
	h.respond(w, http.StatusCreated, created, err)
}

func (h *CatalogHandler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var question domain.BankQuestion
	if err := decodeJSON(r, &question); err != nil {
		writeError(w, h.log, err)
		return
	}
	updated, err := h.catalog.UpdateQuestion(r.Context(), mux.Vars(r)["id"], question)
	h.respond(w, http.StatusOK, updated, err)
}

func (h *CatalogHandler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusNoContent, nil, h.catalog.DeleteQuestion(r.Context(), mux.Vars(r)["id"]))
}
