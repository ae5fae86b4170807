package study

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/studycycle/backend/internal/decode"
	"github.com/studycycle/backend/internal/extract"
	"github.com/studycycle/backend/internal/generator"
	"github.com/studycycle/backend/internal/models"
	"github.com/studycycle/backend/internal/session"
)

const maxUploadBytes = 20 << 20 // 20MB

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// getUserID extracts the authenticated user ID from the request context.
func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid multipart request"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "No file provided"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Failed to read file"})
		return
	}

	doc, err := h.service.UploadDocument(r.Context(), userID, header.Filename, data)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	writeJSON(w, http.StatusOK, h.service.GetSession(userID))
}

func (h *Handler) ResetTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	if err := h.service.ResetTest(userID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.service.GetSession(userID))
}

func (h *Handler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	questions, err := h.service.GenerateQuestions(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.GenerateQuestionsResponse{
		Questions: questions,
		Total:     len(questions),
	})
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	questionID := mux.Vars(r)["id"]

	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.RecordAnswer(userID, questionID, req.SelectedOption)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SubmitTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resp, err := h.service.SubmitTest(userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resp, err := h.service.GenerateFlashcards(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) MarkMastered(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	cardID := mux.Vars(r)["id"]
	resp, err := h.service.MarkMastered(userID, cardID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeError maps the failure taxonomy to HTTP statuses: bad input is 400,
// ordering violations are 409, and failures of the generative step are 502
// so the client can offer a retry of just that step.
func writeError(w http.ResponseWriter, err error) {
	var parseErr *extract.ParseError
	var genErr *generator.GenerationError
	var decodeErr *decode.DecodeError
	var validationErr *decode.ValidationError

	switch {
	case errors.As(err, &parseErr):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Failed to parse document: " + parseErr.Err.Error()})
	case errors.Is(err, ErrEmptyDocument):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Document appears to be empty"})
	case errors.As(err, &genErr):
		log.Printf("[study] generation failed: %v", genErr)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Generation failed, please retry"})
	case errors.As(err, &decodeErr), errors.As(err, &validationErr):
		log.Printf("[study] model output rejected: %v", err)
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Model returned unusable output, please retry"})
	case errors.Is(err, session.ErrNoDocument):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Upload a document first"})
	case errors.Is(err, session.ErrNoQuestions):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Generate questions first"})
	case errors.Is(err, ErrTestNotSubmitted):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Submit the test first"})
	case errors.Is(err, session.ErrAnswerLocked):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Answer already recorded for this question"})
	case errors.Is(err, session.ErrQuestionsInstalled):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Question set already installed, reset the test to regenerate"})
	case errors.Is(err, session.ErrStaleGeneration):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Session changed while generating, please retry"})
	case errors.Is(err, session.ErrUnknownQuestion):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Question not found"})
	case errors.Is(err, session.ErrInvalidOption):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "selected_option out of range"})
	default:
		log.Printf("[study] internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
