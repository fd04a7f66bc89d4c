package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizzy-service/internal/app"
	"quizzy-service/internal/domain"
)

// APIHandler serves the JSON quiz endpoints.
type APIHandler struct {
	service *app.QuizService
}

func NewAPIHandler(service *app.QuizService) *APIHandler {
	return &APIHandler{service: service}
}

// Register wires the API routes onto the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/questions", h.HandleQuestions)
	mux.HandleFunc("/api/stats", h.HandleStats)
	mux.HandleFunc("/api/submit-quiz", h.HandleSubmitQuiz)
	mux.HandleFunc("/api/leaderboard", h.HandleLeaderboard)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type submitRequest struct {
	UserName  string            `json:"userName"`
	Answers   map[string]string `json:"answers"`
	TimeTaken *int              `json:"timeTaken"`
}

// HandleQuestions serves a fresh question sample with answer keys withheld.
func (h *APIHandler) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	questions, err := h.service.SampleQuestions(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoQuestions) {
			writeJSON(w, http.StatusNotFound, errorResponse{
				Error:   "No questions available",
				Message: "Please contact administrator",
			})
			return
		}
		log.Printf("fetch questions failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to fetch questions",
			Message: "Please try again later",
		})
		return
	}

	writeJSON(w, http.StatusOK, questions)
}

// HandleStats serves aggregate attempt statistics.
func (h *APIHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		log.Printf("fetch stats failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch statistics"})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// HandleSubmitQuiz grades a submission, persists the attempt, and returns the
// outcome. Storage faults never leak internal detail to the client.
func (h *APIHandler) HandleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}
	defer r.Body.Close()

	var request submitRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid answers format",
			Message: "Answers must be provided",
		})
		return
	}

	result, err := h.service.GradeSubmission(r.Context(), request.UserName, request.Answers, request.TimeTaken)
	if err != nil {
		h.writeGradeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleLeaderboard serves the top-10 ranked attempts.
func (h *APIHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	entries, err := h.service.Leaderboard(r.Context())
	if err != nil {
		log.Printf("fetch leaderboard failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Database error"})
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *APIHandler) writeGradeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidName):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid user name",
			Message: "Name must be at least 2 characters long",
		})
	case errors.Is(err, domain.ErrNoAnswers):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "No answers provided",
			Message: "Please answer at least one question",
		})
	case errors.Is(err, domain.ErrInvalidQuestionIDs):
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid question IDs",
			Message: "Invalid quiz data",
		})
	case errors.Is(err, domain.ErrQuestionsNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   "Questions not found",
			Message: "Invalid quiz data",
		})
	case errors.Is(err, domain.ErrResultNotSaved):
		// Distinct from a generic fault so the client can tell the user
		// their work was graded but lost.
		log.Printf("save attempt failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to save result",
			Message: "Your score was calculated but not saved",
		})
	default:
		log.Printf("grade submission failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to process quiz",
			Message: "Please try again",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response failed: %v", err)
	}
}

func writeMethodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}

// RequestLogger logs each request line the way the original server did.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
