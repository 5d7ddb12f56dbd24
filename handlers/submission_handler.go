package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"ecoQuestAPI/internal/submission"
	"ecoQuestAPI/middleware"
	"ecoQuestAPI/services"
)

type SubmissionHandler struct {
	submissionService *services.SubmissionService
	reviewService     *services.ReviewService
}

func NewSubmissionHandler(submissionService *services.SubmissionService, reviewService *services.ReviewService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		reviewService:     reviewService,
	}
}

func (h *SubmissionHandler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req submission.CreateSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sub, err := h.submissionService.Create(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, sub)
}

func (h *SubmissionHandler) GetMySubmissions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	subs, err := h.submissionService.ListMine(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, subs)
}

func (h *SubmissionHandler) GetPendingSubmissions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	subs, err := h.submissionService.ListPending(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, subs)
}

// ReviewSubmission handles PATCH /submissions/{id}/review. The body carries
// the requested status; everything else (authorization, idempotency, side
// effects) is the review service's business.
func (h *SubmissionHandler) ReviewSubmission(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	submissionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid submission id")
		return
	}

	var req submission.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	log.Printf("ReviewSubmission Handler: %s reviewing %s as %s", clerkID, submissionID, req.Status)

	result, err := h.reviewService.Review(ctx, clerkID, submissionID, req.Status)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	middleware.RecordReviewOutcome(string(result.Submission.Status))
	respondWithJSON(w, http.StatusOK, result)
}
