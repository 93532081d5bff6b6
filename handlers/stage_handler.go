package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/robostage/backend/services"
)

type StageHandler struct {
	stageService   services.StageService
	bracketService services.BracketService
}

func NewStageHandler(stageService services.StageService, bracketService services.BracketService) *StageHandler {
	return &StageHandler{stageService: stageService, bracketService: bracketService}
}

// Create godoc
// @Summary Create a tournament stage
// @Tags stages
// @Accept json
// @Produce json
// @Param input body services.CreateStageInput true "Stage data"
// @Success 201 {object} models.Stage
// @Router /stages [post]
func (h *StageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateStageInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stage, err := h.stageService.CreateStage(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"stage": stage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByID godoc
// @Summary Get one stage
// @Tags stages
// @Produce json
// @Param stageID path string true "Stage ID"
// @Success 200 {object} models.Stage
// @Router /stages/{stageID} [get]
func (h *StageHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	stage, err := h.stageService.GetStage(r.Context(), chi.URLParam(r, "stageID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stage": stage}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GenerateBracket godoc
// @Summary Generate a single elimination bracket for a stage
// @Tags stages
// @Accept json
// @Produce json
// @Param stageID path string true "Stage ID"
// @Success 201 {object} bracket.Snapshot
// @Router /stages/{stageID}/bracket/generate [post]
func (h *StageHandler) GenerateBracket(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Seeds []services.SeedInput `json:"seeds"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	snap, err := h.stageService.GenerateEliminationBracket(r.Context(), chi.URLParam(r, "stageID"), input.Seeds)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": snap}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// PairSwissRound godoc
// @Summary Pair the next round of a swiss stage by record
// @Tags stages
// @Produce json
// @Param stageID path string true "Stage ID"
// @Success 201 {object} bracket.Snapshot
// @Router /stages/{stageID}/bracket/pair-swiss [post]
func (h *StageHandler) PairSwissRound(w http.ResponseWriter, r *http.Request) {
	snap, err := h.stageService.PairNextSwissRound(r.Context(), chi.URLParam(r, "stageID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": snap}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RecordResult godoc
// @Summary Record a match result and advance alliances
// @Tags stages
// @Accept json
// @Param stageID path string true "Stage ID"
// @Param matchID path string true "Match ID"
// @Param input body services.RecordResultInput true "Result data"
// @Success 204
// @Router /stages/{stageID}/matches/{matchID}/result [post]
func (h *StageHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	var input services.RecordResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	err := h.stageService.RecordResult(r.Context(), chi.URLParam(r, "stageID"), chi.URLParam(r, "matchID"), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Bracket godoc
// @Summary Get the stage's bracket snapshot
// @Tags brackets
// @Produce json
// @Param stageID path string true "Stage ID"
// @Success 200 {object} bracket.Snapshot
// @Router /stages/{stageID}/bracket [get]
func (h *StageHandler) Bracket(w http.ResponseWriter, r *http.Request) {
	snap, err := h.bracketService.BuildSnapshot(r.Context(), chi.URLParam(r, "stageID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": snap}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Validation godoc
// @Summary Check the stage's bracket for consistency issues
// @Tags brackets
// @Produce json
// @Param stageID path string true "Stage ID"
// @Success 200 {object} bracket.ValidationResult
// @Router /stages/{stageID}/bracket/validation [get]
func (h *StageHandler) Validation(w http.ResponseWriter, r *http.Request) {
	result, err := h.bracketService.Validation(r.Context(), chi.URLParam(r, "stageID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Stats godoc
// @Summary Summary statistics for the stage's bracket
// @Tags brackets
// @Produce json
// @Param stageID path string true "Stage ID"
// @Success 200 {object} bracket.Stats
// @Router /stages/{stageID}/bracket/stats [get]
func (h *StageHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.bracketService.Stats(r.Context(), chi.URLParam(r, "stageID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, stats, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Normalized godoc
// @Summary Display-ready columns and buckets for the stage's bracket
// @Tags brackets
// @Produce json
// @Param stageID path string true "Stage ID"
// @Success 200 {object} bracket.NormalizedBracket
// @Router /stages/{stageID}/bracket/normalized [get]
func (h *StageHandler) Normalized(w http.ResponseWriter, r *http.Request) {
	normalized, err := h.bracketService.Normalized(r.Context(), chi.URLParam(r, "stageID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if normalized == nil {
		mapServiceErrorToHTTP(w, r, errors.New("normalized bracket is nil for a loaded stage"))
		return
	}

	if err := writeJSON(w, http.StatusOK, normalized, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Render godoc
// @Summary Bracket in the dashboard renderer's match format
// @Tags brackets
// @Produce json
// @Param stageID path string true "Stage ID"
// @Success 200 {array} bracket.RenderMatch
// @Router /stages/{stageID}/bracket/render [get]
func (h *StageHandler) Render(w http.ResponseWriter, r *http.Request) {
	rendered, err := h.bracketService.RenderFormat(r.Context(), chi.URLParam(r, "stageID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": rendered}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
