package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/robostage/backend/models"
	"github.com/robostage/backend/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
	stageService      services.StageService
}

func NewTournamentHandler(tournamentService services.TournamentService, stageService services.StageService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService, stageService: stageService}
}

// Create godoc
// @Summary Create a tournament
// @Tags tournaments
// @Accept json
// @Produce json
// @Param input body services.CreateTournamentInput true "Tournament data"
// @Success 201 {object} models.Tournament
// @Router /tournaments [post]
func (h *TournamentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List godoc
// @Summary List tournaments, most recent first
// @Tags tournaments
// @Produce json
// @Success 200 {array} models.Tournament
// @Router /tournaments [get]
func (h *TournamentHandler) List(w http.ResponseWriter, r *http.Request) {
	tournaments, err := h.tournamentService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournaments": tournaments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByID godoc
// @Summary Get one tournament with its stages
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} models.Tournament
// @Router /tournaments/{tournamentID} [get]
func (h *TournamentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.GetByID(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListStages godoc
// @Summary List a tournament's stages
// @Tags tournaments
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {array} models.Stage
// @Router /tournaments/{tournamentID}/stages [get]
func (h *TournamentHandler) ListStages(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stages, err := h.stageService.ListStages(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stages": stages}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateStatus godoc
// @Summary Move a tournament through its lifecycle
// @Tags tournaments
// @Accept json
// @Produce json
// @Param tournamentID path int true "Tournament ID"
// @Success 200 {object} models.Tournament
// @Router /tournaments/{tournamentID}/status [put]
func (h *TournamentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Status models.TournamentStatus `json:"status"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.UpdateStatus(r.Context(), tournamentID, input.Status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete godoc
// @Summary Delete a tournament
// @Tags tournaments
// @Param tournamentID path int true "Tournament ID"
// @Success 204
// @Router /tournaments/{tournamentID} [delete]
func (h *TournamentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.tournamentService.Delete(r.Context(), tournamentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func tournamentIDParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "tournamentID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid tournament id %q", raw)
	}
	return id, nil
}
