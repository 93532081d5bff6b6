package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/robostage/backend/services"
)

const maxLogoSize = 5 << 20 // 5MB

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(teamService services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

// Create godoc
// @Summary Register a robotics team
// @Tags teams
// @Accept json
// @Produce json
// @Param input body services.CreateTeamInput true "Team data"
// @Success 201 {object} models.Team
// @Router /teams [post]
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTeamInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.Create(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List godoc
// @Summary List all registered teams
// @Tags teams
// @Produce json
// @Success 200 {array} models.Team
// @Router /teams [get]
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByID godoc
// @Summary Get one team
// @Tags teams
// @Produce json
// @Param teamID path int true "Team ID"
// @Success 200 {object} models.Team
// @Router /teams/{teamID} [get]
func (h *TeamHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	teamID, err := teamIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.GetByID(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadLogo godoc
// @Summary Upload a team logo
// @Tags teams
// @Accept multipart/form-data
// @Produce json
// @Param teamID path int true "Team ID"
// @Param logo formData file true "Logo image"
// @Success 200 {object} models.Team
// @Router /teams/{teamID}/logo [post]
func (h *TeamHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	teamID, err := teamIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxLogoSize); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("logo file is required: %w", err))
		return
	}
	defer file.Close()

	team, err := h.teamService.UploadLogo(r.Context(), teamID, file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete godoc
// @Summary Delete a team
// @Tags teams
// @Param teamID path int true "Team ID"
// @Success 204
// @Router /teams/{teamID} [delete]
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	teamID, err := teamIDParam(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.teamService.Delete(r.Context(), teamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func teamIDParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "teamID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid team id %q", raw)
	}
	return id, nil
}
