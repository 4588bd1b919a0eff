package api

import (
	"net/http"

	"github.com/dcastillo/tasktrail-api/internal/api/shared"
	"github.com/dcastillo/tasktrail-api/internal/service"
)

// TeamHandler handles team API requests.
type TeamHandler struct {
	teams service.TeamService
}

// NewTeamHandler creates a new TeamHandler with the given dependencies.
func NewTeamHandler(teams service.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// Create handles POST /teams.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTeamRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	team, err := h.teams.CreateTeam(r.Context(), req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create team")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, team)
}

// Get handles GET /teams/{id}.
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	teamID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	team, err := h.teams.GetTeam(r.Context(), teamID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve team")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, team)
}

// List handles GET /teams.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.ListTeams(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list teams")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, teams)
}

// Delete handles DELETE /teams/{id}.
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	teamID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.teams.DeleteTeam(r.Context(), teamID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete team")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
