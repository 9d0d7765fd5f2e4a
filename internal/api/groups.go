package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/pkg/response"
)

// CreateGroup handles POST /groups
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req service.GroupInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	group, err := h.groups.CreateGroup(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusCreated, group)
}

// ListGroups handles GET /groups
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ListGroups(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, groups)
}

// GetGroup handles GET /groups/{groupID}
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.groups.GetGroup(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, group)
}

// UpdateGroup handles PUT /groups/{groupID}
func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req service.GroupInput
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	group, err := h.groups.UpdateGroup(r.Context(), chi.URLParam(r, "groupID"), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, group)
}

// DeleteGroup handles DELETE /groups/{groupID}
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.groups.DeleteGroup(r.Context(), chi.URLParam(r, "groupID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addMembersRequest struct {
	Members []service.MemberInput `json:"members"`
}

// AddMembers handles POST /groups/{groupID}/members
func (h *Handler) AddMembers(w http.ResponseWriter, r *http.Request) {
	var req addMembersRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	group, err := h.groups.AddMembers(r.Context(), chi.URLParam(r, "groupID"), req.Members)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, group)
}
