package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"library-circulation/internal/domain"
	"library-circulation/internal/service"
)

type CatalogHandler struct {
	catalog service.CatalogService
}

func NewCatalogHandler(catalog service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type registerUserRequest struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Role        domain.UserRole `json:"role"`
	Coordinator bool            `json:"coordinator"`
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

type addResourceRequest struct {
	ID            string                   `json:"id"`
	Title         string                   `json:"title"`
	Author        string                   `json:"author"`
	Category      string                   `json:"category"`
	Type          domain.ResourceType      `json:"type"`
	Condition     domain.ResourceCondition `json:"condition"`
	DownloadLimit int                      `json:"download_limit"`
}

type conditionRequest struct {
	Condition domain.ResourceCondition `json:"condition"`
}

func (h *CatalogHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user := &domain.User{
		ID:          req.ID,
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
		Coordinator: req.Coordinator,
	}
	if err := h.catalog.RegisterUser(r.Context(), user); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *CatalogHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := actingFor(r, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.catalog.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *CatalogHandler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.catalog.SetUserActive(r.Context(), mux.Vars(r)["id"], req.Active)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *CatalogHandler) AddResource(w http.ResponseWriter, r *http.Request) {
	var req addResourceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res := &domain.Resource{
		ID:            req.ID,
		Title:         req.Title,
		Author:        req.Author,
		Category:      req.Category,
		Type:          req.Type,
		Condition:     req.Condition,
		DownloadLimit: req.DownloadLimit,
	}
	if err := h.catalog.AddResource(r.Context(), res); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapResource(res))
}

func (h *CatalogHandler) GetResource(w http.ResponseWriter, r *http.Request) {
	res, err := h.catalog.GetResource(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapResource(res))
}

func (h *CatalogHandler) UpdateCondition(w http.ResponseWriter, r *http.Request) {
	var req conditionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.catalog.UpdateCondition(r.Context(), mux.Vars(r)["id"], req.Condition)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapResource(res))
}
