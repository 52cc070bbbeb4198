package controllers

import (
	"log/slog"
	"net/http"
	"strconv"

	h "eventscout/internal/delivery/http/helpers"
	"eventscout/internal/domain"
)

// AdminController serves the admin dashboard and management endpoints.
// Role enforcement happens in the router via RequireRole.
type AdminController struct {
	Logger  *slog.Logger
	Service domain.AdminService
}

func NewAdminController(logger *slog.Logger, svc domain.AdminService) *AdminController {
	return &AdminController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *AdminController) Overview(w http.ResponseWriter, r *http.Request) {
	data, err := c.Service.Overview(r.Context())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, data)
}

func (c *AdminController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var event domain.EventItem
	if !h.DecodeAndValidate(w, r, &event) {
		return
	}
	if event.Title == "" || event.Date == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "title and date are required")
		return
	}
	created, err := c.Service.CreateEvent(r.Context(), &event)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, created)
}

func (c *AdminController) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.Service.ListCategories(r.Context())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, categories)
}

func (c *AdminController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "category id must be an integer")
		return
	}
	var updates domain.CategoryUpdate
	if !h.DecodeAndValidate(w, r, &updates) {
		return
	}
	category, err := c.Service.UpdateCategory(r.Context(), id, &updates)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, category)
}

func (c *AdminController) ListAds(w http.ResponseWriter, r *http.Request) {
	ads, err := c.Service.ListAds(r.Context())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, ads)
}

func (c *AdminController) CreateAd(w http.ResponseWriter, r *http.Request) {
	var payload domain.AdPayload
	if !h.DecodeAndValidate(w, r, &payload) {
		return
	}
	ad, err := c.Service.CreateAd(r.Context(), &payload)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, ad)
}

func (c *AdminController) UpdateAd(w http.ResponseWriter, r *http.Request) {
	var payload domain.AdPayload
	if !h.DecodeAndValidate(w, r, &payload) {
		return
	}
	ad, err := c.Service.UpdateAd(r.Context(), r.PathValue("id"), &payload)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, ad)
}

func (c *AdminController) DeleteAd(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteAd(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (c *AdminController) SpeakerApplications(w http.ResponseWriter, r *http.Request) {
	applications, err := c.Service.SpeakerApplications(r.Context())
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, applications)
}
