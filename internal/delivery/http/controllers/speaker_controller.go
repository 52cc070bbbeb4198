package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	h "eventscout/internal/delivery/http/helpers"
	"eventscout/internal/delivery/http/middleware"
	"eventscout/internal/domain"
)

type SpeakerController struct {
	Logger  *slog.Logger
	Service domain.SpeakerService
}

func NewSpeakerController(logger *slog.Logger, svc domain.SpeakerService) *SpeakerController {
	return &SpeakerController{
		Logger:  logger,
		Service: svc,
	}
}

// ApplyRequest is the request body for POST /speakers/apply
type ApplyRequest struct {
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Location   string   `json:"location"`
	Title      string   `json:"title"`
	Industry   string   `json:"industry"`
	Expertise  []string `json:"expertise"`
	ShortBio   string   `json:"shortBio"`
	LongBio    string   `json:"longBio"`
	Headshot   string   `json:"headshot"`
	Website    string   `json:"website,omitempty"`
	LinkedIn   string   `json:"linkedin,omitempty"`
	Twitter    string   `json:"twitter,omitempty"`
	Facebook   string   `json:"facebook,omitempty"`
	Experience string   `json:"experience,omitempty"`
	SampleVid  string   `json:"sampleVideo,omitempty"`
	Topics     []string `json:"topics"`
}

// Validate implements Validator.
func (a ApplyRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(a.FirstName) == "" {
		errs = append(errs, "firstName is required")
	}
	if strings.TrimSpace(a.LastName) == "" {
		errs = append(errs, "lastName is required")
	}
	email := strings.TrimSpace(strings.ToLower(a.Email))
	if email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegexp.MatchString(email) {
		errs = append(errs, "invalid email format")
	}
	if strings.TrimSpace(a.Industry) == "" {
		errs = append(errs, "industry is required")
	}
	return errs
}

// List godoc
// @Summary List speakers
// @Tags speakers
// @Produce json
// @Param search query string false "Search text"
// @Param industry query string false "Industry"
// @Param verified query boolean false "Verified only"
// @Success 200 {object} helpers.APIResponse "data contains the speaker list"
// @Router /speakers [get]
func (c *SpeakerController) List(w http.ResponseWriter, r *http.Request) {
	filters := &domain.SpeakerFilters{
		Search:   r.URL.Query().Get("search"),
		Industry: r.URL.Query().Get("industry"),
	}
	if v := r.URL.Query().Get("verified"); v != "" {
		verified, err := strconv.ParseBool(v)
		if err != nil {
			h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "verified must be a boolean")
			return
		}
		filters.Verified = &verified
	}
	speakers, err := c.Service.List(r.Context(), filters)
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, speakers)
}

func (c *SpeakerController) Get(w http.ResponseWriter, r *http.Request) {
	speaker, err := c.Service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, speaker)
}

// Apply godoc
// @Summary Submit a speaker application
// @Description Applications start unverified; verification is an admin action.
// @Tags speakers
// @Accept json
// @Produce json
// @Param body body ApplyRequest true "Application data"
// @Success 201 {object} helpers.APIResponse "data contains the unverified profile"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /speakers/apply [post]
func (c *SpeakerController) Apply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	profile, err := c.Service.Apply(r.Context(), &domain.SpeakerApplicationPayload{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      strings.TrimSpace(strings.ToLower(req.Email)),
		Phone:      req.Phone,
		Location:   req.Location,
		Title:      req.Title,
		Industry:   req.Industry,
		Expertise:  req.Expertise,
		ShortBio:   req.ShortBio,
		LongBio:    req.LongBio,
		Headshot:   req.Headshot,
		Website:    req.Website,
		LinkedIn:   req.LinkedIn,
		Twitter:    req.Twitter,
		Facebook:   req.Facebook,
		Experience: req.Experience,
		SampleVid:  req.SampleVid,
		Topics:     req.Topics,
	})
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, profile)
}

func (c *SpeakerController) Follow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
		return
	}
	if err := c.Service.Follow(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"following": true})
}

func (c *SpeakerController) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
		return
	}
	if err := c.Service.Unfollow(r.Context(), userID, r.PathValue("id")); err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"following": false})
}

func (c *SpeakerController) FollowingStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "not authenticated")
		return
	}
	following, err := c.Service.FollowingStatus(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, map[string]bool{"following": following})
}

func (c *SpeakerController) Events(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.SpeakerEvents(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, events)
}

func (c *SpeakerController) Dashboard(w http.ResponseWriter, r *http.Request) {
	data, err := c.Service.Dashboard(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(c.Logger, w, r, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, data)
}
