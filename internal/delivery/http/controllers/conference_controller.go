package controllers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"confbooking/internal/delivery/http/helpers"
	"confbooking/internal/domain"
)

type ConferenceController struct {
	Logger  *slog.Logger
	Service domain.RegistryService
}

func NewConferenceController(logger *slog.Logger, svc domain.RegistryService) *ConferenceController {
	return &ConferenceController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateConferenceRequest is the request body for POST /conferences.
type CreateConferenceRequest struct {
	Name       string   `json:"name"`
	Location   string   `json:"location"`
	Topics     []string `json:"topics"`
	StartTime  string   `json:"start_time"`
	EndTime    string   `json:"end_time"`
	TotalSlots int      `json:"total_slots"`

	start time.Time
	end   time.Time
}

// Validate implements helpers.Validator.
func (r *CreateConferenceRequest) Validate() []string {
	var errs []string
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		errs = append(errs, "name is required")
	}
	if r.StartTime == "" {
		errs = append(errs, "start_time is required")
	} else {
		t, err := time.Parse(time.RFC3339, r.StartTime)
		if err != nil {
			errs = append(errs, "start_time must be RFC 3339")
		} else {
			r.start = t
		}
	}
	if r.EndTime == "" {
		errs = append(errs, "end_time is required")
	} else {
		t, err := time.Parse(time.RFC3339, r.EndTime)
		if err != nil {
			errs = append(errs, "end_time must be RFC 3339")
		} else {
			r.end = t
		}
	}
	if r.TotalSlots <= 0 {
		errs = append(errs, "total_slots must be positive")
	}
	return errs
}

// CreateConferenceSuccessResponse is the success response envelope for POST /conferences (201).
type CreateConferenceSuccessResponse struct {
	Data  *domain.Conference `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// CreateConference godoc
// @Summary Register a conference
// @Description Registers a new conference with a half-open [start_time, end_time) window and a fixed slot capacity. Conference names are unique.
// @Tags conferences
// @Accept json
// @Produce json
// @Param body body controllers.CreateConferenceRequest true "Conference definition"
// @Success 201 {object} controllers.CreateConferenceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (name already registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences [post]
func (c *ConferenceController) CreateConference(w http.ResponseWriter, r *http.Request) {
	var req CreateConferenceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	conf, err := c.Service.RegisterConference(r.Context(), req.Name, req.Location, req.Topics, req.start, req.end, req.TotalSlots)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, conf)
}

// ListConferencesSuccessResponse is the success response envelope for GET /conferences (200).
type ListConferencesSuccessResponse struct {
	Data  []*domain.Conference `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ListConferences godoc
// @Summary List conferences
// @Description Returns all registered conferences ordered by start time, then name.
// @Tags conferences
// @Produce json
// @Success 200 {object} controllers.ListConferencesSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences [get]
func (c *ConferenceController) ListConferences(w http.ResponseWriter, r *http.Request) {
	confs, err := c.Service.ListConferences(r.Context())
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, confs)
}

// GetConferenceSuccessResponse is the success response envelope for GET /conferences/{name} (200).
type GetConferenceSuccessResponse struct {
	Data  *domain.Conference `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// GetConference godoc
// @Summary Get a conference by name
// @Tags conferences
// @Produce json
// @Param name path string true "Conference name"
// @Success 200 {object} controllers.GetConferenceSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conferences/{name} [get]
func (c *ConferenceController) GetConference(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing conference name")
		return
	}

	conf, err := c.Service.GetConference(r.Context(), name)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, conf)
}

func (c *ConferenceController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := helpers.StatusForError(err)
	if status == http.StatusInternalServerError {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteJSONError(w, status, code, err.Error())
}
