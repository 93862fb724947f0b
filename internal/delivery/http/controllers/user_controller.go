package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"confbooking/internal/delivery/http/helpers"
	"confbooking/internal/domain"
)

type UserController struct {
	Logger   *slog.Logger
	Registry domain.RegistryService
	Bookings domain.BookingService
}

func NewUserController(logger *slog.Logger, registry domain.RegistryService, bookings domain.BookingService) *UserController {
	return &UserController{
		Logger:   logger,
		Registry: registry,
		Bookings: bookings,
	}
}

// CreateUserRequest is the request body for POST /users.
type CreateUserRequest struct {
	ID               string   `json:"id"`
	InterestedTopics []string `json:"interested_topics"`
}

// Validate implements helpers.Validator.
func (r *CreateUserRequest) Validate() []string {
	r.ID = strings.TrimSpace(r.ID)
	if r.ID == "" {
		return []string{"id is required"}
	}
	return nil
}

// CreateUserSuccessResponse is the success response envelope for POST /users (201).
type CreateUserSuccessResponse struct {
	Data  *domain.User      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateUser godoc
// @Summary Register a user
// @Description Registers a new user with an optional list of interested topics. User ids are unique.
// @Tags users
// @Accept json
// @Produce json
// @Param body body controllers.CreateUserRequest true "User definition"
// @Success 201 {object} controllers.CreateUserSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (id already registered)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users [post]
func (c *UserController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	user, err := c.Registry.RegisterUser(r.Context(), req.ID, req.InterestedTopics)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, user)
}

// ListUserBookingsSuccessResponse is the success response envelope for GET /users/{userID}/bookings (200).
type ListUserBookingsSuccessResponse struct {
	Data  []*domain.Booking `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListUserBookings godoc
// @Summary List a user's bookings
// @Description Returns every booking the user has made, across all statuses, in creation order.
// @Tags users
// @Produce json
// @Param userID path string true "User ID"
// @Success 200 {object} controllers.ListUserBookingsSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /users/{userID}/bookings [get]
func (c *UserController) ListUserBookings(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	if userID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing userID")
		return
	}

	bookings, err := c.Bookings.ListUserBookings(r.Context(), userID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, bookings)
}

func (c *UserController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := helpers.StatusForError(err)
	if status == http.StatusInternalServerError {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteJSONError(w, status, code, err.Error())
}
