package controllers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"confbooking/internal/delivery/http/helpers"
	"confbooking/internal/domain"
)

// uuidRegexBooking matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegexBooking = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type BookingController struct {
	Logger  *slog.Logger
	Service domain.BookingService
}

func NewBookingController(logger *slog.Logger, svc domain.BookingService) *BookingController {
	return &BookingController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateBookingRequest is the request body for POST /bookings.
type CreateBookingRequest struct {
	UserID         string `json:"user_id"`
	ConferenceName string `json:"conference_name"`
}

// Validate implements helpers.Validator.
func (r *CreateBookingRequest) Validate() []string {
	var errs []string
	r.UserID = strings.TrimSpace(r.UserID)
	r.ConferenceName = strings.TrimSpace(r.ConferenceName)
	if r.UserID == "" {
		errs = append(errs, "user_id is required")
	}
	if r.ConferenceName == "" {
		errs = append(errs, "conference_name is required")
	}
	return errs
}

// CreateBookingSuccessResponse is the success response envelope for POST /bookings (201).
type CreateBookingSuccessResponse struct {
	Data  *domain.Booking   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateBooking godoc
// @Summary Book a conference
// @Description Books a conference for a user. The booking is created Confirmed when a slot is free and Waitlisted otherwise. Fails when the conference has started, the user already holds an active booking for it, or the window overlaps another confirmed booking of the same user.
// @Tags bookings
// @Accept json
// @Produce json
// @Param body body controllers.CreateBookingRequest true "Booking request"
// @Success 201 {object} controllers.CreateBookingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown user or conference)"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (started, duplicate, or overlapping)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings [post]
func (c *BookingController) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	bookingID, err := c.Service.BookConference(r.Context(), req.UserID, req.ConferenceName)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	booking, err := c.Service.GetBooking(r.Context(), bookingID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, booking)
}

// GetBookingSuccessResponse is the success response envelope for GET /bookings/{bookingID} (200).
type GetBookingSuccessResponse struct {
	Data  *domain.Booking   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetBooking godoc
// @Summary Get a booking by id
// @Tags bookings
// @Produce json
// @Param bookingID path string true "Booking ID (UUID)"
// @Success 200 {object} controllers.GetBookingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{bookingID} [get]
func (c *BookingController) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := c.bookingID(w, r)
	if !ok {
		return
	}

	booking, err := c.Service.GetBooking(r.Context(), bookingID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, booking)
}

// ConfirmBookingSuccessResponse is the success response envelope for POST /bookings/{bookingID}/confirm (200).
type ConfirmBookingSuccessResponse struct {
	Data  *ConfirmBookingResult `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ConfirmBookingResult reports the outcome of a confirmation attempt.
type ConfirmBookingResult struct {
	Confirmed bool            `json:"confirmed"`
	Booking   *domain.Booking `json:"booking"`
}

// ConfirmBooking godoc
// @Summary Confirm a waitlisted booking
// @Description Promotes a waitlisted booking to Confirmed. When the confirmation deadline has passed the booking is moved to the back of the waitlist instead and confirmed is false.
// @Tags bookings
// @Produce json
// @Param bookingID path string true "Booking ID (UUID)"
// @Success 200 {object} controllers.ConfirmBookingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not waitlisted, started, no slot, or overlapping)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{bookingID}/confirm [post]
func (c *BookingController) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := c.bookingID(w, r)
	if !ok {
		return
	}

	confirmed, err := c.Service.ConfirmWaitlistedBooking(r.Context(), bookingID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	booking, err := c.Service.GetBooking(r.Context(), bookingID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &ConfirmBookingResult{
		Confirmed: confirmed,
		Booking:   booking,
	})
}

// CancelBookingSuccessResponse is the success response envelope for DELETE /bookings/{bookingID} (200).
type CancelBookingSuccessResponse struct {
	Data  *domain.Booking   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CancelBooking godoc
// @Summary Cancel a booking
// @Description Cancels a Confirmed or Waitlisted booking. Canceling a confirmed booking frees its slot and offers it to the head of the waitlist.
// @Tags bookings
// @Produce json
// @Param bookingID path string true "Booking ID (UUID)"
// @Success 200 {object} controllers.CancelBookingSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already canceled or started)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /bookings/{bookingID} [delete]
func (c *BookingController) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := c.bookingID(w, r)
	if !ok {
		return
	}

	if err := c.Service.CancelBooking(r.Context(), bookingID); err != nil {
		c.writeError(w, r, err)
		return
	}
	booking, err := c.Service.GetBooking(r.Context(), bookingID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, booking)
}

func (c *BookingController) bookingID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("bookingID")
	if id == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing bookingID")
		return "", false
	}
	if !uuidRegexBooking.MatchString(id) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid bookingID")
		return "", false
	}
	return id, true
}

func (c *BookingController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := helpers.StatusForError(err)
	if status == http.StatusInternalServerError {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteJSONError(w, status, code, err.Error())
}
