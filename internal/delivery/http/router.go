package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"confbooking/internal/delivery/http/controllers"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	conferenceController *controllers.ConferenceController,
	userController *controllers.UserController,
	bookingController *controllers.BookingController,
) *http.ServeMux {
	mux := http.NewServeMux()

	// Conferences
	mux.HandleFunc("POST /conferences", conferenceController.CreateConference)
	mux.HandleFunc("GET /conferences", conferenceController.ListConferences)
	mux.HandleFunc("GET /conferences/{name}", conferenceController.GetConference)

	// Users
	mux.HandleFunc("POST /users", userController.CreateUser)
	mux.HandleFunc("GET /users/{userID}/bookings", userController.ListUserBookings)

	// Bookings
	mux.HandleFunc("POST /bookings", bookingController.CreateBooking)
	mux.HandleFunc("GET /bookings/{bookingID}", bookingController.GetBooking)
	mux.HandleFunc("POST /bookings/{bookingID}/confirm", bookingController.ConfirmBooking)
	mux.HandleFunc("DELETE /bookings/{bookingID}", bookingController.CancelBooking)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
