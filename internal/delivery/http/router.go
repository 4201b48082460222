package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"convoke/internal/delivery/http/controllers"
	"convoke/internal/delivery/http/middleware"
	"convoke/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Routes that require a session token are wrapped with the auth middleware;
// signup, login, activation, the public event list, and event detail are open.
func NewRouter(
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	attendanceController *controllers.AttendanceController,
	invitationController *controllers.InvitationController,
	resourceController *controllers.ResourceController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/activate", authController.Activate)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Events
	mux.HandleFunc("GET /events/public", eventController.ListPublicEvents)
	mux.HandleFunc("GET /events/managed", auth(eventController.ListManagedEvents))
	mux.HandleFunc("GET /events/attended", auth(attendanceController.ListAttendedEvents))
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /events/{eventID}", eventController.GetEventByID)
	mux.HandleFunc("POST /events/{eventID}/cancel", auth(eventController.CancelEvent))
	mux.HandleFunc("PATCH /events/{eventID}/status", auth(eventController.UpdateEventStatus))

	// Attendance
	mux.HandleFunc("POST /events/{eventID}/attendance", auth(attendanceController.ConfirmAttendance))
	mux.HandleFunc("GET /events/{eventID}/attendees", auth(attendanceController.ListAttendees))

	// Invitations
	mux.HandleFunc("POST /events/{eventID}/invitations", auth(invitationController.Invite))
	mux.HandleFunc("GET /events/{eventID}/invitations", auth(invitationController.ListEventInvitations))
	mux.HandleFunc("GET /invitations", auth(invitationController.ListMyInvitations))
	mux.HandleFunc("POST /invitations/{invitationID}/respond", auth(invitationController.Respond))

	// Resources
	mux.HandleFunc("POST /events/{eventID}/resources", auth(resourceController.AddResource))
	mux.HandleFunc("GET /events/{eventID}/resources", auth(resourceController.ListResources))
	mux.HandleFunc("DELETE /events/{eventID}/resources/{resourceID}", auth(resourceController.RemoveResource))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
