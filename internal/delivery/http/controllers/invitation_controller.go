package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"convoke/internal/delivery/http/helpers"
	"convoke/internal/delivery/http/middleware"
	"convoke/internal/domain"
)

// InviteRequest is the request body for POST /events/{eventID}/invitations.
type InviteRequest struct {
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at"`
}

// Validate implements Validator.
func (i InviteRequest) Validate() []string {
	var errs []string
	if i.Email == "" {
		errs = append(errs, "email is required")
	} else if !emailRegex.MatchString(i.Email) {
		errs = append(errs, "email format is invalid")
	}
	if i.ExpiresAt != "" {
		if _, err := time.Parse(time.RFC3339, i.ExpiresAt); err != nil {
			errs = append(errs, "expires_at must be RFC3339")
		}
	}
	return errs
}

// InviteSuccessResponse is the success response envelope for POST /events/{eventID}/invitations (201).
type InviteSuccessResponse struct {
	Data  *domain.Invitation `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// InvitationInboxSuccessResponse is the success response envelope for GET /invitations (200).
type InvitationInboxSuccessResponse struct {
	Data  []*domain.InvitationWithEvent `json:"data"`
	Error *helpers.APIError             `json:"error"`
}

// InvitationPage is the response body for GET /events/{eventID}/invitations.
type InvitationPage struct {
	Invitations []*domain.Invitation   `json:"invitations"`
	Pagination  helpers.PaginationMeta `json:"pagination"`
}

// InvitationPageSuccessResponse is the success response envelope for GET /events/{eventID}/invitations (200).
type InvitationPageSuccessResponse struct {
	Data  InvitationPage    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RespondRequest is the request body for POST /invitations/{invitationID}/respond.
type RespondRequest struct {
	Accept *bool `json:"accept"`
}

// Validate implements Validator.
func (r RespondRequest) Validate() []string {
	var errs []string
	if r.Accept == nil {
		errs = append(errs, "accept is required")
	}
	return errs
}

type InvitationController struct {
	Logger      *slog.Logger
	Service     domain.InvitationService
	UserService domain.UserService
}

func NewInvitationController(logger *slog.Logger, svc domain.InvitationService, userSvc domain.UserService) *InvitationController {
	return &InvitationController{
		Logger:      logger,
		Service:     svc,
		UserService: userSvc,
	}
}

// Invite godoc
// @Summary Invite a user to a private event
// @Description Creates a pending invitation for the email and sends a notification. Only private events accept invitations, the invitee must be a registered user, and active invitations plus confirmed attendance cannot exceed the event capacity.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param invitation body InviteRequest true "Invitee email and optional expiry"
// @Success 201 {object} controllers.InviteSuccessResponse "data contains the created invitation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict or capacity_exceeded"
// @Failure 422 {object} helpers.APIResponse "error.code: policy_violation"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [post]
func (c *InvitationController) Invite(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req InviteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	_, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, _ := time.Parse(time.RFC3339, req.ExpiresAt)
		expiresAt = &t
	}
	inv, err := c.Service.Invite(r.Context(), eventID, req.Email, expiresAt)
	if err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// ListMyInvitations godoc
// @Summary List the caller's invitations
// @Description Returns the authenticated user's invitations paired with their events, event statuses derived for the current time.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.InvitationInboxSuccessResponse "data contains invitations with events"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations [get]
func (c *InvitationController) ListMyInvitations(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	user, err := c.UserService.GetByID(r.Context(), userID)
	if err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	items, err := c.Service.ListForInvitee(r.Context(), user.Email)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}

// ListEventInvitations godoc
// @Summary List invitations for an event
// @Description Returns a page of the event's invitations, optionally filtered by an email search term. Only the event owner may list.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param search query string false "Email search term"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.InvitationPageSuccessResponse "data contains invitations and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [get]
func (c *InvitationController) ListEventInvitations(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	search := r.URL.Query().Get("search")
	params := helpers.ParsePagination(r)
	invitations, total, err := c.Service.ListForEvent(r.Context(), eventID, userID, search, params)
	if err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, InvitationPage{
		Invitations: invitations,
		Pagination:  helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// Respond godoc
// @Summary Respond to an invitation
// @Description Accepts or rejects a pending invitation. Accepting confirms attendance, subject to the capacity check. Responding twice, after the event starts, or after the invitation expires fails.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Param response body RespondRequest true "Accept or reject"
// @Success 200 {object} helpers.APIResponse "data is null on success"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict or capacity_exceeded"
// @Failure 422 {object} helpers.APIResponse "error.code: invalid_transition"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /invitations/{invitationID}/respond [post]
func (c *InvitationController) Respond(w http.ResponseWriter, r *http.Request) {
	invitationID := r.PathValue("invitationID")
	if invitationID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing invitationID")
		return
	}
	var req RespondRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Respond(r.Context(), invitationID, *req.Accept, userID); err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nil)
}
