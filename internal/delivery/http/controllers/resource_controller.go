package controllers

import (
	"log/slog"
	"net/http"

	"convoke/internal/delivery/http/helpers"
	"convoke/internal/delivery/http/middleware"
	"convoke/internal/domain"
)

// AddResourceRequest is the request body for POST /events/{eventID}/resources.
type AddResourceRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// Validate implements Validator.
func (a AddResourceRequest) Validate() []string {
	var errs []string
	if a.Name == "" {
		errs = append(errs, "name is required")
	}
	if a.URL == "" {
		errs = append(errs, "url is required")
	}
	if a.Type != "" && !domain.ValidResourceType(a.Type) {
		errs = append(errs, "type must be link, document, or video")
	}
	return errs
}

// ResourceSuccessResponse is the success response envelope for POST /events/{eventID}/resources (201).
type ResourceSuccessResponse struct {
	Data  *domain.EventResource `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ResourceListSuccessResponse is the success response envelope for GET /events/{eventID}/resources (200).
type ResourceListSuccessResponse struct {
	Data  []*domain.EventResource `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

type ResourceController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewResourceController(logger *slog.Logger, svc domain.EventService) *ResourceController {
	return &ResourceController{
		Logger:  logger,
		Service: svc,
	}
}

// AddResource godoc
// @Summary Attach a resource to an event
// @Description Adds a link resource to the event. Only the event owner may add resources. Type defaults to link.
// @Tags resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param resource body AddResourceRequest true "Resource data"
// @Success 201 {object} controllers.ResourceSuccessResponse "data contains the created resource"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/resources [post]
func (c *ResourceController) AddResource(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req AddResourceRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	res, err := c.Service.AddResource(r.Context(), eventID, userID, domain.AddResourceInput{
		Name: req.Name,
		URL:  req.URL,
		Type: req.Type,
	})
	if err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, res)
}

// ListResources godoc
// @Summary List an event's resources
// @Description Returns the link resources attached to the event.
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ResourceListSuccessResponse "data contains the resources"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/resources [get]
func (c *ResourceController) ListResources(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	resources, err := c.Service.ListResources(r.Context(), eventID)
	if err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, resources)
}

// RemoveResource godoc
// @Summary Remove a resource from an event
// @Description Deletes the resource. Only the event owner may remove resources. A resource belonging to a different event is reported as not found.
// @Tags resources
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param resourceID path string true "Resource ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data is null on success"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/resources/{resourceID} [delete]
func (c *ResourceController) RemoveResource(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	resourceID := r.PathValue("resourceID")
	if eventID == "" || resourceID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID or resourceID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.RemoveResource(r.Context(), eventID, resourceID, userID); err != nil {
		if helpers.WriteDomainError(w, err) {
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nil)
}
