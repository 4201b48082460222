package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"convoke/internal/delivery/http/helpers"
	"convoke/internal/delivery/http/middleware"
	"convoke/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInvitationService implements domain.InvitationService for handler tests.
type fakeInvitationService struct {
	inviteErr            error
	inviteResult         *domain.Invitation
	listForInviteeErr    error
	listForInviteeResult []*domain.InvitationWithEvent
	listForEventErr      error
	listForEventResult   []*domain.Invitation
	listForEventTotal    int
	respondErr           error
	lastInviteEventID    string
	lastInviteEmail      string
	lastInviteExpiresAt  *time.Time
	lastListEmail        string
	lastListEventID      string
	lastListCallerID     string
	lastListSearch       string
	lastListParams       domain.PaginationParams
	lastRespondID        string
	lastRespondAccept    bool
	lastRespondUserID    string
}

func (f *fakeInvitationService) Invite(ctx context.Context, eventID, inviteeEmail string, expiresAt *time.Time) (*domain.Invitation, error) {
	f.lastInviteEventID = eventID
	f.lastInviteEmail = inviteeEmail
	f.lastInviteExpiresAt = expiresAt
	if f.inviteErr != nil {
		return nil, f.inviteErr
	}
	if f.inviteResult != nil {
		return f.inviteResult, nil
	}
	return &domain.Invitation{ID: "inv-created", EventID: eventID, Email: inviteeEmail, Status: domain.InvitationPending}, nil
}

func (f *fakeInvitationService) ListForInvitee(ctx context.Context, email string) ([]*domain.InvitationWithEvent, error) {
	f.lastListEmail = email
	if f.listForInviteeErr != nil {
		return nil, f.listForInviteeErr
	}
	if f.listForInviteeResult != nil {
		return f.listForInviteeResult, nil
	}
	return []*domain.InvitationWithEvent{}, nil
}

func (f *fakeInvitationService) ListForEvent(ctx context.Context, eventID, callerID, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	f.lastListEventID = eventID
	f.lastListCallerID = callerID
	f.lastListSearch = search
	f.lastListParams = params
	if f.listForEventErr != nil {
		return nil, 0, f.listForEventErr
	}
	return f.listForEventResult, f.listForEventTotal, nil
}

func (f *fakeInvitationService) Respond(ctx context.Context, invitationID string, accept bool, userID string) error {
	f.lastRespondID = invitationID
	f.lastRespondAccept = accept
	f.lastRespondUserID = userID
	return f.respondErr
}

func TestInvitationController_Invite(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantErrCode    string
		wantBodySubstr string
	}{
		{
			name:       "success",
			body:       `{"email":"guest@example.com"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "success with expiry",
			body:       `{"email":"guest@example.com","expires_at":"2026-04-01T12:00:00Z"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:           "invalid email",
			body:           `{"email":"not-an-email"}`,
			wantStatus:     http.StatusBadRequest,
			wantErrCode:    helpers.ErrCodeBadRequest,
			wantBodySubstr: "email format is invalid",
		},
		{
			name:           "invalid expiry",
			body:           `{"email":"guest@example.com","expires_at":"next week"}`,
			wantStatus:     http.StatusBadRequest,
			wantErrCode:    helpers.ErrCodeBadRequest,
			wantBodySubstr: "expires_at must be RFC3339",
		},
		{
			name:           "public event rejects invitations",
			body:           `{"email":"guest@example.com"}`,
			fakeErr:        domain.NewError(domain.KindPolicyViolation, "only private events accept invitations"),
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrCode:    string(domain.KindPolicyViolation),
			wantBodySubstr: "private events",
		},
		{
			name:           "unregistered invitee",
			body:           `{"email":"guest@example.com"}`,
			fakeErr:        domain.NewError(domain.KindNotFound, "no account found for guest@example.com"),
			wantStatus:     http.StatusNotFound,
			wantErrCode:    string(domain.KindNotFound),
			wantBodySubstr: "no account",
		},
		{
			name:           "event at capacity",
			body:           `{"email":"guest@example.com"}`,
			fakeErr:        domain.NewError(domain.KindCapacityExceeded, "event is at capacity"),
			wantStatus:     http.StatusConflict,
			wantErrCode:    string(domain.KindCapacityExceeded),
			wantBodySubstr: "capacity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeInvitationService{inviteErr: tt.fakeErr}
			ctrl := NewInvitationController(testLogger, fake, &fakeUserService{})
			req := httptest.NewRequest(http.MethodPost, "/events/ev-1/invitations", bytes.NewBufferString(tt.body))
			req.SetPathValue("eventID", "ev-1")
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			rr := httptest.NewRecorder()

			ctrl.Invite(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error)
				assert.Equal(t, "ev-1", fake.lastInviteEventID)
				assert.Equal(t, "guest@example.com", fake.lastInviteEmail)
				if tt.name == "success with expiry" {
					require.NotNil(t, fake.lastInviteExpiresAt)
					assert.Equal(t, time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC), fake.lastInviteExpiresAt.UTC())
				}
				return
			}
			require.NotNil(t, envelope.Error)
			assert.Equal(t, tt.wantErrCode, envelope.Error.Code)
			assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr)
		})
	}
}

func TestInvitationController_ListMyInvitations(t *testing.T) {
	t.Run("resolves caller email before listing", func(t *testing.T) {
		users := &fakeUserService{getByIDResult: &domain.User{ID: "user-123", Email: "ana@example.com"}}
		fake := &fakeInvitationService{}
		ctrl := NewInvitationController(testLogger, fake, users)
		req := httptest.NewRequest(http.MethodGet, "/invitations", nil)
		req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
		rr := httptest.NewRecorder()

		ctrl.ListMyInvitations(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "user-123", users.lastGetByID)
		assert.Equal(t, "ana@example.com", fake.lastListEmail)
	})

	t.Run("unknown caller", func(t *testing.T) {
		users := &fakeUserService{getByIDErr: domain.NewError(domain.KindNotFound, "user not found")}
		ctrl := NewInvitationController(testLogger, &fakeInvitationService{}, users)
		req := httptest.NewRequest(http.MethodGet, "/invitations", nil)
		req = req.WithContext(middleware.SetUserID(req.Context(), "ghost"))
		rr := httptest.NewRecorder()

		ctrl.ListMyInvitations(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("no user in context", func(t *testing.T) {
		ctrl := NewInvitationController(testLogger, &fakeInvitationService{}, &fakeUserService{})
		req := httptest.NewRequest(http.MethodGet, "/invitations", nil)
		rr := httptest.NewRecorder()

		ctrl.ListMyInvitations(rr, req)

		require.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestInvitationController_ListEventInvitations(t *testing.T) {
	t.Run("passes search and pagination, returns meta", func(t *testing.T) {
		fake := &fakeInvitationService{
			listForEventResult: []*domain.Invitation{
				{ID: "inv-1", EventID: "ev-1", Email: "a@example.com", Status: domain.InvitationPending},
			},
			listForEventTotal: 41,
		}
		ctrl := NewInvitationController(testLogger, fake, &fakeUserService{})
		req := httptest.NewRequest(http.MethodGet, "/events/ev-1/invitations?search=exam&page=3&page_size=20", nil)
		req.SetPathValue("eventID", "ev-1")
		req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
		rr := httptest.NewRecorder()

		ctrl.ListEventInvitations(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "exam", fake.lastListSearch)
		assert.Equal(t, domain.PaginationParams{Page: 3, PageSize: 20}, fake.lastListParams)
		assert.Equal(t, "user-123", fake.lastListCallerID)

		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		require.Nil(t, envelope.Error)
		data, ok := envelope.Data.(map[string]interface{})
		require.True(t, ok, "data must be object")
		pagination, ok := data["pagination"].(map[string]interface{})
		require.True(t, ok, "pagination must be object")
		assert.Equal(t, float64(41), pagination["total"])
		assert.Equal(t, float64(3), pagination["total_pages"])
	})

	t.Run("non-owner forbidden", func(t *testing.T) {
		fake := &fakeInvitationService{listForEventErr: domain.NewError(domain.KindForbidden, "only the owner may list invitations")}
		ctrl := NewInvitationController(testLogger, fake, &fakeUserService{})
		req := httptest.NewRequest(http.MethodGet, "/events/ev-1/invitations", nil)
		req.SetPathValue("eventID", "ev-1")
		req = req.WithContext(middleware.SetUserID(req.Context(), "intruder"))
		rr := httptest.NewRecorder()

		ctrl.ListEventInvitations(rr, req)

		require.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestInvitationController_Respond(t *testing.T) {
	t.Run("accept", func(t *testing.T) {
		fake := &fakeInvitationService{}
		ctrl := NewInvitationController(testLogger, fake, &fakeUserService{})
		req := httptest.NewRequest(http.MethodPost, "/invitations/inv-1/respond", bytes.NewBufferString(`{"accept":true}`))
		req.SetPathValue("invitationID", "inv-1")
		req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
		rr := httptest.NewRecorder()

		ctrl.Respond(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "inv-1", fake.lastRespondID)
		assert.True(t, fake.lastRespondAccept)
		assert.Equal(t, "user-123", fake.lastRespondUserID)
	})

	t.Run("reject", func(t *testing.T) {
		fake := &fakeInvitationService{}
		ctrl := NewInvitationController(testLogger, fake, &fakeUserService{})
		req := httptest.NewRequest(http.MethodPost, "/invitations/inv-1/respond", bytes.NewBufferString(`{"accept":false}`))
		req.SetPathValue("invitationID", "inv-1")
		req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
		rr := httptest.NewRecorder()

		ctrl.Respond(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.False(t, fake.lastRespondAccept)
	})

	t.Run("missing accept", func(t *testing.T) {
		ctrl := NewInvitationController(testLogger, &fakeInvitationService{}, &fakeUserService{})
		req := httptest.NewRequest(http.MethodPost, "/invitations/inv-1/respond", bytes.NewBufferString(`{}`))
		req.SetPathValue("invitationID", "inv-1")
		req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
		rr := httptest.NewRecorder()

		ctrl.Respond(rr, req)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		require.NotNil(t, envelope.Error)
		assert.Contains(t, envelope.Error.Message, "accept is required")
	})

	t.Run("already responded", func(t *testing.T) {
		fake := &fakeInvitationService{respondErr: domain.NewError(domain.KindConflict, "invitation already responded to")}
		ctrl := NewInvitationController(testLogger, fake, &fakeUserService{})
		req := httptest.NewRequest(http.MethodPost, "/invitations/inv-1/respond", bytes.NewBufferString(`{"accept":true}`))
		req.SetPathValue("invitationID", "inv-1")
		req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
		rr := httptest.NewRecorder()

		ctrl.Respond(rr, req)

		require.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("accepting a full event", func(t *testing.T) {
		fake := &fakeInvitationService{respondErr: domain.NewError(domain.KindCapacityExceeded, "event is at capacity")}
		ctrl := NewInvitationController(testLogger, fake, &fakeUserService{})
		req := httptest.NewRequest(http.MethodPost, "/invitations/inv-1/respond", bytes.NewBufferString(`{"accept":true}`))
		req.SetPathValue("invitationID", "inv-1")
		req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
		rr := httptest.NewRecorder()

		ctrl.Respond(rr, req)

		require.Equal(t, http.StatusConflict, rr.Code)
		var envelope helpers.APIResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
		require.NotNil(t, envelope.Error)
		assert.Equal(t, string(domain.KindCapacityExceeded), envelope.Error.Code)
	})
}
