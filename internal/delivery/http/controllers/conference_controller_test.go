package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"confbooking/internal/delivery/http/helpers"
	"confbooking/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeRegistryService implements domain.RegistryService for handler tests.
type fakeRegistryService struct {
	registerConferenceErr    error
	registerConferenceResult *domain.Conference
	registerUserErr          error
	registerUserResult       *domain.User
	getConferenceErr         error
	getConferenceResult      *domain.Conference
	listConferencesErr       error
	listConferencesResult    []*domain.Conference

	lastConferenceName string
	lastUserID         string
	lastUserTopics     []string
}

func (f *fakeRegistryService) RegisterConference(ctx context.Context, name, location string, topics []string, start, end time.Time, totalSlots int) (*domain.Conference, error) {
	f.lastConferenceName = name
	if f.registerConferenceErr != nil {
		return nil, f.registerConferenceErr
	}
	if f.registerConferenceResult != nil {
		return f.registerConferenceResult, nil
	}
	return &domain.Conference{
		Name:           name,
		Location:       location,
		Topics:         topics,
		StartTime:      start,
		EndTime:        end,
		TotalSlots:     totalSlots,
		AvailableSlots: totalSlots,
	}, nil
}

func (f *fakeRegistryService) RegisterUser(ctx context.Context, userID string, topics []string) (*domain.User, error) {
	f.lastUserID = userID
	f.lastUserTopics = topics
	if f.registerUserErr != nil {
		return nil, f.registerUserErr
	}
	if f.registerUserResult != nil {
		return f.registerUserResult, nil
	}
	return &domain.User{ID: userID, InterestedTopics: topics}, nil
}

func (f *fakeRegistryService) GetConference(ctx context.Context, name string) (*domain.Conference, error) {
	f.lastConferenceName = name
	if f.getConferenceErr != nil {
		return nil, f.getConferenceErr
	}
	if f.getConferenceResult != nil {
		return f.getConferenceResult, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistryService) ListConferences(ctx context.Context) ([]*domain.Conference, error) {
	if f.listConferencesErr != nil {
		return nil, f.listConferencesErr
	}
	return f.listConferencesResult, nil
}

func TestConferenceController_CreateConference(t *testing.T) {
	validBody := `{"name":"GopherCon","location":"Berlin","topics":["go"],"start_time":"2026-10-01T09:00:00Z","end_time":"2026-10-01T17:00:00Z","total_slots":100}`

	tests := []struct {
		name           string
		body           string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
	}{
		{
			name:       "success",
			body:       validBody,
			wantStatus: http.StatusCreated,
		},
		{
			name:           "bad request invalid json",
			body:           `{invalid`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invalid",
		},
		{
			name:           "missing name",
			body:           `{"start_time":"2026-10-01T09:00:00Z","end_time":"2026-10-01T17:00:00Z","total_slots":5}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "name is required",
		},
		{
			name:           "unparsable start time",
			body:           `{"name":"x","start_time":"tomorrow","end_time":"2026-10-01T17:00:00Z","total_slots":5}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "start_time must be RFC 3339",
		},
		{
			name:           "non-positive slots",
			body:           `{"name":"x","start_time":"2026-10-01T09:00:00Z","end_time":"2026-10-01T17:00:00Z","total_slots":0}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "total_slots must be positive",
		},
		{
			name:           "unknown field rejected",
			body:           `{"name":"x","slots":5}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "unknown field",
		},
		{
			name:           "duplicate name",
			body:           validBody,
			fakeErr:        &domain.Error{Kind: domain.KindDuplicate, Message: "conference already registered", ConferenceName: "GopherCon"},
			wantStatus:     http.StatusConflict,
			wantBodySubstr: "already registered",
		},
		{
			name:           "window too long",
			body:           validBody,
			fakeErr:        &domain.Error{Kind: domain.KindValidation, Message: "conference duration exceeds 12h"},
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "duration",
		},
		{
			name:           "service error",
			body:           validBody,
			fakeErr:        errors.New("boom"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeRegistryService{registerConferenceErr: tt.fakeErr}
			ctrl := NewConferenceController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/conferences", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rr := httptest.NewRecorder()

			ctrl.CreateConference(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			if tt.wantStatus == http.StatusCreated {
				require.Nil(t, envelope.Error, "success response must have error nil")
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var conf domain.Conference
				require.NoError(t, json.Unmarshal(dataBytes, &conf))
				assert.Equal(t, "GopherCon", conf.Name)
				assert.Equal(t, 100, conf.AvailableSlots)
			} else if tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error, "error response must have error set")
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
			}
		})
	}
}

func TestConferenceController_GetConference(t *testing.T) {
	tests := []struct {
		name       string
		confName   string
		fake       *fakeRegistryService
		wantStatus int
	}{
		{
			name:     "success",
			confName: "GopherCon",
			fake: &fakeRegistryService{getConferenceResult: &domain.Conference{
				Name: "GopherCon", TotalSlots: 10, AvailableSlots: 4,
			}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "not found",
			confName:   "Unknown",
			fake:       &fakeRegistryService{getConferenceErr: &domain.Error{Kind: domain.KindNotFound, Message: "conference not found", ConferenceName: "Unknown"}},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "service error",
			confName:   "GopherCon",
			fake:       &fakeRegistryService{getConferenceErr: errors.New("boom")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := NewConferenceController(testLogger, tt.fake)
			req := httptest.NewRequest(http.MethodGet, "/conferences/"+tt.confName, nil)
			req.SetPathValue("name", tt.confName)
			rr := httptest.NewRecorder()

			ctrl.GetConference(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			assert.Equal(t, tt.confName, tt.fake.lastConferenceName)
		})
	}
}

func TestConferenceController_ListConferences(t *testing.T) {
	fake := &fakeRegistryService{listConferencesResult: []*domain.Conference{
		{Name: "A", TotalSlots: 1, AvailableSlots: 1},
		{Name: "B", TotalSlots: 2, AvailableSlots: 0},
	}}
	ctrl := NewConferenceController(testLogger, fake)
	req := httptest.NewRequest(http.MethodGet, "/conferences", nil)
	rr := httptest.NewRecorder()

	ctrl.ListConferences(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var envelope helpers.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.Nil(t, envelope.Error)
	dataBytes, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var confs []domain.Conference
	require.NoError(t, json.Unmarshal(dataBytes, &confs))
	require.Len(t, confs, 2)
	assert.Equal(t, "A", confs[0].Name)
}
