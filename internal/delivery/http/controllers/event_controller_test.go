package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	h "eventscout/internal/delivery/http/helpers"
	"eventscout/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventService implements domain.EventService for handler tests.
type fakeEventService struct {
	events    []domain.EventItem
	byID      map[string]*domain.EventItem
	created   *domain.CreateEventPayload
	updated   *domain.UpdateEventPayload
	deleted   []string
	regs      []*domain.EventRegistrationPayload
	listErr   error
	getErr    error
	createErr error
}

func (f *fakeEventService) List(ctx context.Context, filters *domain.EventFilters) ([]domain.EventItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.events, nil
}

func (f *fakeEventService) GetByID(ctx context.Context, id string) (*domain.EventItem, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if e, ok := f.byID[id]; ok {
		return e, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventService) Create(ctx context.Context, payload *domain.CreateEventPayload) (*domain.EventItem, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = payload
	return &domain.EventItem{ID: "e9", Title: payload.Title}, nil
}

func (f *fakeEventService) Update(ctx context.Context, payload *domain.UpdateEventPayload) (*domain.EventItem, error) {
	f.updated = payload
	return &domain.EventItem{ID: payload.ID}, nil
}

func (f *fakeEventService) Delete(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeEventService) Register(ctx context.Context, payload *domain.EventRegistrationPayload) error {
	f.regs = append(f.regs, payload)
	return nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *h.APIError     `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestEventControllerList(t *testing.T) {
	svc := &fakeEventService{events: []domain.EventItem{{ID: "e1", Title: "GopherCon"}}}
	ctrl := NewEventController(testLogger(), svc)

	req := httptest.NewRequest(http.MethodGet, "/events?search=gopher&price=free", nil)
	rec := httptest.NewRecorder()
	ctrl.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Nil(t, env.Error)
	var events []domain.EventItem
	require.NoError(t, json.Unmarshal(env.Data, &events))
	require.Len(t, events, 1)
	assert.Equal(t, "GopherCon", events[0].Title)
}

func TestEventControllerGet(t *testing.T) {
	svc := &fakeEventService{byID: map[string]*domain.EventItem{"e1": {ID: "e1", Title: "GopherCon"}}}
	ctrl := NewEventController(testLogger(), svc)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events/e1", nil)
		req.SetPathValue("id", "e1")
		rec := httptest.NewRecorder()
		ctrl.Get(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing maps to 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/events/nope", nil)
		req.SetPathValue("id", "nope")
		rec := httptest.NewRecorder()
		ctrl.Get(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code)
		env := decodeEnvelope(t, rec)
		require.NotNil(t, env.Error)
		assert.Equal(t, h.ErrCodeNotFound, env.Error.Code)
	})
}

func TestEventControllerCreate(t *testing.T) {
	t.Run("valid body", func(t *testing.T) {
		svc := &fakeEventService{}
		ctrl := NewEventController(testLogger(), svc)

		body := `{"title":"New Event","date":"2026-04-01","time":"19:00","location":"Berlin","category":"tech","price":25}`
		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
		rec := httptest.NewRecorder()
		ctrl.Create(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, svc.created)
		assert.Equal(t, "New Event", svc.created.Title)
		assert.Equal(t, 25.0, svc.created.Price)
	})

	t.Run("missing fields map to 400", func(t *testing.T) {
		svc := &fakeEventService{}
		ctrl := NewEventController(testLogger(), svc)

		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"title":"x"}`))
		rec := httptest.NewRecorder()
		ctrl.Create(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeEnvelope(t, rec)
		require.NotNil(t, env.Error)
		assert.Contains(t, env.Error.Message, "date is required")
		assert.Nil(t, svc.created, "the service must not be called")
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		svc := &fakeEventService{}
		ctrl := NewEventController(testLogger(), svc)

		body := `{"title":"x","date":"2026-04-01","location":"Berlin","category":"tech","bogus":true}`
		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
		rec := httptest.NewRecorder()
		ctrl.Create(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("negative price is rejected", func(t *testing.T) {
		svc := &fakeEventService{}
		ctrl := NewEventController(testLogger(), svc)

		body := `{"title":"x","date":"2026-04-01","location":"Berlin","category":"tech","price":-5}`
		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
		rec := httptest.NewRecorder()
		ctrl.Create(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestEventControllerUpdateTakesIDFromPath(t *testing.T) {
	svc := &fakeEventService{}
	ctrl := NewEventController(testLogger(), svc)

	req := httptest.NewRequest(http.MethodPut, "/events/e1", strings.NewReader(`{"title":"Renamed"}`))
	req.SetPathValue("id", "e1")
	rec := httptest.NewRecorder()
	ctrl.Update(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.updated)
	assert.Equal(t, "e1", svc.updated.ID)
	require.NotNil(t, svc.updated.Title)
	assert.Equal(t, "Renamed", *svc.updated.Title)
	assert.Nil(t, svc.updated.Price, "unset fields stay nil")
}

func TestEventControllerRegister(t *testing.T) {
	t.Run("valid registration", func(t *testing.T) {
		svc := &fakeEventService{}
		ctrl := NewEventController(testLogger(), svc)

		body := `{"name":"Ada","email":"ada@example.com"}`
		req := httptest.NewRequest(http.MethodPost, "/events/e1/register", strings.NewReader(body))
		req.SetPathValue("id", "e1")
		rec := httptest.NewRecorder()
		ctrl.Register(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, svc.regs, 1)
		assert.Equal(t, "e1", svc.regs[0].EventID)
	})

	t.Run("missing email maps to 400", func(t *testing.T) {
		svc := &fakeEventService{}
		ctrl := NewEventController(testLogger(), svc)

		req := httptest.NewRequest(http.MethodPost, "/events/e1/register", strings.NewReader(`{"name":"Ada"}`))
		req.SetPathValue("id", "e1")
		rec := httptest.NewRecorder()
		ctrl.Register(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, svc.regs)
	})
}

func TestEventControllerDelete(t *testing.T) {
	svc := &fakeEventService{}
	ctrl := NewEventController(testLogger(), svc)

	req := httptest.NewRequest(http.MethodDelete, "/events/e1", nil)
	req.SetPathValue("id", "e1")
	rec := httptest.NewRecorder()
	ctrl.Delete(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"e1"}, svc.deleted)
}
