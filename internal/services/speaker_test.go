package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventscout/internal/apiclient"
	"eventscout/internal/secondary"
)

var storeSpeakerColumns = []string{
	"id", "first_name", "last_name", "email", "phone", "location", "title",
	"industry", "expertise", "short_bio", "long_bio", "headshot_url", "website",
	"linkedin", "twitter", "facebook", "verified", "sample_video_url",
	"created_at", "updated_at",
}

func newSpeakerStores(t *testing.T, setup func(mock sqlmock.Sqlmock)) (*secondary.SpeakerStore, *secondary.EventStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	if setup != nil {
		setup(mock)
	}
	return secondary.NewSpeakerStore(db), secondary.NewEventStore(db), mock
}

func expectSpeakerByID(mock sqlmock.Sqlmock, id string) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT (.+) FROM speakers WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(storeSpeakerColumns).AddRow(
			id, "Grace", "Hopper", "grace@example.com", nil, "Arlington",
			"Rear Admiral", "tech", "{Go}", "short", "long", nil, nil,
			nil, nil, nil, true, nil, now, now,
		))
}

func TestSpeakerServiceGetByIDFallback(t *testing.T) {
	t.Run("counts enrich the profile", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		speakers, events, mock := newSpeakerStores(t, func(mock sqlmock.Sqlmock) {
			expectSpeakerByID(mock, "sp1")
			mock.ExpectQuery(`SELECT COUNT\(\*\) FROM user_following_speakers WHERE speaker_id = \$1`).
				WithArgs("sp1").
				WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
			mock.ExpectQuery(`SELECT (.+) FROM events e INNER JOIN event_speakers es ON es\.event_id = e\.id WHERE es\.speaker_id = \$1 ORDER BY e\.date ASC`).
				WithArgs("sp1").
				WillReturnRows(sqlmock.NewRows(storeEventColumns).
					AddRow(storeEventRow("e1", "GopherCon", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 25, false)...))
		})
		svc := NewSpeakerService(apiclient.New(server.URL, time.Second), speakers, events, testLogger(), time.Second)

		profile, err := svc.GetByID(context.Background(), "sp1")
		require.NoError(t, err)
		assert.Equal(t, int32(1), calls.Load())
		assert.Equal(t, "Grace Hopper", profile.Name)
		assert.Equal(t, 5, profile.Followers)
		assert.Equal(t, 1, profile.Events)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed counts report zero without failing the lookup", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		speakers, events, mock := newSpeakerStores(t, func(mock sqlmock.Sqlmock) {
			expectSpeakerByID(mock, "sp1")
			mock.ExpectQuery(`SELECT COUNT\(\*\) FROM user_following_speakers WHERE speaker_id = \$1`).
				WithArgs("sp1").
				WillReturnError(errors.New("connection reset"))
			mock.ExpectQuery(`SELECT (.+) FROM events e INNER JOIN event_speakers es`).
				WithArgs("sp1").
				WillReturnError(errors.New("connection reset"))
		})
		svc := NewSpeakerService(apiclient.New(server.URL, time.Second), speakers, events, testLogger(), time.Second)

		profile, err := svc.GetByID(context.Background(), "sp1")
		require.NoError(t, err, "the profile itself resolved; counts are enrichment")
		assert.Equal(t, "Grace Hopper", profile.Name)
		assert.Zero(t, profile.Followers)
		assert.Zero(t, profile.Events)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
