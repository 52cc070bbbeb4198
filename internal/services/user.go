package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"eventscout/internal/apiclient"
	"eventscout/internal/domain"
	"eventscout/internal/secondary"
)

type userService struct {
	client         *apiclient.Client
	users          *secondary.UserStore
	events         *secondary.EventStore
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewUserService returns a UserService backed by the primary API with the
// managed store as fallback. Nil stores mean degraded mode: the dashboard
// resolves empty and saved-event mutations are accepted as no-ops.
func NewUserService(client *apiclient.Client, users *secondary.UserStore, events *secondary.EventStore, logger *slog.Logger, timeout time.Duration) domain.UserService {
	return &userService{
		client:         client,
		users:          users,
		events:         events,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *userService) Dashboard(ctx context.Context, userID string) (*domain.DashboardData, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "users.dashboard",
		func(ctx context.Context) (*domain.DashboardData, error) {
			var data domain.DashboardData
			if err := s.client.Get(ctx, "/users/"+userID+"/dashboard", nil, &data); err != nil {
				return nil, err
			}
			return &data, nil
		},
		func(ctx context.Context) (*domain.DashboardData, error) {
			data := &domain.DashboardData{
				UpcomingEvents: []domain.EventItem{},
				SavedEvents:    []domain.SavedEventSummary{},
				Notifications:  []domain.NotificationItem{},
			}
			if s.users == nil {
				return data, nil
			}
			registered, err := s.users.CountRegistrations(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("count registrations: %w", err)
			}
			following, err := s.users.CountFollowing(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("count following: %w", err)
			}
			saved, err := s.savedSummaries(ctx, userID)
			if err != nil {
				return nil, err
			}
			data.Stats = domain.DashboardStats{
				RegisteredEvents:  registered,
				SavedEvents:       len(saved),
				FollowingSpeakers: following,
			}
			data.SavedEvents = saved
			return data, nil
		},
	)
}

func (s *userService) savedSummaries(ctx context.Context, userID string) ([]domain.SavedEventSummary, error) {
	rows, err := s.users.SavedEvents(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved events: %w", err)
	}
	summaries := make([]domain.SavedEventSummary, 0, len(rows))
	for _, row := range rows {
		if s.events == nil {
			summaries = append(summaries, domain.SavedEventSummary{ID: row.EventID})
			continue
		}
		event, err := s.events.GetByID(ctx, row.EventID)
		if err != nil {
			// A saved link can outlive its event; skip the orphan.
			if errors.Is(err, domain.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("get saved event: %w", err)
		}
		summaries = append(summaries, domain.SavedEventSummary{
			ID:    event.ID,
			Title: event.Title,
			Date:  event.Date.Format(dateLayout),
			Image: event.ImageURL.String,
		})
	}
	return summaries, nil
}

func (s *userService) SaveEvent(ctx context.Context, userID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallbackErr(ctx, s.logger, "users.save_event",
		func(ctx context.Context) error {
			_, err := s.client.Do(ctx, apiclient.RequestOptions{
				Method: http.MethodPost,
				Path:   "/users/" + userID + "/saved-events/" + eventID,
			})
			return err
		},
		func(ctx context.Context) error {
			if s.users == nil {
				return nil
			}
			return s.users.SaveEvent(ctx, userID, eventID)
		},
	)
}

func (s *userService) RemoveSavedEvent(ctx context.Context, userID, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallbackErr(ctx, s.logger, "users.remove_saved_event",
		func(ctx context.Context) error {
			return s.client.Delete(ctx, "/users/"+userID+"/saved-events/"+eventID)
		},
		func(ctx context.Context) error {
			if s.users == nil {
				return nil
			}
			return s.users.RemoveSavedEvent(ctx, userID, eventID)
		},
	)
}

func (s *userService) SavedEvents(ctx context.Context, userID string) ([]domain.SavedEventSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "users.saved_events",
		func(ctx context.Context) ([]domain.SavedEventSummary, error) {
			var saved []domain.SavedEventSummary
			if err := s.client.Get(ctx, "/users/"+userID+"/saved-events", nil, &saved); err != nil {
				return nil, err
			}
			if saved == nil {
				saved = []domain.SavedEventSummary{}
			}
			return saved, nil
		},
		func(ctx context.Context) ([]domain.SavedEventSummary, error) {
			if s.users == nil {
				return []domain.SavedEventSummary{}, nil
			}
			return s.savedSummaries(ctx, userID)
		},
	)
}
