package services

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"eventscout/internal/apiclient"
	"eventscout/internal/domain"
	"eventscout/internal/secondary"
)

type eventService struct {
	client         *apiclient.Client
	store          *secondary.EventStore
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewEventService returns an EventService backed by the primary API with
// the managed store as fallback. A nil store means the secondary itself is
// unavailable (degraded or local development); reads then resolve empty
// and creates echo their input tagged with a locally generated id.
func NewEventService(client *apiclient.Client, store *secondary.EventStore, logger *slog.Logger, timeout time.Duration) domain.EventService {
	return &eventService{
		client:         client,
		store:          store,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) List(ctx context.Context, filters *domain.EventFilters) ([]domain.EventItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if filters == nil {
		filters = &domain.EventFilters{}
	}
	return withFallback(ctx, s.logger, "events.list",
		func(ctx context.Context) ([]domain.EventItem, error) {
			var events []domain.EventItem
			query := map[string]string{
				"search":   filters.Search,
				"category": filters.Category,
				"price":    filters.Price,
				"date":     filters.Date,
			}
			if err := s.client.Get(ctx, "/events", query, &events); err != nil {
				return nil, err
			}
			if events == nil {
				events = []domain.EventItem{}
			}
			return events, nil
		},
		func(ctx context.Context) ([]domain.EventItem, error) {
			if s.store == nil {
				return []domain.EventItem{}, nil
			}
			storeFilters := &secondary.EventListFilters{
				Search:   filters.Search,
				Category: filters.Category,
			}
			switch filters.Price {
			case "free":
				free := true
				storeFilters.IsFree = &free
			case "paid":
				paid := false
				storeFilters.IsFree = &paid
			}
			rows, err := s.store.List(ctx, storeFilters)
			if err != nil {
				return nil, fmt.Errorf("list events: %w", err)
			}
			events := make([]domain.EventItem, 0, len(rows))
			for _, row := range rows {
				if filters.Date != "" && filters.Date != "all" && row.Date.Format(dateLayout) != filters.Date {
					continue
				}
				events = append(events, eventFromRow(row))
			}
			return events, nil
		},
	)
}

func (s *eventService) GetByID(ctx context.Context, id string) (*domain.EventItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "events.get",
		func(ctx context.Context) (*domain.EventItem, error) {
			var event domain.EventItem
			if err := s.client.Get(ctx, "/events/"+id, nil, &event); err != nil {
				return nil, err
			}
			return &event, nil
		},
		func(ctx context.Context) (*domain.EventItem, error) {
			if s.store == nil {
				return nil, domain.ErrNotFound
			}
			row, err := s.store.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			event := eventFromRow(row)
			return &event, nil
		},
	)
}

func (s *eventService) Create(ctx context.Context, payload *domain.CreateEventPayload) (*domain.EventItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "events.create",
		func(ctx context.Context) (*domain.EventItem, error) {
			var event domain.EventItem
			if err := s.client.Post(ctx, "/events", payload, &event); err != nil {
				return nil, err
			}
			return &event, nil
		},
		func(ctx context.Context) (*domain.EventItem, error) {
			if s.store == nil {
				event := eventFromCreatePayload(uuid.NewString(), payload)
				return &event, nil
			}
			date, err := time.Parse(dateLayout, payload.Date)
			if err != nil {
				return nil, fmt.Errorf("parse event date %q: %w", payload.Date, err)
			}
			row, err := s.store.Create(ctx, &secondary.EventInsert{
				Title:       payload.Title,
				Description: nullString(payload.Description),
				Date:        date,
				Time:        payload.Time,
				Location:    payload.Location,
				Category:    payload.Category,
				Price:       payload.Price,
				IsFree:      payload.Price == 0,
				ImageURL:    nullString(payload.Image),
			})
			if err != nil {
				return nil, fmt.Errorf("create event: %w", err)
			}
			event := eventFromRow(row)
			return &event, nil
		},
	)
}

// eventFromCreatePayload echoes a create input as the canonical shape when
// no backend could store it.
func eventFromCreatePayload(id string, payload *domain.CreateEventPayload) domain.EventItem {
	return domain.EventItem{
		ID:          id,
		Title:       payload.Title,
		Image:       payload.Image,
		Date:        payload.Date,
		Time:        payload.Time,
		Location:    payload.Location,
		Price:       formatPrice(payload.Price, payload.Price == 0),
		IsFree:      payload.Price == 0,
		Category:    payload.Category,
		Description: payload.Description,
	}
}

func (s *eventService) Update(ctx context.Context, payload *domain.UpdateEventPayload) (*domain.EventItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "events.update",
		func(ctx context.Context) (*domain.EventItem, error) {
			var event domain.EventItem
			if err := s.client.Put(ctx, "/events/"+payload.ID, payload, &event); err != nil {
				return nil, err
			}
			return &event, nil
		},
		func(ctx context.Context) (*domain.EventItem, error) {
			if s.store == nil {
				event := eventFromUpdatePayload(payload)
				return &event, nil
			}
			update := &secondary.EventUpdate{
				Title:       payload.Title,
				Description: payload.Description,
				Time:        payload.Time,
				Location:    payload.Location,
				Category:    payload.Category,
				Price:       payload.Price,
				ImageURL:    payload.Image,
			}
			if payload.Date != nil {
				date, err := time.Parse(dateLayout, *payload.Date)
				if err != nil {
					return nil, fmt.Errorf("parse event date %q: %w", *payload.Date, err)
				}
				update.Date = &date
			}
			if payload.Price != nil {
				isFree := *payload.Price == 0
				update.IsFree = &isFree
			}
			row, err := s.store.Update(ctx, payload.ID, update)
			if err != nil {
				return nil, err
			}
			event := eventFromRow(row)
			return &event, nil
		},
	)
}

// eventFromUpdatePayload echoes the set fields of a partial update when no
// backend could apply it.
func eventFromUpdatePayload(payload *domain.UpdateEventPayload) domain.EventItem {
	event := domain.EventItem{ID: payload.ID}
	if payload.Title != nil {
		event.Title = *payload.Title
	}
	if payload.Date != nil {
		event.Date = *payload.Date
	}
	if payload.Time != nil {
		event.Time = *payload.Time
	}
	if payload.Location != nil {
		event.Location = *payload.Location
	}
	if payload.Category != nil {
		event.Category = *payload.Category
	}
	if payload.Description != nil {
		event.Description = *payload.Description
	}
	if payload.Price != nil {
		event.IsFree = *payload.Price == 0
		event.Price = formatPrice(*payload.Price, event.IsFree)
	}
	if payload.Image != nil {
		event.Image = *payload.Image
	}
	return event
}

func (s *eventService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallbackErr(ctx, s.logger, "events.delete",
		func(ctx context.Context) error {
			return s.client.Delete(ctx, "/events/"+id)
		},
		func(ctx context.Context) error {
			if s.store == nil {
				return nil
			}
			return s.store.Delete(ctx, id)
		},
	)
}

func (s *eventService) Register(ctx context.Context, payload *domain.EventRegistrationPayload) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallbackErr(ctx, s.logger, "events.register",
		func(ctx context.Context) error {
			_, err := s.client.Do(ctx, apiclient.RequestOptions{
				Method: http.MethodPost,
				Path:   "/events/" + payload.EventID + "/register",
				Body:   payload,
			})
			return err
		},
		func(ctx context.Context) error {
			if s.store == nil {
				return nil
			}
			_, err := s.store.Register(ctx, payload.EventID, payload.Name, payload.Email,
				nullString(payload.Phone), sql.NullString{})
			if err != nil {
				return fmt.Errorf("register for event: %w", err)
			}
			return nil
		},
	)
}
