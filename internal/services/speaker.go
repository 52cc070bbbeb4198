package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"eventscout/internal/apiclient"
	"eventscout/internal/domain"
	"eventscout/internal/secondary"
)

type speakerService struct {
	client         *apiclient.Client
	speakers       *secondary.SpeakerStore
	events         *secondary.EventStore
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewSpeakerService returns a SpeakerService backed by the primary API
// with the managed store as fallback. Nil stores mean degraded mode.
func NewSpeakerService(client *apiclient.Client, speakers *secondary.SpeakerStore, events *secondary.EventStore, logger *slog.Logger, timeout time.Duration) domain.SpeakerService {
	return &speakerService{
		client:         client,
		speakers:       speakers,
		events:         events,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *speakerService) List(ctx context.Context, filters *domain.SpeakerFilters) ([]domain.SpeakerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if filters == nil {
		filters = &domain.SpeakerFilters{}
	}
	return withFallback(ctx, s.logger, "speakers.list",
		func(ctx context.Context) ([]domain.SpeakerProfile, error) {
			query := map[string]string{
				"search":   filters.Search,
				"industry": filters.Industry,
			}
			if filters.Verified != nil {
				query["verified"] = fmt.Sprintf("%t", *filters.Verified)
			}
			var speakers []domain.SpeakerProfile
			if err := s.client.Get(ctx, "/speakers", query, &speakers); err != nil {
				return nil, err
			}
			if speakers == nil {
				speakers = []domain.SpeakerProfile{}
			}
			return speakers, nil
		},
		func(ctx context.Context) ([]domain.SpeakerProfile, error) {
			if s.speakers == nil {
				return []domain.SpeakerProfile{}, nil
			}
			rows, err := s.speakers.List(ctx, &secondary.SpeakerListFilters{
				Search:   filters.Search,
				Industry: filters.Industry,
				Verified: filters.Verified,
			})
			if err != nil {
				return nil, fmt.Errorf("list speakers: %w", err)
			}
			profiles := make([]domain.SpeakerProfile, 0, len(rows))
			for _, row := range rows {
				profiles = append(profiles, speakerFromRow(row))
			}
			return profiles, nil
		},
	)
}

func (s *speakerService) GetByID(ctx context.Context, id string) (*domain.SpeakerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "speakers.get",
		func(ctx context.Context) (*domain.SpeakerProfile, error) {
			var profile domain.SpeakerProfile
			if err := s.client.Get(ctx, "/speakers/"+id, nil, &profile); err != nil {
				return nil, err
			}
			return &profile, nil
		},
		func(ctx context.Context) (*domain.SpeakerProfile, error) {
			if s.speakers == nil {
				return nil, domain.ErrNotFound
			}
			row, err := s.speakers.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			profile := speakerFromRow(row)
			// Counts enrich the profile; a failed count stays zero.
			if followers, err := s.speakers.CountFollowers(ctx, id); err == nil {
				profile.Followers = followers
			} else {
				s.logger.Warn("failed to count followers, reporting zero", "op", "speakers.get", "speaker_id", id, "error", err)
			}
			if s.events != nil {
				if rows, err := s.events.ListBySpeaker(ctx, id); err == nil {
					profile.Events = len(rows)
				} else {
					s.logger.Warn("failed to count speaker events, reporting zero", "op", "speakers.get", "speaker_id", id, "error", err)
				}
			}
			return &profile, nil
		},
	)
}

func (s *speakerService) Apply(ctx context.Context, payload *domain.SpeakerApplicationPayload) (*domain.SpeakerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "speakers.apply",
		func(ctx context.Context) (*domain.SpeakerProfile, error) {
			var profile domain.SpeakerProfile
			if err := s.client.Post(ctx, "/speakers/apply", payload, &profile); err != nil {
				return nil, err
			}
			return &profile, nil
		},
		func(ctx context.Context) (*domain.SpeakerProfile, error) {
			if s.speakers == nil {
				profile := speakerFromApplicationPayload(uuid.NewString(), payload)
				return &profile, nil
			}
			row, err := s.speakers.Apply(ctx, &secondary.ApplicationInsert{
				FirstName:   payload.FirstName,
				LastName:    payload.LastName,
				Email:       payload.Email,
				Phone:       nullString(payload.Phone),
				Location:    payload.Location,
				Title:       payload.Title,
				Industry:    payload.Industry,
				Expertise:   payload.Expertise,
				ShortBio:    payload.ShortBio,
				LongBio:     payload.LongBio,
				HeadshotURL: nullString(payload.Headshot),
				Website:     nullString(payload.Website),
				LinkedIn:    nullString(payload.LinkedIn),
				Twitter:     nullString(payload.Twitter),
				Facebook:    nullString(payload.Facebook),
				Experience:  nullString(payload.Experience),
				SampleVideo: nullString(payload.SampleVid),
				Topics:      payload.Topics,
			})
			if err != nil {
				return nil, fmt.Errorf("store speaker application: %w", err)
			}
			profile := speakerFromApplication(row)
			return &profile, nil
		},
	)
}

// speakerFromApplicationPayload echoes an application as an unverified
// profile when no backend could store it.
func speakerFromApplicationPayload(id string, payload *domain.SpeakerApplicationPayload) domain.SpeakerProfile {
	name := payload.FirstName
	if payload.LastName != "" {
		name = payload.FirstName + " " + payload.LastName
	}
	expertise := payload.Expertise
	if expertise == nil {
		expertise = []string{}
	}
	topics := payload.Topics
	if topics == nil {
		topics = []string{}
	}
	return domain.SpeakerProfile{
		ID:                 id,
		Name:               name,
		FirstName:          payload.FirstName,
		LastName:           payload.LastName,
		Title:              payload.Title,
		Image:              payload.Headshot,
		Industry:           payload.Industry,
		Verified:           false,
		Location:           payload.Location,
		Email:              payload.Email,
		Phone:              payload.Phone,
		ShortBio:           payload.ShortBio,
		LongBio:            payload.LongBio,
		Expertise:          expertise,
		SpeakingTopics:     topics,
		PreviousExperience: payload.Experience,
		SampleVideoURL:     payload.SampleVid,
		SocialLinks: domain.SocialLinks{
			Website:  payload.Website,
			LinkedIn: payload.LinkedIn,
			Twitter:  payload.Twitter,
			Facebook: payload.Facebook,
		},
	}
}

func (s *speakerService) Follow(ctx context.Context, userID, speakerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallbackErr(ctx, s.logger, "speakers.follow",
		func(ctx context.Context) error {
			_, err := s.client.Do(ctx, apiclient.RequestOptions{
				Method: http.MethodPost,
				Path:   "/speakers/" + speakerID + "/follow",
				Body:   map[string]string{"userId": userID},
			})
			return err
		},
		func(ctx context.Context) error {
			if s.speakers == nil {
				return nil
			}
			return s.speakers.Follow(ctx, userID, speakerID)
		},
	)
}

func (s *speakerService) Unfollow(ctx context.Context, userID, speakerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallbackErr(ctx, s.logger, "speakers.unfollow",
		func(ctx context.Context) error {
			_, err := s.client.Do(ctx, apiclient.RequestOptions{
				Method: http.MethodDelete,
				Path:   "/speakers/" + speakerID + "/follow",
				Query:  map[string]string{"userId": userID},
			})
			return err
		},
		func(ctx context.Context) error {
			if s.speakers == nil {
				return nil
			}
			return s.speakers.Unfollow(ctx, userID, speakerID)
		},
	)
}

func (s *speakerService) FollowingStatus(ctx context.Context, userID, speakerID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "speakers.following_status",
		func(ctx context.Context) (bool, error) {
			var out struct {
				Following bool `json:"following"`
			}
			err := s.client.Get(ctx, "/speakers/"+speakerID+"/follow", map[string]string{"userId": userID}, &out)
			if err != nil {
				return false, err
			}
			return out.Following, nil
		},
		func(ctx context.Context) (bool, error) {
			if s.speakers == nil {
				return false, nil
			}
			return s.speakers.FollowingStatus(ctx, userID, speakerID)
		},
	)
}

func (s *speakerService) SpeakerEvents(ctx context.Context, speakerID string) ([]domain.EventItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "speakers.events",
		func(ctx context.Context) ([]domain.EventItem, error) {
			var events []domain.EventItem
			if err := s.client.Get(ctx, "/speakers/"+speakerID+"/events", nil, &events); err != nil {
				return nil, err
			}
			if events == nil {
				events = []domain.EventItem{}
			}
			return events, nil
		},
		func(ctx context.Context) ([]domain.EventItem, error) {
			if s.events == nil {
				return []domain.EventItem{}, nil
			}
			rows, err := s.events.ListBySpeaker(ctx, speakerID)
			if err != nil {
				return nil, fmt.Errorf("list speaker events: %w", err)
			}
			return eventsFromRows(rows), nil
		},
	)
}

func (s *speakerService) Dashboard(ctx context.Context, speakerID string) (*domain.SpeakerDashboardData, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "speakers.dashboard",
		func(ctx context.Context) (*domain.SpeakerDashboardData, error) {
			var data domain.SpeakerDashboardData
			if err := s.client.Get(ctx, "/speakers/"+speakerID+"/dashboard", nil, &data); err != nil {
				return nil, err
			}
			return &data, nil
		},
		func(ctx context.Context) (*domain.SpeakerDashboardData, error) {
			data := &domain.SpeakerDashboardData{
				UpcomingEvents: []domain.EventItem{},
				Invitations:    []domain.SpeakerInvitation{},
			}
			if s.events != nil {
				rows, err := s.events.ListBySpeaker(ctx, speakerID)
				if err != nil {
					return nil, fmt.Errorf("list speaker events: %w", err)
				}
				data.UpcomingEvents = eventsFromRows(rows)
				data.Stats.TotalEvents = len(rows)
			}
			if s.speakers != nil {
				followers, err := s.speakers.CountFollowers(ctx, speakerID)
				if err != nil {
					return nil, fmt.Errorf("count followers: %w", err)
				}
				data.Stats.Followers = followers
			}
			return data, nil
		},
	)
}
