package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"eventscout/internal/apiclient"
	"eventscout/internal/domain"
	"eventscout/internal/secondary"
)

type adminService struct {
	client         *apiclient.Client
	admin          *secondary.AdminStore
	events         *secondary.EventStore
	speakers       *secondary.SpeakerStore
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewAdminService returns an AdminService backed by the primary API with
// the managed store as fallback. Nil stores mean degraded mode.
func NewAdminService(client *apiclient.Client, admin *secondary.AdminStore, events *secondary.EventStore, speakers *secondary.SpeakerStore, logger *slog.Logger, timeout time.Duration) domain.AdminService {
	return &adminService{
		client:         client,
		admin:          admin,
		events:         events,
		speakers:       speakers,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *adminService) Overview(ctx context.Context) (*domain.AdminDashboardData, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "admin.overview",
		func(ctx context.Context) (*domain.AdminDashboardData, error) {
			var data domain.AdminDashboardData
			if err := s.client.Get(ctx, "/admin/overview", nil, &data); err != nil {
				return nil, err
			}
			return &data, nil
		},
		func(ctx context.Context) (*domain.AdminDashboardData, error) {
			data := &domain.AdminDashboardData{
				Events:     []domain.EventItem{},
				Categories: []domain.AdminCategory{},
				Speakers:   []domain.SpeakerProfile{},
				Ads:        []domain.AdminAd{},
			}
			if s.events != nil {
				rows, err := s.events.List(ctx, nil)
				if err != nil {
					return nil, fmt.Errorf("list events: %w", err)
				}
				data.Events = eventsFromRows(rows)
				data.Stats.TotalEvents = len(rows)
			}
			if s.admin != nil {
				categories, err := s.admin.Categories(ctx)
				if err != nil {
					return nil, fmt.Errorf("list categories: %w", err)
				}
				for _, row := range categories {
					data.Categories = append(data.Categories, categoryFromRow(row))
				}
				ads, err := s.admin.ActiveAds(ctx)
				if err != nil {
					return nil, fmt.Errorf("list ads: %w", err)
				}
				for _, row := range ads {
					data.Ads = append(data.Ads, adFromRow(row))
				}
			}
			if s.speakers != nil {
				apps, err := s.speakers.PendingApplications(ctx)
				if err != nil {
					return nil, fmt.Errorf("list pending applications: %w", err)
				}
				for _, row := range apps {
					data.Speakers = append(data.Speakers, speakerFromApplication(row))
				}
			}
			return data, nil
		},
	)
}

func (s *adminService) CreateEvent(ctx context.Context, event *domain.EventItem) (*domain.EventItem, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "admin.create_event",
		func(ctx context.Context) (*domain.EventItem, error) {
			var created domain.EventItem
			if err := s.client.Post(ctx, "/admin/events", event, &created); err != nil {
				return nil, err
			}
			return &created, nil
		},
		func(ctx context.Context) (*domain.EventItem, error) {
			if s.events == nil {
				echo := *event
				if echo.ID == "" {
					echo.ID = uuid.NewString()
				}
				return &echo, nil
			}
			date, err := time.Parse(dateLayout, event.Date)
			if err != nil {
				return nil, fmt.Errorf("parse event date %q: %w", event.Date, err)
			}
			row, err := s.events.Create(ctx, &secondary.EventInsert{
				Title:       event.Title,
				Description: nullString(event.Description),
				Date:        date,
				Time:        event.Time,
				Location:    event.Location,
				Category:    event.Category,
				Price:       parsePrice(event.Price),
				IsFree:      event.IsFree,
				ImageURL:    nullString(event.Image),
			})
			if err != nil {
				return nil, fmt.Errorf("create event: %w", err)
			}
			created := eventFromRow(row)
			return &created, nil
		},
	)
}

func (s *adminService) ListCategories(ctx context.Context) ([]domain.AdminCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "admin.list_categories",
		func(ctx context.Context) ([]domain.AdminCategory, error) {
			var categories []domain.AdminCategory
			if err := s.client.Get(ctx, "/admin/categories", nil, &categories); err != nil {
				return nil, err
			}
			if categories == nil {
				categories = []domain.AdminCategory{}
			}
			return categories, nil
		},
		func(ctx context.Context) ([]domain.AdminCategory, error) {
			if s.admin == nil {
				return []domain.AdminCategory{}, nil
			}
			rows, err := s.admin.Categories(ctx)
			if err != nil {
				return nil, fmt.Errorf("list categories: %w", err)
			}
			categories := make([]domain.AdminCategory, 0, len(rows))
			for _, row := range rows {
				categories = append(categories, categoryFromRow(row))
			}
			return categories, nil
		},
	)
}

func (s *adminService) UpdateCategory(ctx context.Context, id int, updates *domain.CategoryUpdate) (*domain.AdminCategory, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "admin.update_category",
		func(ctx context.Context) (*domain.AdminCategory, error) {
			var category domain.AdminCategory
			if err := s.client.Put(ctx, fmt.Sprintf("/admin/categories/%d", id), updates, &category); err != nil {
				return nil, err
			}
			return &category, nil
		},
		func(ctx context.Context) (*domain.AdminCategory, error) {
			if s.admin == nil {
				category := categoryFromUpdate(id, updates)
				return &category, nil
			}
			row, err := s.admin.UpdateCategory(ctx, id, &secondary.CategoryUpdate{
				Name:        updates.Name,
				Description: updates.Description,
				Color:       updates.Color,
			})
			if err != nil {
				return nil, err
			}
			category := categoryFromRow(row)
			return &category, nil
		},
	)
}

// categoryFromUpdate echoes the set fields of a partial update when no
// backend could apply it.
func categoryFromUpdate(id int, updates *domain.CategoryUpdate) domain.AdminCategory {
	category := domain.AdminCategory{ID: id}
	if updates.Name != nil {
		category.Name = *updates.Name
	}
	if updates.Description != nil {
		category.Description = *updates.Description
	}
	if updates.Color != nil {
		category.Color = *updates.Color
	}
	return category
}

func (s *adminService) ListAds(ctx context.Context) ([]domain.AdminAd, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "admin.list_ads",
		func(ctx context.Context) ([]domain.AdminAd, error) {
			var ads []domain.AdminAd
			if err := s.client.Get(ctx, "/admin/ads", nil, &ads); err != nil {
				return nil, err
			}
			if ads == nil {
				ads = []domain.AdminAd{}
			}
			return ads, nil
		},
		func(ctx context.Context) ([]domain.AdminAd, error) {
			if s.admin == nil {
				return []domain.AdminAd{}, nil
			}
			rows, err := s.admin.ActiveAds(ctx)
			if err != nil {
				return nil, fmt.Errorf("list ads: %w", err)
			}
			ads := make([]domain.AdminAd, 0, len(rows))
			for _, row := range rows {
				ads = append(ads, adFromRow(row))
			}
			return ads, nil
		},
	)
}

func (s *adminService) CreateAd(ctx context.Context, ad *domain.AdPayload) (*domain.AdminAd, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if ad.Title == nil || *ad.Title == "" {
		return nil, fmt.Errorf("ad title is required")
	}
	if ad.ActiveUntil == nil || *ad.ActiveUntil == "" {
		return nil, fmt.Errorf("ad active-until date is required")
	}
	return withFallback(ctx, s.logger, "admin.create_ad",
		func(ctx context.Context) (*domain.AdminAd, error) {
			var created domain.AdminAd
			if err := s.client.Post(ctx, "/admin/ads", ad, &created); err != nil {
				return nil, err
			}
			return &created, nil
		},
		func(ctx context.Context) (*domain.AdminAd, error) {
			if s.admin == nil {
				echo := adFromPayload(uuid.NewString(), ad)
				return &echo, nil
			}
			activeUntil, err := time.Parse(dateLayout, *ad.ActiveUntil)
			if err != nil {
				return nil, fmt.Errorf("parse active-until date %q: %w", *ad.ActiveUntil, err)
			}
			insert := &secondary.AdInsert{
				Title:       *ad.Title,
				ActiveUntil: activeUntil,
			}
			if ad.Image != nil {
				insert.ImageURL = nullString(*ad.Image)
			}
			if ad.Link != nil {
				insert.Link = nullString(*ad.Link)
			}
			if ad.Description != nil {
				insert.Description = nullString(*ad.Description)
			}
			row, err := s.admin.CreateAd(ctx, insert)
			if err != nil {
				return nil, fmt.Errorf("create ad: %w", err)
			}
			created := adFromRow(row)
			return &created, nil
		},
	)
}

// adFromPayload echoes the set fields of an ad payload with zeroed
// counters when no backend could store it.
func adFromPayload(id string, ad *domain.AdPayload) domain.AdminAd {
	echo := domain.AdminAd{ID: id}
	if ad.Title != nil {
		echo.Title = *ad.Title
	}
	if ad.ActiveUntil != nil {
		echo.ActiveUntil = *ad.ActiveUntil
	}
	if ad.Image != nil {
		echo.Image = *ad.Image
	}
	if ad.Link != nil {
		echo.Link = *ad.Link
	}
	if ad.Description != nil {
		echo.Description = *ad.Description
	}
	return echo
}

func (s *adminService) UpdateAd(ctx context.Context, id string, updates *domain.AdPayload) (*domain.AdminAd, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "admin.update_ad",
		func(ctx context.Context) (*domain.AdminAd, error) {
			var updated domain.AdminAd
			if err := s.client.Put(ctx, "/admin/ads/"+id, updates, &updated); err != nil {
				return nil, err
			}
			return &updated, nil
		},
		func(ctx context.Context) (*domain.AdminAd, error) {
			if s.admin == nil {
				echo := adFromPayload(id, updates)
				return &echo, nil
			}
			update := &secondary.AdUpdate{
				Title:       updates.Title,
				ImageURL:    updates.Image,
				Link:        updates.Link,
				Description: updates.Description,
			}
			if updates.ActiveUntil != nil {
				activeUntil, err := time.Parse(dateLayout, *updates.ActiveUntil)
				if err != nil {
					return nil, fmt.Errorf("parse active-until date %q: %w", *updates.ActiveUntil, err)
				}
				update.ActiveUntil = &activeUntil
			}
			row, err := s.admin.UpdateAd(ctx, id, update)
			if err != nil {
				return nil, err
			}
			updated := adFromRow(row)
			return &updated, nil
		},
	)
}

func (s *adminService) DeleteAd(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallbackErr(ctx, s.logger, "admin.delete_ad",
		func(ctx context.Context) error {
			return s.client.Delete(ctx, "/admin/ads/"+id)
		},
		func(ctx context.Context) error {
			if s.admin == nil {
				return nil
			}
			return s.admin.DeleteAd(ctx, id)
		},
	)
}

func (s *adminService) SpeakerApplications(ctx context.Context) ([]domain.SpeakerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	return withFallback(ctx, s.logger, "admin.speaker_applications",
		func(ctx context.Context) ([]domain.SpeakerProfile, error) {
			var applications []domain.SpeakerProfile
			if err := s.client.Get(ctx, "/admin/speaker-applications", nil, &applications); err != nil {
				return nil, err
			}
			if applications == nil {
				applications = []domain.SpeakerProfile{}
			}
			return applications, nil
		},
		func(ctx context.Context) ([]domain.SpeakerProfile, error) {
			if s.speakers == nil {
				return []domain.SpeakerProfile{}, nil
			}
			rows, err := s.speakers.PendingApplications(ctx)
			if err != nil {
				return nil, fmt.Errorf("list pending applications: %w", err)
			}
			applications := make([]domain.SpeakerProfile, 0, len(rows))
			for _, row := range rows {
				applications = append(applications, speakerFromApplication(row))
			}
			return applications, nil
		},
	)
}
