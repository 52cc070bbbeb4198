package domain

import "context"

// AdminStats is the headline figures on the admin dashboard.
type AdminStats struct {
	TotalEvents        int     `json:"totalEvents"`
	RegistrationsToday int     `json:"registrationsToday"`
	RevenueThisMonth   float64 `json:"revenueThisMonth"`
	GrowthThisWeek     float64 `json:"growthThisWeek"`
}

// AdminAd is the canonical advertisement shape. Impressions and Clicks
// are mutated server-side only and are monotonically non-decreasing.
type AdminAd struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Impressions int    `json:"impressions"`
	Clicks      int    `json:"clicks"`
	ActiveUntil string `json:"activeUntil"`
	Image       string `json:"image,omitempty"`
	Link        string `json:"link,omitempty"`
	Description string `json:"description,omitempty"`
}

// AdPayload is the input for creating or updating an advertisement.
// Nil fields on update are left unchanged.
type AdPayload struct {
	Title       *string `json:"title,omitempty"`
	ActiveUntil *string `json:"activeUntil,omitempty"`
	Image       *string `json:"image,omitempty"`
	Link        *string `json:"link,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AdminCategory is an event category managed by admins.
type AdminCategory struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

// CategoryUpdate is a partial category update.
type CategoryUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

// AdminDashboardData is the admin dashboard aggregate. Speakers holds
// pending speaker applications awaiting verification.
type AdminDashboardData struct {
	Stats      AdminStats       `json:"stats"`
	Events     []EventItem      `json:"events"`
	Categories []AdminCategory  `json:"categories"`
	Speakers   []SpeakerProfile `json:"speakers"`
	Ads        []AdminAd        `json:"ads"`
}

// AdminService defines admin management of events, categories, and ads.
type AdminService interface {
	Overview(ctx context.Context) (*AdminDashboardData, error)
	CreateEvent(ctx context.Context, event *EventItem) (*EventItem, error)
	ListCategories(ctx context.Context) ([]AdminCategory, error)
	UpdateCategory(ctx context.Context, id int, updates *CategoryUpdate) (*AdminCategory, error)
	ListAds(ctx context.Context) ([]AdminAd, error)
	CreateAd(ctx context.Context, ad *AdPayload) (*AdminAd, error)
	UpdateAd(ctx context.Context, id string, updates *AdPayload) (*AdminAd, error)
	DeleteAd(ctx context.Context, id string) error
	SpeakerApplications(ctx context.Context) ([]SpeakerProfile, error)
}
