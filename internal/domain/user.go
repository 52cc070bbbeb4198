package domain

import "context"

// UserRole enumerates the application roles. Role assignment happens
// server-side; services never elevate a role on their own.
type UserRole string

const (
	RoleUser    UserRole = "user"
	RoleSpeaker UserRole = "speaker"
	RoleAdmin   UserRole = "admin"
)

// UserProfile is the canonical user shape.
type UserProfile struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Role      UserRole `json:"role"`
	AvatarURL string   `json:"avatarUrl,omitempty"`
	CreatedAt string   `json:"createdAt,omitempty"`
	UpdatedAt string   `json:"updatedAt,omitempty"`
}

// SavedEventSummary is the short event card shown on the user dashboard.
type SavedEventSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Date  string `json:"date"`
	Image string `json:"image"`
}

// NotificationItem is a user-facing notification.
type NotificationItem struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Date    string `json:"date"`
	Read    bool   `json:"read"`
}

// DashboardStats summarizes a user's activity.
type DashboardStats struct {
	RegisteredEvents  int `json:"registeredEvents"`
	SavedEvents       int `json:"savedEvents"`
	FollowingSpeakers int `json:"followingSpeakers"`
	PastEvents        int `json:"pastEvents"`
}

// DashboardData is the user dashboard aggregate.
type DashboardData struct {
	Stats          DashboardStats      `json:"stats"`
	UpcomingEvents []EventItem         `json:"upcomingEvents"`
	SavedEvents    []SavedEventSummary `json:"savedEvents"`
	Notifications  []NotificationItem  `json:"notifications"`
}

// UserService defines user dashboard and saved-event operations.
type UserService interface {
	Dashboard(ctx context.Context, userID string) (*DashboardData, error)
	SaveEvent(ctx context.Context, userID, eventID string) error
	RemoveSavedEvent(ctx context.Context, userID, eventID string) error
	SavedEvents(ctx context.Context, userID string) ([]SavedEventSummary, error)
}
