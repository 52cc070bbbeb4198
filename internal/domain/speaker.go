package domain

import "context"

// SocialLinks holds a speaker's public profiles.
type SocialLinks struct {
	Website  string `json:"website,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	Facebook string `json:"facebook,omitempty"`
}

// SpeakerProfile is the canonical speaker shape. Name is derived from
// FirstName+LastName when the backend does not carry a display name.
// Counts (Events, Followers, Rating) default to zero when the backing
// store has no aggregate for them.
type SpeakerProfile struct {
	ID                 string      `json:"id"`
	Name               string      `json:"name"`
	FirstName          string      `json:"firstName,omitempty"`
	LastName           string      `json:"lastName,omitempty"`
	Title              string      `json:"title"`
	Image              string      `json:"image"`
	Industry           string      `json:"industry"`
	Verified           bool        `json:"verified"`
	Events             int         `json:"events"`
	Followers          int         `json:"followers"`
	Location           string      `json:"location,omitempty"`
	Email              string      `json:"email,omitempty"`
	Phone              string      `json:"phone,omitempty"`
	Rating             float64     `json:"rating"`
	ShortBio           string      `json:"shortBio,omitempty"`
	LongBio            string      `json:"longBio,omitempty"`
	Expertise          []string    `json:"expertise"`
	SpeakingTopics     []string    `json:"speakingTopics"`
	PreviousExperience string      `json:"previousExperience,omitempty"`
	SampleVideoURL     string      `json:"sampleVideoUrl,omitempty"`
	SocialLinks        SocialLinks `json:"socialLinks"`
}

// SpeakerFilters narrows speaker listings.
type SpeakerFilters struct {
	Search   string
	Industry string
	Verified *bool
}

// SpeakerApplicationPayload is the input for a speaker application.
// Applications start unverified; verification is an admin action.
type SpeakerApplicationPayload struct {
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	Email      string   `json:"email"`
	Phone      string   `json:"phone"`
	Location   string   `json:"location"`
	Title      string   `json:"title"`
	Industry   string   `json:"industry"`
	Expertise  []string `json:"expertise"`
	ShortBio   string   `json:"shortBio"`
	LongBio    string   `json:"longBio"`
	Headshot   string   `json:"headshot"`
	Website    string   `json:"website,omitempty"`
	LinkedIn   string   `json:"linkedin,omitempty"`
	Twitter    string   `json:"twitter,omitempty"`
	Facebook   string   `json:"facebook,omitempty"`
	Experience string   `json:"experience,omitempty"`
	SampleVid  string   `json:"sampleVideo,omitempty"`
	Topics     []string `json:"topics"`
}

// SpeakerDashboardStats summarizes a speaker's reach.
type SpeakerDashboardStats struct {
	TotalEvents  int     `json:"totalEvents"`
	Followers    int     `json:"followers"`
	ProfileViews int     `json:"profileViews"`
	Rating       float64 `json:"rating"`
}

// SpeakerInvitation is a pending speaking invitation.
type SpeakerInvitation struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	Organizer string `json:"organizer"`
	Status    string `json:"status"`
}

// SpeakerDashboardData is the speaker dashboard aggregate.
type SpeakerDashboardData struct {
	Stats          SpeakerDashboardStats `json:"stats"`
	UpcomingEvents []EventItem           `json:"upcomingEvents"`
	Invitations    []SpeakerInvitation   `json:"invitations"`
}

// SpeakerService defines speaker browsing, applications, and following.
type SpeakerService interface {
	List(ctx context.Context, filters *SpeakerFilters) ([]SpeakerProfile, error)
	GetByID(ctx context.Context, id string) (*SpeakerProfile, error)
	Apply(ctx context.Context, payload *SpeakerApplicationPayload) (*SpeakerProfile, error)
	Follow(ctx context.Context, userID, speakerID string) error
	Unfollow(ctx context.Context, userID, speakerID string) error
	FollowingStatus(ctx context.Context, userID, speakerID string) (bool, error)
	SpeakerEvents(ctx context.Context, speakerID string) ([]EventItem, error)
	Dashboard(ctx context.Context, speakerID string) (*SpeakerDashboardData, error)
}
