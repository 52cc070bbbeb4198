package secondary

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// Row types mirror the managed store's native shape: snake_case columns,
// nullable fields, foreign-key arrays. Services reshape these into the
// canonical domain types; the adapter never does.

// EventRow is a row of the events table.
type EventRow struct {
	ID                   string
	Title                string
	Description          sql.NullString
	Date                 time.Time
	Time                 string
	Location             string
	Category             string
	Price                float64
	IsFree               bool
	ImageURL             sql.NullString
	SpeakerIDs           pq.StringArray
	Capacity             sql.NullInt64
	Tags                 pq.StringArray
	Organizer            sql.NullString
	ContactEmail         sql.NullString
	RegistrationDeadline sql.NullTime
	IsOnline             sql.NullBool
	OnlineLink           sql.NullString
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// EventInsert is the writable subset for creating an event.
type EventInsert struct {
	Title       string
	Description sql.NullString
	Date        time.Time
	Time        string
	Location    string
	Category    string
	Price       float64
	IsFree      bool
	ImageURL    sql.NullString
}

// EventUpdate is a partial event update; nil fields are left unchanged.
type EventUpdate struct {
	Title       *string
	Description *string
	Date        *time.Time
	Time        *string
	Location    *string
	Category    *string
	Price       *float64
	IsFree      *bool
	ImageURL    *string
}

// EventListFilters narrows event listings at the store level.
type EventListFilters struct {
	Search   string
	Category string
	IsFree   *bool
}

// RegistrationRow is a row of the event_registrations table.
type RegistrationRow struct {
	ID        string
	EventID   string
	UserID    sql.NullString
	Name      string
	Email     string
	Phone     sql.NullString
	CreatedAt time.Time
}

// SpeakerRow is a row of the speakers table.
type SpeakerRow struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	Phone          sql.NullString
	Location       string
	Title          string
	Industry       string
	Expertise      pq.StringArray
	ShortBio       string
	LongBio        string
	HeadshotURL    sql.NullString
	Website        sql.NullString
	LinkedIn       sql.NullString
	Twitter        sql.NullString
	Facebook       sql.NullString
	Verified       bool
	SampleVideoURL sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SpeakerListFilters narrows speaker listings at the store level.
type SpeakerListFilters struct {
	Search   string
	Industry string
	Verified *bool
}

// ApplicationRow is a row of the speaker_applications table.
type ApplicationRow struct {
	ID          string
	FirstName   string
	LastName    string
	Email       string
	Phone       sql.NullString
	Location    string
	Title       string
	Industry    string
	Expertise   pq.StringArray
	ShortBio    string
	LongBio     string
	HeadshotURL sql.NullString
	Website     sql.NullString
	LinkedIn    sql.NullString
	Twitter     sql.NullString
	Facebook    sql.NullString
	Experience  sql.NullString
	SampleVideo sql.NullString
	Topics      pq.StringArray
	Status      string
	CreatedAt   time.Time
}

// ApplicationInsert is the writable subset for a speaker application.
// Status is always "pending" on insert.
type ApplicationInsert struct {
	FirstName   string
	LastName    string
	Email       string
	Phone       sql.NullString
	Location    string
	Title       string
	Industry    string
	Expertise   []string
	ShortBio    string
	LongBio     string
	HeadshotURL sql.NullString
	Website     sql.NullString
	LinkedIn    sql.NullString
	Twitter     sql.NullString
	Facebook    sql.NullString
	Experience  sql.NullString
	SampleVideo sql.NullString
	Topics      []string
}

// CategoryRow is a row of the categories table.
type CategoryRow struct {
	ID          int
	Name        string
	Description string
	Color       string
	CreatedAt   time.Time
}

// CategoryUpdate is a partial category update.
type CategoryUpdate struct {
	Name        *string
	Description *string
	Color       *string
}

// AdRow is a row of the advertisements table. Impressions and clicks
// are only ever incremented by the store.
type AdRow struct {
	ID          string
	Title       string
	Impressions int
	Clicks      int
	ActiveUntil time.Time
	ImageURL    sql.NullString
	Link        sql.NullString
	Description sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AdInsert is the writable subset for creating an advertisement.
type AdInsert struct {
	Title       string
	ActiveUntil time.Time
	ImageURL    sql.NullString
	Link        sql.NullString
	Description sql.NullString
}

// AdUpdate is a partial advertisement update.
type AdUpdate struct {
	Title       *string
	ActiveUntil *time.Time
	ImageURL    *string
	Link        *string
	Description *string
}

// SavedEventRow is a row of the user_saved_events table.
type SavedEventRow struct {
	ID        string
	UserID    string
	EventID   string
	CreatedAt time.Time
}

// AccountRow is a row of the accounts table owned by the identity
// subsystem.
type AccountRow struct {
	ID             string
	Email          string
	Name           string
	Role           string
	AvatarURL      sql.NullString
	EmailConfirmed bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
