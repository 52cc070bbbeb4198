package domain

import "context"

// EventAgendaItem is a single slot in an event's agenda.
type EventAgendaItem struct {
	Time    string `json:"time"`
	Title   string `json:"title"`
	Speaker string `json:"speaker,omitempty"`
}

// EventSpeaker is the short speaker summary nested in an event.
type EventSpeaker struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Image string `json:"image,omitempty"`
}

// EventItem is the canonical event shape returned by EventService
// regardless of which backend satisfied the request.
// Invariant: IsFree is true iff Price represents zero ("Free").
type EventItem struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Image           string            `json:"image"`
	Date            string            `json:"date"`
	Time            string            `json:"time"`
	Location        string            `json:"location"`
	Price           string            `json:"price"`
	IsFree          bool              `json:"isFree"`
	Category        string            `json:"category"`
	Speakers        string            `json:"speakers"`
	Attendees       int               `json:"attendees,omitempty"`
	Description     string            `json:"description,omitempty"`
	Agenda          []EventAgendaItem `json:"agenda,omitempty"`
	SpeakerProfiles []EventSpeaker    `json:"speakerProfiles,omitempty"`
}

// EventFilters narrows event listings. Price is "all", "free" or "paid".
type EventFilters struct {
	Search   string
	Category string
	Price    string
	Date     string
}

// CreateEventPayload is the input for creating an event.
type CreateEventPayload struct {
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Location    string  `json:"location"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
}

// UpdateEventPayload is a partial update; nil fields are left unchanged.
type UpdateEventPayload struct {
	ID          string   `json:"id"`
	Title       *string  `json:"title,omitempty"`
	Date        *string  `json:"date,omitempty"`
	Time        *string  `json:"time,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Image       *string  `json:"image,omitempty"`
}

// EventRegistrationPayload is the input for registering an attendee.
type EventRegistrationPayload struct {
	EventID string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
}

// EventService defines event browsing and management operations.
// Every operation attempts the primary backend first and falls back
// to the secondary store on any failure.
type EventService interface {
	List(ctx context.Context, filters *EventFilters) ([]EventItem, error)
	GetByID(ctx context.Context, id string) (*EventItem, error)
	Create(ctx context.Context, payload *CreateEventPayload) (*EventItem, error)
	Update(ctx context.Context, payload *UpdateEventPayload) (*EventItem, error)
	Delete(ctx context.Context, id string) error
	Register(ctx context.Context, payload *EventRegistrationPayload) error
}
