package services

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"eventscout/internal/domain"
	"eventscout/internal/secondary"
)

const dateLayout = "2006-01-02"

// Reshaping lives here, at the service boundary: the secondary adapter
// hands back rows in the store's native shape and the services produce
// the canonical camelCase types. Aggregates the store does not carry
// (attendees, ratings, view counts) default to zero.

// formatPrice keeps price and isFree mutually consistent: the rendered
// price is "Free" exactly when isFree is true.
func formatPrice(price float64, isFree bool) string {
	if isFree {
		return "Free"
	}
	return fmt.Sprintf("$%g", price)
}

// parsePrice is the inverse for canonical inputs such as "$25" or "Free".
func parsePrice(price string) float64 {
	trimmed := strings.TrimPrefix(strings.TrimSpace(price), "$")
	if strings.EqualFold(trimmed, "free") || trimmed == "" {
		return 0
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0
	}
	return value
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func eventFromRow(row *secondary.EventRow) domain.EventItem {
	return domain.EventItem{
		ID:          row.ID,
		Title:       row.Title,
		Image:       row.ImageURL.String,
		Date:        row.Date.Format(dateLayout),
		Time:        row.Time,
		Location:    row.Location,
		Price:       formatPrice(row.Price, row.IsFree),
		IsFree:      row.IsFree,
		Category:    row.Category,
		Description: row.Description.String,
	}
}

func eventsFromRows(rows []*secondary.EventRow) []domain.EventItem {
	events := make([]domain.EventItem, 0, len(rows))
	for _, row := range rows {
		events = append(events, eventFromRow(row))
	}
	return events
}

func speakerFromRow(row *secondary.SpeakerRow) domain.SpeakerProfile {
	return domain.SpeakerProfile{
		ID:             row.ID,
		Name:           strings.TrimSpace(row.FirstName + " " + row.LastName),
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		Title:          row.Title,
		Image:          row.HeadshotURL.String,
		Industry:       row.Industry,
		Verified:       row.Verified,
		Location:       row.Location,
		Email:          row.Email,
		Phone:          row.Phone.String,
		ShortBio:       row.ShortBio,
		LongBio:        row.LongBio,
		Expertise:      append([]string{}, row.Expertise...),
		SpeakingTopics: []string{},
		SampleVideoURL: row.SampleVideoURL.String,
		SocialLinks: domain.SocialLinks{
			Website:  row.Website.String,
			LinkedIn: row.LinkedIn.String,
			Twitter:  row.Twitter.String,
			Facebook: row.Facebook.String,
		},
	}
}

func speakerFromApplication(row *secondary.ApplicationRow) domain.SpeakerProfile {
	return domain.SpeakerProfile{
		ID:                 row.ID,
		Name:               strings.TrimSpace(row.FirstName + " " + row.LastName),
		FirstName:          row.FirstName,
		LastName:           row.LastName,
		Title:              row.Title,
		Image:              row.HeadshotURL.String,
		Industry:           row.Industry,
		Verified:           false,
		Location:           row.Location,
		Email:              row.Email,
		Phone:              row.Phone.String,
		ShortBio:           row.ShortBio,
		LongBio:            row.LongBio,
		Expertise:          append([]string{}, row.Expertise...),
		SpeakingTopics:     append([]string{}, row.Topics...),
		PreviousExperience: row.Experience.String,
		SampleVideoURL:     row.SampleVideo.String,
		SocialLinks: domain.SocialLinks{
			Website:  row.Website.String,
			LinkedIn: row.LinkedIn.String,
			Twitter:  row.Twitter.String,
			Facebook: row.Facebook.String,
		},
	}
}

func categoryFromRow(row *secondary.CategoryRow) domain.AdminCategory {
	return domain.AdminCategory{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Color:       row.Color,
	}
}

func adFromRow(row *secondary.AdRow) domain.AdminAd {
	return domain.AdminAd{
		ID:          row.ID,
		Title:       row.Title,
		Impressions: row.Impressions,
		Clicks:      row.Clicks,
		ActiveUntil: row.ActiveUntil.Format(dateLayout),
		Image:       row.ImageURL.String,
		Link:        row.Link.String,
		Description: row.Description.String,
	}
}

func profileFromAccount(account *secondary.AccountRow) *domain.UserProfile {
	return &domain.UserProfile{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		Role:      domain.UserRole(account.Role),
		AvatarURL: account.AvatarURL.String,
		CreatedAt: account.CreatedAt.Format(dateLayout),
		UpdatedAt: account.UpdatedAt.Format(dateLayout),
	}
}
