package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"wedding-site/internal/models"
)

// DefaultContent is the copy shown when no content file is configured.
func DefaultContent(brideName, groomName string) models.Content {
	bride := models.Person{
		Name:      brideName,
		Parents:   "Mr. John Anderson & Mrs. Mary Anderson",
		BirthDate: "August 15, 1995",
		Image:     "/media/bride.jpg",
	}
	groom := models.Person{
		Name:      groomName,
		Parents:   "Mr. James Roberts & Mrs. Emma Roberts",
		BirthDate: "June 22, 1993",
		Image:     "/media/groom.jpg",
	}
	return models.Content{
		Couple:    models.Couple{Bride: bride, Groom: groom},
		HeroImage: "https://images.unsplash.com/photo-1519225421980-715cb0215aed?ixlib=rb-4.0.3",
		Events: []models.Event{
			{Title: "Holy Matrimony", Date: "December 31, 2024", Time: "10:00 AM - 11:30 AM", Venue: "St. Mary's Cathedral", MapURL: "https://maps.google.com"},
			{Title: "Wedding Reception", Date: "December 31, 2024", Time: "12:30 PM - 4:00 PM", Venue: "Grand Ballroom, Luxury Hotel", MapURL: "https://maps.google.com"},
		},
		Story: []models.Milestone{
			{Date: "June 15, 2020", Title: "First Meeting", Description: "We first met at a local coffee shop. A chance encounter that changed our lives forever."},
			{Date: "December 24, 2020", Title: "First Date", Description: "Our first official date was during Christmas Eve. We walked through the city lights and knew this was special."},
			{Date: "August 30, 2021", Title: "Moving In Together", Description: "We decided to take the next step in our relationship and create our first home together."},
			{Date: "February 14, 2023", Title: "The Proposal", Description: "On Valentine's Day, under the stars, we decided to spend the rest of our lives together."},
		},
		Gallery: []string{
			"https://images.unsplash.com/photo-1519225421980-715cb0215aed?ixlib=rb-4.0.3",
			"https://images.unsplash.com/photo-1511285560929-80b456fea0bc?ixlib=rb-4.0.3",
			"https://images.unsplash.com/photo-1519741497674-611481863552?ixlib=rb-4.0.3",
			"https://images.unsplash.com/photo-1465495976277-4387d4b0b4c6?ixlib=rb-4.0.3",
			"https://images.unsplash.com/photo-1460364157752-926555421a7e?ixlib=rb-4.0.3",
			"https://images.unsplash.com/photo-1519225421980-715cb0215aed?ixlib=rb-4.0.3",
		},
		Gifts: models.Gifts{
			BankName:      "Bank Central",
			AccountNumber: "1234567890",
			AccountHolder: bride.FirstName() + " & " + groom.FirstName(),
			Phone:         "081234567890",
			Address:       []string{bride.FirstName() + " & " + groom.FirstName(), "123 Wedding Street", "Celebration City, 12345"},
		},
	}
}

// loadContent reads the optional content file. Sections missing from the
// file keep their defaults.
func loadContent(path, brideName, groomName string) (models.Content, error) {
	content := DefaultContent(brideName, groomName)
	if path == "" {
		return content, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return models.Content{}, fmt.Errorf("failed to read content file %s: %w", path, err)
	}

	var fromFile models.Content
	if err := v.Unmarshal(&fromFile); err != nil {
		return models.Content{}, fmt.Errorf("failed to parse content file %s: %w", path, err)
	}
	return merge(content, fromFile), nil
}

func merge(base, over models.Content) models.Content {
	if strings.TrimSpace(over.Couple.Bride.Name) != "" {
		base.Couple.Bride = over.Couple.Bride
	}
	if strings.TrimSpace(over.Couple.Groom.Name) != "" {
		base.Couple.Groom = over.Couple.Groom
	}
	if over.HeroImage != "" {
		base.HeroImage = over.HeroImage
	}
	if len(over.Events) > 0 {
		base.Events = over.Events
	}
	if len(over.Story) > 0 {
		base.Story = over.Story
	}
	if len(over.Gallery) > 0 {
		base.Gallery = over.Gallery
	}
	if over.Gifts.AccountNumber != "" || len(over.Gifts.Address) > 0 {
		base.Gifts = over.Gifts
	}
	return base
}
