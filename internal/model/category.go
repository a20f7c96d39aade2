package model

import "github.com/rotisserie/eris"

// SpaceCategory classifies an interior space marker.
type SpaceCategory string

const (
	SpaceEntrance      SpaceCategory = "entrance"
	SpaceKitchen       SpaceCategory = "kitchen"
	SpaceMasterBedroom SpaceCategory = "master_bedroom"
	SpaceBedroom       SpaceCategory = "bedroom"
	SpaceKidsBedroom   SpaceCategory = "kids_bedroom"
	SpaceGuestBedroom  SpaceCategory = "guest_bedroom"
	SpaceLivingRoom    SpaceCategory = "living_room"
	SpacePoojaRoom     SpaceCategory = "pooja_room"
	SpaceToilet        SpaceCategory = "toilet"
	SpaceBathroom      SpaceCategory = "bathroom"
	SpaceStoreRoom     SpaceCategory = "store_room"
	SpaceBalcony       SpaceCategory = "balcony"
	SpaceStaircase     SpaceCategory = "staircase"
)

// SpaceCategories lists every valid category in display order.
var SpaceCategories = []SpaceCategory{
	SpaceEntrance,
	SpaceKitchen,
	SpaceMasterBedroom,
	SpaceBedroom,
	SpaceKidsBedroom,
	SpaceGuestBedroom,
	SpaceLivingRoom,
	SpacePoojaRoom,
	SpaceToilet,
	SpaceBathroom,
	SpaceStoreRoom,
	SpaceBalcony,
	SpaceStaircase,
}

var validCategories = func() map[SpaceCategory]bool {
	m := make(map[SpaceCategory]bool, len(SpaceCategories))
	for _, c := range SpaceCategories {
		m[c] = true
	}
	return m
}()

// ParseSpaceCategory validates a category string from external input.
func ParseSpaceCategory(s string) (SpaceCategory, error) {
	c := SpaceCategory(s)
	if !validCategories[c] {
		return "", eris.Errorf("model: unknown space category %q", s)
	}
	return c, nil
}

// Valid reports whether the category is one of the fixed space types.
func (c SpaceCategory) Valid() bool {
	return validCategories[c]
}
