package models

// Event is a search result from the external events provider. It is a
// boundary DTO, not a persisted table: provider responses are validated and
// converted into this shape once, at the client edge.
type Event struct {
	Name        string   `json:"name"`
	Date        string   `json:"date"`
	Time        *string  `json:"time,omitempty"`
	Venue       *string  `json:"venue,omitempty"`
	Description *string  `json:"description,omitempty"`
	Type        *string  `json:"type,omitempty"`
	Address     *string  `json:"address,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	SourceURL   *string  `json:"source_url,omitempty"`

	// DistanceMi is derived per caller, never cached: populated only when
	// both the event and the caller supplied coordinates.
	DistanceMi *float64 `json:"distance_mi,omitempty"`
}

// HasCoordinates reports whether the provider supplied a usable location.
func (e *Event) HasCoordinates() bool {
	return e.Lat != nil && e.Lng != nil
}

// Spot is a candidate recommendation validated against the category policy
// before it may land on the wheel.
type Spot struct {
	PlaceID     string   `json:"place_id,omitempty"`
	Name        string   `json:"name"`
	Category    string   `json:"category,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`

	// Weight biases the wheel; zero or negative counts as 1.
	Weight int `json:"weight,omitempty"`
}
