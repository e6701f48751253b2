package model

// StoreCode identifies a physical location queried against the upstream API.
type StoreCode string

// Timeslot is one free appointment window, as decoded from the upstream API.
type Timeslot struct {
	Date      string    `json:"date"`
	Timeslots TimeRange `json:"timeslots"`
}

// TimeRange is the from/to part of a Timeslot, kept in the upstream string format.
type TimeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// FreeDay is the flat date/free shape the upstream API also documents.
// Nothing polls for it yet.
type FreeDay struct {
	Date string `json:"date"`
	Free string `json:"free"`
}

// PollResult maps every queried store to the timeslots found in one cycle.
// An empty slice means no availability for that store.
type PollResult map[StoreCode][]Timeslot

// HasAvailability reports whether at least one store has a timeslot.
func (r PollResult) HasAvailability() bool {
	for _, slots := range r {
		if len(slots) > 0 {
			return true
		}
	}
	return false
}

// Store is a configured location with its display name.
type Store struct {
	Code StoreCode
	Name string
}
