package entities

// Slot is a candidate one-hour time slot on an implied date
type Slot struct {
	Time string `json:"time"`
	Hour int    `json:"hour"`
}

// SlotRewards holds the individual reward signals of a slot
type SlotRewards struct {
	TimePreference  float64 `json:"time_preference"`
	GapMinimization float64 `json:"gap_minimization"`
	LoadBalance     float64 `json:"load_balance"`
	PeakAvoidance   float64 `json:"peak_avoidance"`
	BufferTime      float64 `json:"buffer_time"`
}

// RankedSlot is a slot annotated with its Q-value
type RankedSlot struct {
	Time    string      `json:"time"`
	QValue  float64     `json:"q_value"`
	Rewards SlotRewards `json:"rewards"`
}

// SlotSelection is the outcome of scoring a set of slots. BestSlot is nil
// when there was nothing to score.
type SlotSelection struct {
	BestSlot    *Slot        `json:"best_slot"`
	BestTime    string       `json:"best_time,omitempty"`
	QValue      float64      `json:"q_value,omitempty"`
	RankedSlots []RankedSlot `json:"ranked_slots"`
}

// RequestedSlot identifies the slot a customer asked for
type RequestedSlot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// SlotAlternative is a suggested replacement slot with its Q-value
type SlotAlternative struct {
	Time  string  `json:"time"`
	Score float64 `json:"score"`
}

// AvailabilityResult is the outcome of a booking availability check
type AvailabilityResult struct {
	Available     bool              `json:"available"`
	RequestedSlot RequestedSlot     `json:"requested_slot"`
	SuggestedSlot string            `json:"suggested_slot,omitempty"`
	Alternatives  []SlotAlternative `json:"alternatives,omitempty"`
	Message       string            `json:"message"`
	Booking       *Booking          `json:"booking,omitempty"`
}
