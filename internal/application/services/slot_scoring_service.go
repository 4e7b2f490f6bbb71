package services

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/booksaloon/backend/internal/domain/entities"
)

// SlotRewardWeights are the linear weights of the slot reward signals
type SlotRewardWeights struct {
	TimePreference  float64
	GapMinimization float64
	LoadBalance     float64
	PeakAvoidance   float64
	BufferTime      float64
}

// Sum returns the total of all weights
func (w SlotRewardWeights) Sum() float64 {
	return sumWeights(w.TimePreference, w.GapMinimization, w.LoadBalance, w.PeakAvoidance, w.BufferTime)
}

// DefaultSlotRewardWeights sum to 1.0
var DefaultSlotRewardWeights = SlotRewardWeights{
	TimePreference:  0.30,
	GapMinimization: 0.25,
	LoadBalance:     0.20,
	PeakAvoidance:   0.15,
	BufferTime:      0.10,
}

const (
	defaultSlotHour        = 12
	defaultServiceDuration = 1.0
)

var (
	peakHours    = map[int]bool{10: true, 11: true, 17: true, 18: true, 19: true}
	offPeakHours = map[int]bool{9: true, 13: true, 14: true, 15: true, 20: true}

	ampmTime    = regexp.MustCompile(`(\d{1,2}):?(\d{2})?\s*(AM|PM)`)
	clockTime   = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
	leadingHour = regexp.MustCompile(`^[+-]?\d+`)
)

// SlotRequest describes the booking a slot is being chosen for
type SlotRequest struct {
	PreferredTime    string
	ExistingBookings []entities.Booking
	ServiceDuration  float64
}

// SlotScoringService ranks candidate time slots by a reward-weighted Q-value
type SlotScoringService struct {
	weights SlotRewardWeights
}

// NewSlotScoringService creates a slot scorer with the default reward weights
func NewSlotScoringService() *SlotScoringService {
	return &SlotScoringService{weights: DefaultSlotRewardWeights}
}

// Score ranks slots by descending Q-value. Empty input yields a selection
// with a nil BestSlot and no ranked slots.
func (s *SlotScoringService) Score(slots []entities.Slot, req SlotRequest) entities.SlotSelection {
	if len(slots) == 0 {
		return entities.SlotSelection{RankedSlots: []entities.RankedSlot{}}
	}

	var preferred *int
	if strings.TrimSpace(req.PreferredTime) != "" {
		h := ParseHour(req.PreferredTime)
		preferred = &h
	}
	existing := make([]int, 0, len(req.ExistingBookings))
	for _, b := range req.ExistingBookings {
		existing = append(existing, ParseHour(b.Time))
	}
	duration := req.ServiceDuration
	if duration <= 0 {
		duration = defaultServiceDuration
	}

	type scored struct {
		slot   entities.Slot
		ranked entities.RankedSlot
	}
	all := make([]scored, len(slots))
	for i, slot := range slots {
		hour := ParseHour(slot.Time)
		rewards := entities.SlotRewards{
			TimePreference:  timePreferenceReward(hour, preferred),
			GapMinimization: gapMinimizationReward(hour, existing),
			LoadBalance:     loadBalanceReward(hour, existing),
			PeakAvoidance:   peakAvoidanceReward(hour),
			BufferTime:      bufferTimeReward(hour, existing, duration),
		}
		all[i] = scored{
			slot: slot,
			ranked: entities.RankedSlot{
				Time:    slot.Time,
				QValue:  round(s.qValue(rewards), 3),
				Rewards: rewards,
			},
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].ranked.QValue > all[j].ranked.QValue
	})

	ranked := make([]entities.RankedSlot, len(all))
	for i := range all {
		ranked[i] = all[i].ranked
	}
	best := all[0].slot
	return entities.SlotSelection{
		BestSlot:    &best,
		BestTime:    all[0].ranked.Time,
		QValue:      all[0].ranked.QValue,
		RankedSlots: ranked,
	}
}

func (s *SlotScoringService) qValue(r entities.SlotRewards) float64 {
	w := s.weights
	return r.TimePreference*w.TimePreference +
		r.GapMinimization*w.GapMinimization +
		r.LoadBalance*w.LoadBalance +
		r.PeakAvoidance*w.PeakAvoidance +
		r.BufferTime*w.BufferTime
}

// ParseHour converts "HH:MM", "H:MM AM/PM" or a bare hour into a 24h hour.
// Anything unparseable, or outside 0-23, is treated as noon.
func ParseHour(value string) int {
	cleaned := strings.ToUpper(strings.TrimSpace(value))
	if cleaned == "" {
		return defaultSlotHour
	}

	hour := -1
	if m := ampmTime.FindStringSubmatch(cleaned); m != nil {
		hour, _ = strconv.Atoi(m[1])
		switch {
		case m[3] == "PM" && hour != 12:
			hour += 12
		case m[3] == "AM" && hour == 12:
			hour = 0
		}
	} else if m := clockTime.FindStringSubmatch(cleaned); m != nil {
		hour, _ = strconv.Atoi(m[1])
	} else if m := leadingHour.FindString(cleaned); m != "" {
		hour, _ = strconv.Atoi(m)
	}

	if hour < 0 || hour > 23 {
		return defaultSlotHour
	}
	return hour
}

// FormatHour renders an hour as "HH:00"
func FormatHour(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}

func timePreferenceReward(hour int, preferred *int) float64 {
	if preferred == nil {
		return neutralFeature
	}
	diff := float64(hour - *preferred)
	return math.Exp(-(diff * diff) / 8)
}

func closestGap(hour int, existing []int) int {
	gap := math.MaxInt
	for _, h := range existing {
		d := hour - h
		if d < 0 {
			d = -d
		}
		gap = min(gap, d)
	}
	return gap
}

func gapMinimizationReward(hour int, existing []int) float64 {
	if len(existing) == 0 {
		return neutralFeature
	}
	gap := closestGap(hour, existing)
	switch {
	case gap >= 1 && gap <= 2:
		return 1.0
	case gap == 0:
		return 0
	case gap <= 3:
		return 0.7
	}
	return math.Max(0.1, 1-float64(gap)/10)
}

func dayBlock(hour int) int {
	switch {
	case hour < 12:
		return 0
	case hour < 15:
		return 1
	case hour < 18:
		return 2
	}
	return 3
}

func loadBalanceReward(hour int, existing []int) float64 {
	if len(existing) == 0 {
		return 1.0
	}
	var counts [4]int
	for _, h := range existing {
		counts[dayBlock(h)]++
	}
	maxLoad := 1
	for _, c := range counts {
		maxLoad = max(maxLoad, c)
	}
	return 1 - float64(counts[dayBlock(hour)])/float64(maxLoad+1)
}

func peakAvoidanceReward(hour int) float64 {
	if offPeakHours[hour] {
		return 1.0
	}
	if peakHours[hour] {
		return 0.2
	}
	return 0.6
}

func bufferTimeReward(hour int, existing []int, duration float64) float64 {
	if len(existing) == 0 {
		return 1.0
	}
	gap := float64(closestGap(hour, existing))
	switch {
	case gap < duration:
		return 0
	case gap >= duration+0.5:
		return 1.0
	}
	return 0.5
}
