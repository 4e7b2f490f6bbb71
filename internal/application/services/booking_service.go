package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/booksaloon/backend/internal/domain/entities"
	"github.com/booksaloon/backend/internal/domain/providers"
	"github.com/booksaloon/backend/internal/domain/repositories"
	"github.com/booksaloon/backend/internal/infrastructure/observability"
	apperrors "github.com/booksaloon/backend/pkg/errors"
)

const (
	maxAlternatives = 3

	msgSlotAvailable  = "The requested slot is available."
	msgNoSlotsForDate = "No available slots for this date. Please try another date."
)

var (
	bookingDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	bookingTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

	conflictCounterOnce sync.Once
	conflictCounter     metric.Int64Counter
)

// ResolveOptions configures a single availability resolution
type ResolveOptions struct {
	OpeningHour     int
	ClosingHour     int
	ServiceDuration float64
}

// BookingResolver detects slot conflicts against a bookings snapshot and
// proposes ranked alternatives. It does not guarantee exclusivity against
// concurrent writers; the store enforces that.
type BookingResolver struct {
	slots *SlotScoringService
}

// NewBookingResolver creates a resolver backed by the given slot scorer
func NewBookingResolver(slots *SlotScoringService) *BookingResolver {
	return &BookingResolver{slots: slots}
}

// Resolve checks whether (date, t) is free in existing and, if not, suggests
// up to three alternative slots on the same date.
func (r *BookingResolver) Resolve(existing []entities.Booking, date, t string, opts ResolveOptions) entities.AvailabilityResult {
	requested := entities.RequestedSlot{Date: date, Time: t}

	conflict := false
	for i := range existing {
		if existing[i].Date == date && existing[i].Time == t && existing[i].Occupies() {
			conflict = true
			break
		}
	}
	if !conflict {
		return entities.AvailabilityResult{
			Available:     true,
			RequestedSlot: requested,
			Message:       msgSlotAvailable,
		}
	}

	active := entities.ActiveBookingsOn(existing, date)
	candidates := generateSlots(active, opts.OpeningHour, opts.ClosingHour)
	if len(candidates) == 0 {
		return entities.AvailabilityResult{
			Available:     false,
			RequestedSlot: requested,
			Alternatives:  []entities.SlotAlternative{},
			Message:       msgNoSlotsForDate,
		}
	}

	selection := r.slots.Score(candidates, SlotRequest{
		PreferredTime:    t,
		ExistingBookings: active,
		ServiceDuration:  opts.ServiceDuration,
	})

	alternatives := make([]entities.SlotAlternative, 0, maxAlternatives)
	for _, ranked := range selection.RankedSlots {
		if len(alternatives) == maxAlternatives {
			break
		}
		alternatives = append(alternatives, entities.SlotAlternative{Time: ranked.Time, Score: ranked.QValue})
	}

	return entities.AvailabilityResult{
		Available:     false,
		RequestedSlot: requested,
		SuggestedSlot: selection.BestTime,
		Alternatives:  alternatives,
		Message:       fmt.Sprintf("The %s slot is taken. Best alternative: %s.", t, selection.BestTime),
	}
}

// generateSlots lists the hourly slots between open and close that no active
// booking occupies. Non-positive hours fall back to the marketplace defaults.
func generateSlots(active []entities.Booking, open, closing int) []entities.Slot {
	if open <= 0 {
		open = entities.DefaultOpeningHour
	}
	if closing <= 0 {
		closing = entities.DefaultClosingHour
	}

	booked := make(map[string]bool, len(active))
	for i := range active {
		booked[active[i].Time] = true
	}

	slots := make([]entities.Slot, 0, max(closing-open, 0))
	for hour := open; hour < closing; hour++ {
		t := FormatHour(hour)
		if !booked[t] {
			slots = append(slots, entities.Slot{Time: t, Hour: hour})
		}
	}
	return slots
}

// CreateBookingRequest is the input for creating a booking
type CreateBookingRequest struct {
	UserID          string  `json:"user_id"`
	SalonID         string  `json:"salon_id"`
	Service         string  `json:"service"`
	Price           float64 `json:"price"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	ServiceDuration float64 `json:"service_duration,omitempty"`
}

// Validate checks the request fields
func (r *CreateBookingRequest) Validate() error {
	if strings.TrimSpace(r.SalonID) == "" {
		return apperrors.NewValidationError("salon_id is required")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return apperrors.NewValidationError("user_id is required")
	}
	if err := validateSlot(r.Date, r.Time); err != nil {
		return err
	}
	if r.Price < 0 {
		return apperrors.NewValidationError("price must not be negative")
	}
	return nil
}

func validateSlot(date, t string) error {
	if !bookingDatePattern.MatchString(date) {
		return apperrors.NewValidationError("date must be formatted as YYYY-MM-DD")
	}
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return apperrors.NewValidationError("date is not a valid calendar date")
	}
	if !bookingTimePattern.MatchString(t) {
		return apperrors.NewValidationError("time must be formatted as HH:MM")
	}
	return nil
}

// BookingService handles booking creation and lifecycle
type BookingService struct {
	repo      repositories.BookingRepository
	salonRepo repositories.SalonRepository
	resolver  *BookingResolver
	eventBus  providers.EventBus

	defaultOpen  int
	defaultClose int
}

// NewBookingService creates a new booking service. eventBus may be nil.
func NewBookingService(
	repo repositories.BookingRepository,
	salonRepo repositories.SalonRepository,
	resolver *BookingResolver,
	eventBus providers.EventBus,
) *BookingService {
	return &BookingService{
		repo:      repo,
		salonRepo: salonRepo,
		resolver:  resolver,
		eventBus:  eventBus,

		defaultOpen:  entities.DefaultOpeningHour,
		defaultClose: entities.DefaultClosingHour,
	}
}

// WithDefaultHours sets the hours used for salons without their own
func (s *BookingService) WithDefaultHours(open, closing int) *BookingService {
	if open >= 0 && closing <= 24 && open < closing {
		s.defaultOpen, s.defaultClose = open, closing
	}
	return s
}

// CheckAvailability runs the resolver against the current bookings of a
// salon without writing anything.
func (s *BookingService) CheckAvailability(ctx context.Context, salonID, date, t string) (*entities.AvailabilityResult, error) {
	if err := validateSlot(date, t); err != nil {
		return nil, err
	}

	salon, existing, err := s.loadSnapshot(ctx, salonID, date)
	if err != nil {
		return nil, err
	}
	open, closing := salon.OperatingHoursOr(s.defaultOpen, s.defaultClose)
	result := s.resolver.Resolve(existing, date, t, ResolveOptions{OpeningHour: open, ClosingHour: closing})
	return &result, nil
}

// CreateBooking books the requested slot when it is free. A taken slot is
// not an error: the returned result has Available false and carries the
// suggested alternatives.
func (s *BookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*entities.AvailabilityResult, error) {
	logger := observability.LoggerFromContext(ctx)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	salon, existing, err := s.loadSnapshot(ctx, req.SalonID, req.Date)
	if err != nil {
		return nil, err
	}

	open, closing := salon.OperatingHoursOr(s.defaultOpen, s.defaultClose)
	hour := ParseHour(req.Time)
	if hour < open || hour >= closing {
		return nil, apperrors.NewValidationError(fmt.Sprintf("salon is open from %s to %s", FormatHour(open), FormatHour(closing)))
	}

	result := s.resolver.Resolve(existing, req.Date, req.Time, ResolveOptions{
		OpeningHour:     open,
		ClosingHour:     closing,
		ServiceDuration: req.ServiceDuration,
	})
	if !result.Available {
		recordConflict(ctx, req.SalonID)
		logger.Info().
			Str("salon_id", req.SalonID).
			Str("date", req.Date).
			Str("time", req.Time).
			Str("suggested", result.SuggestedSlot).
			Msg("requested slot is taken")
		return &result, nil
	}

	now := time.Now().UTC()
	booking := &entities.Booking{
		ID:              uuid.New().String(),
		UserID:          req.UserID,
		SalonID:         req.SalonID,
		Service:         req.Service,
		Price:           req.Price,
		Date:            req.Date,
		Time:            req.Time,
		Status:          entities.BookingStatusPending,
		ServiceDuration: req.ServiceDuration,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			// Lost a race with a concurrent writer; report it like any other conflict
			return s.resolveAfterRace(ctx, req, open, closing)
		}
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.publish(ctx, entities.BookingEventTypeCreated, booking)
	logger.Info().Str("booking_id", booking.ID).Str("salon_id", booking.SalonID).Msg("booking created")

	result.Booking = booking
	return &result, nil
}

func (s *BookingService) resolveAfterRace(ctx context.Context, req CreateBookingRequest, open, closing int) (*entities.AvailabilityResult, error) {
	existing, err := s.repo.ListBySalon(ctx, req.SalonID, req.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to reload bookings: %w", err)
	}
	result := s.resolver.Resolve(existing, req.Date, req.Time, ResolveOptions{
		OpeningHour:     open,
		ClosingHour:     closing,
		ServiceDuration: req.ServiceDuration,
	})
	if result.Available {
		// The competing booking was cancelled in between; let the caller retry
		return nil, apperrors.NewConflictError("slot changed while booking, please retry")
	}
	recordConflict(ctx, req.SalonID)
	return &result, nil
}

// UpdateStatus changes a booking's status and publishes the change
func (s *BookingService) UpdateStatus(ctx context.Context, id string, status entities.BookingStatus) (*entities.Booking, error) {
	if !status.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid status %q", status))
	}

	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	booking.Status = status
	booking.UpdatedAt = time.Now().UTC()
	s.publish(ctx, entities.BookingEventTypeStatusChanged, booking)
	return booking, nil
}

// GetSalonBookings lists all bookings of a salon
func (s *BookingService) GetSalonBookings(ctx context.Context, salonID string) ([]entities.Booking, error) {
	return s.repo.ListBySalon(ctx, salonID, "")
}

// GetUserBookings lists all bookings made by a user
func (s *BookingService) GetUserBookings(ctx context.Context, userID string) ([]entities.Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *BookingService) loadSnapshot(ctx context.Context, salonID, date string) (*entities.Salon, []entities.Booking, error) {
	salon, err := s.salonRepo.GetByID(ctx, salonID)
	if err != nil {
		return nil, nil, err
	}
	existing, err := s.repo.ListBySalon(ctx, salonID, date)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	return salon, existing, nil
}

func (s *BookingService) publish(ctx context.Context, eventType entities.BookingEventType, booking *entities.Booking) {
	if s.eventBus == nil {
		return
	}
	event := entities.NewBookingEvent(eventType, booking)
	logger := observability.LoggerFromContext(ctx)
	for _, channel := range []string{providers.GetSalonChannel(booking.SalonID), providers.EventChannelBookingUpdates} {
		if err := s.eventBus.Publish(ctx, channel, event); err != nil {
			logger.Warn().Err(err).Str("channel", channel).Msg("failed to publish booking event")
		}
	}
}

func initConflictCounter() {
	meter := otel.Meter("github.com/booksaloon/backend/booking")
	counter, err := meter.Int64Counter(
		"booking.conflict.count",
		metric.WithDescription("Count of booking requests for slots that were already taken"),
	)
	if err == nil {
		conflictCounter = counter
	}
}

func recordConflict(ctx context.Context, salonID string) {
	conflictCounterOnce.Do(initConflictCounter)
	if conflictCounter == nil {
		return
	}
	conflictCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("salon.id", salonID)))
}
