package timezone

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"libres/config"
)

const clockLayout = "15:04"

var location atomic.Pointer[time.Location]

func init() {
	name := config.Get().App.Timezone

	if err := SetLocation(name); err != nil {
		log.Error().Err(err).Str("timezone", name).
			Msg("Failed to load timezone, falling back to UTC. Use IANA names such as 'Europe/Istanbul' or 'UTC'")

		return
	}

	log.Info().Str("timezone", GetLocation().String()).Msg("Application timezone initialized")
}

// SetLocation switches the application timezone. An empty name means UTC.
func SetLocation(name string) error {
	if name == "" {
		location.Store(time.UTC)

		return nil
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		location.Store(time.UTC)

		return fmt.Errorf("failed to load location %q: %w", name, err)
	}

	location.Store(loc)

	return nil
}

// GetLocation returns the application timezone, UTC until one is set.
func GetLocation() *time.Location {
	if loc := location.Load(); loc != nil {
		return loc
	}

	return time.UTC
}

func Now() time.Time {
	return time.Now().In(GetLocation())
}

func ToAppTime(t time.Time) time.Time {
	return t.In(GetLocation())
}

// Parse reads value as wall time in the application timezone.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, GetLocation()) //nolint:wrapcheck
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}

// Clock supplies the current time. Services take a Clock so tests can pin "now".
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time {
	return Now()
}

func NewClock() Clock {
	return wallClock{}
}

// FixedClock always reports the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return ToAppTime(time.Time(c))
}

// DateOf truncates t to midnight in the application timezone, keeping t's calendar date.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, GetLocation())
}

// Combine returns the instant at which clock ("15:04" or "15:04:05") falls on date.
func Combine(date time.Time, clock string) (time.Time, error) {
	parsed, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}

	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), parsed.Second(), 0, GetLocation()), nil
}

// ParseClock parses a time of day in either "15:04:05" or "15:04" form.
func ParseClock(clock string) (time.Time, error) {
	for _, layout := range []string{time.TimeOnly, clockLayout} {
		if parsed, err := time.Parse(layout, clock); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid time of day %q", clock)
}
