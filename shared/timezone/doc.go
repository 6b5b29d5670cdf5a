// Package timezone pins every wall clock reading of the service to one IANA location,
// configured through APP_TIMEZONE and loaded when the package is imported.
//
// Reservation dates and time slot bounds are stored without a zone, so they are always
// interpreted here:
//
//	start, err := timezone.Combine(timezone.DateOf(reservationDate), slot.StartTime)
//	day, err := timezone.Parse(time.DateOnly, "2024-03-15")
//
// Services read the time through a Clock. Tests pass a FixedClock instead of timezone.NewClock.
package timezone
