package timezone_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libres/shared/timezone"
)

func TestSetLocation(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, timezone.SetLocation("UTC")) })

	require.NoError(t, timezone.SetLocation("Europe/Istanbul"))
	assert.Equal(t, "Europe/Istanbul", timezone.GetLocation().String())
	assert.Equal(t, "Europe/Istanbul", timezone.Now().Location().String())

	instant := time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-15 09:00", timezone.Format(instant, "2006-01-02 15:04"))

	parsed, err := timezone.Parse(time.DateTime, "2024-03-15 09:00:00")
	require.NoError(t, err)
	assert.True(t, parsed.Equal(instant))

	require.Error(t, timezone.SetLocation("Mars/Olympus_Mons"))
	assert.Equal(t, time.UTC, timezone.GetLocation())

	require.NoError(t, timezone.SetLocation(""))
	assert.Equal(t, time.UTC, timezone.GetLocation())
}

func TestDateOf(t *testing.T) {
	got := timezone.DateOf(time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, timezone.GetLocation()), got)
}

func TestCombine(t *testing.T) {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		clock   string
		hour    int
		minute  int
		wantErr bool
	}{
		{name: "seconds layout", clock: "09:00:00", hour: 9, minute: 0},
		{name: "short layout", clock: "10:30", hour: 10, minute: 30},
		{name: "invalid", clock: "half past nine", wantErr: true},
		{name: "out of range", clock: "25:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := timezone.Combine(date, tt.clock)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, 15, got.Day())
			assert.Equal(t, tt.hour, got.Hour())
			assert.Equal(t, tt.minute, got.Minute())
		})
	}
}

func TestFixedClock(t *testing.T) {
	instant := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)

	assert.True(t, timezone.FixedClock(instant).Now().Equal(instant))
}
