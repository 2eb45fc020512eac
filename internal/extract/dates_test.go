package extract

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFixedNow(t *testing.T, fixed time.Time) {
	t.Helper()
	orig := timeNow
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = orig })
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"iso", "2025-03-12", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)},
		{"iso slash", "2025/03/12", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)},
		{"iso dot", "2025.03.12", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)},
		{"leap day", "2024-02-29", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		{"slash ambiguous is day first", "12/03/2025", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)},
		{"slash forced month first", "03/13/2025", time.Date(2025, 3, 13, 0, 0, 0, 0, time.UTC)},
		{"slash forced day first", "25/12/2025", time.Date(2025, 12, 25, 0, 0, 0, 0, time.UTC)},
		{"dash is month first", "03-12-2025", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)},
		{"dash retries day first", "13-12-2025", time.Date(2025, 12, 13, 0, 0, 0, 0, time.UTC)},
		{"two digit year", "25/12/24", time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)},
		{"day month name", "12 March 2025", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)},
		{"day short month", "12 Mar 2025", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)},
		{"month name day", "March 12, 2025", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)},
		{"short month day no comma", "Mar 12 2025", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)},
		{"ordinal suffix", "1st April 2025", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"trailing punctuation", "2025-03-12.", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, warnings := NormalizeDate(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, warnings)
		})
	}
}

func TestNormalizeDateFallsBackToToday(t *testing.T) {
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	withFixedNow(t, time.Date(2025, 6, 15, 13, 45, 0, 0, time.UTC))

	for _, in := range []string{"", "not a date", "99/99/9999", "2023-02-29"} {
		t.Run(fmt.Sprintf("%q", in), func(t *testing.T) {
			got, warnings := NormalizeDate(in)
			assert.Equal(t, today, got)
			require.Len(t, warnings, 1)
		})
	}
}

func TestNormalizeDateRejectsMixedSeparators(t *testing.T) {
	today := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	withFixedNow(t, time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC))

	for _, in := range []string{"12-03.2025", "12/03-2025", "2025-03.12"} {
		t.Run(in, func(t *testing.T) {
			got, warnings := NormalizeDate(in)
			assert.Equal(t, today, got)
			require.Len(t, warnings, 1)
		})
	}
}

func TestNormalizeDateInvalidLeapDayDoesNotParse(t *testing.T) {
	withFixedNow(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC))

	got, warnings := NormalizeDate("2023-02-29")
	assert.NotEqual(t, time.Date(2023, 2, 29, 0, 0, 0, 0, time.UTC), got)
	assert.NotEmpty(t, warnings)
}

// Day-first round-trip: any date rendered dd/mm/yyyy must come back as
// itself under the ambiguity default.
func TestNormalizeDateDayFirstRoundTrip(t *testing.T) {
	dates := []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 11, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		formatted := fmt.Sprintf("%02d/%02d/%04d", d.Day(), int(d.Month()), d.Year())
		got, warnings := NormalizeDate(formatted)
		assert.Equal(t, d, got, "round-trip of %s", formatted)
		assert.Empty(t, warnings)
	}
}
