package fields

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fallbackTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.Local)

func TestParseDateFormats(t *testing.T) {
	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{name: "iso", text: "emitido em 2024-03-05", want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)},
		{name: "iso with time", text: "2024-03-05T14:30:45", want: time.Date(2024, 3, 5, 14, 30, 45, 0, time.Local)},
		{name: "slash day first", text: "Data: 05/03/2024", want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)},
		{name: "dash day first", text: "05-03-2024", want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)},
		{name: "dotted day first", text: "05.03.2024", want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)},
		{name: "two digit year", text: "05/03/24", want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)},
		{name: "written portuguese", text: "05 de março de 2024", want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)},
		{name: "written without cedilla", text: "05 de marco de 2024", want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)},
		{name: "month first swapped", text: "03/25/2024", want: time.Date(2024, 3, 25, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := parseDate(tt.text, fallbackTime)
			require.True(t, found)
			assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
		})
	}
}

func TestParseDateTimeOfDay(t *testing.T) {
	got, found := parseDate("Data: 05/03/2024 14:30", fallbackTime)

	require.True(t, found)
	assert.Equal(t, 5, got.Day())
	assert.Equal(t, time.March, got.Month())
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, 14, got.Hour())
	assert.Equal(t, 30, got.Minute())
}

func TestParseDateFallsBack(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "no date at all", text: "TOTAL R$ 45,90"},
		{name: "impossible calendar day", text: "31/02/2024"},
		{name: "unswappable month", text: "13/13/2024"},
		{name: "ancient year", text: "05/03/1924"},
		{name: "cnpj is not a date", text: "CNPJ 12.345.678/0001-90"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := parseDate(tt.text, fallbackTime)
			assert.False(t, found)
			assert.True(t, got.Equal(fallbackTime))
		})
	}
}

func TestParseDateFirstValidMatchWins(t *testing.T) {
	// The impossible date is skipped, the later valid one is taken.
	got, found := parseDate("31/02/2024 ... 05/03/2024", fallbackTime)

	require.True(t, found)
	assert.Equal(t, 5, got.Day())
	assert.Equal(t, time.March, got.Month())
}
