package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	data, err := json.Marshal(NewDate(2025, time.February, 3))
	require.NoError(t, err)
	assert.Equal(t, `"2025-02-03"`, string(data))

	data, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, `null`, string(data))

	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-02-29"`), &d))
	assert.True(t, d.Equal(NewDate(2024, time.February, 29)))

	require.NoError(t, json.Unmarshal([]byte(`""`), &d))
	assert.True(t, d.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"2025-02-30"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`"03/02/2025"`), &d))
}

func TestDateScan(t *testing.T) {
	want := NewDate(2025, time.March, 2)

	tests := []struct {
		name string
		src  any
	}{
		{"time", time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"string", "2025-03-02"},
		{"bytes", []byte("2025-03-02")},
		{"sqlite timestamp", "2025-03-02 00:00:00+00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.True(t, d.Equal(want), d.String())
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("2025"))
}

func TestDateValue(t *testing.T) {
	v, err := NewDate(1999, time.December, 31).Value()
	require.NoError(t, err)
	assert.Equal(t, "1999-12-31", v)
}

func TestDateAddDaysAcrossYear(t *testing.T) {
	d := NewDate(2024, time.December, 30).AddDays(6)
	assert.Equal(t, "2025-01-05", d.String())
}
