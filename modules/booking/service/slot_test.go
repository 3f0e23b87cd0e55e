package service

import (
	"testing"

	"temple-services-api/modules/booking/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "midnight", input: "00:00", want: 0},
		{name: "morning", input: "10:00", want: 600},
		{name: "with minutes", input: "10:15", want: 615},
		{name: "end of day", input: "23:59", want: 1439},
		{name: "not zero padded", input: "9:30", wantErr: true},
		{name: "out of range hour", input: "24:00", wantErr: true},
		{name: "out of range minute", input: "10:60", wantErr: true},
		{name: "garbage", input: "ten o'clock", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTimeOfDay(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := parseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, 6, int(d.Month()))
	assert.Equal(t, 1, d.Day())

	_, err = parseDate("01-06-2024")
	require.Error(t, err)

	_, err = parseDate("")
	require.Error(t, err)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		s1, e1, s2, e2 int
		want           bool
	}{
		{name: "identical", s1: 600, e1: 630, s2: 600, e2: 630, want: true},
		{name: "partial overlap", s1: 600, e1: 630, s2: 615, e2: 645, want: true},
		{name: "containment", s1: 600, e1: 660, s2: 615, e2: 630, want: true},
		{name: "boundary touch is not overlap", s1: 600, e1: 630, s2: 630, e2: 660, want: false},
		{name: "boundary touch reversed", s1: 630, e1: 660, s2: 600, e2: 630, want: false},
		{name: "disjoint", s1: 600, e1: 630, s2: 700, e2: 730, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			// overlap is symmetric
			assert.Equal(t, tt.want, overlaps(tt.s2, tt.e2, tt.s1, tt.e1))
		})
	}
}

func TestFindConflict(t *testing.T) {
	a := entity.Booking{StartTime: "10:00", DurationMinutes: 30}
	a.ID = uuid.New()
	b := entity.Booking{StartTime: "11:00", DurationMinutes: 60}
	b.ID = uuid.New()
	candidates := []entity.Booking{a, b}

	t.Run("overlap found", func(t *testing.T) {
		conflict := findConflict(candidates, 615, 645, uuid.Nil)
		require.NotNil(t, conflict)
		assert.Equal(t, a.ID, conflict.ID)
	})

	t.Run("no overlap", func(t *testing.T) {
		assert.Nil(t, findConflict(candidates, 630, 660, uuid.Nil))
	})

	t.Run("excluded booking is skipped", func(t *testing.T) {
		assert.Nil(t, findConflict(candidates, 600, 630, a.ID))
	})
}

func TestCanView(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	booking := &entity.Booking{UserID: owner}

	assert.True(t, CanView(owner, "user", booking))
	assert.True(t, CanView(stranger, "admin", booking))
	assert.False(t, CanView(stranger, "user", booking))
	assert.False(t, CanView(stranger, "", booking))
}
