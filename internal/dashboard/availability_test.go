package dashboard

import (
	"testing"
	"time"

	"github.com/jonathan/matching-guru/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedAvailability(t *testing.T) {
	mentor := &types.Availability{AvailableDays: []string{"MONDAY", "WEDNESDAY"}, TimeRange: "MORNING"}
	mentee := &types.Availability{AvailableDays: []string{"WEDNESDAY", "FRIDAY"}, TimeRange: "ANYTIME"}

	slot := SharedAvailability(mentor, mentee)
	require.NotNil(t, slot)
	assert.Equal(t, SharedSlot{Day: "Wednesday", Time: "morning"}, *slot)
}

func TestSharedAvailability_FirstCommonDayInFirstOrder(t *testing.T) {
	a := &types.Availability{AvailableDays: []string{"FRIDAY", "MONDAY"}, TimeRange: "EVENING"}
	b := &types.Availability{AvailableDays: []string{"MONDAY", "FRIDAY"}, TimeRange: "EVENING"}

	slot := SharedAvailability(a, b)
	require.NotNil(t, slot)
	assert.Equal(t, "Friday", slot.Day)
	assert.Equal(t, "evening", slot.Time)

	slot = SharedAvailability(b, a)
	require.NotNil(t, slot)
	assert.Equal(t, "Monday", slot.Day)
}

func TestSharedAvailability_TimeReconciliation(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"MORNING", "MORNING", "morning"},
		{"ANYTIME", "EVENING", "evening"},
		{"AFTERNOON", "ANYTIME", "afternoon"},
		{"MORNING", "EVENING", AnyTime},
		{"ANYTIME", "ANYTIME", AnyTime},
		{"", "MORNING", "morning"},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			a := &types.Availability{AvailableDays: []string{"MONDAY"}, TimeRange: tt.a}
			b := &types.Availability{AvailableDays: []string{"MONDAY"}, TimeRange: tt.b}
			slot := SharedAvailability(a, b)
			require.NotNil(t, slot)
			assert.Equal(t, tt.want, slot.Time)
		})
	}
}

func TestSharedAvailability_NoOverlap(t *testing.T) {
	a := &types.Availability{AvailableDays: []string{"MONDAY"}}
	b := &types.Availability{AvailableDays: []string{"TUESDAY"}}
	assert.Nil(t, SharedAvailability(a, b))
	assert.Nil(t, SharedAvailability(a, nil))
	assert.Nil(t, SharedAvailability(nil, b))
	assert.Nil(t, SharedAvailability(&types.Availability{}, b))
}

func TestNextDateForWeekday(t *testing.T) {
	wednesday := time.Date(2024, 6, 12, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		day  string
		want string
	}{
		{"Thursday", "13 June"},
		{"FRIDAY", "14 June"},
		{"monday", "17 June"},
		{"Tuesday", "18 June"},
		// Same weekday rolls a full week forward.
		{"Wednesday", "19 June"},
		{"Someday", ""},
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDateForWeekday(tt.day, wednesday))
		})
	}
}

func TestNextDateForWeekday_CrossesMonth(t *testing.T) {
	friday := time.Date(2024, 5, 31, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "3 June", NextDateForWeekday("MONDAY", friday))
	assert.Equal(t, "7 June", NextDateForWeekday("FRIDAY", friday))
}
