package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Time string `validate:"required,hhmm"`
	Card string `validate:"omitempty,luhn"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(sample{Time: "18:30", Card: "4111 1111 1111 1111"}))

	errs := Validate(sample{Time: "25:00", Card: "4111111111111112"})
	assert.Equal(t, "hhmm", errs["Time"])
	assert.Equal(t, "luhn", errs["Card"])
}

func TestLuhn(t *testing.T) {
	tests := []struct {
		number string
		want   bool
	}{
		{"4111111111111111", true},
		{"5555-5555-5555-4444", true},
		{"4111111111111112", false},
		{"41a1", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Luhn(tt.number), tt.number)
	}
}
