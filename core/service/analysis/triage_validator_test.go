package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_Length(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"too short", "help me", ErrTooShort},
		{"short after trim", "   hi there   ", ErrTooShort},
		{"exactly ten", "abcdefghij", ""},
		{"multibyte counts runes", "ログインできませんでした", ""},
		{"too long", strings.Repeat("abcdefghij ", 455), ErrTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.input)
			if tt.wantErr == "" {
				assert.True(t, res.IsValid(), res.Errors)
				return
			}
			assert.Equal(t, []string{tt.wantErr}, res.Errors)
			assert.False(t, res.IsValid())
		})
	}
}

func TestValidate_Warnings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"clean", "My invoice shows the wrong amount for March.", []string{}},
		{"promo phrase", "Click here to claim your prize today", []string{WarnSpam}},
		{"you have won", "Congrats, you have won a brand new phone", []string{WarnSpam}},
		{"single char run", "Help me pleaseeeeeee now", []string{WarnSpam}},
		{"two char run", "Hey hahahahahaha what is this", []string{WarnSpam}},
		{"whitespace run is fine", "Hello          world is here", []string{}},
		{"card number is not spam", "Card 4111111111111111 please refund", []string{}},
		{"order number is not spam", "Where is order 1000005 from last week?", []string{}},
		{"mostly symbols", "#@!$%^&*()_+=-~`<>?/|ab", []string{WarnSpecialChars}},
		{"short symbols not flagged", "#@!$%^&*()ab", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.input).Warnings)
		})
	}
}

func TestHasRepeatedRun(t *testing.T) {
	assert.True(t, hasRepeatedRun([]rune("xxabcabcabcabcabcyy"), 5))
	assert.False(t, hasRepeatedRun([]rune("abcabcabcabc"), 5))
	assert.False(t, hasRepeatedRun([]rune("aaaa"), 5))
	assert.True(t, hasRepeatedRun([]rune("!!!!!"), 5))
	assert.False(t, hasRepeatedRun([]rune(" \t \t \t \t \t "), 5))
	assert.False(t, hasRepeatedRun([]rune("1212121212"), 5))
	assert.True(t, hasRepeatedRun([]rune("a1a1a1a1a1"), 5))
}
