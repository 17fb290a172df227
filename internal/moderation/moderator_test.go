package moderation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModerator_IsProfane(t *testing.T) {
	req := require.New(t)
	mod, err := NewModerator([]string{"badger", "snake", "mushroom", "badger", "viper"})
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"Plain word", "the badger is here", true},
		{"Uppercase", "SNAKE!", true},
		{"Leet speak", "b4dg3r", true},
		{"Bang inside a word", "a v!per bit me", true},
		{"Pipe and one inside a word", "v|per v1per", true},
		{"Repeated bangs", "snake!!!", true},
		{"Bangs alone", "! ! !", false},
		{"Trailing punctuation", "I love mushroom.", true},
		{"Substring is not a match", "badgers everywhere", false},
		{"Embedded in a longer word", "rattlesnakes", false},
		{"Clean text", "hello there", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req.Equal(tt.expected, mod.IsProfane(tt.input), "input=%q", tt.input)
		})
	}
}

func TestModerator_EmptyDictionary(t *testing.T) {
	mod, err := NewModerator([]string{"", "...", " "})
	require.NoError(t, err)
	require.False(t, mod.IsProfane("anything goes"))

	var nilMod *Moderator
	require.False(t, nilMod.IsProfane("anything"))
}

func TestModerator_DefaultWords(t *testing.T) {
	words := DefaultWords()
	require.NotEmpty(t, words)

	mod, err := NewModerator(words)
	require.NoError(t, err)
	require.True(t, mod.IsProfane("well, damn"))
	require.False(t, mod.IsProfane("first class service"))
	require.False(t, mod.IsProfane("hello"))
}
