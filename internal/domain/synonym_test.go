package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDictionary_Expand(t *testing.T) {
	d := DefaultDictionary()

	tests := []struct {
		name     string
		token    string
		expected []string
	}{
		{"alias adds canonical", "kiev", []string{"kiev", "kyiv"}},
		{"canonical adds all aliases", "kyiv", []string{"kyiv", "kiev", "kiew"}},
		{"single alias canonical", "odesa", []string{"odesa", "odessa"}},
		{"unknown token", "mariupol", []string{"mariupol"}},
		{"empty token", "", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, d.Expand(tt.token))
		})
	}
}

func TestDictionary_AliasesIn(t *testing.T) {
	d := DefaultDictionary()

	assert.Equal(t, []string{"kiev", "kiew"}, d.AliasesIn("drone strike on kyiv"))
	assert.Equal(t, []string{"kharkov", "kiev", "kiew"}, d.AliasesIn("Kharkiv and Kyiv"))
	assert.Empty(t, d.AliasesIn("kiev outskirts"))
	assert.Empty(t, d.AliasesIn(""))
}

func TestNewDictionary_SkipsInvalidEntries(t *testing.T) {
	d := NewDictionary(map[string]string{
		"Kiev":  "KYIV",
		"":      "x",
		"lviv":  "lviv",
		"blank": " ",
	})

	assert.Equal(t, 1, d.Len())
	assert.Equal(t, []string{"kyiv", "kiev"}, d.Expand("kyiv"))
}
