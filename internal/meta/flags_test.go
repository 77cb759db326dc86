package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in   string
		want Version
	}{
		{"8.0.36", Version{8, 0, 36}},
		{"8.0.36-debug", Version{8, 0, 36}},
		{"5.7.44-log", Version{5, 7, 44}},
		{"8.4.0 MySQL Community Server", Version{8, 4, 0}},
		{"9", Version{9, 0, 0}},
		{"9.1", Version{9, 1, 0}},
		{"garbage", Version{0, 0, 0}},
		{"", Version{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseVersion(tt.in))
		})
	}
}

func TestVersionString(t *testing.T) {
	assert.Equal(t, "8.0.36", Version{8, 0, 36}.String())
}

func TestVersionMeets(t *testing.T) {
	tests := []struct {
		v    Version
		want bool
	}{
		{Version{5, 6, 4}, true},
		{Version{5, 6, 5}, true},
		{Version{5, 7, 0}, true},
		{Version{8, 0, 0}, true},
		{Version{5, 6, 3}, false},
		{Version{5, 5, 62}, false},
		{Version{4, 9, 9}, false},
	}
	for _, tt := range tests {
		t.Run(tt.v.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Meets(5, 6, 4))
		})
	}
}

func TestFlagsSplitNamespace(t *testing.T) {
	cat, schem := Flags{Term: TermCatalog}.splitNamespace("app")
	assert.Equal(t, "app", *cat)
	assert.Nil(t, schem)

	cat, schem = Flags{Term: TermSchema}.splitNamespace("app")
	assert.Equal(t, "def", *cat)
	assert.Equal(t, "app", *schem)
}

func TestFlagsQuote(t *testing.T) {
	assert.Equal(t, "`", Flags{}.quote())
	assert.Equal(t, `"`, Flags{QuoteID: `"`}.quote())
}

func TestFlagsFoldCase(t *testing.T) {
	assert.Equal(t, "Orders", Flags{}.foldCase("Orders"))
	assert.Equal(t, "orders", Flags{LowerCaseIdentifiers: true}.foldCase("Orders"))
}
