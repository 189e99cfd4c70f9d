package news

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLanguage(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "en", expected: "en-us"},
		{input: "CN", expected: "zh-cn"},
		{input: "jp", expected: "ja-jp"},
		{input: "ja", expected: "ja-jp"},
		{input: "kr", expected: "ko-kr"},
		{input: "ko", expected: "ko-kr"},
		{input: "vn", expected: "vi-vn"},
		{input: "vi", expected: "vi-vn"},
		{input: "zh-tw", expected: "zh-tw"},
		{input: "invalid", expected: "en-us"},
		{input: "", expected: "en-us"},
		{input: " en ", expected: "en-us"},
	}

	for _, row := range table {
		require.Equal(t, row.expected, ParseLanguage(row.input), row.input)
	}
}

func TestParseType(t *testing.T) {
	typ, ok := ParseType("events")
	require.True(t, ok)
	require.Equal(t, TypeEvent, typ)

	typ, ok = ParseType("notices")
	require.True(t, ok)
	require.Equal(t, TypeNotice, typ)

	typ, ok = ParseType("info")
	require.True(t, ok)
	require.Equal(t, TypeInfo, typ)

	_, ok = ParseType("codes")
	require.False(t, ok)
}
