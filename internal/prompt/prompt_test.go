package prompt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		want  []int
		all   bool
	}{
		{input: "all", all: true},
		{input: " ALL ", all: true},
		{input: "1,3", want: []int{1, 3}},
		{input: "5-7, 2", want: []int{2, 5, 6, 7}},
		{input: "1,x,3-y,4", want: []int{1, 4}},
		{input: "2,2,1-2", want: []int{1, 2}},
		{input: "", want: []int{}},
		{input: "0,8,9", want: []int{8}},
		{input: "7-9999999999999", want: []int{7, 8}},
		{input: "1-9999999999", want: []int{1, 2, 3, 4, 5, 6, 7, 8}},
		{input: "-3-2", want: []int{}},
		{input: "5-3", want: []int{}},
	}

	for _, tc := range testCases {
		got, all := ParseSelection(tc.input, 8)
		assert.Equal(t, tc.all, all, tc.input)
		if !tc.all {
			assert.Equal(t, tc.want, got, tc.input)
		}
	}
}

func TestAskUsesDefaultOnEmptyLine(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := New(strings.NewReader("\nGB\n"), &out)

	got, err := p.Ask("Country", "US")
	require.NoError(t, err)
	assert.Equal(t, "US", got)

	got, err = p.Ask("Country", "US")
	require.NoError(t, err)
	assert.Equal(t, "GB", got)
	assert.Contains(t, out.String(), "Country [US]: ")
}

func TestAskReturnsCancelledAtEOF(t *testing.T) {
	t.Parallel()

	p := New(strings.NewReader(""), &bytes.Buffer{})
	_, err := p.Ask("Country", "")
	require.ErrorIs(t, err, ErrCancelled)
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := New(strings.NewReader("maybe\nn\n\nyes"), &out)

	got, err := p.Confirm("Create this campaign?", true)
	require.NoError(t, err)
	assert.False(t, got)
	assert.Contains(t, out.String(), "invalid input")

	got, err = p.Confirm("Create this campaign?", true)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = p.Confirm("Delete?", false)
	require.NoError(t, err)
	assert.True(t, got)
}
