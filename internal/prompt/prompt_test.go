package prompt

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Choice
	}{
		{"", All},
		{"\n", All},
		{"   \t", All},
		{"y", All},
		{"Y", All},
		{"yes", All},
		{"  y  ", All},
		{"n", None},
		{"N", None},
		{"no thanks", None},
		{"l", LogsOnly},
		{"L", LogsOnly},
		{"logs", LogsOnly},
		{"o", OutputsOnly},
		{"O", OutputsOnly},
		{"outputs", OutputsOnly},
		{"x", Invalid},
		{"1", Invalid},
		{"?", Invalid},
		{"é", Invalid},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input))
		})
	}
}

func TestChoiceMessages(t *testing.T) {
	assert.Equal(t, "Logs and output files have been removed.", All.Message())
	assert.Equal(t, "No files have been removed.", None.Message())
	assert.Equal(t, "Logs have been removed.", LogsOnly.Message())
	assert.Equal(t, "Output files have been removed.", OutputsOnly.Message())
	assert.Equal(t, "Invalid input. Please enter 'y', 'n', 'l', or 'o'.", Invalid.Message())
}

func TestChoiceRemoves(t *testing.T) {
	tests := []struct {
		choice     Choice
		logs, outs bool
	}{
		{All, true, true},
		{None, false, false},
		{LogsOnly, true, false},
		{OutputsOnly, false, true},
		{Invalid, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.choice.String(), func(t *testing.T) {
			logs, outs := tt.choice.Removes()
			assert.Equal(t, tt.logs, logs)
			assert.Equal(t, tt.outs, outs)
		})
	}
}

func TestReadChoice(t *testing.T) {
	r := bufio.NewReader(strings.NewReader("o\nn\n"))

	c, err := ReadChoice(r)
	require.NoError(t, err)
	assert.Equal(t, OutputsOnly, c)

	c, err = ReadChoice(r)
	require.NoError(t, err)
	assert.Equal(t, None, c)
}

func TestReadChoiceUnterminatedLine(t *testing.T) {
	c, err := ReadChoice(bufio.NewReader(strings.NewReader("L")))
	require.NoError(t, err)
	assert.Equal(t, LogsOnly, c)
}

func TestReadChoiceEOFIsInvalid(t *testing.T) {
	c, err := ReadChoice(bufio.NewReader(strings.NewReader("")))
	assert.True(t, errors.Is(err, io.EOF))
	assert.Equal(t, Invalid, c)
}
