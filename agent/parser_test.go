package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecision_ToolAction(t *testing.T) {
	text := "I should look this up.\nAction: Search\nAction Input: framework release date"

	decision, err := ParseDecision(text)
	require.NoError(t, err)

	action, ok := decision.(*Action)
	require.True(t, ok)
	assert.Equal(t, "Search", action.Tool)
	assert.Equal(t, "framework release date", action.ToolInput)
	assert.Equal(t, text, action.Log)
}

func TestParseDecision_FinalAnswer(t *testing.T) {
	text := "Oh well\nAction: Final Answer\nAction Input: curses foiled again"

	decision, err := ParseDecision(text)
	require.NoError(t, err)

	finish, ok := decision.(*Finish)
	require.True(t, ok)
	assert.Equal(t, "curses foiled again", finish.Output)
}

func TestParseDecision_InputIsRestOfLine(t *testing.T) {
	text := "Action: Lookup\nAction Input: a: b, c: d\nSome trailing text"

	decision, err := ParseDecision(text)
	require.NoError(t, err)

	action, ok := decision.(*Action)
	require.True(t, ok)
	assert.Equal(t, "Lookup", action.Tool)
	assert.Equal(t, "a: b, c: d", action.ToolInput, "input is the remainder of the line, not parsed further")
}

func TestParseDecision_CaseSensitiveToolName(t *testing.T) {
	decision, err := ParseDecision("Action: search\nAction Input: x")
	require.NoError(t, err)

	action, ok := decision.(*Action)
	require.True(t, ok)
	assert.Equal(t, "search", action.Tool, "tool name casing is preserved")
}

func TestParseDecision_NoActionLines(t *testing.T) {
	text := "I have no idea what to do here."

	_, err := ParseDecision(text)
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, text, parseErr.Text)
}

func TestParseDecision_ActionWithoutInput(t *testing.T) {
	_, err := ParseDecision("Action: Search")

	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParseDecision_Idempotent(t *testing.T) {
	text := "Thought\nAction: Search\nAction Input: same thing"

	first, err := ParseDecision(text)
	require.NoError(t, err)

	second, err := ParseDecision(text)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScratchpad_Render(t *testing.T) {
	pad := NewScratchpad()
	assert.Equal(t, "", pad.Render())
	assert.Equal(t, 0, pad.Len())

	pad.Append("Action: Search\nAction Input: x", "found it")

	assert.Equal(t, 1, pad.Len())
	assert.Equal(t, "Action: Search\nAction Input: x\nObservation: found it\nThought:", pad.Render())
}

func TestScratchpad_AppendOnlyOrder(t *testing.T) {
	pad := NewScratchpad()
	pad.Append("first", "obs one")
	pad.Append("second", "obs two")

	steps := pad.Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, "first", steps[0].ActionText)
	assert.Equal(t, "second", steps[1].ActionText)
}
