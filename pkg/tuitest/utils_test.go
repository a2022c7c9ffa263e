package tuitest

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "red\nline", StripANSI("\x1b[31mred\x1b[0m   \nline  \n\n"))
}

func TestKeyPress(t *testing.T) {
	msg, ok := KeyPress('q').(tea.KeyMsg)
	assert.True(t, ok)
	assert.Equal(t, "q", msg.String())
}

func TestType(t *testing.T) {
	msgs := Type("a b")
	assert.Len(t, msgs, 3)
	assert.Equal(t, " ", msgs[1].(tea.KeyMsg).String())
}
