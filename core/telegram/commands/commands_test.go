package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListed(t *testing.T) {
	assert.True(t, Command{Description: "Start"}.Listed())
	assert.False(t, Command{Description: "Admin", AdminOnly: true}.Listed())
	assert.False(t, Command{Description: "Debug", Hidden: true}.Listed())
}

func TestHasAlias(t *testing.T) {
	cmd := Command{Aliases: []string{"boshlash", "/restart"}}
	assert.True(t, cmd.HasAlias("/boshlash"))
	assert.True(t, cmd.HasAlias("boshlash"))
	assert.True(t, cmd.HasAlias("restart"))
	assert.False(t, cmd.HasAlias("/start"))
	assert.False(t, cmd.HasAlias("/"))
}
