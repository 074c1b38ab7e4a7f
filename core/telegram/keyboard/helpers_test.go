package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineButtonsNPerRow(t *testing.T) {
	btns := []InlineBtn{
		{Text: "A", Unique: "ans", Data: "s|a"},
		{Text: "B", Unique: "ans", Data: "s|b"},
		{Text: "C", Unique: "ans", Data: "s|c"},
	}
	m := InlineButtonsNPerRow(btns, 2, []InlineBtn{{Text: "⬅️ Orqaga", Unique: "back", Data: "s"}})
	require.Len(t, m.InlineKeyboard, 3)
	assert.Len(t, m.InlineKeyboard[0], 2)
	assert.Len(t, m.InlineKeyboard[1], 1)
	assert.Equal(t, "ans", m.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "s|a", m.InlineKeyboard[0][0].Data)
	assert.Equal(t, "back", m.InlineKeyboard[2][0].Unique)
}

func TestInlineURLButton(t *testing.T) {
	m := InlineButtons([]InlineBtn{
		{Text: "Kanal", URL: "https://t.me/kuaf_uz"},
		{Text: "Tekshirish", Unique: "check_subscription"},
	})
	require.Len(t, m.InlineKeyboard, 2)
	assert.Equal(t, "https://t.me/kuaf_uz", m.InlineKeyboard[0][0].URL)
	assert.Empty(t, m.InlineKeyboard[0][0].Data)
	assert.Equal(t, "check_subscription", m.InlineKeyboard[1][0].Unique)
}

func TestLocationKeyboard(t *testing.T) {
	m := LocationKeyboard("📍 Lokatsiyani yuborish", []string{"⏭ O'tkazib yuborish"}, []string{"⬅️ Orqaga"})
	require.Len(t, m.ReplyKeyboard, 3)
	assert.True(t, m.ReplyKeyboard[0][0].Location)
	assert.Equal(t, "📍 Lokatsiyani yuborish", m.ReplyKeyboard[0][0].Text)
	assert.Equal(t, "⬅️ Orqaga", m.ReplyKeyboard[2][0].Text)
	assert.True(t, m.ResizeKeyboard)
}

func TestSingleCancelMarkup(t *testing.T) {
	m := SingleCancelMarkup("admin_cancel")
	require.Len(t, m.InlineKeyboard, 1)
	assert.Equal(t, "❌ Bekor qilish", m.InlineKeyboard[0][0].Text)
	assert.Equal(t, "admin_cancel", m.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "cancel", m.InlineKeyboard[0][0].Data)
}
