// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

import (
	"strings"

	"go.astrophena.name/filmgate/internal/telegram"
)

// UI holds the bot's static texts and keyboards. It is constructed once at
// startup and never mutated afterwards; handlers share it by reference.
type UI struct {
	Welcome        string
	Help           string
	Hint           string
	JoinPrompt     string
	StillNotMember string
	JoinedOK       string
	NotFound       string
	DeliveryFailed string
	ListHeader     string
	NoFilms        string
	ListFailed     string
	AskPrompt      string
	AskDisabled    string
	AskFailed      string

	Main *telegram.InlineKeyboardMarkup
	Join *telegram.InlineKeyboardMarkup
	Back *telegram.InlineKeyboardMarkup

	botUsername string
}

// NewUI builds the static UI for a bot. channel is the required channel, with
// or without the leading @. askEnabled adds the free-form question button.
func NewUI(botUsername, channel string, askEnabled bool) *UI {
	channel = strings.TrimPrefix(channel, "@")

	mainRows := [][]telegram.InlineKeyboardButton{
		{{Text: "Film list", CallbackData: "list_films"}},
		{{Text: "Help", CallbackData: "help"}},
	}
	if askEnabled {
		mainRows = append(mainRows, []telegram.InlineKeyboardButton{
			{Text: "Ask a question", CallbackData: "ask"},
		})
	}

	return &UI{
		Welcome: "Welcome! Open a film link to get the file, or browse the list below.",
		Help: "How to use this bot:\n\n" +
			"1. Open a film link to get the file.\n" +
			"2. If the bot asks you to join the channel, join it and tap \"I've joined\".\n" +
			"3. Use \"Film list\" to browse everything available.",
		Hint:           "Send /start to begin, or use the buttons.",
		JoinPrompt:     "To get this film you need to join our channel first. After joining, tap \"I've joined\".",
		StillNotMember: "You haven't joined the channel yet. Join it first, then tap \"I've joined\" again.",
		JoinedOK:       "You're in! Open any film link to get the file.",
		NotFound:       "Film not found. Check the link and try again.",
		DeliveryFailed: "Couldn't send the film. Please try again later.",
		ListHeader:     "Available films:",
		NoFilms:        "No films are available right now.",
		ListFailed:     "Couldn't load the film list. Please try again later.",
		AskPrompt:      "Send me your question as a message.",
		AskDisabled:    "Free-form questions aren't enabled. Please use the menu buttons.",
		AskFailed:      "Couldn't get an answer. Please try again later.",

		Main: &telegram.InlineKeyboardMarkup{InlineKeyboard: mainRows},
		Join: &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: "Join the channel", URL: "https://t.me/" + channel}},
			{{Text: "I've joined", CallbackData: "check_join"}},
		}},
		Back: &telegram.InlineKeyboardMarkup{InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: "Back", CallbackData: "back_to_main"}},
		}},

		botUsername: botUsername,
	}
}

// StartLink returns the shareable deep link for a content code.
func (ui *UI) StartLink(code string) string {
	return "https://t.me/" + ui.botUsername + "?start=" + code
}

// Delivered returns the confirmation text shown after a successful delivery.
func (ui *UI) Delivered(code string) string {
	return "Film " + code + " sent."
}
