// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package bot

import (
	"strings"

	"go.astrophena.name/filmgate/internal/telegram"
)

// commandKind enumerates everything an update can ask the bot to do.
// Decoding happens exactly once at this boundary; nothing deeper in the bot
// parses raw updates.
type commandKind int

const (
	cmdFeedPost commandKind = iota
	cmdStart
	cmdHelp
	cmdAsk
	cmdFreeText
	cmdCheckJoin
	cmdListFilms
	cmdHelpButton
	cmdAskButton
	cmdBackToMain
)

// command is a decoded update: a kind tag plus the arguments that kind
// carries.
type command struct {
	kind commandKind

	from   *telegram.User
	chatID int64

	code string // cmdStart: requested content code, may be empty
	text string // cmdAsk, cmdFreeText

	post *telegram.Message // cmdFeedPost

	// Set for button presses. messageID identifies the message whose
	// keyboard was pressed, so replies can edit it in place.
	callbackID string
	messageID  int64
}

// decode classifies an update. The second return value is false when the
// update is of no interest to the bot.
func decode(upd *telegram.Update) (command, bool) {
	switch {
	case upd.ChannelPost != nil:
		return command{kind: cmdFeedPost, post: upd.ChannelPost}, true
	case upd.Message != nil:
		return decodeMessage(upd.Message)
	case upd.CallbackQuery != nil:
		return decodeCallback(upd.CallbackQuery)
	}
	return command{}, false
}

func decodeMessage(msg *telegram.Message) (command, bool) {
	if msg.From == nil || msg.From.IsBot {
		return command{}, false
	}
	cmd := command{from: msg.From, chatID: msg.Chat.ID}

	name, args := splitCommand(msg.Text)
	switch name {
	case "/start":
		cmd.kind = cmdStart
		cmd.code = args
	case "/help":
		cmd.kind = cmdHelp
	case "/ask":
		cmd.kind = cmdAsk
		cmd.text = args
	default:
		if q, ok := strings.CutPrefix(msg.Text, "!ai "); ok {
			cmd.kind = cmdAsk
			cmd.text = strings.TrimSpace(q)
			break
		}
		if msg.Text == "" {
			return command{}, false
		}
		cmd.kind = cmdFreeText
		cmd.text = msg.Text
	}
	return cmd, true
}

func decodeCallback(cb *telegram.CallbackQuery) (command, bool) {
	cmd := command{
		from:       &cb.From,
		chatID:     cb.From.ID,
		callbackID: cb.ID,
	}
	if cb.Message != nil {
		cmd.chatID = cb.Message.Chat.ID
		cmd.messageID = cb.Message.ID
	}

	switch cb.Data {
	case "check_join":
		cmd.kind = cmdCheckJoin
	case "list_films":
		cmd.kind = cmdListFilms
	case "help":
		cmd.kind = cmdHelpButton
	case "ask":
		cmd.kind = cmdAskButton
	case "back_to_main":
		cmd.kind = cmdBackToMain
	default:
		return command{}, false
	}
	return cmd, true
}

// splitCommand splits "/start film042" or "/start@somebot film042" into the
// bare command name and its argument string.
func splitCommand(text string) (name, args string) {
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	name, args, _ = strings.Cut(text, " ")
	name, _, _ = strings.Cut(name, "@")
	return name, strings.TrimSpace(args)
}
