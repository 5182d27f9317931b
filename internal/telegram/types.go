// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package telegram

// Update is an incoming event delivered by the Telegram Bot API.
//
// See https://core.telegram.org/bots/api#update. Only the fields this bot
// acts upon are decoded.
type Update struct {
	ID            int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	ChannelPost   *Message       `json:"channel_post,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Message is a message sent in a chat or posted to a channel.
type Message struct {
	ID       int64     `json:"message_id"`
	From     *User     `json:"from,omitempty"`
	Chat     Chat      `json:"chat"`
	Text     string    `json:"text,omitempty"`
	Caption  string    `json:"caption,omitempty"`
	Video    *Video    `json:"video,omitempty"`
	Document *Document `json:"document,omitempty"`
}

// User is a Telegram user or bot.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	IsBot     bool   `json:"is_bot,omitempty"`
}

// Chat is a Telegram chat, group or channel.
type Chat struct {
	ID       int64  `json:"id"`
	Title    string `json:"title,omitempty"`
	Username string `json:"username,omitempty"`
}

// Video is a video file stored by Telegram, referenced by its file ID.
type Video struct {
	FileID string `json:"file_id"`
}

// Document is a generic file stored by Telegram, referenced by its file ID.
type Document struct {
	FileID string `json:"file_id"`
}

// CallbackQuery is an incoming button press on an inline keyboard.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data,omitempty"`
}

// ChatMember describes the membership status of a user in a chat.
type ChatMember struct {
	Status string `json:"status"`
	User   User   `json:"user"`
}

// InlineKeyboardMarkup is an inline keyboard attached to a message.
type InlineKeyboardMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// InlineKeyboardButton is a single button of an inline keyboard. Exactly one
// of URL or CallbackData must be set.
type InlineKeyboardButton struct {
	Text         string `json:"text"`
	URL          string `json:"url,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}

// SendMessageParams are the arguments of the sendMessage method.
type SendMessageParams struct {
	ChatID      int64                 `json:"chat_id"`
	Text        string                `json:"text"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendVideoParams are the arguments of the sendVideo method.
type SendVideoParams struct {
	ChatID      int64                 `json:"chat_id"`
	Video       string                `json:"video"` // file ID
	Caption     string                `json:"caption,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendDocumentParams are the arguments of the sendDocument method.
type SendDocumentParams struct {
	ChatID      int64                 `json:"chat_id"`
	Document    string                `json:"document"` // file ID
	Caption     string                `json:"caption,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// EditMessageTextParams are the arguments of the editMessageText method.
type EditMessageTextParams struct {
	ChatID      int64                 `json:"chat_id"`
	MessageID   int64                 `json:"message_id"`
	Text        string                `json:"text"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}
