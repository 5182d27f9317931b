// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package telegram implements a client for the Telegram Bot API methods
// used by this bot.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.astrophena.name/filmgate/internal/request"
	"go.astrophena.name/filmgate/internal/version"
)

const defaultAPIURL = "https://api.telegram.org"

// Client is a Telegram Bot API client.
type Client struct {
	// Token is the Telegram Bot API token.
	Token string
	// HTTPClient is an optional HTTP client to use for requests. Defaults to
	// request.DefaultClient.
	HTTPClient *http.Client
	// Scrubber is an optional strings.Replacer that scrubs unwanted data
	// from error messages.
	Scrubber *strings.Replacer
	// APIURL overrides the Bot API URL. Used in tests.
	APIURL string
}

func (c *Client) apiURL() string {
	if c.APIURL != "" {
		return c.APIURL
	}
	return defaultAPIURL
}

// response is the envelope every Bot API method wraps its result in.
type response[Result any] struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
	Result      Result `json:"result,omitempty"`
}

// Call invokes a Bot API method with the given arguments and unmarshals its
// result.
func Call[Result any](ctx context.Context, c *Client, method string, args any) (Result, error) {
	resp, err := request.Make[response[Result]](ctx, request.Params{
		Method: http.MethodPost,
		URL:    c.apiURL() + "/bot" + c.Token + "/" + method,
		Body:   args,
		Headers: map[string]string{
			"User-Agent": version.UserAgent(),
		},
		HTTPClient: c.HTTPClient,
		Scrubber:   c.Scrubber,
	})
	if err != nil {
		var zero Result
		return zero, fmt.Errorf("%s: %w", method, err)
	}
	if !resp.OK {
		var zero Result
		return zero, fmt.Errorf("%s: API returned an error: %s", method, resp.Description)
	}
	return resp.Result, nil
}

// GetMe returns the bot's own account.
func (c *Client) GetMe(ctx context.Context) (User, error) {
	return Call[User](ctx, c, "getMe", nil)
}

// SetWebhook registers url as the bot's webhook endpoint. Telegram will
// include secret in the X-Telegram-Bot-Api-Secret-Token header of every
// delivery.
func (c *Client) SetWebhook(ctx context.Context, url, secret string) error {
	_, err := Call[bool](ctx, c, "setWebhook", map[string]string{
		"url":          url,
		"secret_token": secret,
	})
	return err
}

// SendMessage sends a text message.
func (c *Client) SendMessage(ctx context.Context, params SendMessageParams) error {
	_, err := Call[*Message](ctx, c, "sendMessage", params)
	return err
}

// SendVideo relays a previously uploaded video by its file ID.
func (c *Client) SendVideo(ctx context.Context, params SendVideoParams) error {
	_, err := Call[*Message](ctx, c, "sendVideo", params)
	return err
}

// SendDocument relays a previously uploaded document by its file ID.
func (c *Client) SendDocument(ctx context.Context, params SendDocumentParams) error {
	_, err := Call[*Message](ctx, c, "sendDocument", params)
	return err
}

// EditMessageText rewrites the text and keyboard of an existing message.
func (c *Client) EditMessageText(ctx context.Context, params EditMessageTextParams) error {
	_, err := Call[*Message](ctx, c, "editMessageText", params)
	return err
}

// AnswerCallbackQuery acknowledges a button press so the client stops
// showing a progress indicator.
func (c *Client) AnswerCallbackQuery(ctx context.Context, id string) error {
	_, err := Call[bool](ctx, c, "answerCallbackQuery", map[string]string{
		"callback_query_id": id,
	})
	return err
}

// GetChatMember looks up the membership of a user in a chat or channel.
// chatID is either a numeric chat ID or a @channelusername.
func (c *Client) GetChatMember(ctx context.Context, chatID string, userID int64) (ChatMember, error) {
	return Call[ChatMember](ctx, c, "getChatMember", map[string]any{
		"chat_id": chatID,
		"user_id": userID,
	})
}
