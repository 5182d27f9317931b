// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package gate answers whether a user is currently a member of the required
// channel.
//
// Every check is a live query: membership can be revoked between checks, so
// nothing is ever cached. Inconclusive answers fail closed.
package gate

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.astrophena.name/filmgate/internal/request"
	"go.astrophena.name/filmgate/internal/telegram"
)

// Status is the outcome of a membership check.
type Status int

const (
	// Unknown means the check didn't complete. Callers must treat it
	// exactly like NotMember: content is never released on an inconclusive
	// check.
	Unknown Status = iota
	// NotMember means the directory reported the user as not a member.
	NotMember
	// Member means the user currently belongs to the required channel.
	Member
)

// String implements the fmt.Stringer interface.
func (s Status) String() string {
	switch s {
	case Member:
		return "member"
	case NotMember:
		return "not-member"
	default:
		return "unknown"
	}
}

const checkTimeout = 10 * time.Second

// Checker performs membership checks against a single required channel.
type Checker struct {
	tg      *telegram.Client
	channel string
	slog    *slog.Logger
}

// Config configures a Checker.
type Config struct {
	// Telegram is the Bot API client used for directory queries.
	Telegram *telegram.Client
	// Channel is the required channel, as a @channelusername or numeric
	// chat ID.
	Channel string
	// Logger is the logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// New returns a new Checker.
func New(cfg Config) *Checker {
	c := &Checker{
		tg:      cfg.Telegram,
		channel: cfg.Channel,
		slog:    cfg.Logger,
	}
	if c.slog == nil {
		c.slog = slog.Default()
	}
	return c
}

// Check performs a live membership lookup for userID.
func (c *Checker) Check(ctx context.Context, userID int64) Status {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	member, err := c.tg.GetChatMember(ctx, c.channel, userID)
	if err != nil {
		// Telegram answers 400 when it has never seen the user in this
		// chat. Anything else is inconclusive.
		if request.ErrorStatusCode(err) == http.StatusBadRequest {
			return NotMember
		}
		c.slog.Error("membership check failed", "user_id", userID, "err", err)
		return Unknown
	}

	switch member.Status {
	case "member", "administrator", "creator":
		return Member
	default:
		return NotMember
	}
}
