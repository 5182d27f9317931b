// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Filmgate is a Telegram bot that hands out films to channel subscribers.

Films are posted to a moderated feed channel with a code like film042
somewhere in the caption. Filmgate watches the feed and records each film.
Users open a deep link like https://t.me/<bot>?start=film042; the bot checks
that they are currently a member of the required channel and sends the film,
or asks them to join first and delivers the film once they confirm.

# Usage

	$ filmgate [flags...]

# Environment Variables

The following environment variables are used to configure Filmgate:

  - TG_TOKEN: The Telegram Bot API token.
  - TG_SECRET: The secret token used to validate Telegram Bot API updates.
  - FEED_CHANNEL_ID: The numeric chat ID of the feed channel films are posted to.
  - REQUIRED_CHANNEL: The channel users must join to receive films, as @username.
  - DB_PATH: Path to the SQLite database. Defaults to filmgate.db.
  - GEMINI_KEY: The Gemini API key. Optional; enables free-form questions.
  - HOST: The bot domain used for setting up the webhook in production mode.

# Debug Interface

Filmgate provides a debug interface with the following endpoints:

  - /debug/log: Displays the last 300 lines of logs.
*/
package main

import (
	_ "embed"

	"go.astrophena.name/filmgate/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
