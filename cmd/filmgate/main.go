// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.astrophena.name/filmgate/internal/bot"
	"go.astrophena.name/filmgate/internal/cli"
	"go.astrophena.name/filmgate/internal/gate"
	"go.astrophena.name/filmgate/internal/gemini"
	"go.astrophena.name/filmgate/internal/ingest"
	"go.astrophena.name/filmgate/internal/logger"
	"go.astrophena.name/filmgate/internal/registry"
	"go.astrophena.name/filmgate/internal/telegram"
	"go.astrophena.name/filmgate/internal/web"
)

func main() { cli.Main(new(engine)) }

func (e *engine) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&e.prod, "prod", false, "Run in production mode (sets the Telegram webhook).")
	fs.StringVar(&e.addr, "addr", "localhost:3000", "Listen on `host:port`.")
}

type engine struct {
	initOnce sync.Once
	initErr  error

	// initialized by doInit
	bot       *bot.Bot
	registry  *registry.DB
	tg        *telegram.Client
	logf      logger.Logf
	logStream logger.Streamer
	mux       *http.ServeMux
	scrubber  *strings.Replacer

	// configuration, read-only after initialization
	addr            string
	dbPath          string
	feedChannelID   int64
	geminiKey       string
	host            string
	httpc           *http.Client
	prod            bool
	requiredChannel string
	stderr          io.Writer
	tgSecret        string
	tgToken         string

	// for tests
	noServerStart bool
	ready         func() // see web.ListenAndServeConfig.Ready
}

const logLineLimit = 300

func (e *engine) Run(ctx context.Context, env *cli.Env) error {
	// Load configuration from environment variables.
	e.tgToken = cmp.Or(e.tgToken, env.Getenv("TG_TOKEN"))
	e.tgSecret = cmp.Or(e.tgSecret, env.Getenv("TG_SECRET"))
	if v := env.Getenv("FEED_CHANNEL_ID"); e.feedChannelID == 0 && v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("FEED_CHANNEL_ID: %v", err)
		}
		e.feedChannelID = id
	}
	e.requiredChannel = cmp.Or(e.requiredChannel, env.Getenv("REQUIRED_CHANNEL"))
	e.dbPath = cmp.Or(e.dbPath, env.Getenv("DB_PATH"), "filmgate.db")
	e.geminiKey = cmp.Or(e.geminiKey, env.Getenv("GEMINI_KEY"))
	e.host = cmp.Or(e.host, env.Getenv("HOST"))

	e.stderr = env.Stderr

	e.initOnce.Do(func() { e.initErr = e.doInit(ctx) })
	if e.initErr != nil {
		return e.initErr
	}

	// Used in tests.
	if e.noServerStart {
		return nil
	}
	defer e.registry.Close()

	// If running in production mode, set the webhook in Telegram Bot API.
	if e.prod {
		if e.host == "" {
			return errors.New("HOST must be set in production mode")
		}
		if err := e.tg.SetWebhook(ctx, "https://"+e.host+"/telegram", e.tgSecret); err != nil {
			return err
		}
		e.logf("Running in production mode.")
	} else {
		e.logf("Running in development mode.")
	}

	return web.ListenAndServe(ctx, &web.ListenAndServeConfig{
		Addr:  e.addr,
		Mux:   e.mux,
		Logf:  e.logf,
		Ready: e.ready,
	})
}

func (e *engine) doInit(ctx context.Context) error {
	switch {
	case e.tgToken == "":
		return errors.New("TG_TOKEN is not set")
	case e.feedChannelID == 0:
		return errors.New("FEED_CHANNEL_ID is not set")
	case e.requiredChannel == "":
		return errors.New("REQUIRED_CHANNEL is not set")
	}

	if e.httpc == nil {
		e.httpc = &http.Client{
			// Increase timeout to properly handle Gemini API response times.
			Timeout: 60 * time.Second,
		}
	}
	if e.stderr == nil {
		e.stderr = os.Stderr
	}

	e.logStream = logger.NewStreamer(logLineLimit)
	logw := io.MultiWriter(e.stderr, e.logStream)
	e.logf = log.New(logw, "", log.LstdFlags).Printf
	slogger := slog.New(slog.NewTextHandler(logw, nil))

	var scrubPairs []string
	for _, val := range []string{
		e.tgToken,
		e.tgSecret,
		e.geminiKey,
	} {
		if val != "" {
			scrubPairs = append(scrubPairs, val, "[EXPUNGED]")
		}
	}
	if len(scrubPairs) > 0 {
		e.scrubber = strings.NewReplacer(scrubPairs...)
	}

	e.tg = &telegram.Client{
		Token:      e.tgToken,
		HTTPClient: e.httpc,
		Scrubber:   e.scrubber,
	}

	me, err := e.tg.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("getMe: %w", err)
	}

	e.registry, err = registry.Open(ctx, e.dbPath)
	if err != nil {
		return err
	}

	var geminic *gemini.Client
	if e.geminiKey != "" {
		geminic = &gemini.Client{
			APIKey:     e.geminiKey,
			HTTPClient: e.httpc,
			Scrubber:   e.scrubber,
		}
	}

	e.bot = bot.New(bot.Config{
		Telegram: e.tg,
		Registry: e.registry,
		Gate: gate.New(gate.Config{
			Telegram: e.tg,
			Channel:  e.requiredChannel,
			Logger:   slogger,
		}),
		Ingest: ingest.New(ingest.Config{
			Registry:      e.registry,
			FeedChannelID: e.feedChannelID,
			Logger:        slogger,
		}),
		Gemini: geminic,
		UI:     bot.NewUI(me.Username, e.requiredChannel, geminic != nil),
		Logger: slogger,
	})

	e.mux = http.NewServeMux()
	e.mux.HandleFunc("POST /telegram", e.handleWebhook)
	e.mux.Handle("GET /debug/log", e.logStream)

	return nil
}

// handleWebhook receives updates delivered by the Telegram Bot API.
func (e *engine) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if e.tgSecret != "" && r.Header.Get("X-Telegram-Bot-Api-Secret-Token") != e.tgSecret {
		web.RespondJSONError(e.logf, w, web.ErrNotFound)
		return
	}

	var upd telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		web.RespondJSONError(e.logf, w, fmt.Errorf("%w: %v", web.ErrBadRequest, err))
		return
	}

	if err := e.bot.HandleUpdate(r.Context(), &upd); err != nil {
		// Acknowledge anyway: Telegram redelivers updates it considers
		// failed, and a redelivery would fail the same way.
		e.logf("Failed to handle update %d: %v", upd.ID, err)
	}

	web.RespondJSON(w, map[string]bool{"ok": true})
}
