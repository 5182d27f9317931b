// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package ingest turns posts of the feed channel into registry entries.
package ingest

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"go.astrophena.name/filmgate/internal/registry"
	"go.astrophena.name/filmgate/internal/telegram"
)

// codeRE matches a content code anywhere in a caption.
var codeRE = regexp.MustCompile(`(?i)film\d+`)

// ExtractCode extracts a content code from a caption, normalized to
// lowercase. It returns "" when the caption contains no code.
func ExtractCode(caption string) string {
	return strings.ToLower(codeRE.FindString(caption))
}

// Ingestor consumes channel posts and writes content items to the registry.
type Ingestor struct {
	registry      *registry.DB
	feedChannelID int64
	slog          *slog.Logger
}

// Config configures an Ingestor.
type Config struct {
	// Registry is the content registry to write to.
	Registry *registry.DB
	// FeedChannelID is the chat ID of the moderated feed channel. Posts from
	// any other chat are ignored.
	FeedChannelID int64
	// Logger is the logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// New returns a new Ingestor.
func New(cfg Config) *Ingestor {
	in := &Ingestor{
		registry:      cfg.Registry,
		feedChannelID: cfg.FeedChannelID,
		slog:          cfg.Logger,
	}
	if in.slog == nil {
		in.slog = slog.Default()
	}
	return in
}

// HandlePost processes a single channel post. Posts without a media payload
// or a recognizable code are dropped; so are posts that fail to store. There
// is no retry path, the next repost of the same film starts fresh.
func (in *Ingestor) HandlePost(ctx context.Context, msg *telegram.Message) {
	if msg.Chat.ID != in.feedChannelID {
		in.slog.Debug("ignoring post from unknown chat", "chat_id", msg.Chat.ID)
		return
	}

	var (
		fileID string
		kind   registry.Kind
	)
	switch {
	case msg.Video != nil:
		fileID = msg.Video.FileID
		kind = registry.KindVideo
	case msg.Document != nil:
		fileID = msg.Document.FileID
		kind = registry.KindDocument
	default:
		in.slog.Debug("ignoring post without media payload", "chat_id", msg.Chat.ID)
		return
	}

	code := ExtractCode(msg.Caption)
	if code == "" {
		in.slog.Warn("no film code found in caption", "caption", msg.Caption)
		return
	}

	item := registry.ContentItem{
		Code:    code,
		FileID:  fileID,
		Title:   titleFrom(msg.Caption, code),
		Caption: msg.Caption,
		Kind:    kind,
	}
	if err := in.registry.Upsert(ctx, item); err != nil {
		in.slog.Error("failed to save film", "code", code, "err", err)
		return
	}
	in.slog.Info("film saved", "code", code, "kind", string(kind))
}

// titleFrom derives a title: the first caption line if the caption is
// multi-line, the whole caption otherwise, or the code itself when the
// caption is empty.
func titleFrom(caption, code string) string {
	if caption == "" {
		return code
	}
	if before, _, found := strings.Cut(caption, "\n"); found {
		return before
	}
	return caption
}
