// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package ingest

import (
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"go.astrophena.name/filmgate/internal/registry"
	"go.astrophena.name/filmgate/internal/telegram"
	"go.astrophena.name/filmgate/internal/testutil"
)

const feedChannelID = -1001234567890

func TestExtractCode(t *testing.T) {
	cases := map[string]struct {
		caption string
		want    string
	}{
		"simple":              {"film123", "film123"},
		"uppercase":           {"FILM042", "film042"},
		"mixed case":          {"FiLm7", "film7"},
		"embedded in text":    {"New release: film99 is out!", "film99"},
		"multiline":           {"FILM042\nAction movie 2024", "film042"},
		"no code":             {"just a caption", ""},
		"empty":               {"", ""},
		"prefix without digits": {"film is great", ""},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, ExtractCode(tc.caption), tc.want)
		})
	}
}

func TestTitleFrom(t *testing.T) {
	cases := map[string]struct {
		caption string
		want    string
	}{
		"multiline caption":  {"FILM042\nAction movie 2024", "FILM042"},
		"single line":        {"Action movie 2024 film042", "Action movie 2024 film042"},
		"empty caption":      {"", "film042"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, titleFrom(tc.caption, "film042"), tc.want)
		})
	}
}

func testIngestor(t *testing.T) (*Ingestor, *registry.DB) {
	t.Helper()
	db, err := registry.Open(t.Context(), filepath.Join(t.TempDir(), "registry.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return New(Config{
		Registry:      db,
		FeedChannelID: feedChannelID,
		Logger:        slog.New(slog.DiscardHandler),
	}), db
}

func TestHandlePostRegistersVideo(t *testing.T) {
	in, db := testIngestor(t)

	in.HandlePost(t.Context(), &telegram.Message{
		Chat:    telegram.Chat{ID: feedChannelID},
		Video:   &telegram.Video{FileID: "video-file-id"},
		Caption: "FILM042\nAction movie 2024",
	})

	got, err := db.Get(t.Context(), "film042")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got.Code, "film042")
	testutil.AssertEqual(t, got.FileID, "video-file-id")
	testutil.AssertEqual(t, got.Title, "FILM042")
	testutil.AssertEqual(t, got.Caption, "FILM042\nAction movie 2024")
	testutil.AssertEqual(t, got.Kind, registry.KindVideo)
}

func TestHandlePostRegistersDocument(t *testing.T) {
	in, db := testIngestor(t)

	in.HandlePost(t.Context(), &telegram.Message{
		Chat:     telegram.Chat{ID: feedChannelID},
		Document: &telegram.Document{FileID: "doc-file-id"},
		Caption:  "film7",
	})

	got, err := db.Get(t.Context(), "film7")
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, got.Kind, registry.KindDocument)
	testutil.AssertEqual(t, got.Title, "film7")
}

func TestHandlePostDiscards(t *testing.T) {
	cases := map[string]*telegram.Message{
		"wrong chat": {
			Chat:    telegram.Chat{ID: 12345},
			Video:   &telegram.Video{FileID: "f"},
			Caption: "film1",
		},
		"no media payload": {
			Chat:    telegram.Chat{ID: feedChannelID},
			Caption: "film1",
		},
		"no code in caption": {
			Chat:    telegram.Chat{ID: feedChannelID},
			Video:   &telegram.Video{FileID: "f"},
			Caption: "a movie without a code",
		},
	}

	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			in, db := testIngestor(t)
			in.HandlePost(t.Context(), msg)

			if _, err := db.Get(t.Context(), "film1"); !errors.Is(err, registry.ErrNotFound) {
				t.Fatalf("got %v, want ErrNotFound", err)
			}
		})
	}
}
