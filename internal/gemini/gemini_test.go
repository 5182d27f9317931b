// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package gemini_test

import (
	"net/http"
	"testing"

	"go.astrophena.name/filmgate/internal/gemini"
	"go.astrophena.name/filmgate/internal/testutil"
	"go.astrophena.name/filmgate/internal/web"
)

func TestGenerateContent(t *testing.T) {
	var gotKey string

	mux := http.NewServeMux()
	mux.HandleFunc("POST gemini.test/models/{model}", func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-goog-api-key")
		web.RespondJSON(w, map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "Hello!"}}}},
			},
		})
	})

	c := &gemini.Client{
		APIKey:     "test-key",
		APIURL:     "https://gemini.test",
		HTTPClient: testutil.MockHTTPClient(mux),
	}

	resp, err := c.GenerateContent(t.Context(), "gemini-2.5-flash", gemini.GenerateContentParams{
		Contents: []*gemini.Content{
			{Parts: []*gemini.Part{{Text: "Hi"}}, Role: "user"},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	testutil.AssertEqual(t, gotKey, "test-key")
	testutil.AssertEqual(t, resp.Candidates[0].Content.Parts[0].Text, "Hello!")
}

func TestGenerateContentRequiresModel(t *testing.T) {
	c := &gemini.Client{APIKey: "test-key"}
	if _, err := c.GenerateContent(t.Context(), "", gemini.GenerateContentParams{}); err == nil {
		t.Fatal("expected error, got none")
	}
}
