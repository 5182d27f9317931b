// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.astrophena.name/filmgate/internal/testutil"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, map[string]string{"status": "ok"})

	testutil.AssertEqual(t, rec.Code, http.StatusOK)
	testutil.AssertEqual(t, rec.Header().Get("Content-Type"), "application/json")
	got := testutil.UnmarshalJSON[map[string]string](t, rec.Body.Bytes())
	testutil.AssertEqual(t, got, map[string]string{"status": "ok"})
}

func TestRespondJSONError(t *testing.T) {
	cases := map[string]struct {
		err        error
		wantStatus int
	}{
		"status error": {
			err:        ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		"wrapped status error": {
			err:        fmt.Errorf("resource %w", ErrNotFound),
			wantStatus: http.StatusNotFound,
		},
		"plain error": {
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondJSONError(t.Logf, rec, tc.err)
			testutil.AssertEqual(t, rec.Code, tc.wantStatus)
		})
	}
}

func TestHealth(t *testing.T) {
	mux := http.NewServeMux()
	Health(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

	testutil.AssertEqual(t, rec.Code, http.StatusOK)
	resp := testutil.UnmarshalJSON[HealthResponse](t, rec.Body.Bytes())
	testutil.AssertEqual(t, resp.OK, true)
}

func TestListenAndServe(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())

	mux := http.NewServeMux()
	errCh := make(chan error, 1)
	go func() {
		errCh <- ListenAndServe(ctx, &ListenAndServeConfig{
			Addr:  "localhost:0",
			Mux:   mux,
			Logf:  t.Logf,
			Ready: cancel, // shut down as soon as the server is up
		})
	}()

	if err := <-errCh; err != nil {
		t.Fatal(err)
	}
}

func TestListenAndServeValidatesConfig(t *testing.T) {
	if err := ListenAndServe(t.Context(), &ListenAndServeConfig{Mux: http.NewServeMux()}); !errors.Is(err, errNoAddr) {
		t.Errorf("got %v, want errNoAddr", err)
	}
	if err := ListenAndServe(t.Context(), &ListenAndServeConfig{Addr: "localhost:0"}); !errors.Is(err, errNilMux) {
		t.Errorf("got %v, want errNilMux", err)
	}
}
