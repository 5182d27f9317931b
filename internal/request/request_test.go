// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package request_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.astrophena.name/filmgate/internal/request"
)

func TestMake(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/test" {
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message": "success"}`))
	}))
	defer ts.Close()

	cases := map[string]struct {
		params  request.Params
		want    string
		wantErr bool
	}{
		"successful request": {
			params: request.Params{
				Method: http.MethodPost,
				URL:    ts.URL + "/test",
				Body:   map[string]string{"key": "value"},
			},
			want: `{"message": "success"}`,
		},
		"successful request with headers": {
			params: request.Params{
				Method: http.MethodPost,
				URL:    ts.URL + "/test",
				Headers: map[string]string{
					"X-Test": "test",
				},
				Body: map[string]string{"key": "value"},
			},
			want: `{"message": "success"}`,
		},
		"invalid request method": {
			params: request.Params{
				Method: http.MethodGet,
				URL:    ts.URL + "/test",
			},
			wantErr: true,
		},
		"invalid request path": {
			params: request.Params{
				Method: http.MethodPost,
				URL:    ts.URL + "/invalid",
			},
			wantErr: true,
		},
		"invalid value for JSON": {
			params: request.Params{
				Method: http.MethodPost,
				URL:    ts.URL + "/test",
				Body:   make(chan int),
			},
			wantErr: true,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var resp json.RawMessage
			resp, err := request.Make[json.RawMessage](context.Background(), tc.params)
			if err != nil {
				if !tc.wantErr {
					t.Errorf("Make() error = %v, wantErr %v", err, tc.wantErr)
				}
				return
			}
			if tc.wantErr {
				t.Errorf("Make() expected error, got none")
			} else if string(resp) != tc.want {
				t.Errorf("Make() got = %v, want %v", resp, tc.want)
			}
		})
	}
}

func TestMakeStatusError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTeapot)
	}))
	defer ts.Close()

	_, err := request.Make[request.IgnoreResponse](context.Background(), request.Params{
		Method: http.MethodGet,
		URL:    ts.URL,
	})
	if err == nil {
		t.Fatal("expected error, got none")
	}

	var statusErr *request.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error %v doesn't wrap StatusError", err)
	}
	if statusErr.StatusCode != http.StatusTeapot {
		t.Errorf("got status %d, want %d", statusErr.StatusCode, http.StatusTeapot)
	}
	if got := request.ErrorStatusCode(err); got != http.StatusTeapot {
		t.Errorf("ErrorStatusCode() = %d, want %d", got, http.StatusTeapot)
	}
}

func TestMakeScrubsErrors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token leaked: hello", http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := request.Make[request.IgnoreResponse](context.Background(), request.Params{
		Method:   http.MethodGet,
		URL:      ts.URL,
		Scrubber: strings.NewReplacer("hello", "[EXPUNGED]"),
	})
	if err == nil {
		t.Fatal("expected error, got none")
	}
	if strings.Contains(err.Error(), "hello") {
		t.Errorf("error message %q contains unscrubbed secret", err)
	}
	if !strings.Contains(err.Error(), "[EXPUNGED]") {
		t.Errorf("error message %q doesn't contain scrub placeholder", err)
	}
}
