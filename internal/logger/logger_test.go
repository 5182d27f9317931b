// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package logger

import (
	"net/http/httptest"
	"testing"

	"go.astrophena.name/filmgate/internal/testutil"
)

func TestStreamerRetainsLines(t *testing.T) {
	s := NewStreamer(3)

	for _, line := range []string{"one\n", "two\n", "three\n", "four\n"} {
		if _, err := s.Write([]byte(line)); err != nil {
			t.Fatal(err)
		}
	}

	testutil.AssertEqual(t, s.Lines(), []string{"two\n", "three\n", "four\n"})
}

func TestStreamerPartialWrites(t *testing.T) {
	s := NewStreamer(2)

	s.Write([]byte("hel"))
	s.Write([]byte("lo\nwor"))
	s.Write([]byte("ld\n"))

	testutil.AssertEqual(t, s.Lines(), []string{"hello\n", "world\n"})
}

func TestStreamerServeHTTP(t *testing.T) {
	s := NewStreamer(2)
	s.Write([]byte("hello\n"))

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest("GET", "/debug/log", nil))

	testutil.AssertEqual(t, rec.Body.String(), "hello\n")
}
