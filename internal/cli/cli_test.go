// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package cli

import (
	"context"
	"errors"
	"flag"
	"strings"
	"testing"
)

type testApp struct {
	ran  bool
	fail error
	verb string
}

func (a *testApp) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.verb, "verb", "", "Test flag.")
}

func (a *testApp) Run(ctx context.Context, env *Env) error {
	a.ran = true
	return a.fail
}

func testEnv(args ...string) *Env {
	return &Env{
		Args:   args,
		Getenv: func(string) string { return "" },
		Stdin:  strings.NewReader(""),
		Stdout: new(strings.Builder),
		Stderr: new(strings.Builder),
	}
}

func TestRun(t *testing.T) {
	app := new(testApp)
	if err := Run(t.Context(), app, testEnv("-verb", "hello")); err != nil {
		t.Fatal(err)
	}
	if !app.ran {
		t.Error("app didn't run")
	}
	if app.verb != "hello" {
		t.Errorf("got verb %q, want %q", app.verb, "hello")
	}
}

func TestRunPropagatesError(t *testing.T) {
	wantErr := errors.New("boom")
	app := &testApp{fail: wantErr}
	if err := Run(t.Context(), app, testEnv()); !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want %v", err, wantErr)
	}
}

func TestRunVersion(t *testing.T) {
	app := new(testApp)
	err := Run(t.Context(), app, testEnv("-version"))
	if !errors.Is(err, ErrExitVersion) {
		t.Fatalf("got %v, want ErrExitVersion", err)
	}
	if app.ran {
		t.Error("app ran, but shouldn't have")
	}
}

func TestRunInvalidFlag(t *testing.T) {
	app := new(testApp)
	err := Run(t.Context(), app, testEnv("-nonexistent"))
	if err == nil {
		t.Fatal("expected error, got none")
	}
	if isPrintableError(err) {
		t.Errorf("flag parse error %v should be unprintable", err)
	}
}
