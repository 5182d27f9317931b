// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package version

import (
	"strings"
	"testing"
)

func TestInfoString(t *testing.T) {
	i := Info{
		Version: "v1.2.3",
		Commit:  "abcdef",
		BuiltAt: "2025-03-01T12:00:00Z",
		Go:      "go1.24",
		OS:      "linux",
		Arch:    "amd64",
	}
	s := i.String()
	for _, want := range []string{"v1.2.3", "go1.24", "linux/amd64", "commit abcdef", "built at 2025-03-01T12:00:00Z"} {
		if !strings.Contains(s, want) {
			t.Errorf("Info.String() = %q, missing %q", s, want)
		}
	}
}

func TestInfoStringWithoutVCS(t *testing.T) {
	i := Info{Version: "devel", Go: "go1.24", OS: "linux", Arch: "amd64"}
	if s := i.String(); strings.Contains(s, "commit") {
		t.Errorf("Info.String() = %q, should not mention commit", s)
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.Contains(ua, "/") || !strings.Contains(ua, "(+https://astrophena.name/bleep-bloop)") {
		t.Errorf("UserAgent() = %q", ua)
	}
}
