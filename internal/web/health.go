// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"net/http"

	"go.astrophena.name/filmgate/internal/version"
)

// HealthResponse is the response format of the health endpoint.
type HealthResponse struct {
	OK      bool         `json:"ok"`
	Version version.Info `json:"version"`
}

// Health registers the health endpoint on mux.
func Health(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, HealthResponse{
			OK:      true,
			Version: version.Version(),
		})
	})
}
