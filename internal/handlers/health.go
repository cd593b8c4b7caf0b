package handlers

import "net/http"

// Health reports that the process is serving requests.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
