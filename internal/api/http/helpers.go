package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/quizzer-app/quizzer/internal/locale"
)

func lang(r *http.Request) string {
	return locale.Match(r.Header.Get("Accept-Language"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrors renders collected domain errors as the combined message list
// the solve/create forms expect.
func writeErrors(w http.ResponseWriter, r *http.Request, status int, errs []error) {
	writeJSON(w, status, map[string]string{"error": locale.Join(lang(r), errs)})
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
