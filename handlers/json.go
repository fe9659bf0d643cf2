package handlers

import (
	"compress/gzip"
	"fmt"
	"net/http"
	"strings"
	"time"

	"encoding/json"

	"github.com/bentalba/taawidaty/logging"
)

// Minimum response size to consider compression (1KB)
const compressionThreshold = 1024

// RespondWithCompressedJSON writes a JSON response, gzip-compressed
// when the client accepts it and the payload is large enough to be
// worth it. Catalogue endpoints return megabytes of JSON, so this is
// the responder for everything that serves record lists.
func RespondWithCompressedJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err, "payload_type", fmt.Sprintf("%T", payload))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))

	shouldCompress := len(data) >= compressionThreshold &&
		strings.Contains(strings.ToLower(r.Header.Get("Accept-Encoding")), "gzip")

	if !shouldCompress {
		w.WriteHeader(code)
		w.Write(data)
		return
	}

	w.Header().Set("Content-Encoding", "gzip")
	w.WriteHeader(code)
	gz := gzip.NewWriter(w)
	defer gz.Close()
	gz.Write(data)
	logging.Debug("Compressed JSON response", "original_size", len(data))
}
