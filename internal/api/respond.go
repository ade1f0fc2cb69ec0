package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/example/ec-storefront/internal/apperror"
)

var errInvalidBody = apperror.Validation("body", "Invalid request body")

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondMessage(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusOK, map[string]string{"message": message})
}

// responder maps domain errors onto HTTP responses. Classified errors are
// returned verbatim; anything else is a 500 whose detail is only exposed
// outside production.
type responder struct {
	production bool
}

func (rs responder) fail(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperror.Error
	if errors.As(err, &ae) && ae.Kind != apperror.KindUnknown && ae.Kind != apperror.KindUpstream {
		body := map[string]string{"error": ae.Message}
		if ae.Field != "" {
			body["field"] = ae.Field
		}
		respondJSON(w, apperror.HTTPStatus(err), body)
		return
	}

	log.Printf("[API] %s %s failed: %v", r.Method, r.URL.Path, err)
	body := map[string]string{"error": "Server error"}
	if !rs.production {
		body["detail"] = err.Error()
	}
	respondJSON(w, http.StatusInternalServerError, body)
}

// decodeJSON reads a JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

// queryInt returns the integer query parameter key, or 0 when it is
// absent or malformed.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

func queryFloat(r *http.Request, key string) *float64 {
	v, err := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	if err != nil {
		return nil
	}
	return &v
}

// queryBool returns nil unless key is "true" or "false".
func queryBool(r *http.Request, key string) *bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	if err != nil {
		return nil
	}
	return &v
}
