// filepath: internal/api/handlers/utils.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"adreel/internal/models"
	"adreel/internal/services/auth"
)

// maxJSONBody caps every JSON request body. Uploads go through multipart and have their own limit.
const maxJSONBody = 1 << 20

var errEmptyBody = errors.New("request body is empty")

// decodeStrict decodes a JSON body of at most maxJSONBody bytes, rejecting
// unknown fields and trailing data.
func decodeStrict(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected data after JSON object")
	}
	return nil
}

// respondBadBody reports a decodeStrict failure.
func respondBadBody(w http.ResponseWriter, err error) {
	if isTooLarge(err) {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", maxJSONBody))
		return
	}
	respondWithErrorDetails(w, http.StatusBadRequest, "Invalid request body", err)
}

// currentUser returns the session user, or nil for anonymous requests.
func currentUser(r *http.Request) *models.User {
	return auth.UserFromContext(r.Context())
}

// actorName is what audit events record as the actor.
func actorName(r *http.Request) string {
	if u := currentUser(r); u != nil {
		return u.Email
	}
	return "anonymous"
}

// parseExpiry reads an expiry in seconds. Empty means the default.
func parseExpiry(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	secs, err := strconv.Atoi(s)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("expires must be a non-negative number of seconds")
	}
	return time.Duration(secs) * time.Second, nil
}

// isTooLarge reports whether err came from http.MaxBytesReader.
func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
