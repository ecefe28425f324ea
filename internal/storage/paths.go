// internal/storage/paths.go
// Object key generation and the bucket layout.
package storage

import (
	"fmt"
	"math/rand/v2"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultFolder is used when a key is generated without a folder.
const DefaultFolder = "uploads"

const (
	suffixLen      = 6
	suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// KeyPattern matches the file part of every generated key.
var KeyPattern = regexp.MustCompile(`^\d+_[0-9a-z]{6}_[A-Za-z0-9._-]*$`)

// SanitizeName replaces every character outside [A-Za-z0-9.-] with an underscore.
func SanitizeName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

func randomSuffix() string {
	b := make([]byte, suffixLen)
	for i := range b {
		b[i] = suffixAlphabet[rand.IntN(len(suffixAlphabet))]
	}
	return string(b)
}

// GenerateKey builds "{folder}/{unixMillis}_{rand6}_{sanitizedName}".
// Uniqueness relies on the timestamp plus random suffix; collisions are not retried.
func GenerateKey(name, folder string) string {
	return generateKeyAt(time.Now(), name, folder)
}

func generateKeyAt(t time.Time, name, folder string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = DefaultFolder
	}
	file := fmt.Sprintf("%d_%s_%s", t.UnixMilli(), randomSuffix(), SanitizeName(name))
	return folder + "/" + file
}

// KeyTime recovers the creation time encoded in a generated key.
func KeyTime(key string) (time.Time, bool) {
	base := path.Base(key)
	if !KeyPattern.MatchString(base) {
		return time.Time{}, false
	}
	millis, _, _ := strings.Cut(base, "_")
	ms, err := strconv.ParseInt(millis, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// ProjectPrefix is the root of everything stored for one project.
func ProjectPrefix(projectID string) string {
	return fmt.Sprintf("projects/%s/", SanitizeName(projectID))
}

// MaterialFolder is where uploads of a given material type live, e.g. projects/{id}/videos.
func MaterialFolder(projectID, materialType string) string {
	return fmt.Sprintf("projects/%s/%ss", SanitizeName(projectID), SanitizeName(materialType))
}

// BrandFolder holds brand kit assets such as logos.
func BrandFolder(projectID string) string {
	return fmt.Sprintf("projects/%s/brand", SanitizeName(projectID))
}

// ExportFolder holds rendered variants.
func ExportFolder(projectID string) string {
	return fmt.Sprintf("projects/%s/exports", SanitizeName(projectID))
}

// IsExportKey reports whether key lives in a project's exports folder.
func IsExportKey(key string) bool {
	parts := strings.Split(key, "/")
	return len(parts) >= 4 && parts[0] == "projects" && parts[2] == "exports"
}
