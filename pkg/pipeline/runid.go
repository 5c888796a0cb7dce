package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"
)

// GenerateRunID creates a timestamp-first run ID from the corpus origins.
// Format: YYYY-MM-DDTHH-MM-{hash}
// Hash is derived from the sorted origin list, so the same corpus at the
// same minute yields the same ID.
func GenerateRunID(origins []string, now time.Time) string {
	normalized := make([]string, len(origins))
	copy(normalized, origins)
	sort.Strings(normalized)

	h := sha256.New()
	for _, origin := range normalized {
		h.Write([]byte(origin))
		h.Write([]byte("\n"))
	}
	hashBytes := h.Sum(nil)
	shortHash := hex.EncodeToString(hashBytes[:6]) // 12 char hex

	timestamp := now.Format("2006-01-02T15-04")

	return fmt.Sprintf("%s-%s", timestamp, shortHash)
}
