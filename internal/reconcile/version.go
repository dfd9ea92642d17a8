package reconcile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/DIGITALIZART-STUDIO/ghogar-admin/internal/models"
)

// CatalogVersion fingerprints a catalog snapshot. Two snapshots with the
// same pending quotas and remaining balances hash identically regardless of
// ordering. Drafts carry the version they were built against so a submit
// can detect that another operator claimed a quota in the meantime.
func CatalogVersion(catalog models.QuotaStatus) string {
	lines := make([]string, 0, len(catalog.PendingQuotas))
	for _, q := range catalog.PendingQuotas {
		lines = append(lines, fmt.Sprintf("%s:%s:%t", q.ID, q.Remaining(), q.Paid))
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
