package ledger

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns the hex SHA-256 digest of a repository's
// qualified "owner/name" (or of an account login, for the ledger file
// name). The digest is the stable identity key for ledger records: it
// is always recomputed from the live name, never read back from stored
// data, so a record can only match the repository it was written for.
func Fingerprint(qualifiedName string) string {
	sum := sha256.Sum256([]byte(qualifiedName))
	return hex.EncodeToString(sum[:])
}
