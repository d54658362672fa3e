// Package ledger implements the tamper-evident hash chain over attendance
// records.  Every record's hash incorporates its predecessor's, so any
// retroactive edit, reordering, or deletion breaks verification from that
// point forward.  All functions are pure; callers own serialization of
// concurrent appends.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// Genesis is the prev_hash of the first record in a chain.
const Genesis = "GENESIS_BLOCK"

// Fields are the canonical record fields covered by the hash.  Display name
// and proof payload are deliberately excluded: the name is a cleartext
// convenience copy and the proof ciphertext is non-deterministic (fresh
// nonce per encryption), so neither can participate in a reproducible hash.
type Fields struct {
	IdentityID int64
	Timestamp  time.Time
	Confidence float64
	Status     string
}

// Record is the slice of a stored ledger row the verifier needs.
type Record struct {
	Fields
	PrevHash    string
	CurrentHash string
}

// canonical renders fields as "key=value" pairs joined with "|", keys in
// lexicographic order.  The timestamp is rendered as Unix milliseconds —
// the same precision the store persists — so a record hashes identically
// before insert and after read-back.
func canonical(f Fields) string {
	var b strings.Builder
	b.WriteString("confidence=")
	b.WriteString(strconv.FormatFloat(f.Confidence, 'f', -1, 64))
	b.WriteString("|identity_id=")
	b.WriteString(strconv.FormatInt(f.IdentityID, 10))
	b.WriteString("|status=")
	b.WriteString(f.Status)
	b.WriteString("|timestamp=")
	b.WriteString(strconv.FormatInt(f.Timestamp.UTC().UnixMilli(), 10))
	return b.String()
}

// ComputeHash chains prevHash with the canonical serialization of f and
// returns the hex SHA-256 digest.  Deterministic: identical inputs always
// produce identical output.
func ComputeHash(prevHash string, f Fields) string {
	payload := prevHash + "|" + canonical(f)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// VerifyChain walks records in stored order starting from Genesis.  For each
// record it checks the stored prev_hash against the running expected value
// (structural break: reordering or deletion), then recomputes the hash from
// the record's own fields (content tampering).  Returns false at the first
// mismatch.  An empty sequence is vacuously intact.
func VerifyChain(records []Record) bool {
	expected := Genesis

	for _, r := range records {
		if r.PrevHash != expected {
			return false
		}
		if ComputeHash(expected, r.Fields) != r.CurrentHash {
			return false
		}
		expected = r.CurrentHash
	}

	return true
}
