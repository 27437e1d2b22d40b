// Package ledger implements the contribution ledger: a per-account file
// recording, for every repository the account touches, the remote commit
// total seen at the last walk and the account's accumulated commit,
// addition and deletion counts. Reconciliation re-walks only the
// repositories whose remote commit total changed, so an unchanged
// repository costs zero history requests.
package ledger

import (
	"fmt"
	"strconv"
	"strings"
)

// Repository is one entry of the freshly fetched repository listing.
type Repository struct {
	// NameWithOwner is the qualified "owner/name".
	NameWithOwner string

	// CommitTotal is the remote-reported total commit count on the
	// default branch.
	CommitTotal int

	// HasDefaultBranch is false for empty repositories, which get a
	// zero record and are never walked.
	HasDefaultBranch bool
}

// Record is one ledger line: the contribution state of a single
// repository as of its last full walk.
type Record struct {
	// Hash is the repository fingerprint, see Fingerprint.
	Hash string

	// RemoteCommitTotal is the default-branch commit count at the last
	// walk. It is purely a change signal: while it matches the live
	// value the rest of the record is presumed accurate.
	RemoteCommitTotal int

	MyCommits int
	Additions int
	Deletions int
}

// String renders the record in the on-disk line format (no newline):
// "<hash> <remoteCommitTotal> <myCommits> <additions> <deletions>".
func (r Record) String() string {
	return fmt.Sprintf("%s %d %d %d %d", r.Hash, r.RemoteCommitTotal, r.MyCommits, r.Additions, r.Deletions)
}

// parseRecord parses an on-disk record line. The five fields are
// whitespace-delimited.
func parseRecord(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) != 5 {
		return Record{}, fmt.Errorf("record line has %d fields, want 5", len(fields))
	}

	nums := make([]int, 4)
	for i, f := range fields[1:] {
		n, err := strconv.Atoi(f)
		if err != nil {
			return Record{}, fmt.Errorf("record field %d: %w", i+2, err)
		}
		nums[i] = n
	}

	return Record{
		Hash:              fields[0],
		RemoteCommitTotal: nums[0],
		MyCommits:         nums[1],
		Additions:         nums[2],
		Deletions:         nums[3],
	}, nil
}
