package ledger

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ArchiveFileName is the frozen pre-ledger snapshot consulted when the
// account's history predates the ledger. Read-only; this tool never
// writes it.
const ArchiveFileName = "repository_archive.txt"

const (
	archiveHeaderLines  = 7
	archiveTrailerLines = 3
)

// ArchiveTotals is the fixed contribution addend from the snapshot.
type ArchiveTotals struct {
	Additions    int
	Deletions    int
	Net          int
	Commits      int
	Repositories int
}

// ReadArchive parses <dir>/repository_archive.txt: a fixed header,
// one record line per archived repository in the ledger's five-field
// format, and a trailer whose final line carries one extra commit-count
// scalar as its fifth token (trailing punctuation stripped). An absent
// or malformed snapshot yields all zeros; this never fails the run.
func ReadArchive(dir string) ArchiveTotals {
	data, err := os.ReadFile(filepath.Join(dir, ArchiveFileName))
	if err != nil {
		return ArchiveTotals{}
	}

	lines := splitLines(string(data))
	if len(lines) <= archiveHeaderLines+archiveTrailerLines {
		return ArchiveTotals{}
	}

	body := lines[archiveHeaderLines : len(lines)-archiveTrailerLines]

	var totals ArchiveTotals
	totals.Repositories = len(body)
	for _, line := range body {
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return ArchiveTotals{}
		}

		additions, err := strconv.Atoi(fields[3])
		if err != nil {
			return ArchiveTotals{}
		}
		deletions, err := strconv.Atoi(fields[4])
		if err != nil {
			return ArchiveTotals{}
		}
		totals.Additions += additions
		totals.Deletions += deletions

		// The archived commit column may hold a placeholder for
		// repositories counted elsewhere; only digit runs count.
		if commits, err := strconv.Atoi(fields[2]); err == nil {
			totals.Commits += commits
		}
	}

	extra, ok := trailerCommitScalar(lines[len(lines)-1])
	if !ok {
		return ArchiveTotals{}
	}
	totals.Commits += extra

	totals.Net = totals.Additions - totals.Deletions
	return totals
}

// trailerCommitScalar extracts the extra commit count from the final
// trailer line: its fifth whitespace-delimited token, with any trailing
// non-digit characters stripped.
func trailerCommitScalar(line string) (int, bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return 0, false
	}

	token := strings.TrimRightFunc(fields[4], func(r rune) bool {
		return r < '0' || r > '9'
	})
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return n, true
}
