package ledger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/statscard/cli/cmd/statscard/cli/logging"
)

// Totals is the aggregate of the full ledger after reconciliation.
type Totals struct {
	Additions int
	Deletions int
	Net       int
	Commits   int

	// FullyCached is true when the run needed no rebuild and no walk:
	// every repository was served from the on-disk ledger. Display
	// signal only.
	FullyCached bool
}

// Reconciler drives staleness detection and history walks across the
// whole repository listing and keeps the ledger file current.
type Reconciler struct {
	Store      Store
	Walker     *Walker
	HeaderSize int

	// ForceRebuild discards the loaded records and starts from
	// sentinels even when the count matches, re-walking everything.
	ForceRebuild bool

	// Stderr receives the partial-save diagnostic on walk failure.
	// Defaults to os.Stderr.
	Stderr io.Writer
}

// Reconcile brings the ledger in line with the live repository listing
// and returns totals summed over the entire final record set, whether
// or not any record was re-walked this run.
//
// Records pair with repositories by fingerprint, not file position: a
// repository whose hash is missing from the ledger is treated as new
// (zero record, full walk) and records whose hash matches no live
// repository are dropped on save. A record count that differs from the
// listing length forces a full rebuild first.
//
// If a walk fails, the ledger as reconciled so far - updated records
// for repositories already processed, prior records for the rest - is
// saved before the error propagates, so the next run resumes from real
// data.
func (r *Reconciler) Reconcile(ctx context.Context, repos []Repository) (Totals, error) {
	headerSize := r.HeaderSize
	if headerSize == 0 {
		headerSize = DefaultHeaderSize
	}

	header, records, err := r.Store.Load(headerSize)
	if err != nil {
		return Totals{}, fmt.Errorf("loading ledger: %w", err)
	}

	rebuilt := false
	if r.ForceRebuild || len(records) != len(repos) {
		logging.Info(ctx, "rebuilding ledger",
			slog.Bool("forced", r.ForceRebuild),
			slog.Int("records", len(records)),
			slog.Int("repositories", len(repos)),
		)
		records, err = r.Store.Rebuild(header, repos)
		if err != nil {
			return Totals{}, err
		}
		rebuilt = true
	}

	byHash := make(map[string]Record, len(records))
	for _, rec := range records {
		if rec.Hash != "" {
			byHash[rec.Hash] = rec
		}
	}

	out := make([]Record, 0, len(repos))
	walked := 0
	for _, repo := range repos {
		hash := Fingerprint(repo.NameWithOwner)
		rec, known := byHash[hash]

		switch {
		case !repo.HasDefaultBranch:
			// Empty repository: zero record, nothing to walk.
			rec = Record{Hash: hash}

		case known && rec.RemoteCommitTotal == repo.CommitTotal:
			// Fresh: remote total unchanged since the last walk.

		default:
			owner, name, splitErr := splitQualifiedName(repo.NameWithOwner)
			if splitErr != nil {
				return Totals{}, splitErr
			}

			res, walkErr := r.Walker.Walk(ctx, owner, name, "")
			if walkErr != nil {
				r.savePartial(ctx, header, out, byHash, repos[len(out):])
				return Totals{}, walkErr
			}

			rec = Record{
				Hash:              hash,
				RemoteCommitTotal: repo.CommitTotal,
				MyCommits:         res.MyCommits,
				Additions:         res.Additions,
				Deletions:         res.Deletions,
			}
			walked++
		}

		out = append(out, rec)
	}

	if err := r.Store.Save(header, out); err != nil {
		return Totals{}, fmt.Errorf("saving ledger: %w", err)
	}

	totals := sumRecords(out)
	totals.FullyCached = !rebuilt && walked == 0

	logging.Info(ctx, "ledger reconciled",
		slog.Int("repositories", len(repos)),
		slog.Int("walked", walked),
		slog.Bool("rebuilt", rebuilt),
		slog.Bool("fully_cached", totals.FullyCached),
	)

	return totals, nil
}

// savePartial persists reconciliation progress when a walk fails: the
// records finalized this run, then each remaining repository's prior
// record (or a zero record if it had none). Failures here are reported
// but never mask the walk error.
func (r *Reconciler) savePartial(ctx context.Context, header []string, done []Record, byHash map[string]Record, remaining []Repository) {
	records := make([]Record, 0, len(done)+len(remaining))
	records = append(records, done...)
	for _, repo := range remaining {
		hash := Fingerprint(repo.NameWithOwner)
		rec, ok := byHash[hash]
		if !ok {
			rec = Record{Hash: hash}
		}
		records = append(records, rec)
	}

	stderr := r.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	if err := r.Store.Save(header, records); err != nil {
		logging.Error(ctx, "saving partial ledger failed", slog.String("error", err.Error()))
		fmt.Fprintf(stderr, "statscard: failed to save partial ledger state to %s: %v\n", r.Store.Path(), err)
		return
	}

	logging.Warn(ctx, "walk failed, partial ledger state saved",
		slog.String("path", r.Store.Path()),
		slog.Int("finalized", len(done)),
	)
	fmt.Fprintf(stderr, "statscard: a walk failed; partial ledger state was saved to %s\n", r.Store.Path())
}

func sumRecords(records []Record) Totals {
	var t Totals
	for _, rec := range records {
		t.Additions += rec.Additions
		t.Deletions += rec.Deletions
		t.Commits += rec.MyCommits
	}
	t.Net = t.Additions - t.Deletions
	return t
}

func splitQualifiedName(nameWithOwner string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(nameWithOwner, "/")
	if !ok || owner == "" || name == "" {
		return "", "", fmt.Errorf("malformed repository name %q", nameWithOwner)
	}
	return owner, name, nil
}
