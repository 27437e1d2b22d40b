package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/statscard/cli/cmd/statscard/cli/logging"
)

// Commit is one commit of a history page, reduced to what the walk
// needs: who wrote it and how many lines it moved.
type Commit struct {
	// AuthorID is the remote user id of the commit author, empty when
	// the author has no associated account.
	AuthorID  string
	Additions int
	Deletions int
}

// HistoryPage is one page of a repository's commit history, newest
// first.
type HistoryPage struct {
	Commits     []Commit
	EndCursor   string
	HasNextPage bool

	// HasDefaultBranch is false when the repository has no default
	// branch (empty repository); such a walk yields zero totals.
	HasDefaultBranch bool
}

// HistorySource supplies commit history pages for a repository. The
// GitHub client implements it; tests use scripted fakes.
type HistorySource interface {
	HistoryPage(ctx context.Context, owner, name, cursor string) (HistoryPage, error)
}

// WalkResult is the contribution total of one full history walk.
type WalkResult struct {
	Additions int
	Deletions int
	MyCommits int
}

// Walker recomputes a single repository's contribution totals by
// paging through its full commit history.
type Walker struct {
	Source HistorySource

	// AuthorID is the tracked account's user id, resolved once per run.
	// Only commits with a matching author count toward the totals.
	AuthorID string
}

// Walk pages through owner/name's history from startCursor (empty for
// the newest page) and accumulates the tracked account's additions,
// deletions and commit count. Pagination follows the remote's
// has-next-page signal alone: a page where no commit matches the
// tracked author does not end the walk. The first failed page fails
// the walk; nothing accumulated so far is returned.
func (w *Walker) Walk(ctx context.Context, owner, name, startCursor string) (WalkResult, error) {
	start := time.Now()

	var res WalkResult
	cursor := startCursor
	pages := 0
	for {
		page, err := w.Source.HistoryPage(ctx, owner, name, cursor)
		if err != nil {
			return WalkResult{}, fmt.Errorf("walking %s/%s: %w", owner, name, err)
		}
		pages++

		if !page.HasDefaultBranch {
			break
		}

		for _, c := range page.Commits {
			if c.AuthorID == "" || c.AuthorID != w.AuthorID {
				continue
			}
			res.MyCommits++
			res.Additions += c.Additions
			res.Deletions += c.Deletions
		}

		if !page.HasNextPage {
			break
		}
		cursor = page.EndCursor
	}

	logging.LogDuration(ctx, slog.LevelDebug, "history walk completed", start,
		slog.String("repository", owner+"/"+name),
		slog.Int("pages", pages),
		slog.Int("my_commits", res.MyCommits),
	)

	return res, nil
}
