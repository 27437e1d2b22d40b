package github

import (
	"context"
	"fmt"
	"time"

	"github.com/statscard/cli/cmd/statscard/cli/ledger"
)

// Ensure interface compliance.
var _ ledger.HistorySource = (*Client)(nil)

// AllAffiliations covers every repository the account contributes to.
var AllAffiliations = []string{"OWNER", "COLLABORATOR", "ORGANIZATION_MEMBER"}

// OwnerAffiliation covers only repositories the account owns.
var OwnerAffiliation = []string{"OWNER"}

type pageInfo struct {
	EndCursor   string `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

// Identity is the tracked account as the remote knows it.
type Identity struct {
	ID        string
	CreatedAt time.Time
}

// UserIdentity resolves the account's user id and creation time. The id
// is what commit authors are matched against during history walks.
func (c *Client) UserIdentity(ctx context.Context, login string) (Identity, error) {
	var data struct {
		User *struct {
			ID        string    `json:"id"`
			CreatedAt time.Time `json:"createdAt"`
		} `json:"user"`
	}
	if err := c.execute(ctx, "user", userQuery, map[string]any{"login": login}, &data); err != nil {
		return Identity{}, err
	}
	if data.User == nil {
		return Identity{}, fmt.Errorf("user %q not found", login)
	}
	return Identity{ID: data.User.ID, CreatedAt: data.User.CreatedAt}, nil
}

// FollowerCount returns the account's follower count.
func (c *Client) FollowerCount(ctx context.Context, login string) (int, error) {
	var data struct {
		User struct {
			Followers struct {
				TotalCount int `json:"totalCount"`
			} `json:"followers"`
		} `json:"user"`
	}
	if err := c.execute(ctx, "followers", followersQuery, map[string]any{"login": login}, &data); err != nil {
		return 0, err
	}
	return data.User.Followers.TotalCount, nil
}

type reposStarsData struct {
	User struct {
		Repositories struct {
			TotalCount int `json:"totalCount"`
			Edges      []struct {
				Node struct {
					NameWithOwner string `json:"nameWithOwner"`
					Stargazers    struct {
						TotalCount int `json:"totalCount"`
					} `json:"stargazers"`
				} `json:"node"`
			} `json:"edges"`
			PageInfo pageInfo `json:"pageInfo"`
		} `json:"repositories"`
	} `json:"user"`
}

// RepositoryCount returns how many repositories match the affiliations.
func (c *Client) RepositoryCount(ctx context.Context, login string, affiliations []string) (int, error) {
	var data reposStarsData
	vars := map[string]any{"affiliations": affiliations, "login": login, "cursor": nil}
	if err := c.execute(ctx, "repos_stars", reposStarsQuery, vars, &data); err != nil {
		return 0, err
	}
	return data.User.Repositories.TotalCount, nil
}

// StarCount sums stargazers across every matching repository, paging
// through the full listing.
func (c *Client) StarCount(ctx context.Context, login string, affiliations []string) (int, error) {
	stars := 0
	var cursor any
	for {
		var data reposStarsData
		vars := map[string]any{"affiliations": affiliations, "login": login, "cursor": cursor}
		if err := c.execute(ctx, "repos_stars", reposStarsQuery, vars, &data); err != nil {
			return 0, err
		}
		for _, edge := range data.User.Repositories.Edges {
			stars += edge.Node.Stargazers.TotalCount
		}
		if !data.User.Repositories.PageInfo.HasNextPage {
			return stars, nil
		}
		cursor = data.User.Repositories.PageInfo.EndCursor
	}
}

// ContributionsInRange returns the contribution-calendar commit count
// for the given date range.
func (c *Client) ContributionsInRange(ctx context.Context, login string, from, to time.Time) (int, error) {
	var data struct {
		User struct {
			ContributionsCollection struct {
				ContributionCalendar struct {
					TotalContributions int `json:"totalContributions"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	}
	vars := map[string]any{
		"from":  from.Format(time.RFC3339),
		"to":    to.Format(time.RFC3339),
		"login": login,
	}
	if err := c.execute(ctx, "contributions", contributionsQuery, vars, &data); err != nil {
		return 0, err
	}
	return data.User.ContributionsCollection.ContributionCalendar.TotalContributions, nil
}

// ListRepositories fetches the full repository listing for the
// affiliations: qualified name, default-branch commit total, and
// whether a default branch exists at all. This is the input to ledger
// reconciliation, in remote listing order.
func (c *Client) ListRepositories(ctx context.Context, login string, affiliations []string) ([]ledger.Repository, error) {
	var repos []ledger.Repository
	var cursor any
	for {
		var data struct {
			User struct {
				Repositories struct {
					Edges []struct {
						Node struct {
							NameWithOwner    string `json:"nameWithOwner"`
							DefaultBranchRef *struct {
								Target struct {
									History struct {
										TotalCount int `json:"totalCount"`
									} `json:"history"`
								} `json:"target"`
							} `json:"defaultBranchRef"`
						} `json:"node"`
					} `json:"edges"`
					PageInfo pageInfo `json:"pageInfo"`
				} `json:"repositories"`
			} `json:"user"`
		}
		vars := map[string]any{"affiliations": affiliations, "login": login, "cursor": cursor}
		if err := c.execute(ctx, "repo_listing", repoListingQuery, vars, &data); err != nil {
			return nil, err
		}

		for _, edge := range data.User.Repositories.Edges {
			repo := ledger.Repository{NameWithOwner: edge.Node.NameWithOwner}
			if edge.Node.DefaultBranchRef != nil {
				repo.HasDefaultBranch = true
				repo.CommitTotal = edge.Node.DefaultBranchRef.Target.History.TotalCount
			}
			repos = append(repos, repo)
		}

		if !data.User.Repositories.PageInfo.HasNextPage {
			return repos, nil
		}
		cursor = data.User.Repositories.PageInfo.EndCursor
	}
}

// HistoryPage implements ledger.HistorySource: one page of a
// repository's default-branch commit history.
func (c *Client) HistoryPage(ctx context.Context, owner, name, cursor string) (ledger.HistoryPage, error) {
	var data struct {
		Repository *struct {
			DefaultBranchRef *struct {
				Target struct {
					History struct {
						Edges []struct {
							Node struct {
								Additions int `json:"additions"`
								Deletions int `json:"deletions"`
								Author    struct {
									User *struct {
										ID string `json:"id"`
									} `json:"user"`
								} `json:"author"`
							} `json:"node"`
						} `json:"edges"`
						PageInfo pageInfo `json:"pageInfo"`
					} `json:"history"`
				} `json:"target"`
			} `json:"defaultBranchRef"`
		} `json:"repository"`
	}

	var after any
	if cursor != "" {
		after = cursor
	}
	vars := map[string]any{"name": name, "owner": owner, "cursor": after}
	if err := c.execute(ctx, "history", historyQuery, vars, &data); err != nil {
		return ledger.HistoryPage{}, err
	}

	if data.Repository == nil || data.Repository.DefaultBranchRef == nil {
		return ledger.HistoryPage{}, nil
	}

	history := data.Repository.DefaultBranchRef.Target.History
	page := ledger.HistoryPage{
		EndCursor:        history.PageInfo.EndCursor,
		HasNextPage:      history.PageInfo.HasNextPage,
		HasDefaultBranch: true,
		Commits:          make([]ledger.Commit, 0, len(history.Edges)),
	}
	for _, edge := range history.Edges {
		commit := ledger.Commit{
			Additions: edge.Node.Additions,
			Deletions: edge.Node.Deletions,
		}
		if edge.Node.Author.User != nil {
			commit.AuthorID = edge.Node.Author.User.ID
		}
		page.Commits = append(page.Commits, commit)
	}
	return page, nil
}
