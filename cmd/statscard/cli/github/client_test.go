package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// graphQLStub serves canned responses keyed by a caller-supplied
// dispatch function and records every request body.
type graphQLStub struct {
	t        *testing.T
	server   *httptest.Server
	requests []graphQLRequest
	handler  func(req graphQLRequest, n int) (status int, body string)
}

func newGraphQLStub(t *testing.T, handler func(req graphQLRequest, n int) (status int, body string)) *graphQLStub {
	t.Helper()
	stub := &graphQLStub{t: t, handler: handler}
	stub.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		stub.requests = append(stub.requests, req)
		status, body := stub.handler(req, len(stub.requests))
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *graphQLStub) client() *Client {
	c := NewClient("test-token")
	c.Endpoint = s.server.URL
	return c
}

func respond(data string) (int, string) {
	return http.StatusOK, `{"data": ` + data + `}`
}

func TestClient_SendsTokenAndVariables(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"data": {"user": {"id": "U1", "createdAt": "2011-01-25T18:44:36Z"}}}`)
	}))
	t.Cleanup(server.Close)

	c := NewClient("secret-token")
	c.Endpoint = server.URL

	identity, err := c.UserIdentity(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, "token secret-token", gotAuth)
	assert.Equal(t, "U1", identity.ID)
	assert.Equal(t, 2011, identity.CreatedAt.Year())
}

func TestClient_RateLimitError(t *testing.T) {
	stub := newGraphQLStub(t, func(graphQLRequest, int) (int, string) {
		return http.StatusForbidden, "slow down"
	})

	_, err := stub.client().FollowerCount(context.Background(), "octocat")
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestClient_QueryErrorCarriesStatusAndBody(t *testing.T) {
	stub := newGraphQLStub(t, func(graphQLRequest, int) (int, string) {
		return http.StatusBadGateway, "upstream broke"
	})

	_, err := stub.client().FollowerCount(context.Background(), "octocat")
	require.Error(t, err)

	var queryErr *QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, http.StatusBadGateway, queryErr.StatusCode)
	assert.Equal(t, "followers", queryErr.Query)
	assert.Contains(t, queryErr.Body, "upstream broke")
}

func TestClient_GraphQLErrorSurfaced(t *testing.T) {
	stub := newGraphQLStub(t, func(graphQLRequest, int) (int, string) {
		return http.StatusOK, `{"data": null, "errors": [{"message": "bad login"}]}`
	})

	_, err := stub.client().FollowerCount(context.Background(), "octocat")
	require.ErrorContains(t, err, "bad login")
}

func TestClient_CountsQueries(t *testing.T) {
	stub := newGraphQLStub(t, func(graphQLRequest, int) (int, string) {
		return respond(`{"user": {"followers": {"totalCount": 5}}}`)
	})
	c := stub.client()

	for i := 0; i < 3; i++ {
		_, err := c.FollowerCount(context.Background(), "octocat")
		require.NoError(t, err)
	}

	assert.Equal(t, 3, c.TotalQueries())
	assert.Equal(t, []QueryCount{{Name: "followers", Count: 3}}, c.QueryCounts())
}

func TestStarCount_PaginatesAndSums(t *testing.T) {
	stub := newGraphQLStub(t, func(req graphQLRequest, n int) (int, string) {
		if n == 1 {
			return respond(`{"user": {"repositories": {
				"totalCount": 2,
				"edges": [{"node": {"nameWithOwner": "octocat/alpha", "stargazers": {"totalCount": 40}}}],
				"pageInfo": {"endCursor": "c1", "hasNextPage": true}
			}}}`)
		}
		return respond(`{"user": {"repositories": {
			"totalCount": 2,
			"edges": [{"node": {"nameWithOwner": "octocat/beta", "stargazers": {"totalCount": 2}}}],
			"pageInfo": {"endCursor": "", "hasNextPage": false}
		}}}`)
	})

	stars, err := stub.client().StarCount(context.Background(), "octocat", OwnerAffiliation)
	require.NoError(t, err)
	assert.Equal(t, 42, stars)

	// The second request carried the cursor from the first page.
	require.Len(t, stub.requests, 2)
	assert.Equal(t, "c1", stub.requests[1].Variables["cursor"])
}

func TestListRepositories_PaginatesAndFlagsEmptyRepos(t *testing.T) {
	stub := newGraphQLStub(t, func(req graphQLRequest, n int) (int, string) {
		if n == 1 {
			return respond(`{"user": {"repositories": {
				"edges": [
					{"node": {"nameWithOwner": "octocat/alpha", "defaultBranchRef": {"target": {"history": {"totalCount": 12}}}}},
					{"node": {"nameWithOwner": "octocat/empty", "defaultBranchRef": null}}
				],
				"pageInfo": {"endCursor": "c1", "hasNextPage": true}
			}}}`)
		}
		return respond(`{"user": {"repositories": {
			"edges": [{"node": {"nameWithOwner": "octocat/beta", "defaultBranchRef": {"target": {"history": {"totalCount": 3}}}}}],
			"pageInfo": {"endCursor": "", "hasNextPage": false}
		}}}`)
	})

	repos, err := stub.client().ListRepositories(context.Background(), "octocat", AllAffiliations)
	require.NoError(t, err)
	require.Len(t, repos, 3)

	assert.Equal(t, "octocat/alpha", repos[0].NameWithOwner)
	assert.Equal(t, 12, repos[0].CommitTotal)
	assert.True(t, repos[0].HasDefaultBranch)

	assert.Equal(t, "octocat/empty", repos[1].NameWithOwner)
	assert.False(t, repos[1].HasDefaultBranch)

	assert.Equal(t, "octocat/beta", repos[2].NameWithOwner)
}

func TestHistoryPage_MapsCommitsAndAuthorlessEdges(t *testing.T) {
	stub := newGraphQLStub(t, func(req graphQLRequest, n int) (int, string) {
		return respond(`{"repository": {"defaultBranchRef": {"target": {"history": {
			"totalCount": 2,
			"edges": [
				{"node": {"additions": 10, "deletions": 2, "author": {"user": {"id": "U1"}}}},
				{"node": {"additions": 5, "deletions": 1, "author": {"user": null}}}
			],
			"pageInfo": {"endCursor": "h1", "hasNextPage": true}
		}}}}}`)
	})

	page, err := stub.client().HistoryPage(context.Background(), "octocat", "alpha", "")
	require.NoError(t, err)

	assert.True(t, page.HasDefaultBranch)
	assert.True(t, page.HasNextPage)
	assert.Equal(t, "h1", page.EndCursor)
	require.Len(t, page.Commits, 2)
	assert.Equal(t, "U1", page.Commits[0].AuthorID)
	assert.Empty(t, page.Commits[1].AuthorID, "authorless commits carry no author id")

	// Empty cursor is sent as null, not "".
	assert.Nil(t, stub.requests[0].Variables["cursor"])
}

func TestHistoryPage_NoDefaultBranch(t *testing.T) {
	stub := newGraphQLStub(t, func(req graphQLRequest, n int) (int, string) {
		return respond(`{"repository": {"defaultBranchRef": null}}`)
	})

	page, err := stub.client().HistoryPage(context.Background(), "octocat", "empty", "")
	require.NoError(t, err)
	assert.False(t, page.HasDefaultBranch)
	assert.Empty(t, page.Commits)
}

func TestContributionsInRange(t *testing.T) {
	stub := newGraphQLStub(t, func(req graphQLRequest, n int) (int, string) {
		return respond(`{"user": {"contributionsCollection": {"contributionCalendar": {"totalContributions": 1234}}}}`)
	})

	c := stub.client()
	from := mustParseTime(t, "2025-01-01T00:00:00Z")
	to := mustParseTime(t, "2026-01-01T00:00:00Z")
	n, err := c.ContributionsInRange(context.Background(), "octocat", from, to)
	require.NoError(t, err)
	assert.Equal(t, 1234, n)
	assert.Equal(t, "2025-01-01T00:00:00Z", stub.requests[0].Variables["from"])
}

func mustParseTime(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return parsed
}
