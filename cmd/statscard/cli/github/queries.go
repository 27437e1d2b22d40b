package github

// GraphQL documents sent to the GitHub API. Page sizes match what the
// API tolerates without tripping secondary rate limits: repository
// listings with commit totals at 60, everything else at 100.

const userQuery = `
query($login: String!) {
    user(login: $login) {
        id
        createdAt
    }
}`

const followersQuery = `
query($login: String!) {
    user(login: $login) {
        followers {
            totalCount
        }
    }
}`

const reposStarsQuery = `
query($affiliations: [RepositoryAffiliation], $login: String!, $cursor: String) {
    user(login: $login) {
        repositories(first: 100, after: $cursor, ownerAffiliations: $affiliations) {
            totalCount
            edges {
                node {
                    ... on Repository {
                        nameWithOwner
                        stargazers {
                            totalCount
                        }
                    }
                }
            }
            pageInfo {
                endCursor
                hasNextPage
            }
        }
    }
}`

const contributionsQuery = `
query($from: DateTime!, $to: DateTime!, $login: String!) {
    user(login: $login) {
        contributionsCollection(from: $from, to: $to) {
            contributionCalendar {
                totalContributions
            }
        }
    }
}`

const repoListingQuery = `
query($affiliations: [RepositoryAffiliation], $login: String!, $cursor: String) {
    user(login: $login) {
        repositories(first: 60, after: $cursor, ownerAffiliations: $affiliations) {
            edges {
                node {
                    ... on Repository {
                        nameWithOwner
                        defaultBranchRef {
                            target {
                                ... on Commit {
                                    history {
                                        totalCount
                                    }
                                }
                            }
                        }
                    }
                }
            }
            pageInfo {
                endCursor
                hasNextPage
            }
        }
    }
}`

const historyQuery = `
query($name: String!, $owner: String!, $cursor: String) {
    repository(name: $name, owner: $owner) {
        defaultBranchRef {
            target {
                ... on Commit {
                    history(first: 100, after: $cursor) {
                        totalCount
                        edges {
                            node {
                                ... on Commit {
                                    additions
                                    deletions
                                    author {
                                        user {
                                            id
                                        }
                                    }
                                }
                            }
                        }
                        pageInfo {
                            endCursor
                            hasNextPage
                        }
                    }
                }
            }
        }
    }
}`
