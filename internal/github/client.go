// Package github fetches the published marketplace index from a content
// repository so local validation sees the same identifiers the live
// marketplace does.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v80/github"

	"github.com/mkarlsen/subvet/internal/index"
)

type RepositoriesService interface {
	GetContents(ctx context.Context, owner, repo, path string, opts *gh.RepositoryContentGetOptions) (*gh.RepositoryContent, []*gh.RepositoryContent, *gh.Response, error)
}

type Client struct {
	owner        string
	repo         string
	repositories RepositoriesService
}

type authTransport struct {
	token string
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+t.token)
	return http.DefaultTransport.RoundTrip(req)
}

func New(owner, repo, token string) *Client {
	var httpClient *http.Client
	if token != "" {
		httpClient = &http.Client{
			Transport: &authTransport{
				token: token,
			},
		}
	}
	client := gh.NewClient(httpClient)
	return &Client{
		owner:        owner,
		repo:         repo,
		repositories: client.Repositories,
	}
}

// FetchIndex downloads and parses the marketplace index file at path,
// for example "index/marketplace.json" on the default branch.
func (c *Client) FetchIndex(ctx context.Context, path string) ([]index.Entry, error) {
	file, _, _, err := c.repositories.GetContents(ctx, c.owner, c.repo, path, &gh.RepositoryContentGetOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetch index from %s/%s: %w", c.owner, c.repo, err)
	}
	if file == nil {
		return nil, fmt.Errorf("fetch index from %s/%s: %s is a directory", c.owner, c.repo, path)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode index content: %w", err)
	}
	var f index.File
	if err := json.Unmarshal([]byte(content), &f); err != nil {
		return nil, fmt.Errorf("parse index %s: %w", path, err)
	}
	return f.Entries, nil
}
