package github

import (
	"context"
	"errors"
	"testing"

	gh "github.com/google/go-github/v80/github"
)

type fakeRepositories struct {
	file *gh.RepositoryContent
	dir  []*gh.RepositoryContent
	err  error
	path string
}

func (f *fakeRepositories) GetContents(_ context.Context, _, _, path string, _ *gh.RepositoryContentGetOptions) (*gh.RepositoryContent, []*gh.RepositoryContent, *gh.Response, error) {
	f.path = path
	return f.file, f.dir, nil, f.err
}

func TestFetchIndexParsesEntries(t *testing.T) {
	payload := `{"version":"1","entries":[{"identifier":"code-reviewer","name":"Code Reviewer"},{"identifier":"travel-guide","name":"Travel Guide"}]}`
	fake := &fakeRepositories{file: &gh.RepositoryContent{Content: gh.Ptr(payload)}}
	client := &Client{owner: "acme", repo: "library", repositories: fake}

	entries, err := client.FetchIndex(context.Background(), "index/marketplace.json")
	if err != nil {
		t.Fatal(err)
	}
	if fake.path != "index/marketplace.json" {
		t.Fatalf("unexpected path: %s", fake.path)
	}
	if len(entries) != 2 || entries[0].Identifier != "code-reviewer" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestFetchIndexRejectsDirectory(t *testing.T) {
	fake := &fakeRepositories{dir: []*gh.RepositoryContent{{}}}
	client := &Client{owner: "acme", repo: "library", repositories: fake}

	if _, err := client.FetchIndex(context.Background(), "index"); err == nil {
		t.Fatal("expected an error for a directory path")
	}
}

func TestFetchIndexWrapsAPIError(t *testing.T) {
	apiErr := errors.New("boom")
	fake := &fakeRepositories{err: apiErr}
	client := &Client{owner: "acme", repo: "library", repositories: fake}

	if _, err := client.FetchIndex(context.Background(), "index/marketplace.json"); !errors.Is(err, apiErr) {
		t.Fatalf("expected wrapped api error, got %v", err)
	}
}

func TestFetchIndexRejectsMalformedJSON(t *testing.T) {
	fake := &fakeRepositories{file: &gh.RepositoryContent{Content: gh.Ptr("not json")}}
	client := &Client{owner: "acme", repo: "library", repositories: fake}

	if _, err := client.FetchIndex(context.Background(), "index/marketplace.json"); err == nil {
		t.Fatal("expected a parse error")
	}
}
