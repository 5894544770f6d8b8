package cmd

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/kirksw/ghorg/internal/cache"
	"github.com/kirksw/ghorg/internal/github"
)

func TestLoadReposWritesAndReadsCache(t *testing.T) {
	server, requests := newOrgServer(t)
	c := cache.NewAt(t.TempDir())

	repos, err := loadRepos(context.Background(), c, newTestClient(server, "acme"))
	if err != nil {
		t.Fatalf("loadRepos() error = %v", err)
	}
	if len(repos) != 2 {
		t.Fatalf("len(repos) = %d, want 2", len(repos))
	}

	// A new client has an empty memo, so only the cache can avoid requests.
	repos, err = loadRepos(context.Background(), c, newTestClient(server, "acme"))
	if err != nil {
		t.Fatalf("loadRepos() error = %v", err)
	}
	if atomic.LoadInt32(requests) != 2 {
		t.Fatalf("requests = %d, want 2", *requests)
	}

	names := github.FilterRepoNames(repos, "mit")
	if len(names) != 1 || names[0] != "rocket" {
		t.Fatalf("FilterRepoNames() = %v, want [rocket]", names)
	}
}

func TestLoadReposWithoutCache(t *testing.T) {
	server, requests := newOrgServer(t)

	for i := 0; i < 2; i++ {
		if _, err := loadRepos(context.Background(), nil, newTestClient(server, "acme")); err != nil {
			t.Fatalf("loadRepos() error = %v", err)
		}
	}
	if atomic.LoadInt32(requests) != 4 {
		t.Fatalf("requests = %d, want 4", *requests)
	}
}

func TestLoadReposUnknownOrg(t *testing.T) {
	server, _ := newOrgServer(t)

	if _, err := loadRepos(context.Background(), cache.NewAt(t.TempDir()), newTestClient(server, "nobody")); err == nil {
		t.Fatal("expected an error for an unknown org")
	}
}
