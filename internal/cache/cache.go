package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/kirksw/ghorg/internal/github"
)

const CacheDir = ".cache/ghorg"
const DefaultTTL = 24 * time.Hour

var (
	ErrNotCached = errors.New("org not cached")
	ErrExpired   = errors.New("cache expired")
)

// OrgCache keeps one JSON snapshot per organization on disk.
type OrgCache struct {
	cacheDir string
	ttl      time.Duration
}

type CacheMetadata struct {
	LastRefreshed time.Time     `json:"last_refreshed"`
	TTL           time.Duration `json:"ttl"`
	RepoCount     int           `json:"repo_count"`
}

func New() *OrgCache {
	homeDir, _ := os.UserHomeDir()
	cacheDir := filepath.Join(homeDir, CacheDir)

	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		cacheDir = os.TempDir()
	}

	return NewAt(cacheDir)
}

func NewAt(dir string) *OrgCache {
	return &OrgCache{
		cacheDir: dir,
		ttl:      DefaultTTL,
	}
}

func (c *OrgCache) SetTTL(ttl time.Duration) {
	c.ttl = ttl
}

func (c *OrgCache) Dir() string {
	return c.cacheDir
}

// Get returns a snapshot only while it is fresh.
func (c *OrgCache) Get(org string) (*github.CachedOrg, error) {
	cached, err := c.GetStale(org)
	if err != nil {
		return nil, err
	}

	if c.IsExpired(org) {
		return nil, fmt.Errorf("%w for org: %s", ErrExpired, org)
	}

	return cached, nil
}

func (c *OrgCache) GetStale(org string) (*github.CachedOrg, error) {
	data, err := os.ReadFile(c.orgPath(org))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotCached, org)
		}
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	var cached github.CachedOrg
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache: %w", err)
	}

	return &cached, nil
}

func (c *OrgCache) Set(org string, record github.OrgRecord, repos []github.RepoRecord) error {
	now := time.Now()
	cached := github.CachedOrg{
		Org:       org,
		OrgRecord: record,
		Repos:     repos,
		CachedAt:  now,
		TTL:       c.ttl.String(),
	}

	data, err := json.MarshalIndent(cached, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(c.orgPath(org), data, 0644); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}

	metadata := CacheMetadata{
		LastRefreshed: now,
		TTL:           c.ttl,
		RepoCount:     len(repos),
	}

	metaData, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(c.metadataPath(org), metaData, 0644); err != nil {
		return fmt.Errorf("failed to write metadata: %w", err)
	}

	log.WithFields(log.Fields{"org": org, "repos": len(repos)}).Debug("cache written")
	return nil
}

// Refresh stores the snapshot returned by fetch.
func (c *OrgCache) Refresh(org string, fetch func() (github.OrgRecord, []github.RepoRecord, error)) error {
	record, repos, err := fetch()
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", org, err)
	}

	return c.Set(org, record, repos)
}

func (c *OrgCache) Invalidate(org string) error {
	if err := os.Remove(c.orgPath(org)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache: %w", err)
	}

	if err := os.Remove(c.metadataPath(org)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete metadata: %w", err)
	}

	return nil
}

// Search matches pattern case-insensitively against names, full names and
// descriptions of every fresh snapshot.
func (c *OrgCache) Search(pattern string) ([]github.RepoRecord, error) {
	var matches []github.RepoRecord

	orgs, err := c.ListAll()
	if err != nil {
		return nil, err
	}

	lower := strings.ToLower(pattern)
	for _, org := range orgs {
		cached, err := c.Get(org)
		if err != nil {
			continue
		}

		for _, repo := range cached.Repos {
			if strings.Contains(strings.ToLower(repo.FullName()), lower) ||
				strings.Contains(strings.ToLower(repo.Name()), lower) ||
				strings.Contains(strings.ToLower(repo.Description()), lower) {
				matches = append(matches, repo)
			}
		}
	}

	return matches, nil
}

func (c *OrgCache) ListAll() ([]string, error) {
	var orgs []string

	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		if strings.HasSuffix(entry.Name(), ".meta.json") {
			continue
		}

		orgs = append(orgs, strings.TrimSuffix(entry.Name(), ".json"))
	}

	sort.Strings(orgs)
	return orgs, nil
}

func (c *OrgCache) IsExpired(org string) bool {
	data, err := os.ReadFile(c.metadataPath(org))
	if err != nil {
		return true
	}

	var metadata CacheMetadata
	if err := json.Unmarshal(data, &metadata); err != nil {
		return true
	}

	return time.Since(metadata.LastRefreshed) > metadata.TTL
}

func (c *OrgCache) orgPath(org string) string {
	return filepath.Join(c.cacheDir, fmt.Sprintf("%s.json", org))
}

func (c *OrgCache) metadataPath(org string) string {
	return filepath.Join(c.cacheDir, fmt.Sprintf("%s.meta.json", org))
}
