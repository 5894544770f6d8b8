package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/apex/log"
	"github.com/kirksw/ghorg/internal/utils"
)

const DefaultBaseURL = "https://api.github.com"

// OrgClient reads a single organization and its public repositories.
// Each derived value is fetched at most once per client.
type OrgClient struct {
	name    string
	baseURL string
	fetcher utils.Fetcher

	org          *utils.Memo[OrgRecord]
	reposPayload *utils.Memo[[]RepoRecord]
}

type Option func(*OrgClient)

func WithFetcher(f utils.Fetcher) Option {
	return func(c *OrgClient) {
		c.fetcher = f
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *OrgClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func NewOrgClient(name string, opts ...Option) *OrgClient {
	c := &OrgClient{
		name:    name,
		baseURL: DefaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = utils.NewHTTPFetcher("")
	}

	c.org = utils.NewMemo(c.fetchOrg)
	c.reposPayload = utils.NewMemo(c.fetchReposPayload)

	return c
}

func (c *OrgClient) Name() string {
	return c.name
}

func (c *OrgClient) OrgURL() string {
	return fmt.Sprintf("%s/orgs/%s", c.baseURL, url.PathEscape(c.name))
}

func (c *OrgClient) Org(ctx context.Context) (OrgRecord, error) {
	return c.org.Get(ctx)
}

// PublicReposURL returns the repos_url advertised by the organization.
func (c *OrgClient) PublicReposURL(ctx context.Context) (string, error) {
	org, err := c.Org(ctx)
	if err != nil {
		return "", err
	}

	v, err := utils.AccessNestedMap(org, []string{"repos_url"})
	if err != nil {
		return "", fmt.Errorf("org %s: %w", c.name, err)
	}

	reposURL, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("org %s: repos_url is %T, want string", c.name, v)
	}

	return reposURL, nil
}

// ReposURLForLicense returns the repos URL with a license query parameter.
func (c *OrgClient) ReposURLForLicense(ctx context.Context, license string) (string, error) {
	reposURL, err := c.PublicReposURL(ctx)
	if err != nil {
		return "", err
	}
	if license == "" {
		return reposURL, nil
	}

	u, err := url.Parse(reposURL)
	if err != nil {
		return "", fmt.Errorf("invalid repos_url %q: %w", reposURL, err)
	}
	q := u.Query()
	q.Set("license", license)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (c *OrgClient) ReposPayload(ctx context.Context) ([]RepoRecord, error) {
	return c.reposPayload.Get(ctx)
}

// PublicRepos lists repository names, optionally only those carrying the
// given license key.
func (c *OrgClient) PublicRepos(ctx context.Context, license string) ([]string, error) {
	repos, err := c.ReposPayload(ctx)
	if err != nil {
		return nil, err
	}
	return FilterRepoNames(repos, license), nil
}

// HasLicense reports whether repo["license"]["key"] equals key.
func HasLicense(repo RepoRecord, key string) bool {
	if key == "" {
		return false
	}

	v, err := utils.AccessNestedMap(repo, []string{"license", "key"})
	if err != nil {
		return false
	}

	got, ok := v.(string)
	return ok && got == key
}

// FilterRepoNames keeps payload order. An empty license disables filtering.
func FilterRepoNames(repos []RepoRecord, license string) []string {
	names := make([]string, 0, len(repos))
	for _, repo := range repos {
		if license != "" && !HasLicense(repo, license) {
			continue
		}
		names = append(names, repo.Name())
	}
	return names
}

// FilterRepos is FilterRepoNames returning the records themselves.
func FilterRepos(repos []RepoRecord, license string) []RepoRecord {
	if license == "" {
		return repos
	}

	filtered := make([]RepoRecord, 0, len(repos))
	for _, repo := range repos {
		if HasLicense(repo, license) {
			filtered = append(filtered, repo)
		}
	}
	return filtered
}

func (c *OrgClient) fetchOrg(ctx context.Context) (OrgRecord, error) {
	log.WithField("org", c.name).Debug("fetching org")

	payload, err := c.fetcher.GetJSON(ctx, c.OrgURL())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch org %s: %w", c.name, err)
	}

	m, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("org %s: unexpected payload %T", c.name, payload)
	}

	return OrgRecord(m), nil
}

func (c *OrgClient) fetchReposPayload(ctx context.Context) ([]RepoRecord, error) {
	reposURL, err := c.PublicReposURL(ctx)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"org": c.name, "url": reposURL}).Debug("fetching repos")

	payload, err := c.fetcher.GetJSON(ctx, reposURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repos for %s: %w", c.name, err)
	}

	return decodeRepos(payload)
}

var errNotAList = errors.New("repos payload is not a list")

func decodeRepos(payload any) ([]RepoRecord, error) {
	items, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", errNotAList, payload)
	}

	repos := make([]RepoRecord, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("repos payload item %d is %T, want object", i, item)
		}
		repos = append(repos, RepoRecord(m))
	}

	return repos, nil
}
