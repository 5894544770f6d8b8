package github

import "time"

// OrgRecord is the decoded body of GET /orgs/{org}.
type OrgRecord map[string]any

// RepoRecord is one element of the decoded repos listing.
type RepoRecord map[string]any

func (r RepoRecord) Name() string {
	name, _ := r["name"].(string)
	return name
}

func (r RepoRecord) FullName() string {
	name, _ := r["full_name"].(string)
	return name
}

func (r RepoRecord) Description() string {
	desc, _ := r["description"].(string)
	return desc
}

// LicenseKey returns the repo's license key, or "" when it has none.
func (r RepoRecord) LicenseKey() string {
	license, ok := r["license"].(map[string]any)
	if !ok {
		return ""
	}
	key, _ := license["key"].(string)
	return key
}

type CachedOrg struct {
	Org       string       `json:"org"`
	OrgRecord OrgRecord    `json:"org_record"`
	Repos     []RepoRecord `json:"repos"`
	CachedAt  time.Time    `json:"cached_at"`
	TTL       string       `json:"ttl"`
}
