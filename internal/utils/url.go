package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	sshPattern   = regexp.MustCompile(`^git@github\.com:([^/]+)(?:/[^/]+)?$`)
	httpPattern  = regexp.MustCompile(`^(?:https?://)?(?:www\.)?github\.com/([^/?#]+)`)
	orgPattern   = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9-]*[A-Za-z0-9])?$`)
	ownerPattern = regexp.MustCompile(`^([^/]+)/[^/]+$`)
)

// ParseOrgIdentifier accepts an organization login, an owner/repo pair, a
// github.com URL or an SSH remote and returns the organization login.
func ParseOrgIdentifier(input string) (string, error) {
	input = strings.TrimSpace(input)

	var org string
	switch {
	case strings.HasPrefix(input, "git@"):
		matches := sshPattern.FindStringSubmatch(input)
		if len(matches) != 2 {
			return "", fmt.Errorf("invalid SSH URL format: %s", input)
		}
		org = matches[1]
	case strings.Contains(input, "github.com"):
		matches := httpPattern.FindStringSubmatch(input)
		if len(matches) != 2 {
			return "", fmt.Errorf("invalid GitHub URL: %s", input)
		}
		org = matches[1]
	case strings.Contains(input, "/"):
		matches := ownerPattern.FindStringSubmatch(input)
		if len(matches) != 2 {
			return "", fmt.Errorf("invalid owner/repo: %s", input)
		}
		org = matches[1]
	default:
		org = input
	}

	if !orgPattern.MatchString(org) {
		return "", fmt.Errorf("invalid organization name: %q", org)
	}

	return org, nil
}
