// Package changelog finds the previous release tag and renders the commits
// since then as a markdown list.
package changelog

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/object"
)

const shortHashLength = 7

// Source is the repository view needed to derive a changelog.
type Source interface {
	HasTags() (bool, error)
	TagExists(name string) (bool, error)
	DescribeNearestTag() (string, error)
	CommitsSince(tag string) ([]*object.Commit, error)
}

// Entry is one commit of the changelog.
type Entry struct {
	Hash      string
	ShortHash string
	Subject   string
}

// ParseCommit converts a go-git commit to an Entry.
func ParseCommit(commit *object.Commit) Entry {
	hash := commit.Hash.String()
	subject, _ := ParseCommitMessage(commit.Message)
	return Entry{Hash: hash, ShortHash: hash[:shortHashLength], Subject: subject}
}

// ParseCommitMessage splits a commit message into its subject (first line)
// and body. Both are trimmed.
func ParseCommitMessage(fullMessage string) (string, string) {
	subject, body, _ := strings.Cut(fullMessage, "\n")
	return strings.TrimSpace(subject), strings.TrimSpace(body)
}

// TagName returns the git tag of a version.
func TagName(version string) string {
	return "v" + version
}

// LastMatchingTag returns the tag the changelog starts from: "" when the
// repository has no tags, v<oldVersion> when it exists, else the nearest
// tag reachable from HEAD.
func LastMatchingTag(src Source, oldVersion string) (string, error) {
	hasTags, err := src.HasTags()
	if err != nil {
		return "", err
	}
	if !hasTags {
		return "", nil
	}

	if oldVersion != "" {
		exists, err := src.TagExists(TagName(oldVersion))
		if err != nil {
			return "", err
		}
		if exists {
			return TagName(oldVersion), nil
		}
	}

	return src.DescribeNearestTag()
}

// FormatLine renders an entry as "- <short> <subject>". When the subject
// starts with a conventional commit type such as "feat:" it is bolded.
func FormatLine(e Entry) string {
	oneline := strings.TrimSpace(e.ShortHash + " " + e.Subject)
	fields := strings.Fields(oneline)
	if len(fields) >= 2 && len(fields[1]) > 1 && strings.HasSuffix(fields[1], ":") {
		prefixLen := strings.Index(oneline, fields[1])
		oneline = oneline[:prefixLen] + "**" + fields[1] + "**" + oneline[prefixLen+len(fields[1]):]
	}
	return "- " + oneline
}

// Render formats entries, keeping their order.
func Render(entries []Entry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, FormatLine(e))
	}
	return lines
}

// Body joins changelog lines into a release description.
func Body(lines []string) string {
	return strings.Join(lines, "\n")
}

// Derive returns the last matching tag and the changelog lines for the
// commits after it, newest first.
func Derive(src Source, oldVersion string) (string, []string, error) {
	lastTag, err := LastMatchingTag(src, oldVersion)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find last tag: %w", err)
	}

	commits, err := src.CommitsSince(lastTag)
	if err != nil {
		return "", nil, fmt.Errorf("failed to list commits: %w", err)
	}

	entries := make([]Entry, 0, len(commits))
	for _, c := range commits {
		entries = append(entries, ParseCommit(c))
	}
	return lastTag, Render(entries), nil
}
