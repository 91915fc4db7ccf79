// Package fixtures holds canned commits, manifests and registry output used
// across package tests.
package fixtures

import (
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Test commit hashes.
const (
	TestCommitHashFull  = "abc123def456789012345678901234567890abcd"
	TestCommitHashShort = "abc123d"
)

// Commit builds a detached go-git commit with a fixed author.
func Commit(hash, message string) *object.Commit {
	sig := object.Signature{
		Name:  "Test User",
		Email: "test@example.com",
		When:  time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC),
	}
	return &object.Commit{
		Hash:      plumbing.NewHash(hash),
		Author:    sig,
		Committer: sig,
		Message:   message,
	}
}

// ReleaseCommits returns the commits of a small release, newest first.
func ReleaseCommits() []*object.Commit {
	return []*object.Commit{
		Commit("ccc3333000000000000000000000000000000003", "docs: describe release flow\n"),
		Commit("bbb2222000000000000000000000000000000002", "fix: handle empty registry output\n\nnpm 7 prints nothing for unknown tags."),
		Commit("aaa1111000000000000000000000000000000001", "Merge branch 'feature'\n"),
	}
}
