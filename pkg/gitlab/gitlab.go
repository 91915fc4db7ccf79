// Package gitlab looks up projects and creates releases through the GitLab
// REST API.
package gitlab

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/sgaunet/auto-release/internal/security"
	"github.com/sgaunet/bullets"
	gitlab "gitlab.com/gitlab-org/api/client-go"
)

const (
	// PrivateTokenHeader authenticates personal access tokens.
	PrivateTokenHeader = "PRIVATE-TOKEN"
	// JobTokenHeader authenticates CI job tokens.
	JobTokenHeader = "JOB-TOKEN"
)

var (
	errTokenRequired   = errors.New("GitLab token is required")
	errProjectNotFound = errors.New("project not found")
	errMissingTagName  = errors.New("failed to create release")

	// ErrTokenRequired is returned when no GitLab token is available.
	ErrTokenRequired = errTokenRequired
	// ErrProjectNotFound is returned when the project path is unknown.
	ErrProjectNotFound = errProjectNotFound
	// ErrReleaseNotCreated is returned when the API response does not
	// acknowledge the release with its tag name.
	ErrReleaseNotCreated = errMissingTagName
)

// Options configures a Client.
type Options struct {
	// BaseURL is the GitLab instance root, e.g. https://gitlab.com.
	BaseURL string
	Token   security.SecureToken
	// HeaderName selects PrivateTokenHeader or JobTokenHeader.
	HeaderName string
	// Transport overrides the HTTP transport.
	Transport http.RoundTripper
}

// Client represents a GitLab API client wrapper.
type Client struct {
	client  *gitlab.Client
	capture *captureTransport
	log     *bullets.Logger
}

// ReleaseParams describes a release to create.
type ReleaseParams struct {
	TagName     string
	Name        string
	Description string
	Ref         string
}

// NewClient creates a GitLab client. Retries are disabled.
func NewClient(opts Options) (*Client, error) {
	if opts.Token.IsEmpty() {
		return nil, errTokenRequired
	}

	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	capture := &captureTransport{next: base}

	clientOpts := []gitlab.ClientOptionFunc{
		gitlab.WithHTTPClient(&http.Client{Transport: capture}),
		gitlab.WithoutRetries(),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, gitlab.WithBaseURL(opts.BaseURL))
	}

	var (
		client *gitlab.Client
		err    error
	)
	if opts.HeaderName == JobTokenHeader {
		client, err = gitlab.NewJobClient(opts.Token.Value(), clientOpts...)
	} else {
		client, err = gitlab.NewClient(opts.Token.Value(), clientOpts...)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create GitLab client: %w", err)
	}

	return &Client{client: client, capture: capture, log: bullets.New(io.Discard)}, nil
}

// SetLogger sets the logger for the GitLab client.
func (c *Client) SetLogger(logger *bullets.Logger) {
	c.log = logger
}

// BaseURL returns the API root, including /api/v4/.
func (c *Client) BaseURL() string {
	return c.client.BaseURL().String()
}

// ProjectID looks up the numeric ID of a project path such as group/project.
func (c *Client) ProjectID(ctx context.Context, path string) (string, error) {
	c.log.Debug("Looking up GitLab project: " + path)

	project, resp, err := c.client.Projects.GetProject(path, nil, gitlab.WithContext(ctx))
	if resp != nil && resp.StatusCode == http.StatusNotFound {
		return "", errProjectNotFound
	}
	if err != nil {
		return "", security.SanitizeError(fmt.Errorf("failed to get project information: %w", err))
	}
	if project == nil || project.ID == 0 {
		return "", errProjectNotFound
	}

	id := strconv.FormatInt(int64(project.ID), 10)
	c.log.Debug("GitLab project ID: " + id)
	return id, nil
}

// NewCreateReleaseOptions converts params to the API request body.
func NewCreateReleaseOptions(p ReleaseParams) *gitlab.CreateReleaseOptions {
	opts := &gitlab.CreateReleaseOptions{
		Name:        gitlab.Ptr(p.Name),
		TagName:     gitlab.Ptr(p.TagName),
		Description: gitlab.Ptr(p.Description),
	}
	if p.Ref != "" {
		opts.Ref = gitlab.Ptr(p.Ref)
	}
	return opts
}

// RequestBody renders the JSON body CreateRelease sends.
func RequestBody(p ReleaseParams) (string, error) {
	data, err := json.MarshalIndent(NewCreateReleaseOptions(p), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode release: %w", err)
	}
	return string(data), nil
}

// CreateRelease creates a release in the project. A response without the
// tag name is a failure whatever its status code.
func (c *Client) CreateRelease(ctx context.Context, projectID string, p ReleaseParams) (*gitlab.Release, error) {
	c.log.Debug(fmt.Sprintf("Creating GitLab release %s in project %s", p.TagName, projectID))

	release, _, err := c.client.Releases.CreateRelease(projectID, NewCreateReleaseOptions(p), gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errMissingTagName, security.SanitizeError(err))
	}
	if release == nil || release.TagName == "" {
		return nil, errMissingTagName
	}

	c.log.Debug("GitLab release created: " + release.TagName)
	return release, nil
}

// LastResponseBody returns the raw body of the last API response.
func (c *Client) LastResponseBody() string {
	return c.capture.last()
}
