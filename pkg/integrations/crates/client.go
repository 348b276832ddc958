package crates

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"

	"github.com/matzehuels/cratepatch/pkg/httputil"
	"github.com/matzehuels/cratepatch/pkg/integrations"
)

// DefaultBaseURL is the crates.io API root.
const DefaultBaseURL = "https://crates.io/api/v1"

// CrateInfo holds the crates.io metadata needed to reason about a crate's
// dependency closure.
//
// Version is max_version. Dependencies lists the normal, non-optional
// dependencies of that version, sorted by name.
type CrateInfo struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Dependencies []string `json:"dependencies,omitempty"`
	Description  string   `json:"description,omitempty"`
	Repository   string   `json:"repository,omitempty"`
}

// Client provides access to the crates.io registry API.
// All methods are safe for concurrent use when the cache is nil; the file
// cache itself is not synchronized.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a crates.io client. A nil cache disables caching.
// crates.io rejects requests without a User-Agent, so one is always set.
func NewClient(cache *httputil.Cache) *Client {
	if cache != nil {
		cache = cache.Namespace("crates:")
	}
	headers := map[string]string{"User-Agent": integrations.UserAgent}
	return &Client{
		Client:  integrations.NewClient(cache, headers),
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at a different API root, e.g. a mirror.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// FetchCrate retrieves metadata for crate, including the normal dependencies
// of its latest version. refresh bypasses the cache.
//
// A crate that does not exist returns an error wrapping
// [integrations.ErrNotFound]. A failure fetching the dependency list is
// returned as an error too, since callers rely on the list being complete.
func (c *Client) FetchCrate(ctx context.Context, crate string, refresh bool) (*CrateInfo, error) {
	var info CrateInfo
	err := c.Cached(ctx, crate, refresh, &info, func() error {
		return c.fetch(ctx, crate, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, crate string, info *CrateInfo) error {
	var data crateResponse
	if err := c.Get(ctx, fmt.Sprintf("%s/crates/%s", c.baseURL, url.PathEscape(crate)), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: crate %s", err, crate)
		}
		return err
	}

	deps, err := c.fetchDeps(ctx, crate, data.Crate.MaxVersion)
	if err != nil {
		return fmt.Errorf("dependencies of %s %s: %w", crate, data.Crate.MaxVersion, err)
	}

	*info = CrateInfo{
		Name:         data.Crate.Name,
		Version:      data.Crate.MaxVersion,
		Dependencies: deps,
		Description:  data.Crate.Description,
		Repository:   data.Crate.Repository,
	}
	return nil
}

func (c *Client) fetchDeps(ctx context.Context, crate, version string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/crates/%s/%s/dependencies", c.baseURL, url.PathEscape(crate), url.PathEscape(version))

	var data depsResponse
	if err := c.Get(ctx, endpoint, &data); err != nil {
		return nil, err
	}

	var deps []string
	for _, d := range data.Dependencies {
		if d.Kind == "normal" && !d.Optional {
			deps = append(deps, d.CrateID)
		}
	}
	sort.Strings(deps)
	return deps, nil
}

type crateResponse struct {
	Crate struct {
		Name        string `json:"name"`
		MaxVersion  string `json:"max_version"`
		Description string `json:"description"`
		Repository  string `json:"repository"`
	} `json:"crate"`
}

type depsResponse struct {
	Dependencies []struct {
		CrateID  string `json:"crate_id"`
		Kind     string `json:"kind"`
		Optional bool   `json:"optional"`
	} `json:"dependencies"`
}
