package pipeline

import (
	"context"
	goerrors "errors"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cratepatch/pkg/cargo"
	"github.com/matzehuels/cratepatch/pkg/errors"
	"github.com/matzehuels/cratepatch/pkg/integrations"
	"github.com/matzehuels/cratepatch/pkg/integrations/crates"
	"github.com/matzehuels/cratepatch/pkg/vendor"
)

// DefaultResolveDepth bounds how far ResolveExclusions follows dependencies.
const DefaultResolveDepth = 8

// CrateFetcher looks up crate metadata. *crates.Client implements it.
type CrateFetcher interface {
	FetchCrate(ctx context.Context, crate string, refresh bool) (*crates.CrateInfo, error)
}

// ResolveExclusions extends base with the injected crate and the normal
// dependencies it pulls in from crates.io, up to maxDepth levels. Patching any
// of those would make the injected crate depend on itself.
//
// Only crates.io sources can be resolved; for git and alternate registry
// sources base is returned unchanged. The injected crate must exist; a
// transitive dependency that cannot be fetched is logged and skipped.
func ResolveExclusions(ctx context.Context, fetcher CrateFetcher, dep cargo.Dependency, base vendor.ExclusionSet, maxDepth int, logger *log.Logger) (vendor.ExclusionSet, error) {
	if logger == nil {
		logger = log.Default()
	}
	if dep.Source.Kind == cargo.SourceGit || dep.Source.Registry != "" {
		logger.Debug("exclusion resolution needs crates.io, keeping configured set", "dependency", dep.String())
		return base, nil
	}
	if maxDepth <= 0 {
		maxDepth = DefaultResolveDepth
	}

	found := vendor.NewExclusionSet(dep.Name)
	frontier := []string{dep.Name}
	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, name := range frontier {
			info, err := fetcher.FetchCrate(ctx, name, false)
			if err != nil {
				if name == dep.Name {
					return base, crateError(err, name)
				}
				if ctx.Err() != nil {
					return base, ctx.Err()
				}
				logger.Warn("could not resolve dependency", "crate", name, "err", err)
				continue
			}
			for _, d := range info.Dependencies {
				if !found.Contains(d) {
					found.Add(d)
					next = append(next, d)
				}
			}
		}
		frontier = next
	}

	logger.Debug("resolved exclusions", "crate", dep.Name, "found", found.Names())
	return base.Union(found), nil
}

func crateError(err error, name string) error {
	if goerrors.Is(err, integrations.ErrNotFound) {
		return errors.Wrap(errors.ErrCodeNotFound, err, "crate %s", name)
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "fetch crate %s", name)
}
