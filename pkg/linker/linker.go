package linker

import (
	"context"
	"sort"
	"sync"

	"github.com/arthur-debert/monolink/pkg/errors"
	"github.com/arthur-debert/monolink/pkg/logging"
	"github.com/arthur-debert/monolink/pkg/manifest"
	"github.com/arthur-debert/monolink/pkg/paths"
	"github.com/arthur-debert/monolink/pkg/types"
)

// Strategy links one project's dependency tree. Implementations must be
// safe for concurrent use: projects are linked in parallel.
type Strategy interface {
	// Name identifies the strategy in logs and errors.
	Name() string

	// LinkProject builds and materializes the dependency tree for one
	// local project, returning the manifest entry recording which
	// dependency names were linked to sibling projects.
	LinkProject(ctx context.Context, project *types.ProjectDescriptor) (types.LinkManifestEntry, error)
}

// DefaultConcurrency bounds parallel project linking when the
// configuration does not say otherwise.
const DefaultConcurrency = 4

// Linker runs a strategy over every workspace project and persists the
// link manifest once the whole run succeeded.
type Linker struct {
	fs          types.FS
	layout      paths.Layout
	strategy    Strategy
	concurrency int
}

// New creates a Linker. concurrency <= 0 selects DefaultConcurrency.
func New(fs types.FS, layout paths.Layout, strategy Strategy, concurrency int) *Linker {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Linker{
		fs:          fs,
		layout:      layout,
		strategy:    strategy,
		concurrency: concurrency,
	}
}

// Run links every project in the workspace, bounded by the concurrency
// limit. Any project failure cancels the remaining queue and suppresses
// the manifest write; links already created stay in place since linking
// is per-project idempotent and safe to resume.
func (l *Linker) Run(ctx context.Context, ws *manifest.Workspace) (*types.LinkManifest, error) {
	logger := logging.GetLogger("linker")
	done := logging.LogOperationStart(logger, "link workspace")
	defer done()

	if prior, err := manifest.ReadLinkManifest(l.fs, l.layout.LinkManifestPath()); err == nil && prior != nil {
		logger.Debug().
			Int("projects", len(prior.LocalLinks)).
			Msg("previous link manifest found, relinking")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		entries []types.LinkManifestEntry
		funErr  error
	)
	sem := make(chan struct{}, l.concurrency)

	for _, project := range ws.Projects {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(project *types.ProjectDescriptor) {
			defer wg.Done()
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}
			entry, err := l.strategy.LinkProject(ctx, project)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				logger.Error().
					Err(err).
					Str("project", project.Name).
					Str("strategy", l.strategy.Name()).
					Msg("project linking failed")
				if funErr == nil {
					funErr = err
				}
				cancel()
				return
			}
			entries = append(entries, entry)
			logger.Info().
				Str("project", project.Name).
				Int("localLinks", len(entry.LocalLinks)).
				Msg("project linked")
		}(project)
	}
	wg.Wait()

	if funErr != nil {
		return nil, funErr
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "linking canceled")
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Project < entries[j].Project })
	result := types.NewLinkManifest()
	for _, entry := range entries {
		result.AddEntry(entry)
	}

	if err := manifest.WriteLinkManifest(l.fs, l.layout.LinkManifestPath(), result); err != nil {
		return nil, err
	}
	logger.Info().
		Int("projects", len(entries)).
		Str("manifest", l.layout.LinkManifestPath()).
		Msg("link manifest written")

	return result, nil
}
