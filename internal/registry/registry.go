// Package registry performs remote registry operations through crane.
// The release workflow itself mutates the registry through the engine
// CLI; this package only reads back what the registry reports.
package registry

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/go-containerregistry/pkg/crane"
	"github.com/google/go-containerregistry/pkg/name"

	"github.com/nandakiran-r/TestPiper/internal/log"
	"github.com/nandakiran-r/TestPiper/internal/option"
)

// ListTags returns the tags the registry reports for repo.
func ListTags(ctx context.Context, repo string, cfg option.CraneConfig) ([]string, error) {
	options := option.GenerateCraneOptions(ctx, cfg)
	return crane.ListTags(repo, options...)
}

// VerifyPushed confirms every ref is present in its remote repository.
// Refs are grouped by repository so each repository is listed once.
func VerifyPushed(ctx context.Context, refs []string, cfg option.CraneConfig) error {
	logger := logr.FromContextOrDiscard(ctx)

	wanted := map[string][]string{}
	for _, ref := range refs {
		tag, err := name.NewTag(ref)
		if err != nil {
			return fmt.Errorf("invalid image reference %s: %w", ref, err)
		}
		repo := tag.Repository.Name()
		wanted[repo] = append(wanted[repo], tag.TagStr())
	}

	for repo, tags := range wanted {
		remoteTags, err := ListTags(ctx, repo, cfg)
		if err != nil {
			return fmt.Errorf("could not list tags for %s: %w", repo, err)
		}

		logger.V(log.DBG).Info("remote tags listed", "repository", repo, "count", len(remoteTags))

		present := map[string]bool{}
		for _, t := range remoteTags {
			present[t] = true
		}

		for _, t := range tags {
			if !present[t] {
				return fmt.Errorf("tag %s not found in %s after push", t, repo)
			}
		}
	}

	return nil
}
