package overlay

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/sourcegraph/conc"
)

// Plan is what Install/Upgrade would do, without making any filesystem
// change — the result of a --dry-run.
type Plan struct {
	Base          ResolvedRelease
	Extension     *ResolvedRelease
	CompatWarning string
}

// Result is the outcome of a completed Install or Upgrade.
type Result struct {
	Manifest      Manifest
	Entries       []EntryOutcome
	CompatWarning string
}

// fetched holds one source's resolved release, downloaded archive path, and
// digest — the unit of work done concurrently for base and extension.
type fetched struct {
	release ResolvedRelease
	archive string
	digest  string
	err     error
}

// resolveAndDownload runs Resolve then Download for src, reporting progress
// on sp if non-nil.
func resolveAndDownload(ctx context.Context, src Source, sp *spinner.Spinner, label string) fetched {
	if sp != nil {
		sp.Suffix = fmt.Sprintf(" resolving %s...", label)
	}
	rel, err := Resolve(src)
	if err != nil {
		return fetched{err: err}
	}

	if sp != nil {
		sp.Suffix = fmt.Sprintf(" downloading %s (%s)...", label, rel.Tag)
	}
	archivePath, digest, err := Download(ctx, rel)
	if err != nil {
		return fetched{err: err}
	}

	return fetched{release: rel, archive: archivePath, digest: digest}
}

// fetchSources resolves and downloads base and (if present) extension
// concurrently, using sourcegraph/conc's structured WaitGroup so a panic in
// either fetch propagates instead of being silently dropped.
func fetchSources(ctx context.Context, base Source, extension *Source, sp *spinner.Spinner) (baseFetched fetched, extFetched *fetched) {
	var wg conc.WaitGroup

	wg.Go(func() {
		baseFetched = resolveAndDownload(ctx, base, sp, "base")
	})
	if extension != nil {
		var ext fetched
		wg.Go(func() {
			ext = resolveAndDownload(ctx, *extension, sp, "extension")
		})
		wg.Wait()
		extFetched = &ext
		return baseFetched, extFetched
	}

	wg.Wait()
	return baseFetched, nil
}

// Install runs the full resolve/download/extract/merge pipeline into
// projectRoot.
func Install(ctx context.Context, projectRoot string, base Source, extension *Source, showProgress bool) (Result, error) {
	var sp *spinner.Spinner
	if showProgress {
		sp = spinner.New(spinner.CharSets[11], 100*time.Millisecond)
		sp.Start()
		defer sp.Stop()
	}

	baseFetched, extFetched := fetchSources(ctx, base, extension, sp)
	if baseFetched.err != nil {
		return Result{}, fmt.Errorf("DOWNLOAD_FAILED: %w", baseFetched.err)
	}
	if extFetched != nil && extFetched.err != nil {
		return Result{}, fmt.Errorf("DOWNLOAD_FAILED: %w", extFetched.err)
	}
	defer os.Remove(baseFetched.archive)
	if extFetched != nil {
		defer os.Remove(extFetched.archive)
	}

	stagingParent, err := os.MkdirTemp("", "flowspec-overlay-staging-*")
	if err != nil {
		return Result{}, fmt.Errorf("EXTRACT_FAILED: %w", err)
	}
	defer os.RemoveAll(stagingParent)

	if sp != nil {
		sp.Suffix = " extracting base..."
	}
	baseStaging, err := Extract(baseFetched.archive, stagingParent, "base")
	if err != nil {
		return Result{}, err
	}

	var extStaging string
	var compatWarning string
	if extFetched != nil {
		if sp != nil {
			sp.Suffix = " extracting extension..."
		}
		extStaging, err = Extract(extFetched.archive, stagingParent, "extension")
		if err != nil {
			return Result{}, err
		}

		compat, err := ReadCompatibility(extStaging)
		if err != nil {
			return Result{}, err
		}
		compatWarning = compat.CheckRange(baseFetched.release.Tag)
	}

	// Snapshot P before the first write so a failure partway through the
	// merge can be rolled back.
	snapshotDir, err := os.MkdirTemp("", "flowspec-overlay-snapshot-*")
	if err != nil {
		return Result{}, fmt.Errorf("EXTRACT_FAILED: %w", err)
	}
	defer os.RemoveAll(snapshotDir)
	if err := Snapshot(projectRoot, snapshotDir); err != nil {
		return Result{}, fmt.Errorf("EXTRACT_FAILED: snapshotting %s: %w", projectRoot, err)
	}

	if sp != nil {
		sp.Suffix = " merging..."
	}
	entries, err := mergeAll(projectRoot, baseStaging, extStaging)
	if err != nil {
		if restoreErr := Restore(snapshotDir, projectRoot); restoreErr != nil {
			return Result{}, fmt.Errorf("merge failed (%w) and restore failed (%v)", err, restoreErr)
		}
		return Result{}, err
	}

	m := Manifest{
		Base: ReleaseRecord{
			Owner:        base.Owner,
			Repo:         base.Repo,
			Tag:          baseFetched.release.Tag,
			DigestSha256: baseFetched.digest,
		},
		InstalledAtUTC: time.Now().UTC().Format(time.RFC3339),
		EngineVersion:  EngineVersion,
		Entries:        entries,
	}
	if extFetched != nil {
		m.Extension = &ReleaseRecord{
			Owner:        extension.Owner,
			Repo:         extension.Repo,
			Tag:          extFetched.release.Tag,
			DigestSha256: extFetched.digest,
		}
	}

	if err := WriteManifest(projectRoot, m); err != nil {
		return Result{}, err
	}

	return Result{Manifest: m, Entries: entries, CompatWarning: compatWarning}, nil
}

func mergeAll(projectRoot, baseStaging, extStaging string) ([]EntryOutcome, error) {
	var all []EntryOutcome

	baseEntries, err := Merge(baseStaging, projectRoot, "base")
	if err != nil {
		return nil, err
	}
	all = append(all, baseEntries...)

	if extStaging != "" {
		extEntries, err := Merge(extStaging, projectRoot, "extension")
		if err != nil {
			return nil, err
		}
		all = append(all, extEntries...)
	}

	return all, nil
}

// DryRun performs steps 1-3 (resolve, download, extract) without merging,
// and reports the compatibility warning that Install would also see.
func DryRun(ctx context.Context, base Source, extension *Source) (Plan, error) {
	baseFetched, extFetched := fetchSources(ctx, base, extension, nil)
	if baseFetched.err != nil {
		return Plan{}, fmt.Errorf("DOWNLOAD_FAILED: %w", baseFetched.err)
	}
	if extFetched != nil && extFetched.err != nil {
		return Plan{}, fmt.Errorf("DOWNLOAD_FAILED: %w", extFetched.err)
	}
	defer os.Remove(baseFetched.archive)
	if extFetched != nil {
		defer os.Remove(extFetched.archive)
	}

	stagingParent, err := os.MkdirTemp("", "flowspec-overlay-dryrun-*")
	if err != nil {
		return Plan{}, fmt.Errorf("EXTRACT_FAILED: %w", err)
	}
	defer os.RemoveAll(stagingParent)

	if _, err := Extract(baseFetched.archive, stagingParent, "base"); err != nil {
		return Plan{}, err
	}

	plan := Plan{Base: baseFetched.release}
	if extFetched != nil {
		extStaging, err := Extract(extFetched.archive, stagingParent, "extension")
		if err != nil {
			return Plan{}, err
		}
		compat, err := ReadCompatibility(extStaging)
		if err != nil {
			return Plan{}, err
		}
		plan.Extension = &extFetched.release
		plan.CompatWarning = compat.CheckRange(baseFetched.release.Tag)
	}

	return plan, nil
}

// Upgrade re-runs the two-stage merge against projectRoot using new
// versions, snapshotting the existing tree to .specify-backup/<timestamp>/
// first.
func Upgrade(ctx context.Context, projectRoot string, base Source, extension *Source, showProgress bool) (Result, error) {
	prior, err := ReadManifest(projectRoot)
	if err != nil {
		return Result{}, fmt.Errorf("upgrade requires an existing %s: %w", ManifestFileName, err)
	}
	_ = prior

	backupDir := filepath.Join(projectRoot, ".specify-backup", time.Now().UTC().Format("20060102T150405Z"))
	if err := Snapshot(projectRoot, backupDir); err != nil {
		return Result{}, fmt.Errorf("backing up %s: %w", projectRoot, err)
	}

	return Install(ctx, projectRoot, base, extension, showProgress)
}
