// Package diffstore produces a model.ChangeSet from git: a base..head ref
// pair (diffed directly, not via merge-base), a staged-only snapshot, or an uncommitted working
// tree diff. It is the sole producer of canonical paths (see
// Canonicalize) and the sole place hard file-count/size limits are
// enforced.
package diffstore

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/codepathfinder/prreview/internal/model"
)

// MaxFiles and MaxDiffBytes are the spec's hard limits: a ChangeSet
// exceeding either is fatal to the run, not silently truncated.
const (
	MaxFiles     = 5000
	MaxDiffBytes = 50 * 1024 * 1024
)

// LimitError reports which hard limit a ChangeSet exceeded.
type LimitError struct {
	Limit string
	Got   int
	Max   int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("diff exceeds %s limit: got %d, max %d", e.Limit, e.Got, e.Max)
}

// Mode selects a local (non-refs) diff source.
type Mode string

const (
	ModeStaged  Mode = "staged"
	ModeWorking Mode = "working"
)

// Store computes ChangeSets against one project root.
type Store struct {
	ProjectRoot string
}

// New returns a Store rooted at projectRoot.
func New(projectRoot string) *Store {
	return &Store{ProjectRoot: projectRoot}
}

// GetDiff resolves baseRef/headRef (following the merge-commit substitution
// rule) and builds a ChangeSet between them.
func (s *Store) GetDiff(ctx context.Context, baseRef, headRef string) (model.ChangeSet, error) {
	resolved, err := ResolveRefs(ctx, s.ProjectRoot, baseRef, headRef)
	if err != nil {
		return model.ChangeSet{}, err
	}

	files, err := s.diffFiles(ctx, resolved.BaseSHA, resolved.HeadSHA)
	if err != nil {
		return model.ChangeSet{}, err
	}

	cs := model.ChangeSet{
		BaseRef: baseRef, HeadRef: headRef,
		BaseSHA: resolved.BaseSHA, HeadSHA: resolved.HeadSHA, CheckSHA: resolved.CheckSHA,
		Files: files, UnifiedContextLines: 3, Source: model.SourceRefs,
	}
	return finalize(cs)
}

// GetLocalDiff builds a ChangeSet from the staged index or the uncommitted
// working tree, compared against baseRef (normally HEAD).
func (s *Store) GetLocalDiff(ctx context.Context, mode Mode, baseRef string) (model.ChangeSet, error) {
	if baseRef == "" {
		baseRef = "HEAD"
	}
	if err := ValidateRef(baseRef); err != nil {
		return model.ChangeSet{}, err
	}

	var args []string
	var source model.ChangeSource
	switch mode {
	case ModeStaged:
		args = []string{"diff", "--cached", "--numstat", "-z", "-M", baseRef}
		source = model.SourceStaged
	case ModeWorking:
		args = []string{"diff", "--numstat", "-z", "-M", baseRef}
		source = model.SourceWorking
	default:
		return model.ChangeSet{}, fmt.Errorf("unknown local diff mode %q", mode)
	}

	out, err := s.git(ctx, args...)
	if err != nil {
		return model.ChangeSet{}, fmt.Errorf("git diff failed: %w", err)
	}

	files, err := s.buildFiles(ctx, parseNumstatZ(out), baseRef, "")
	if err != nil {
		return model.ChangeSet{}, err
	}

	cs := model.ChangeSet{
		BaseRef: baseRef, HeadRef: "", Source: source, UnifiedContextLines: 3,
		Files: files,
	}
	return finalize(cs)
}

func (s *Store) diffFiles(ctx context.Context, baseSHA, headSHA string) ([]model.ChangedFile, error) {
	out, err := s.git(ctx, "diff", "--numstat", "-z", "-M", baseSHA, headSHA)
	if err != nil {
		return nil, fmt.Errorf("git diff --numstat failed: %w", err)
	}
	return s.buildFiles(ctx, parseNumstatZ(out), baseSHA, headSHA)
}

func (s *Store) buildFiles(ctx context.Context, entries []numstatEntry, baseRef, headRef string) ([]model.ChangedFile, error) {
	nameStatus, err := s.nameStatus(ctx, baseRef, headRef)
	if err != nil {
		return nil, err
	}

	files := make([]model.ChangedFile, 0, len(entries))
	for _, e := range entries {
		status := statusFor(e, nameStatus)

		cf := model.ChangedFile{
			Path: e.Path, OldPath: e.OldPath, Status: status,
			Additions: e.Additions, Deletions: e.Deletions, IsBinary: e.IsBinary,
		}

		if status != model.FileDeleted && !e.IsBinary {
			patch, err := s.patchFor(ctx, baseRef, headRef, e.Path)
			if err == nil {
				cf.Patch = patch
			}
		}
		files = append(files, cf)
	}
	return files, nil
}

// nameStatus maps canonical path -> status via `git diff --name-status -z`,
// used to distinguish added/deleted/renamed from the numstat pass, which
// only reports line counts.
func (s *Store) nameStatus(ctx context.Context, baseRef, headRef string) (map[string]model.FileStatus, error) {
	args := []string{"diff", "--name-status", "-z", "-M"}
	if headRef != "" {
		args = append(args, baseRef, headRef)
	} else {
		args = append(args, baseRef)
	}
	out, err := s.git(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("git diff --name-status failed: %w", err)
	}

	result := make(map[string]model.FileStatus)
	fields := strings.Split(out, "\x00")
	for i := 0; i < len(fields); i++ {
		code := strings.TrimSpace(fields[i])
		if code == "" {
			continue
		}
		switch {
		case strings.HasPrefix(code, "A"):
			if i+1 < len(fields) {
				result[Canonicalize(fields[i+1])] = model.FileAdded
				i++
			}
		case strings.HasPrefix(code, "D"):
			if i+1 < len(fields) {
				result[Canonicalize(fields[i+1])] = model.FileDeleted
				i++
			}
		case strings.HasPrefix(code, "R"):
			if i+2 < len(fields) {
				result[Canonicalize(fields[i+2])] = model.FileRenamed
				i += 2
			}
		case strings.HasPrefix(code, "M"), strings.HasPrefix(code, "C"):
			if i+1 < len(fields) {
				result[Canonicalize(fields[i+1])] = model.FileModified
				i++
			}
		}
	}
	return result, nil
}

func (s *Store) patchFor(ctx context.Context, baseRef, headRef, path string) (string, error) {
	if err := ValidatePath(path); err != nil {
		return "", err
	}
	args := []string{"diff", "--unified=3", "-M"}
	if headRef != "" {
		args = append(args, baseRef, headRef)
	} else {
		args = append(args, baseRef)
	}
	args = append(args, "--", path)
	return s.git(ctx, args...)
}

func (s *Store) git(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, subprocessTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = s.ProjectRoot
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git %s timed out after %s", strings.Join(args, " "), subprocessTimeout)
		}
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.String(), nil
}

// finalize enforces the hard file-count/size limits and sums totals. It is
// the single exit point every ChangeSet constructor funnels through.
func finalize(cs model.ChangeSet) (model.ChangeSet, error) {
	if len(cs.Files) > MaxFiles {
		return model.ChangeSet{}, &LimitError{Limit: "files", Got: len(cs.Files), Max: MaxFiles}
	}

	totalBytes := 0
	for _, f := range cs.Files {
		cs.TotalAdditions += f.Additions
		cs.TotalDeletions += f.Deletions
		totalBytes += len(f.Patch)
	}
	if totalBytes > MaxDiffBytes {
		return model.ChangeSet{}, &LimitError{Limit: "diff_bytes", Got: totalBytes, Max: MaxDiffBytes}
	}
	return cs, nil
}
