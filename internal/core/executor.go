package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Digital-Shane/media-renamer/internal/media"
	log "github.com/sirupsen/logrus"
)

var attrCapture = captureAttrs

// Recorder receives every rename the executor attempts. The operation
// journal implements it.
type Recorder interface {
	LogRename(src, dst string, success bool, err error)
}

// CollisionError reports a target name that is already taken.
type CollisionError struct {
	Target   string
	Existing string // the path or source that holds the target
}

func (e *CollisionError) Error() string {
	if e.Existing == e.Target {
		return fmt.Sprintf("target already exists: %s", e.Target)
	}
	return fmt.Sprintf("target %s already claimed by %s", e.Target, e.Existing)
}

// Executor performs renames. Collisions always fail: an existing file is
// never overwritten, and two sources formatting to the same target in one
// run leave the second one Failed. The check and the move are not atomic;
// the target directory is assumed to have a single writer.
type Executor struct {
	dryRun   bool
	recorder Recorder

	mu      sync.Mutex
	claimed map[string]string // target -> source
}

// NewExecutor creates an executor. recorder may be nil.
func NewExecutor(dryRun bool, recorder Recorder) *Executor {
	return &Executor{
		dryRun:   dryRun,
		recorder: recorder,
		claimed:  make(map[string]string),
	}
}

// DryRun reports whether the executor only simulates renames.
func (e *Executor) DryRun() bool { return e.dryRun }

// Execute renames src to target and reports the outcome.
func (e *Executor) Execute(src, target string) media.Outcome {
	out := media.Outcome{OriginalPath: src, ProposedPath: target}
	src, target = filepath.Clean(src), filepath.Clean(target)

	if src == target {
		out.Status = media.StatusSkipped
		return out
	}

	srcInfo, err := os.Lstat(src)
	if err != nil {
		return e.fail(out, media.ReasonFilesystem, fmt.Errorf("source unavailable: %w", err))
	}
	if !srcInfo.Mode().IsRegular() {
		return e.fail(out, media.ReasonFilesystem, fmt.Errorf("source is not a regular file: %s", src))
	}

	if err := e.claim(src, srcInfo, target); err != nil {
		return e.fail(out, media.ReasonCollision, err)
	}

	if e.dryRun {
		if err := dirWritable(filepath.Dir(target)); err != nil {
			return e.fail(out, media.ReasonFilesystem, fmt.Errorf("target directory not writable: %w", err))
		}
		if err := dirWritable(filepath.Dir(src)); err != nil {
			return e.fail(out, media.ReasonFilesystem, fmt.Errorf("source directory not writable: %w", err))
		}
		out.Status = media.StatusDryRun
		return out
	}

	attrs, err := attrCapture(src)
	if err != nil {
		log.WithField("path", src).Debugf("could not capture attributes: %v", err)
		out.Warnings = append(out.Warnings, fmt.Sprintf("attributes not captured: %v", err))
	}

	if err := moveFile(src, target); err != nil {
		e.record(src, target, err)
		return e.fail(out, media.ReasonFilesystem, err)
	}
	e.record(src, target, nil)

	if attrs != nil {
		out.Warnings = append(out.Warnings, attrs.restore(target)...)
	}
	out.FinalPath = target
	out.Status = media.StatusSuccess
	return out
}

// claim reserves target for src, failing when another file already exists
// there or an earlier file in this run claimed it.
func (e *Executor) claim(src string, srcInfo os.FileInfo, target string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if owner, ok := e.claimed[target]; ok && owner != src {
		return &CollisionError{Target: target, Existing: owner}
	}

	existing, err := os.Lstat(target)
	switch {
	case err == nil:
		// A case-only rename on a case-insensitive filesystem sees the
		// source itself at the target path.
		if !(os.SameFile(srcInfo, existing) && strings.EqualFold(src, target)) {
			return &CollisionError{Target: target, Existing: target}
		}
	case !os.IsNotExist(err):
		return fmt.Errorf("cannot inspect target: %w", err)
	}

	e.claimed[target] = src
	return nil
}

func (e *Executor) fail(out media.Outcome, reason media.Reason, err error) media.Outcome {
	out.Status = media.StatusFailed
	out.Reason = reason
	out.Detail = err.Error()
	return out
}

func (e *Executor) record(src, dst string, err error) {
	if e.recorder != nil {
		e.recorder.LogRename(src, dst, err == nil, err)
	}
}
