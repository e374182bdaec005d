package log

import (
	"errors"
	"fmt"
	"os"
)

// ErrNoSessions is returned when the journal directory holds no sessions.
var ErrNoSessions = errors.New("no sessions found")

const undoneExt = ".undone"

type UndoResult struct {
	Operation OperationLog
	Success   bool
	Error     error
}

// UndoOperation moves a renamed file back to its original path. It never
// overwrites a file that now occupies the original path.
func UndoOperation(op OperationLog) UndoResult {
	result := UndoResult{Operation: op}

	if op.Type != OpRename {
		result.Error = fmt.Errorf("unknown operation type: %s", op.Type)
		return result
	}
	if op.DestPath == "" {
		result.Error = fmt.Errorf("cannot undo rename: destination path missing")
		return result
	}
	if _, err := os.Stat(op.DestPath); os.IsNotExist(err) {
		result.Error = fmt.Errorf("cannot undo rename: file %s not found", op.DestPath)
		return result
	}
	if _, err := os.Lstat(op.SourcePath); err == nil {
		result.Error = fmt.Errorf("cannot undo rename: original path %s already exists", op.SourcePath)
		return result
	}
	if err := os.Rename(op.DestPath, op.SourcePath); err != nil {
		result.Error = fmt.Errorf("failed to rename %s back to %s: %w", op.DestPath, op.SourcePath, err)
		return result
	}

	result.Success = true
	return result
}

// UndoSession reverses the session's successful renames, newest first.
func UndoSession(session *LogSession) (successful int, failed int, errs []error) {
	for i := len(session.Operations) - 1; i >= 0; i-- {
		op := session.Operations[i]
		if !op.Success {
			continue
		}

		result := UndoOperation(op)
		if result.Success {
			successful++
		} else {
			failed++
			if result.Error != nil {
				errs = append(errs, result.Error)
			}
		}
	}
	return successful, failed, errs
}

// FindLatestSession returns the newest session in dir and its file path.
func FindLatestSession(dir string) (*LogSession, string, error) {
	sessions, paths, err := ReadSessions(dir, 1)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil, "", ErrNoSessions
	}
	return sessions[0], paths[0], nil
}

// FindSession returns the session with the given ID.
func FindSession(dir, id string) (*LogSession, string, error) {
	sessions, paths, err := ReadSessions(dir, 0)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read sessions: %w", err)
	}
	for i, s := range sessions {
		if s.Metadata.SessionID == id {
			return s, paths[i], nil
		}
	}
	return nil, "", fmt.Errorf("session %s not found", id)
}

// MarkUndone retires a session file so it is not offered for undo again.
func MarkUndone(path string) error {
	if err := os.Rename(path, path+undoneExt); err != nil {
		return fmt.Errorf("failed to retire session %s: %w", path, err)
	}
	return nil
}
