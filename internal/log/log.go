package log

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type OperationType string

const (
	OpRename OperationType = "rename"
)

const sessionExt = ".json"

type OperationLog struct {
	ID         string        `json:"id"`
	Timestamp  time.Time     `json:"timestamp"`
	Type       OperationType `json:"type"`
	SourcePath string        `json:"source_path"`
	DestPath   string        `json:"dest_path,omitempty"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
}

type SessionMetadata struct {
	CommandArgs   []string  `json:"command_args"`
	WorkingDir    string    `json:"working_dir"`
	Timestamp     time.Time `json:"timestamp"`
	SessionID     string    `json:"session_id"`
	TotalOps      int       `json:"total_operations"`
	SuccessfulOps int       `json:"successful_operations"`
	FailedOps     int       `json:"failed_operations"`
}

type LogSession struct {
	Metadata   SessionMetadata `json:"metadata"`
	Operations []OperationLog  `json:"operations"`
}

// Journal records the renames applied during one run so they can be
// reviewed or undone later. A disabled journal accepts calls and does
// nothing.
type Journal struct {
	mu      sync.Mutex
	dir     string
	enabled bool
	session *LogSession
}

// NewJournal creates a journal writing sessions into dir.
func NewJournal(dir string, enabled bool) *Journal {
	return &Journal{dir: dir, enabled: enabled}
}

// DefaultDir returns ~/.media-renamer/logs.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".media-renamer", "logs"), nil
}

// Dir returns the directory sessions are written to.
func (j *Journal) Dir() string {
	return j.dir
}

// Start begins a new session.
func (j *Journal) Start(command string, args []string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.enabled {
		return nil
	}

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	j.session = &LogSession{
		Metadata: SessionMetadata{
			CommandArgs: append([]string{command}, args...),
			WorkingDir:  wd,
			Timestamp:   time.Now(),
			SessionID:   uuid.NewString(),
		},
		Operations: []OperationLog{},
	}
	return nil
}

// SessionID returns the current session's ID, or "" outside a session.
func (j *Journal) SessionID() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.session == nil {
		return ""
	}
	return j.session.Metadata.SessionID
}

// LogRename records a rename attempt.
func (j *Journal) LogRename(sourcePath, destPath string, success bool, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.enabled || j.session == nil {
		return
	}

	op := OperationLog{
		ID:         fmt.Sprintf("%s_%d", j.session.Metadata.SessionID, len(j.session.Operations)),
		Timestamp:  time.Now(),
		Type:       OpRename,
		SourcePath: sourcePath,
		DestPath:   destPath,
		Success:    success,
	}
	if err != nil {
		op.Error = err.Error()
	}
	j.session.Operations = append(j.session.Operations, op)
}

// End closes the session and writes it to disk when at least one rename
// succeeded. It returns the written path, or "" when nothing was written.
func (j *Journal) End() (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	session := j.session
	j.session = nil
	if !j.enabled || session == nil {
		return "", nil
	}

	updateStats(session)
	if session.Metadata.SuccessfulOps == 0 {
		return "", nil
	}
	return writeSession(j.dir, session)
}

// Cleanup removes sessions older than retentionDays.
func (j *Journal) Cleanup(retentionDays int) error {
	if !j.enabled || retentionDays <= 0 {
		return nil
	}
	return cleanupOldLogs(j.dir, retentionDays)
}

func updateStats(session *LogSession) {
	successful := 0
	failed := 0
	for _, op := range session.Operations {
		if op.Success {
			successful++
		} else {
			failed++
		}
	}
	session.Metadata.TotalOps = len(session.Operations)
	session.Metadata.SuccessfulOps = successful
	session.Metadata.FailedOps = failed
}

func sessionFileName(t time.Time) string {
	return fmt.Sprintf("%s.%03d%s", t.Format("2006-01-02_150405"), t.Nanosecond()/1000000, sessionExt)
}

func writeSession(dir string, session *LogSession) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}

	logPath := filepath.Join(dir, sessionFileName(session.Metadata.Timestamp))
	if err := os.WriteFile(logPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write log file: %w", err)
	}
	return logPath, nil
}

func ReadSession(logPath string) (*LogSession, error) {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	var session LogSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// sessionFiles lists session files in dir, newest first.
func sessionFiles(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*"+sessionExt))
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(files)))
	return files, nil
}

// ReadSessions returns up to limit sessions from dir, newest first, with
// the file each was read from. Unreadable files are skipped.
func ReadSessions(dir string, limit int) ([]*LogSession, []string, error) {
	files, err := sessionFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	sessions := make([]*LogSession, 0, len(files))
	paths := make([]string, 0, len(files))
	for _, file := range files {
		if limit > 0 && len(sessions) >= limit {
			break
		}
		session, err := ReadSession(file)
		if err != nil {
			continue
		}
		sessions = append(sessions, session)
		paths = append(paths, file)
	}
	return sessions, paths, nil
}

func cleanupOldLogs(dir string, retentionDays int) error {
	files, err := sessionFiles(dir)
	if err != nil {
		return err
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	var failed []string
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(file); err != nil {
				failed = append(failed, filepath.Base(file))
			}
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to remove old log files: %s", strings.Join(failed, ", "))
	}
	return nil
}
