package log

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
)

func TestJournalSession(t *testing.T) {
	dir := t.TempDir()
	j := NewJournal(dir, true)

	if err := j.Start("media-renamer", []string{"--dry-run", "/media"}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := uuid.Parse(j.SessionID()); err != nil {
		t.Errorf("SessionID() = %q is not a uuid: %v", j.SessionID(), err)
	}

	j.LogRename("/media/a.mkv", "/media/A (2001).mkv", true, nil)
	j.LogRename("/media/b.mkv", "/media/B (2002).mkv", false, os.ErrPermission)

	path, err := j.End()
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("End() wrote %q outside %q", path, dir)
	}

	session, err := ReadSession(path)
	if err != nil {
		t.Fatalf("ReadSession() error = %v", err)
	}

	wantMeta := SessionMetadata{
		CommandArgs:   []string{"media-renamer", "--dry-run", "/media"},
		TotalOps:      2,
		SuccessfulOps: 1,
		FailedOps:     1,
	}
	opts := cmpopts.IgnoreFields(SessionMetadata{}, "WorkingDir", "Timestamp", "SessionID")
	if diff := cmp.Diff(wantMeta, session.Metadata, opts); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}

	wantOps := []OperationLog{
		{Type: OpRename, SourcePath: "/media/a.mkv", DestPath: "/media/A (2001).mkv", Success: true},
		{Type: OpRename, SourcePath: "/media/b.mkv", DestPath: "/media/B (2002).mkv", Error: os.ErrPermission.Error()},
	}
	if diff := cmp.Diff(wantOps, session.Operations, cmpopts.IgnoreFields(OperationLog{}, "ID", "Timestamp")); diff != "" {
		t.Errorf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestJournalSkipsEmptySessions(t *testing.T) {
	dir := t.TempDir()
	j := NewJournal(dir, true)

	if err := j.Start("media-renamer", nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	j.LogRename("/a", "/b", false, errors.New("collision"))

	path, err := j.End()
	if err != nil || path != "" {
		t.Fatalf("End() = %q, %v, want nothing written", path, err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("journal dir has %d entries, want 0", len(entries))
	}
}

func TestJournalDisabled(t *testing.T) {
	dir := t.TempDir()
	j := NewJournal(dir, false)

	if err := j.Start("media-renamer", nil); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	j.LogRename("/a", "/b", true, nil)
	if path, err := j.End(); err != nil || path != "" {
		t.Errorf("End() = %q, %v, want nothing written", path, err)
	}
	if j.SessionID() != "" {
		t.Errorf("SessionID() = %q, want empty", j.SessionID())
	}
}

func TestReadSessionsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"first", "second", "third"} {
		s := &LogSession{
			Metadata:   SessionMetadata{SessionID: id, Timestamp: base.Add(time.Duration(i) * time.Minute)},
			Operations: []OperationLog{{Type: OpRename, Success: true}},
		}
		if _, err := writeSession(dir, s); err != nil {
			t.Fatalf("writeSession() error = %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "zz-broken.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	sessions, _, err := ReadSessions(dir, 2)
	if err != nil {
		t.Fatalf("ReadSessions() error = %v", err)
	}
	var ids []string
	for _, s := range sessions {
		ids = append(ids, s.Metadata.SessionID)
	}
	if diff := cmp.Diff([]string{"third", "second"}, ids); diff != "" {
		t.Errorf("ReadSessions() mismatch (-want +got):\n%s", diff)
	}

	missing, _, err := ReadSessions(filepath.Join(dir, "missing"), 0)
	if err != nil || len(missing) != 0 {
		t.Errorf("ReadSessions(missing) = %v, %v, want empty", missing, err)
	}
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "2020-01-01_000000.000.json")
	newPath := filepath.Join(dir, "2099-01-01_000000.000.json")
	for _, p := range []string{oldPath, newPath} {
		if err := os.WriteFile(p, []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().AddDate(0, 0, -40)
	if err := os.Chtimes(oldPath, past, past); err != nil {
		t.Fatal(err)
	}

	if err := NewJournal(dir, true).Cleanup(30); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Error("old session was not removed")
	}
	if _, err := os.Stat(newPath); err != nil {
		t.Error("recent session was removed")
	}
}
