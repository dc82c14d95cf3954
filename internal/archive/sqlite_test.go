package archive

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"interviewd/internal/transcript"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestArchiveSessionRoundtrip(t *testing.T) {
	store := newTestStore(t)

	started := time.Date(2026, 8, 29, 9, 30, 0, 0, time.UTC)
	ended := started.Add(12 * time.Minute)
	turns := []transcript.Turn{
		{Role: transcript.RoleAI, Text: "Tell me about yourself.", Timestamp: started},
		{Role: transcript.RoleCandidate, Text: "I build backend services.", Timestamp: started.Add(time.Minute)},
		{Role: transcript.RoleAI, Text: "What was your hardest bug?", Timestamp: started.Add(2 * time.Minute)},
	}

	if err := store.ArchiveSession("sess-1", "tech", "senior", started, ended, turns); err != nil {
		t.Fatalf("archive session: %v", err)
	}

	sess, err := store.GetSession("sess-1")
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess.Industry != "tech" || sess.Level != "senior" {
		t.Errorf("unexpected profile: %q / %q", sess.Industry, sess.Level)
	}
	if sess.QuestionCount != 2 {
		t.Errorf("question count = %d, want 2", sess.QuestionCount)
	}
	if sess.AnswerCount != 1 {
		t.Errorf("answer count = %d, want 1", sess.AnswerCount)
	}
	if !sess.StartedAt.Equal(started) || !sess.EndedAt.Equal(ended) {
		t.Errorf("timestamps not preserved: %v / %v", sess.StartedAt, sess.EndedAt)
	}
	if sess.Summary == "" {
		t.Error("summary should not be empty for a non-empty transcript")
	}
}

func TestGetTurnsPreservesOrder(t *testing.T) {
	store := newTestStore(t)

	started := time.Now().UTC()
	turns := []transcript.Turn{
		{Role: transcript.RoleAI, Text: "first", Timestamp: started},
		{Role: transcript.RoleCandidate, Text: "second", Timestamp: started},
		{Role: transcript.RoleAI, Text: "third", Timestamp: started},
	}
	if err := store.ArchiveSession("sess-2", "", "", started, started, turns); err != nil {
		t.Fatalf("archive session: %v", err)
	}

	got, err := store.GetTurns("sess-2")
	if err != nil {
		t.Fatalf("get turns: %v", err)
	}
	if len(got) != len(turns) {
		t.Fatalf("got %d turns, want %d", len(got), len(turns))
	}
	for i, turn := range turns {
		if got[i].Text != turn.Text || got[i].Role != turn.Role {
			t.Errorf("turn %d = %+v, want %+v", i, got[i], turn)
		}
	}
}

func TestGetSessionsByDate(t *testing.T) {
	store := newTestStore(t)

	day1 := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)

	if err := store.ArchiveSession("old", "", "", day1, day1, nil); err != nil {
		t.Fatalf("archive session: %v", err)
	}
	if err := store.ArchiveSession("new", "", "", day2, day2, nil); err != nil {
		t.Fatalf("archive session: %v", err)
	}

	sessions, err := store.GetSessionsByDate("2026-08-29")
	if err != nil {
		t.Fatalf("get sessions by date: %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "new" {
		t.Fatalf("unexpected sessions %+v", sessions)
	}

	dates, err := store.GetDates()
	if err != nil {
		t.Fatalf("get dates: %v", err)
	}
	if len(dates) != 2 || dates[0] != "2026-08-29" || dates[1] != "2026-08-28" {
		t.Fatalf("unexpected dates %v", dates)
	}
}

func TestGetSessionMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetSession("nope")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestArchiveSessionRequiresID(t *testing.T) {
	store := newTestStore(t)

	if err := store.ArchiveSession("  ", "", "", time.Now(), time.Now(), nil); err == nil {
		t.Fatal("expected error for blank session id")
	}
}
