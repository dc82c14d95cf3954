package transcript

import (
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func TestAppendPreservesOrder(t *testing.T) {
	log := NewLog()

	for i := 0; i < 10; i++ {
		role := RoleAI
		if i%2 == 1 {
			role = RoleCandidate
		}
		log.Append(role, fmt.Sprintf("turn %d", i))
	}

	turns := log.Snapshot()
	if len(turns) != 10 {
		t.Fatalf("expected 10 turns, got %d", len(turns))
	}

	for i, turn := range turns {
		if want := fmt.Sprintf("turn %d", i); turn.Text != want {
			t.Fatalf("turn %d out of order: got %q, want %q", i, turn.Text, want)
		}
		if i > 0 && turn.Timestamp.Before(turns[i-1].Timestamp) {
			t.Fatalf("timestamp at %d decreased: %v < %v", i, turn.Timestamp, turns[i-1].Timestamp)
		}
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	log := NewLog()
	log.Append(RoleAI, "Q1")

	snap := log.Snapshot()
	log.Append(RoleCandidate, "A1")

	if len(snap) != 1 {
		t.Fatalf("snapshot grew after later append: %d turns", len(snap))
	}

	snap[0].Text = "mutated"
	if log.Snapshot()[0].Text != "Q1" {
		t.Fatal("mutating a snapshot changed the log")
	}
}

func TestConcurrentAppendLosesNothing(t *testing.T) {
	log := NewLog()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				log.Append(RoleCandidate, "x")
			}
		}()
	}
	wg.Wait()

	if got := log.Len(); got != 400 {
		t.Fatalf("expected 400 turns, got %d", got)
	}
}

func TestBuildReportCounts(t *testing.T) {
	turns := []Turn{
		{Role: RoleAI, Text: "Q1"},
		{Role: RoleCandidate, Text: "A1"},
		{Role: RoleAI, Text: "Q2"},
	}

	report := BuildReport("tech", "mid", turns)
	if report.QuestionCount != 2 || report.AnswerCount != 1 {
		t.Fatalf("wrong counts: %d questions, %d answers", report.QuestionCount, report.AnswerCount)
	}
	if report.Industry != "tech" || report.Level != "mid" {
		t.Fatalf("profile not carried into report: %+v", report)
	}
	if report.Summary != "AI: Q1 | You: A1 | AI: Q2" {
		t.Fatalf("unexpected summary %q", report.Summary)
	}
}

func TestBuildReportSummaryClampsToLastThree(t *testing.T) {
	turns := []Turn{
		{Role: RoleAI, Text: "Q1"},
		{Role: RoleCandidate, Text: "A1"},
		{Role: RoleAI, Text: "Q2"},
		{Role: RoleCandidate, Text: "A2"},
	}

	report := BuildReport("", "", turns)
	if report.Summary != "You: A1 | AI: Q2 | You: A2" {
		t.Fatalf("unexpected summary %q", report.Summary)
	}
}

func TestBuildReportEmptyTranscript(t *testing.T) {
	report := BuildReport("", "", nil)
	if report.QuestionCount != 0 || report.AnswerCount != 0 {
		t.Fatalf("expected zero counts, got %+v", report)
	}
	if report.Summary != "No conversation" {
		t.Fatalf("unexpected empty summary %q", report.Summary)
	}
}

func TestBuildReportIsPure(t *testing.T) {
	turns := []Turn{
		{Role: RoleAI, Text: "Q1"},
		{Role: RoleCandidate, Text: "A1"},
	}

	first := BuildReport("finance", "senior", turns)
	second := BuildReport("finance", "senior", turns)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("report changed between identical calls: %+v vs %+v", first, second)
	}
}
