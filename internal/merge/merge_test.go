package merge

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/cadence/internal/models"
)

var base = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

func taskPair(t *testing.T) (models.Task, models.Task) {
	t.Helper()
	id := uuid.New()
	local := models.Task{
		ID:        id,
		Name:      "Water plants",
		CreatedAt: base.Add(-24 * time.Hour),
		UpdatedAt: base,
	}
	remote := local
	return local, remote
}

func TestTasks_IDMismatch(t *testing.T) {
	local, remote := taskPair(t)
	remote.ID = uuid.New()

	if _, _, err := Tasks(local, remote); err == nil {
		t.Error("expected an error for mismatched ids")
	}
}

func TestTasks_EmptyLocalAdoptsRemote(t *testing.T) {
	id := uuid.New()
	local := models.Task{ID: id, UpdatedAt: base.Add(time.Hour)}
	remote := models.Task{
		ID:        id,
		Name:      "Stretch",
		Notes:     "10 minutes",
		Tags:      []string{"health"},
		UpdatedAt: base,
	}

	merged, outcome, err := Tasks(local, remote)
	if err != nil {
		t.Fatalf("Tasks failed: %v", err)
	}
	if outcome != OutcomeAdoptedRemote {
		t.Errorf("outcome = %v, want adopted_remote", outcome)
	}
	if !reflect.DeepEqual(merged, remote) {
		t.Errorf("expected remote adopted wholesale, got %+v", merged)
	}
}

func TestTasks_TimestampDominance(t *testing.T) {
	local, remote := taskPair(t)
	local.Name = "Water plants twice"
	local.UpdatedAt = base.Add(10 * time.Minute)
	remote.Name = "Water the plants"
	remote.UpdatedAt = base

	merged, outcome, err := Tasks(local, remote)
	if err != nil {
		t.Fatalf("Tasks failed: %v", err)
	}
	if outcome != OutcomeLocalWon {
		t.Errorf("outcome = %v, want local_won", outcome)
	}
	if merged.Name != "Water plants twice" {
		t.Errorf("newer side's name should win, got %q", merged.Name)
	}
	if !merged.UpdatedAt.Equal(local.UpdatedAt) {
		t.Errorf("merged UpdatedAt = %v, want max of both sides", merged.UpdatedAt)
	}
}

func TestTasks_DominanceIsCommutativeOnOutcome(t *testing.T) {
	local, remote := taskPair(t)
	local.Name = "Newer"
	local.Notes = "kept"
	local.UpdatedAt = base.Add(10 * time.Minute)
	remote.Name = "Older"
	remote.Completions = map[string]models.CompletionRecord{
		"2024-01-09": {Day: "2024-01-09", IsDone: true},
	}

	ab, _, err := Tasks(local, remote)
	if err != nil {
		t.Fatalf("Tasks failed: %v", err)
	}
	ba, _, err := Tasks(remote, local)
	if err != nil {
		t.Fatalf("Tasks failed: %v", err)
	}

	if !reflect.DeepEqual(ab, ba) {
		t.Errorf("dominance merge not commutative:\n ab=%+v\n ba=%+v", ab, ba)
	}
	if ab.Name != "Newer" {
		t.Errorf("same winner expected regardless of order, got %q", ab.Name)
	}
	// The loser's ledger day is still carried over.
	if _, ok := ab.Completions["2024-01-09"]; !ok {
		t.Error("expected older side's ledger day to be carried over")
	}
}

func TestTasks_Idempotent(t *testing.T) {
	local, remote := taskPair(t)
	local.Tags = []string{"home"}
	remote.Tags = []string{"garden"}
	remote.UpdatedAt = base.Add(30 * time.Second)

	once, _, err := Tasks(local, remote)
	if err != nil {
		t.Fatalf("Tasks failed: %v", err)
	}
	twice, _, err := Tasks(once, remote)
	if err != nil {
		t.Fatalf("Tasks failed: %v", err)
	}

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("redelivery of the same remote changed the record:\n once=%+v\n twice=%+v", once, twice)
	}
}

func TestTasks_IdempotentAfterDominance(t *testing.T) {
	// The winner's collections arrive unsorted; redelivery lands on the
	// fieldwise path, which normalizes. The dominance result must already be
	// in that form or the second merge produces a different record.
	sub1 := uuid.MustParse("ffffffff-0000-0000-0000-000000000000")
	sub2 := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	local, remote := taskPair(t)
	local.Tags = []string{"home"}
	remote.Name = "Newer"
	remote.Tags = []string{"garden", "chores", "home"}
	remote.Completions = map[string]models.CompletionRecord{
		"2024-01-09": {Day: "2024-01-09", IsDone: true, CompletedSubitems: []uuid.UUID{sub1, sub2}},
	}
	remote.UpdatedAt = base.Add(10 * time.Minute)

	once, outcome, err := Tasks(local, remote)
	if err != nil {
		t.Fatalf("Tasks failed: %v", err)
	}
	if outcome != OutcomeRemoteWon {
		t.Fatalf("outcome = %v, want remote_won", outcome)
	}
	twice, _, err := Tasks(once, remote)
	if err != nil {
		t.Fatalf("Tasks failed: %v", err)
	}

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("redelivery after a dominance merge changed the record:\n once=%+v\n twice=%+v", once, twice)
	}
	if !reflect.DeepEqual(once.Tags, []string{"chores", "garden", "home"}) {
		t.Errorf("dominance merge should normalize tags, got %v", once.Tags)
	}
	if got := once.Completions["2024-01-09"].CompletedSubitems; !reflect.DeepEqual(got, []uuid.UUID{sub2, sub1}) {
		t.Errorf("dominance merge should normalize subitem ids, got %v", got)
	}
}

func TestTasks_NearSimultaneousFieldMerge(t *testing.T) {
	local, remote := taskPair(t)
	local.Notes = "local notes"
	local.Tags = []string{"work"}
	remote.Tags = []string{"urgent"}
	remote.UpdatedAt = base.Add(45 * time.Second) // within epsilon

	merged, outcome, err := Tasks(local, remote)
	if err != nil {
		t.Fatalf("Tasks failed: %v", err)
	}
	if outcome != OutcomeFieldMerged {
		t.Errorf("outcome = %v, want field_merged", outcome)
	}
	// Union, each tag exactly once, deterministic order.
	if !reflect.DeepEqual(merged.Tags, []string{"urgent", "work"}) {
		t.Errorf("tags = %v, want [urgent work]", merged.Tags)
	}
	// Non-empty side wins for scalars.
	if merged.Notes != "local notes" {
		t.Errorf("notes = %q, want non-empty local side", merged.Notes)
	}
	if !merged.UpdatedAt.Equal(remote.UpdatedAt) {
		t.Errorf("merged UpdatedAt = %v, want max of both sides", merged.UpdatedAt)
	}
}

func TestTasks_ScalarTieBreakRemoteWins(t *testing.T) {
	local, remote := taskPair(t)
	local.Name = "Feed cat"
	remote.Name = "Feed the cat"
	remote.UpdatedAt = base.Add(10 * time.Second)

	merged, _, err := Tasks(local, remote)
	if err != nil {
		t.Fatalf("Tasks failed: %v", err)
	}
	if merged.Name != "Feed the cat" {
		t.Errorf("name = %q, want remote tie-break winner", merged.Name)
	}
}

func TestTasks_FieldwiseCompletionMerge(t *testing.T) {
	local, remote := taskPair(t)
	subA, subB := uuid.New(), uuid.New()
	local.Completions = map[string]models.CompletionRecord{
		"2024-01-09": {Day: "2024-01-09", CompletedSubitems: []uuid.UUID{subA}},
		"2024-01-08": {Day: "2024-01-08", IsDone: true},
	}
	remote.Completions = map[string]models.CompletionRecord{
		"2024-01-09": {Day: "2024-01-09", IsDone: true, CompletedSubitems: []uuid.UUID{subB}},
		"2024-01-07": {Day: "2024-01-07", IsDone: true},
	}
	remote.UpdatedAt = base.Add(5 * time.Second)

	merged, _, err := Tasks(local, remote)
	if err != nil {
		t.Fatalf("Tasks failed: %v", err)
	}

	if len(merged.Completions) != 3 {
		t.Fatalf("expected 3 merged ledger days, got %d", len(merged.Completions))
	}
	shared := merged.Completions["2024-01-09"]
	if !shared.IsDone {
		t.Error("remote done flag should win on disagreement")
	}
	if len(shared.CompletedSubitems) != 2 {
		t.Errorf("expected subitem union of 2, got %v", shared.CompletedSubitems)
	}
	if !merged.Completions["2024-01-08"].IsDone || !merged.Completions["2024-01-07"].IsDone {
		t.Error("days present on only one side must carry over unchanged")
	}
}

func TestEntries_TagUnionWithinSameMinute(t *testing.T) {
	// Two devices edit the same entry's tags offline within the same minute:
	// device A adds "work", device B adds "urgent".
	id := uuid.New()
	a := models.JournalEntry{
		ID: id, Day: "2024-01-10", Text: "standup notes",
		Tags: []string{"meetings", "work"}, UpdatedAt: base,
	}
	b := models.JournalEntry{
		ID: id, Day: "2024-01-10", Text: "standup notes",
		Tags: []string{"meetings", "urgent"}, UpdatedAt: base.Add(40 * time.Second),
	}

	merged, _, err := Entries(a, b)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if !reflect.DeepEqual(merged.Tags, []string{"meetings", "urgent", "work"}) {
		t.Errorf("tags = %v, want each tag exactly once", merged.Tags)
	}
}

func TestEntries_EmptyLocalAdoptsRemoteIncludingTimestamp(t *testing.T) {
	id := uuid.New()
	// Day alone is record plumbing, not user content: the shell still adopts.
	local := models.JournalEntry{ID: id, Day: "2024-01-10", UpdatedAt: base.Add(time.Hour)}
	remote := models.JournalEntry{ID: id, Day: "2024-01-10", Text: "wrote things", UpdatedAt: base}

	merged, outcome, err := Entries(local, remote)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if outcome != OutcomeAdoptedRemote {
		t.Errorf("outcome = %v, want adopted_remote", outcome)
	}
	if !merged.UpdatedAt.Equal(remote.UpdatedAt) {
		t.Errorf("adopting remote must keep remote's UpdatedAt, got %v", merged.UpdatedAt)
	}
}

func TestUnionAttachments_IdentityAndContentDedup(t *testing.T) {
	photoID := uuid.New()
	older := models.Attachment{ID: photoID, Kind: models.AttachmentPhoto, Ref: "blob/1", CreatedAt: base}
	newer := models.Attachment{ID: photoID, Kind: models.AttachmentPhoto, Ref: "blob/2", CreatedAt: base.Add(time.Minute)}

	legacy1 := models.Attachment{Kind: models.AttachmentVoice, Ref: "memo.m4a", CreatedAt: base}
	legacy2 := models.Attachment{Kind: models.AttachmentVoice, Ref: "memo.m4a", CreatedAt: base}

	got := unionAttachments(
		[]models.Attachment{older, legacy1},
		[]models.Attachment{newer, legacy2},
	)

	if len(got) != 2 {
		t.Fatalf("expected 2 attachments after de-dup, got %d: %+v", len(got), got)
	}
	if got[0].Ref != "blob/2" {
		t.Errorf("same identity on both sides: later creation should win, got %q", got[0].Ref)
	}
	if got[1].Ref != "memo.m4a" {
		t.Errorf("expected one surviving legacy attachment, got %+v", got[1])
	}
}

func TestEntries_DominancePath(t *testing.T) {
	id := uuid.New()
	local := models.JournalEntry{ID: id, Day: "2024-01-10", Mood: "calm", UpdatedAt: base}
	remote := models.JournalEntry{ID: id, Day: "2024-01-10", Mood: "tense", Text: "rewrite", UpdatedAt: base.Add(10 * time.Minute)}

	merged, outcome, err := Entries(local, remote)
	if err != nil {
		t.Fatalf("Entries failed: %v", err)
	}
	if outcome != OutcomeRemoteWon {
		t.Errorf("outcome = %v, want remote_won", outcome)
	}
	if merged.Mood != "tense" || merged.Text != "rewrite" {
		t.Errorf("newer side should win outright, got %+v", merged)
	}
}
