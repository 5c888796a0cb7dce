package aggregate

import (
	"testing"

	"github.com/dtnitsch/docforge/models"
)

func commandSpan(id int, page string, start int, text string) *models.Span {
	return &models.Span{
		ID:     id,
		PageID: page,
		Start:  start,
		End:    start + len(text),
		Line:   1,
		Text:   text,
		Labels: []models.Label{{Category: models.CategoryCommand, Subtype: "shell", Confidence: 0.9, Priority: 1}},
	}
}

func TestSignatureNormalizesValues(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"$ foo run --count 3", "foo run --count ▒"},
		{"foo run --count 7", "foo run --count ▒"},
		{"curl -X GET https://api.example.com/users/1", "curl -X ▒ ▒"},
		{"curl -X GET https://api.example.com/users/2", "curl -X ▒ ▒"},
		{"foo --mode=fast", "foo --mode=▒"},
		{`foo greet "bob"`, "foo greet ▒"},
		{"Usage: foo init <name>", "foo init ▒"},
	}
	for _, tt := range tests {
		if got := Signature(tt.in); got != tt.want {
			t.Errorf("Signature(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSignatureKeepsFlagNames(t *testing.T) {
	a := Signature("foo sync --remote origin --dry-run")
	b := Signature("foo sync --remote upstream --dry-run")
	if a != b {
		t.Errorf("signatures differ: %q vs %q", a, b)
	}
	if a == Signature("foo sync --force") {
		t.Error("different flag sets must not share a signature")
	}
}

func TestPartitionGroupsIdenticalSignatures(t *testing.T) {
	spans := []*models.Span{
		commandSpan(1, "a", 0, "curl -X GET https://api.example.com/users/1"),
		commandSpan(2, "a", 50, "curl -X GET https://api.example.com/users/2"),
		commandSpan(3, "b", 0, "curl --verbose https://api.example.com/health"),
	}

	res := Partition(spans, models.DefaultConfidenceFloor, models.DefaultNearDupDistance)

	commands := ClustersOf(res.Clusters, models.CategoryCommand)
	if len(commands) != 2 {
		t.Fatalf("Partition() produced %d command clusters, want 2", len(commands))
	}
	if got := len(commands[0].Members); got != 2 {
		t.Errorf("first cluster has %d members, want 2", got)
	}
	if commands[0].MemberIDs[0] != 1 || commands[0].MemberIDs[1] != 2 {
		t.Errorf("member IDs = %v, want [1 2]", commands[0].MemberIDs)
	}
}

func TestPartitionMemberOrderByPageAndOffset(t *testing.T) {
	spans := []*models.Span{
		commandSpan(5, "b", 10, "foo run --fast"),
		commandSpan(2, "a", 90, "foo run --fast"),
		commandSpan(3, "a", 10, "foo run --fast"),
	}

	res := Partition(spans, models.DefaultConfidenceFloor, 0)
	if len(res.Clusters) != 1 {
		t.Fatalf("Partition() produced %d clusters, want 1", len(res.Clusters))
	}
	want := []int{3, 2, 5}
	got := res.Clusters[0].MemberIDs
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("member IDs = %v, want %v", got, want)
		}
	}
}

func TestPartitionSkipsBelowFloor(t *testing.T) {
	weak := commandSpan(1, "a", 0, "foo run")
	weak.Labels[0].Confidence = 0.2

	res := Partition([]*models.Span{weak}, models.DefaultConfidenceFloor, 0)
	if len(res.Clusters) != 0 {
		t.Errorf("Partition() clustered a below-floor span: %d clusters", len(res.Clusters))
	}
}

func TestPartitionNearDuplicatesNotMerged(t *testing.T) {
	spans := []*models.Span{
		commandSpan(1, "a", 0, "foo sync --remote origin"),
		commandSpan(2, "a", 50, "foo sync --remote origin --dry-run"),
	}

	res := Partition(spans, models.DefaultConfidenceFloor, models.DefaultNearDupDistance)

	if len(res.Clusters) != 2 {
		t.Fatalf("Partition() produced %d clusters, want 2 distinct ones", len(res.Clusters))
	}
	if len(res.NearDups) != 1 {
		t.Fatalf("Partition() flagged %d near-duplicates, want 1", len(res.NearDups))
	}
	if res.NearDups[0].Distance != 1 {
		t.Errorf("near-duplicate distance = %d, want 1", res.NearDups[0].Distance)
	}
}

func TestPartitionNearDupRequiresSameCommand(t *testing.T) {
	spans := []*models.Span{
		commandSpan(1, "a", 0, "foo run"),
		commandSpan(2, "a", 50, "bar run"),
	}

	res := Partition(spans, models.DefaultConfidenceFloor, models.DefaultNearDupDistance)
	if len(res.NearDups) != 0 {
		t.Errorf("different command words flagged as near-duplicates: %d", len(res.NearDups))
	}
}

func TestPartitionDeterministicClusterIDs(t *testing.T) {
	spans := []*models.Span{
		commandSpan(1, "a", 0, "foo run --fast"),
		commandSpan(2, "a", 40, "bar build"),
		commandSpan(3, "b", 0, "foo run --fast"),
	}

	first := Partition(spans, models.DefaultConfidenceFloor, 0)
	second := Partition(spans, models.DefaultConfidenceFloor, 0)

	if len(first.Clusters) != len(second.Clusters) {
		t.Fatalf("cluster counts differ: %d vs %d", len(first.Clusters), len(second.Clusters))
	}
	for i := range first.Clusters {
		if first.Clusters[i].ID != second.Clusters[i].ID ||
			first.Clusters[i].Signature != second.Clusters[i].Signature {
			t.Errorf("cluster %d differs across runs", i)
		}
	}
}

func TestTokenEditDistance(t *testing.T) {
	tests := []struct {
		a, b []string
		want int
	}{
		{[]string{"foo", "run"}, []string{"foo", "run"}, 0},
		{[]string{"foo", "run"}, []string{"foo", "build"}, 1},
		{[]string{"foo"}, []string{"foo", "run", "--fast"}, 2},
		{nil, []string{"a", "b"}, 2},
	}
	for _, tt := range tests {
		if got := tokenEditDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("tokenEditDistance(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCommandWord(t *testing.T) {
	if got := CommandWord("$ foo run --fast"); got != "foo" {
		t.Errorf("CommandWord() = %q, want foo", got)
	}
	if got := CommandWord(""); got != "" {
		t.Errorf("CommandWord(empty) = %q, want empty", got)
	}
}
