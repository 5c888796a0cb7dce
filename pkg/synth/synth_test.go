package synth

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/dtnitsch/docforge/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func cluster(id int, cat models.Category, sig string, members ...*models.Span) *models.Cluster {
	c := &models.Cluster{ID: id, Category: cat, Signature: sig, Members: members}
	for _, m := range members {
		c.MemberIDs = append(c.MemberIDs, m.ID)
	}
	return c
}

func span(id int, page string, line int, text string) *models.Span {
	return &models.Span{ID: id, PageID: page, Line: line, Text: text}
}

func TestSynthesizeNumericVariant(t *testing.T) {
	c := cluster(1, models.CategoryCommand, "curl -X ▒ ▒",
		span(1, "api", 5, "curl -X GET https://api.example.com/users/1"),
		span(2, "api", 12, "curl -X GET https://api.example.com/users/2"),
	)

	templates, failures := Synthesize([]*models.Cluster{c}, nil, testLogger())
	if len(failures) != 0 {
		t.Fatalf("Synthesize() failures = %d, want 0", len(failures))
	}
	if len(templates) != 1 {
		t.Fatalf("Synthesize() produced %d templates, want 1", len(templates))
	}

	tmpl := templates[0]
	if tmpl.Unverified {
		t.Error("two-member cluster marked unverified")
	}
	want := "curl -X GET https://api.example.com/users/${ID}"
	if tmpl.Skeleton != want {
		t.Errorf("skeleton = %q, want %q", tmpl.Skeleton, want)
	}
	if len(tmpl.Placeholders) != 1 {
		t.Fatalf("placeholders = %d, want 1", len(tmpl.Placeholders))
	}
	p := tmpl.Placeholders[0]
	if p.Name != "ID" || p.InferredType != "int" || p.Default != "1" {
		t.Errorf("placeholder = %+v, want ID/int/1", p)
	}
}

func TestSynthesizeFlagNamedPlaceholder(t *testing.T) {
	c := cluster(1, models.CategoryCommand, "foo run --count ▒",
		span(1, "p", 1, "foo run --count 3"),
		span(2, "p", 9, "foo run --count 7"),
	)

	templates, _ := Synthesize([]*models.Cluster{c}, nil, testLogger())
	if len(templates) != 1 {
		t.Fatalf("Synthesize() produced %d templates, want 1", len(templates))
	}
	tmpl := templates[0]
	if tmpl.Skeleton != "foo run --count ${COUNT}" {
		t.Errorf("skeleton = %q, want foo run --count ${COUNT}", tmpl.Skeleton)
	}
	if tmpl.Placeholders[0].Default != "3" {
		t.Errorf("default = %q, want 3 (first seen wins ties)", tmpl.Placeholders[0].Default)
	}
}

func TestSynthesizeFlagNamesOnlyAdjacentValue(t *testing.T) {
	// A flag names only the token directly after it; a variant further
	// down the line falls back to the generic name.
	c := cluster(1, models.CategoryCommand, "foo deploy --env ▒ ▒",
		span(1, "p", 1, "foo deploy --env prod alpha"),
		span(2, "p", 9, "foo deploy --env prod beta"),
	)

	templates, _ := Synthesize([]*models.Cluster{c}, nil, testLogger())
	if len(templates) != 1 {
		t.Fatalf("Synthesize() produced %d templates, want 1", len(templates))
	}
	tmpl := templates[0]
	if tmpl.Skeleton != "foo deploy --env prod ${ARG_1}" {
		t.Errorf("skeleton = %q, want foo deploy --env prod ${ARG_1}", tmpl.Skeleton)
	}
}

func TestSynthesizeRoundTrip(t *testing.T) {
	// Substituting a member's own values back into the skeleton must
	// reproduce that member exactly.
	members := []*models.Span{
		span(1, "p", 1, "foo deploy --env staging --replicas 2"),
		span(2, "p", 8, "foo deploy --env production --replicas 5"),
	}
	c := cluster(1, models.CategoryCommand, "foo deploy --env ▒ --replicas ▒", members...)

	templates, failures := Synthesize([]*models.Cluster{c}, nil, testLogger())
	if len(failures) != 0 {
		t.Fatalf("Synthesize() failures = %d, want 0", len(failures))
	}
	tmpl := templates[0]

	for i, m := range members {
		values := make(map[string]string)
		for _, p := range tmpl.Placeholders {
			switch p.Name {
			case "ENV":
				values[p.Name] = []string{"staging", "production"}[i]
			case "REPLICAS":
				values[p.Name] = []string{"2", "5"}[i]
			}
		}
		if got := tmpl.Render(values); got != m.Text {
			t.Errorf("Render() = %q, want %q", got, m.Text)
		}
	}
}

func TestSynthesizeSingleMemberVerbatim(t *testing.T) {
	c := cluster(1, models.CategoryCommand, "foo init ▒",
		span(1, "p", 1, "foo init myproject"),
	)

	templates, failures := Synthesize([]*models.Cluster{c}, nil, testLogger())
	if len(failures) != 0 {
		t.Fatalf("Synthesize() failures = %d, want 0", len(failures))
	}
	tmpl := templates[0]
	if !tmpl.Unverified {
		t.Error("single-member template not marked unverified")
	}
	if tmpl.Skeleton != "foo init myproject" {
		t.Errorf("skeleton = %q, want verbatim copy", tmpl.Skeleton)
	}
	if !strings.HasSuffix(tmpl.FileName(), ".unverified.sh") {
		t.Errorf("FileName() = %q, want .unverified.sh suffix", tmpl.FileName())
	}
}

func TestSynthesizeMisalignedMembersFail(t *testing.T) {
	c := cluster(7, models.CategoryCommand, "foo run ▒",
		span(1, "p", 1, "foo run alpha"),
		span(2, "p", 5, "foo run alpha beta"),
	)

	templates, failures := Synthesize([]*models.Cluster{c}, nil, testLogger())
	if len(failures) != 1 {
		t.Fatalf("Synthesize() failures = %d, want 1", len(failures))
	}
	if failures[0].ClusterID != 7 {
		t.Errorf("failure cluster = %d, want 7", failures[0].ClusterID)
	}
	// The cluster still yields a verbatim fallback.
	if len(templates) != 1 || !templates[0].Unverified {
		t.Fatalf("misaligned cluster produced no verbatim fallback")
	}
}

func TestSynthesizeFailureIsolation(t *testing.T) {
	bad := cluster(1, models.CategoryCommand, "foo run ▒",
		span(1, "p", 1, "foo run alpha"),
		span(2, "p", 5, "foo run alpha beta"),
	)
	good := cluster(2, models.CategoryCommand, "bar get ▒",
		span(3, "p", 10, "bar get 1"),
		span(4, "p", 15, "bar get 2"),
	)

	templates, failures := Synthesize([]*models.Cluster{bad, good}, nil, testLogger())
	if len(failures) != 1 {
		t.Fatalf("failures = %d, want 1", len(failures))
	}
	var healthy *models.Template
	for _, tmpl := range templates {
		if tmpl.ClusterID == 2 {
			healthy = tmpl
		}
	}
	if healthy == nil || healthy.Unverified {
		t.Fatal("healthy sibling cluster did not synthesize cleanly")
	}
	if healthy.Skeleton != "bar get ${ID}" {
		t.Errorf("skeleton = %q, want bar get ${ID}", healthy.Skeleton)
	}
}

func TestSynthesizeDedupBySignature(t *testing.T) {
	members := []*models.Span{
		span(1, "p", 1, "foo run --fast"),
		span(2, "p", 3, "foo run --fast"),
	}
	asCommand := cluster(1, models.CategoryCommand, "foo run --fast", members...)
	asExample := cluster(2, models.CategoryExample, "foo run --fast", members...)

	templates, _ := Synthesize([]*models.Cluster{asCommand, asExample}, nil, testLogger())
	if len(templates) != 1 {
		t.Errorf("Synthesize() produced %d templates for one signature, want 1", len(templates))
	}
}

func TestSynthesizeAnnotations(t *testing.T) {
	member := span(1, "p", 10, "foo reset --hard")
	pitfall := span(2, "p", 12, "Warning:  do not run this on shared state")
	pitfall.Labels = []models.Label{{Category: models.CategoryPitfall, Confidence: 0.8, Priority: 4}}

	c := cluster(1, models.CategoryCommand, "foo reset --hard", member)
	templates, _ := Synthesize([]*models.Cluster{c}, []*models.Span{member, pitfall}, testLogger())

	if len(templates) != 1 {
		t.Fatalf("Synthesize() produced %d templates, want 1", len(templates))
	}
	ann := templates[0].Annotations
	if len(ann) != 1 {
		t.Fatalf("annotations = %v, want one entry", ann)
	}
	if ann[0] != "Warning: do not run this on shared state" {
		t.Errorf("annotation = %q, want whitespace-normalized warning", ann[0])
	}
}

func TestSplitVariant(t *testing.T) {
	v := splitVariant([]string{"/users/1", "/users/2"})
	if v.prefix != "/users/" || v.suffix != "" {
		t.Errorf("prefix/suffix = %q/%q, want /users/ and empty", v.prefix, v.suffix)
	}
	if v.middles[0] != "1" || v.middles[1] != "2" {
		t.Errorf("middles = %v, want [1 2]", v.middles)
	}
}

func TestMostFrequentFirstSeenTie(t *testing.T) {
	if got := mostFrequent([]string{"a", "b"}); got != "a" {
		t.Errorf("mostFrequent() = %q, want a", got)
	}
	if got := mostFrequent([]string{"a", "b", "b"}); got != "b" {
		t.Errorf("mostFrequent() = %q, want b", got)
	}
}
