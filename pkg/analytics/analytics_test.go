package analytics

import (
	"reflect"
	"testing"
)

func TestWordFrequencyFiltersStopwords(t *testing.T) {
	freq := WordFrequency("The deploy command and the deploy flag")

	if freq["the"] != 0 || freq["and"] != 0 {
		t.Errorf("stopwords leaked into frequencies: %v", freq)
	}
	if freq["deploy"] != 2 {
		t.Errorf("deploy count = %d, want 2", freq["deploy"])
	}
}

func TestWordFrequencyTrimsPunctuation(t *testing.T) {
	freq := WordFrequency("deploy, deploy. (deploy)")
	if freq["deploy"] != 3 {
		t.Errorf("deploy count = %d, want 3 after trimming punctuation", freq["deploy"])
	}
}

func TestTopKeywordsStableOrder(t *testing.T) {
	freq := map[string]int{"zeta": 2, "alpha": 2, "common": 5}

	got := TopKeywords(freq, 3)
	want := []string{"common:5", "alpha:2", "zeta:2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopKeywords() = %v, want %v", got, want)
	}
}

func TestTopKeywordsLimit(t *testing.T) {
	freq := map[string]int{"a1": 1, "b2": 2, "c3": 3}
	if got := TopKeywords(freq, 2); len(got) != 2 {
		t.Errorf("TopKeywords() returned %d entries, want 2", len(got))
	}
	if got := TopKeywords(freq, 10); len(got) != 3 {
		t.Errorf("TopKeywords() returned %d entries, want all 3", len(got))
	}
}
