package links

import "testing"

func testTable() []Link {
	return []Link{
		{Keyword: "okr", URL: "http://intranet:180/"},
		{Keyword: "kaizen", URL: "http://intranet:20255/"},
		{Keyword: "kpi", URL: "http://intranet:99/"},
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantKeywords []string
	}{
		{
			name:         "no match",
			query:        "How many annual leave days do I have?",
			wantKeywords: nil,
		},
		{
			name:         "single match lowercase",
			query:        "where can I see the kpi dashboard",
			wantKeywords: []string{"kpi"},
		},
		{
			name:         "case insensitive",
			query:        "Where is the KPI report?",
			wantKeywords: []string{"kpi"},
		},
		{
			name:         "substring inside a word",
			query:        "what are okrs",
			wantKeywords: []string{"okr"},
		},
		{
			name:         "multiple matches keep table order",
			query:        "kpi targets for the kaizen and okr programs",
			wantKeywords: []string{"okr", "kaizen", "kpi"},
		},
	}

	a := NewAnnotator(testTable())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := a.Match(tt.query)
			if len(got) != len(tt.wantKeywords) {
				t.Fatalf("Match() returned %d links, want %d", len(got), len(tt.wantKeywords))
			}
			for i, l := range got {
				if l.Keyword != tt.wantKeywords[i] {
					t.Errorf("Match()[%d].Keyword = %q, want %q", i, l.Keyword, tt.wantKeywords[i])
				}
			}
		})
	}
}

func TestMatchDeterministic(t *testing.T) {
	a := NewAnnotator(testTable())
	query := "kaizen okr kpi"

	first := a.Match(query)
	for i := 0; i < 10; i++ {
		again := a.Match(query)
		if len(again) != len(first) {
			t.Fatal("Match() is not deterministic")
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("Match() order changed between calls: %v vs %v", again, first)
			}
		}
	}
}
