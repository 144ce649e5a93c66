package models

import "testing"

func TestHelpfulnessPercent(t *testing.T) {
	tests := []struct {
		helpful    int64
		notHelpful int64
		want       float64
	}{
		{0, 0, 0},
		{3, 1, 75},
		{0, 5, 0},
		{10, 0, 100},
	}

	for _, tt := range tests {
		e := &KnowledgeEntry{HelpfulCount: tt.helpful, NotHelpfulCount: tt.notHelpful}
		if got := e.HelpfulnessPercent(); got != tt.want {
			t.Errorf("HelpfulnessPercent(%d, %d) = %v, want %v", tt.helpful, tt.notHelpful, got, tt.want)
		}
	}
}
