package rag

import (
	"reflect"
	"testing"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name     string
		question string
		want     []string
	}{
		{
			name:     "lower-cases and keeps order",
			question: "What is the Refund Policy",
			want:     []string{"what", "refund", "policy"},
		},
		{
			name:     "drops stopwords and short tokens",
			question: "is this from you and me or that",
			want:     []string{},
		},
		{
			name:     "keeps punctuation attached",
			question: "deadline? for the grant",
			want:     []string{"deadline?", "grant"},
		},
		{
			name:     "splits on any whitespace",
			question: "  lease\tterms\nrenewal  ",
			want:     []string{"lease", "terms", "renewal"},
		},
		{
			name:     "whitespace only",
			question: "   ",
			want:     []string{},
		},
		{
			name:     "counts characters not bytes",
			question: "été ça",
			want:     []string{"été"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractKeywords(tt.question)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractKeywords(%q) = %#v, want %#v", tt.question, got, tt.want)
			}
		})
	}
}
