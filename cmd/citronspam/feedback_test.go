package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/plantaest/citronspam/internal/model"
)

func TestParseDecisions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    map[string]model.FeedbackStatus
		wantErr bool
	}{
		{
			name: "single pair",
			args: []string{"spam.example", "bad"},
			want: map[string]model.FeedbackStatus{"spam.example": model.FeedbackBad},
		},
		{
			name: "hostnames are lower cased",
			args: []string{"Spam.Example", "bad", "NEWS.example", "good"},
			want: map[string]model.FeedbackStatus{"spam.example": model.FeedbackBad, "news.example": model.FeedbackGood},
		},
		{
			name: "later pair wins",
			args: []string{"spam.example", "good", "spam.example", "bad"},
			want: map[string]model.FeedbackStatus{"spam.example": model.FeedbackBad},
		},
		{name: "invalid status", args: []string{"spam.example", "maybe"}, wantErr: true},
		{name: "empty hostname", args: []string{" ", "bad"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseDecisions(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("decisions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFeedbackCmdArgs(t *testing.T) {
	t.Parallel()

	cmd := NewFeedbackCmd()
	tests := []struct {
		args    []string
		wantErr bool
	}{
		{args: nil, wantErr: true},
		{args: []string{"spam.example"}, wantErr: true},
		{args: []string{"spam.example", "bad"}},
		{args: []string{"spam.example", "bad", "news.example"}, wantErr: true},
	}
	for _, tt := range tests {
		err := cmd.Args(cmd, tt.args)
		if (err != nil) != tt.wantErr {
			t.Errorf("Args(%v) error = %v, wantErr %v", tt.args, err, tt.wantErr)
		}
	}
}
