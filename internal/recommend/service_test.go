package recommend_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/p-n-ai/pai-pathways/internal/learner"
	"github.com/p-n-ai/pai-pathways/internal/recommend"
)

func newService(t *testing.T) *recommend.Service {
	t.Helper()
	e := newEngine(t, scenarioCatalog(), recommend.Config{})
	return recommend.NewService(learner.NewMemoryStore(scenarioProfile()), e)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    recommend.Mode
		wantErr bool
	}{
		{"", recommend.ModeRule, false},
		{"rule", recommend.ModeRule, false},
		{" LLM ", recommend.ModeLLM, false},
		{"gpt", "", true},
	}
	for _, tt := range tests {
		got, err := recommend.ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestService_ForStudent(t *testing.T) {
	svc := newService(t)

	res, err := svc.ForStudent(t.Context(), "Y3_U1", recommend.ModeRule)
	if err != nil {
		t.Fatalf("ForStudent() error = %v", err)
	}
	if res.User.ID != "Y3_U1" || res.Meta.Mode != recommend.ModeRule {
		t.Errorf("result user/mode = %s/%s", res.User.ID, res.Meta.Mode)
	}
}

func TestService_ForStudent_NotFound(t *testing.T) {
	svc := newService(t)

	_, err := svc.ForStudent(t.Context(), "nobody", recommend.ModeRule)
	if !errors.Is(err, recommend.ErrStudentNotFound) {
		t.Fatalf("err = %v, want ErrStudentNotFound", err)
	}
	if !errors.Is(err, learner.ErrNotFound) {
		t.Errorf("err = %v, should also wrap learner.ErrNotFound", err)
	}
}

func TestService_LLMModeMatchesRule(t *testing.T) {
	svc := newService(t)

	rule, err := svc.ForStudent(t.Context(), "Y3_U1", recommend.ModeRule)
	if err != nil {
		t.Fatal(err)
	}
	llm, err := svc.ForStudent(t.Context(), "Y3_U1", recommend.ModeLLM)
	if err != nil {
		t.Fatal(err)
	}
	if llm.Meta.Mode != recommend.ModeLLM {
		t.Errorf("mode = %q, want llm", llm.Meta.Mode)
	}
	if !reflect.DeepEqual(rule.Recommendations, llm.Recommendations) {
		t.Error("llm mode should currently rank like the rule engine")
	}
}

func TestService_ForProfile(t *testing.T) {
	svc := newService(t)

	if _, err := svc.ForProfile(t.Context(), scenarioProfile(), recommend.Mode("bogus")); !errors.Is(err, recommend.ErrUnknownMode) {
		t.Error("expected error for unknown mode")
	}

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := svc.ForProfile(ctx, scenarioProfile(), recommend.ModeRule); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}

	res, err := svc.ForProfile(t.Context(), learner.NewProfile("walk-in"), recommend.ModeRule)
	if err != nil {
		t.Fatalf("ForProfile() error = %v", err)
	}
	if !res.User.IsColdStart {
		t.Error("walk-in profile should be a cold start")
	}
}
