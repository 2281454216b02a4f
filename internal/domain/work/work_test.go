package work

import (
	"errors"
	"testing"

	"github.com/swarmgate/swarmgate/internal/domain"
)

func TestPriorityRankOrdering(t *testing.T) {
	if PriorityCritical.Rank() >= PriorityHigh.Rank() {
		t.Fatal("critical must rank before high")
	}
	if PriorityHigh.Rank() >= PriorityMedium.Rank() {
		t.Fatal("high must rank before medium")
	}
	if PriorityMedium.Rank() >= PriorityLow.Rank() {
		t.Fatal("medium must rank before low")
	}
	if Priority("bogus").Rank() <= PriorityLow.Rank() {
		t.Fatal("unknown priority must rank last")
	}
}

func TestItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		wantErr bool
	}{
		{"valid", Item{Kind: "code-review", Priority: PriorityHigh, Domain: "backend"}, false},
		{"missing kind", Item{Priority: PriorityHigh}, true},
		{"missing priority", Item{Kind: "test"}, true},
		{"unknown priority", Item{Kind: "test", Priority: "urgent"}, true},
		{"negative duration", Item{Kind: "test", Priority: PriorityLow, EstimatedDuration: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestDomainsDistinctPreservesOrder(t *testing.T) {
	items := []Item{
		{Domain: "backend"},
		{Domain: "testing"},
		{Domain: "backend"},
		{Domain: ""},
		{Domain: "devops"},
	}
	got := Domains(items)
	want := []string{"backend", "testing", "devops"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
