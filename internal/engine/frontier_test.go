package engine

import (
	"testing"

	"autoapply/pkg/models"
)

func TestBuildFrontierCoversEveryPair(t *testing.T) {
	positions := []string{"backend engineer", "platform engineer", "sre"}
	locations := []string{"Berlin", "Remote"}

	frontier := BuildFrontier(positions, locations)

	if len(frontier) != len(positions)*len(locations) {
		t.Fatalf("frontier size = %d, want %d", len(frontier), len(positions)*len(locations))
	}

	seen := make(map[models.SearchTask]bool)
	for _, task := range frontier {
		if seen[task] {
			t.Errorf("duplicate task %+v", task)
		}
		seen[task] = true
	}
	for _, pos := range positions {
		for _, loc := range locations {
			if !seen[models.SearchTask{Position: pos, Location: loc}] {
				t.Errorf("missing task %q/%q", pos, loc)
			}
		}
	}
}

func TestBuildFrontierEmptyInputs(t *testing.T) {
	if got := BuildFrontier(nil, []string{"Berlin"}); got != nil {
		t.Errorf("expected nil frontier without positions, got %v", got)
	}
	if got := BuildFrontier([]string{"sre"}, nil); got != nil {
		t.Errorf("expected nil frontier without locations, got %v", got)
	}
}
