package engine

import (
	"math/rand"

	"autoapply/pkg/models"
)

// BuildFrontier expands the configured positions and locations into the full
// search frontier: the cartesian product, every pair exactly once, in random
// order. Shuffling only breaks the fixed traversal pattern; coverage is
// unaffected. Empty input yields an empty frontier, which is a no-op run.
func BuildFrontier(positions, locations []string) []models.SearchTask {
	if len(positions) == 0 || len(locations) == 0 {
		return nil
	}

	tasks := make([]models.SearchTask, 0, len(positions)*len(locations))
	for _, position := range positions {
		for _, location := range locations {
			tasks = append(tasks, models.SearchTask{
				Position: position,
				Location: location,
			})
		}
	}

	rand.Shuffle(len(tasks), func(i, j int) {
		tasks[i], tasks[j] = tasks[j], tasks[i]
	})

	return tasks
}
