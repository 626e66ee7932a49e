package usecase

import (
	"iter"
	"sort"

	"github.com/m-mizutani/actions/pkg/domain/model"
)

// GroupByRepository folds code search hits into one record per repository,
// keeping every matched path in arrival order. Records are sorted by name.
func GroupByRepository(hits iter.Seq[*model.CodeHit]) []*model.DiscoveredRepo {
	paths := make(map[string][]string)
	for hit := range hits {
		paths[hit.Repository] = append(paths[hit.Repository], hit.Path)
	}

	repos := make([]*model.DiscoveredRepo, 0, len(paths))
	for fullName, workflows := range paths {
		repos = append(repos, &model.DiscoveredRepo{
			FullName:  fullName,
			Workflows: workflows,
		})
	}
	sort.Slice(repos, func(i, j int) bool {
		return repos[i].FullName < repos[j].FullName
	})
	return repos
}
