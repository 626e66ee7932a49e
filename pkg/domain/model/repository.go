package model

import (
	"strings"

	"github.com/m-mizutani/actions/pkg/domain"
	"github.com/m-mizutani/goerr/v2"
)

type Repository struct {
	Owner string
	Name  string
}

func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// ParseRepository splits a repository given in the form owner/repo.
func ParseRepository(fullName string) (Repository, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(fullName), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repository{}, domain.ErrRepository.Wrap(
			goerr.New("repository must be in the form owner/repo", goerr.V("repository", fullName)))
	}
	return Repository{Owner: owner, Name: name}, nil
}

// CodeHit is a single code search match: a file inside a repository.
type CodeHit struct {
	Repository string
	Path       string
}

// DiscoveredRepo is a repository together with the workflow definition
// files found in it.
type DiscoveredRepo struct {
	FullName  string
	Workflows []string
}
