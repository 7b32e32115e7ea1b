package interfaces

//go:generate mockgen -destination=../mocks/mock_repositories.go -package=mocks gitlab.com/sdamanager/sda.web_console/src/production/SDA.Repository/Interfaces ManifestRepository,LabelRepository,Store

import "context"

// Store bundles the repositories of one backing database
type Store interface {
	Manifests() ManifestRepository
	Labels() LabelRepository

	// Ping reports whether the backing database is reachable
	Ping(ctx context.Context) error
}
