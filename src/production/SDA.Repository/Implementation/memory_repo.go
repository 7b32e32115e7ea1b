package implementation

import (
	"context"
	"fmt"
	"sync"

	sdamodels "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Models"
	interfaces "gitlab.com/sdamanager/sda.web_console/src/production/SDA.Repository/Interfaces"
)

// MemoryStore keeps manifests and labels in process memory
type MemoryStore struct {
	manifests *MemoryManifestRepository
	labels    *MemoryLabelRepository
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		manifests: &MemoryManifestRepository{},
		labels:    &MemoryLabelRepository{labels: make(map[sdamodels.LabelKind]map[string]string)},
	}
}

func (s *MemoryStore) Manifests() interfaces.ManifestRepository { return s.manifests }
func (s *MemoryStore) Labels() interfaces.LabelRepository       { return s.labels }
func (s *MemoryStore) Ping(context.Context) error               { return nil }

type MemoryManifestRepository struct {
	mu        sync.RWMutex
	manifests []sdamodels.Manifest
}

func (r *MemoryManifestRepository) CreateManifest(_ context.Context, manifest sdamodels.Manifest) (*sdamodels.Manifest, error) {
	m := prepareManifest(manifest)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.manifests {
		if existing.ID == m.ID {
			return nil, fmt.Errorf("manifest %s already exists", m.ID)
		}
	}
	r.manifests = append(r.manifests, m)
	return &m, nil
}

func (r *MemoryManifestRepository) GetManifest(_ context.Context, id string) (*sdamodels.Manifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.manifests {
		if m.ID == id {
			out := m
			return &out, nil
		}
	}
	return nil, interfaces.ErrNotFound
}

func (r *MemoryManifestRepository) ListManifests(context.Context) ([]sdamodels.Manifest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]sdamodels.Manifest{}, r.manifests...), nil
}

func (r *MemoryManifestRepository) DeleteManifest(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, m := range r.manifests {
		if m.ID == id {
			r.manifests = append(r.manifests[:i], r.manifests[i+1:]...)
			return nil
		}
	}
	return interfaces.ErrNotFound
}

type MemoryLabelRepository struct {
	mu     sync.RWMutex
	labels map[sdamodels.LabelKind]map[string]string
}

func (r *MemoryLabelRepository) SetLabel(_ context.Context, label sdamodels.Label) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.labels[label.Kind] == nil {
		r.labels[label.Kind] = make(map[string]string)
	}
	r.labels[label.Kind][label.ID] = label.Name
	return nil
}

func (r *MemoryLabelRepository) GetLabel(_ context.Context, kind sdamodels.LabelKind, id string) (*sdamodels.Label, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.labels[kind][id]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return &sdamodels.Label{Kind: kind, ID: id, Name: name}, nil
}

func (r *MemoryLabelRepository) ListLabels(_ context.Context, kind sdamodels.LabelKind) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.labels[kind]))
	for id, name := range r.labels[kind] {
		out[id] = name
	}
	return out, nil
}

func (r *MemoryLabelRepository) DeleteLabel(_ context.Context, kind sdamodels.LabelKind, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.labels[kind][id]; !ok {
		return interfaces.ErrNotFound
	}
	delete(r.labels[kind], id)
	return nil
}
