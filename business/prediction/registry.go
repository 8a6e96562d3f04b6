package prediction

import (
	"sync/atomic"
)

// ModelRegistry holds the process-wide model artifacts. Reads are lock-free
// and the swap is atomic, so a reload never exposes a half-loaded model to
// in-flight requests.
type ModelRegistry struct {
	current atomic.Pointer[ModelArtifacts]
}

func NewModelRegistry() *ModelRegistry {
	return &ModelRegistry{}
}

// Current returns the installed artifacts, or nil when none are loaded.
func (r *ModelRegistry) Current() *ModelArtifacts {
	return r.current.Load()
}

func (r *ModelRegistry) Install(arts *ModelArtifacts) {
	r.current.Store(arts)
}

// LoadFrom loads artifacts from dir and installs them only after both
// stages parsed and validated.
func (r *ModelRegistry) LoadFrom(dir string) (*ModelArtifacts, error) {
	arts, err := LoadArtifacts(dir)
	if err != nil {
		return nil, err
	}

	r.Install(arts)

	return arts, nil
}
