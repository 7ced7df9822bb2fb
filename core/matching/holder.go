package matching

import (
	"sync"

	"github.com/siherrmann/influmatch/core/neural"
)

// ModelHolder caches the published encoder for the lifetime of the process.
// The artifact is loaded on first use; concurrent callers share one load.
type ModelHolder struct {
	store   *neural.ArtifactStore
	mu      sync.RWMutex
	encoder *neural.Encoder
}

// NewModelHolder creates a holder backed by the given artifact store.
func NewModelHolder(store *neural.ArtifactStore) *ModelHolder {
	return &ModelHolder{store: store}
}

// Encoder returns the cached encoder, loading it from the artifact store on
// first use. It returns model.ErrModelUnavailable if no trained artifact
// exists yet.
func (h *ModelHolder) Encoder() (*neural.Encoder, error) {
	h.mu.RLock()
	encoder := h.encoder
	h.mu.RUnlock()
	if encoder != nil {
		return encoder, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.encoder != nil {
		return h.encoder, nil
	}

	loaded, err := h.store.LoadEncoder()
	if err != nil {
		return nil, err
	}
	h.encoder = loaded
	return h.encoder, nil
}

// Invalidate drops the cached encoder so the next request reloads the
// artifact. Called after a training run publishes new weights.
func (h *ModelHolder) Invalidate() {
	h.mu.Lock()
	h.encoder = nil
	h.mu.Unlock()
}
