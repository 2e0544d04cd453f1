package world

import (
	"fmt"
	"iter"

	"github.com/pthm-cable/morphogen/mesh"
)

// AddModel loads a model from src and registers it under name.
func (w *World[A]) AddModel(name string, src mesh.Source) error {
	m, err := src.Load()
	if err != nil {
		return fmt.Errorf("loading model %q: %w", name, err)
	}
	return w.AddMesh(name, m)
}

// AddMesh registers m under name. Its faces enter the model grid at the
// next refresh.
func (w *World[A]) AddMesh(name string, m *mesh.Model) error {
	if w.models.Has(name) {
		return fmt.Errorf("%w: %q", ErrDuplicateModel, name)
	}
	if m == nil {
		return fmt.Errorf("model %q: %w", name, mesh.ErrEmptyMesh)
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("model %q: %w", name, err)
	}
	w.models.Set(name, m)
	w.modelsDirty = true
	w.logger.Info("model registered", "name", name, "vertices", len(m.Vertices), "faces", len(m.Faces))
	return nil
}

// RemoveModel unregisters a model, severs every link to it and rebuilds
// the model grid.
func (w *World[A]) RemoveModel(name string) error {
	if !w.models.Delete(name) {
		return fmt.Errorf("%w: %q", ErrUnknownModel, name)
	}
	n := w.modelLinks.DisconnectModel(name)
	w.modelsDirty = true
	w.RefreshModelGrid()
	w.logger.Info("model removed", "name", name, "links", n)
	return nil
}

// Model returns the model registered under name.
func (w *World[A]) Model(name string) (*mesh.Model, bool) {
	return w.models.Get(name)
}

// Models iterates over the registered models in registration order.
func (w *World[A]) Models() iter.Seq2[string, *mesh.Model] {
	return w.models.All()
}

// RefreshModelGrid rebuilds the model grid if a model was added or removed
// or any model changed since the last refresh. It reports whether it
// rebuilt.
func (w *World[A]) RefreshModelGrid() bool {
	dirty := w.modelsDirty
	for _, m := range w.models.All() {
		// every flag must be consumed
		if m.ChangedSinceLastCheck() {
			dirty = true
		}
	}
	if !dirty {
		return false
	}
	w.modelsDirty = false

	w.modelGrid.Clear()
	for name, m := range w.models.All() {
		for i := range m.Faces {
			a, b, c := m.Triangle(i)
			w.modelGrid.InsertTriangle(mesh.FaceRef{Model: name, Face: i}, a, b, c)
		}
	}
	return true
}
