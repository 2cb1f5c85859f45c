package ports

import (
	"planforge/domain/catalog"
)

// RegistryLoader loads and validates the three input knowledge bases into
// an immutable typed registry. A load either yields a complete registry or
// an error; there is no partial registry.
type RegistryLoader interface {
	Load(assetsDir string) (*catalog.Registry, error)
}
