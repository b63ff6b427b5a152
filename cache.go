package fieldscrape

import "context"

// Namespace is a logical partition of the cache. Identical keys in different
// namespaces never collide.
type Namespace string

// Cache namespaces.
const (
	NamespaceRaw        Namespace = "raw"
	NamespaceStructured Namespace = "structured"
	NamespaceCatalog    Namespace = "catalog"
)

// Validate returns an error if the namespace is not one of the known namespaces.
func (ns Namespace) Validate() error {
	switch ns {
	case NamespaceRaw, NamespaceStructured, NamespaceCatalog:
		return nil
	}
	return Errorf(EINVALID, "unknown cache namespace %q", string(ns))
}

// Cache is a key-value store split into namespaces.
//
// Implementations are opened once at process start and shared across
// requests. Each call acquires and releases whatever underlying resource it
// needs, so a failed call leaves the store usable for the next one.
type Cache interface {
	// Put stores value under key in ns, silently overwriting any existing value.
	// Returns ECACHE if the store cannot complete the write.
	Put(ctx context.Context, ns Namespace, key string, value []byte) error

	// Get returns the value stored under key in ns.
	// Returns ENOTFOUND if the key is absent. An empty value is not absence.
	Get(ctx context.Context, ns Namespace, key string) ([]byte, error)

	// Close releases the store handle.
	Close() error
}
