package fetchmock

// DefaultNamespace is used when no explicit namespace is provided.
const DefaultNamespace = "tarmac"

// HostCall is the waPC host function signature shared by host-backed clients
// and by the interceptor's host face.
type HostCall func(namespace, capability, function string, payload []byte) ([]byte, error)

// RuntimeConfig carries configuration that is used during creation of host-backed components.
type RuntimeConfig struct {
	// Namespace is the function namespace used to scope host interactions.
	Namespace string
}

// WithDefaults returns a copy of the configuration with empty fields set to their defaults.
func (c RuntimeConfig) WithDefaults() RuntimeConfig {
	if c.Namespace == "" {
		c.Namespace = DefaultNamespace
	}
	return c
}
