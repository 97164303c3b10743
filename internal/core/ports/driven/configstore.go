package driven

// ConfigStore is the raw key/value layer beneath domain.Config. Keys are
// dotted paths such as "selector.max_fragments".
type ConfigStore interface {
	// Get returns the stored value and whether the key is present.
	Get(key string) (any, bool)

	// The typed getters return the zero value for a missing key or a value
	// of the wrong type. GetFloat also accepts integers.
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set updates a value and persists it.
	Set(key string, value any) error

	Save() error
	Load() error

	// Keys lists every stored key, sorted.
	Keys() []string

	// Path is the backing file, or "" for in-memory stores.
	Path() string
}
