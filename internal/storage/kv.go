package storage

// KV is the persistence port the repository is built on: a string key-value
// store with the semantics of browser-local storage. Implementations report
// capacity exhaustion as ErrQuotaExceeded and a disabled or broken medium as
// ErrUnavailable.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// Remove deletes the key. Removing an absent key is not an error.
	Remove(key string) error
}
