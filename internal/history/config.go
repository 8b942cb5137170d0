package history

// DefaultMaxEntries is the number of entries kept when Config.MaxEntries
// is not set.
const DefaultMaxEntries = 100

// DefaultRecentLimit is the page size of Recent when no limit is given.
const DefaultRecentLimit = 10

type Config struct {
	// MaxEntries caps the log; the oldest entries are evicted first.
	MaxEntries int
}
