package index

// CardIndex defines the interface for card indexing operations.
// Consumers should depend on this interface rather than the concrete
// *DB type to facilitate testing with mocks.
type CardIndex interface {
	ReplaceAll(rows []CardRow) error
	Count() (int, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies CardIndex at compile time.
var _ CardIndex = (*DB)(nil)
