package fsops

// Deleter abstracts filesystem delete operations
// Enables mocking in tests to prove declined choices never delete
type Deleter interface {
	Remove(path string) error
}
