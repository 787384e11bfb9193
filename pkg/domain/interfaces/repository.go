package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Content() ContentRepository
	Close() error
}
