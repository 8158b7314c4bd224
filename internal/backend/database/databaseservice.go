package database

import "context"

// DatabaseService persists image records. Records are immutable once created;
// there is deliberately no update or delete operation.
type DatabaseService interface {
	CreateDatabase(ctx context.Context) error
	DoesDatabaseExist() bool
	Close() error

	// CreateImage assigns a new id and writes the complete row in a single statement,
	// so readers never observe a partially populated record.
	CreateImage(ctx context.Context, message, label string, objects []string, file FileMetadata) (*ImageRecord, error)
	// GetAllImages returns every record ordered by ascending id.
	GetAllImages(ctx context.Context) ([]*ImageRecord, error)
	// GetImageByID returns nil and no error if the id is unknown.
	GetImageByID(ctx context.Context, id int64) (*ImageRecord, error)
}
