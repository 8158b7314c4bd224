package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

const imageColumns = "id, message, label, objects, file"

type SQLiteDatabase struct {
	db               *sql.DB
	connectionString string
}

func NewSQLiteDatabase(connectionString string) (DatabaseService, error) {
	db, err := sql.Open("sqlite", connectionString)
	if err != nil {
		return nil, err
	}
	// every new connection to ":memory:" would open a separate empty database
	db.SetMaxOpenConns(1)

	return &SQLiteDatabase{
		db:               db,
		connectionString: connectionString,
	}, nil
}

func (s *SQLiteDatabase) CreateDatabase(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message TEXT,
		label TEXT,
		objects TEXT,
		file JSON
	)`)
	return err
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteDatabase) DoesDatabaseExist() bool {
	// In SQLite, the database file is created when you connect to it.
	// So we can assume it exists if we can successfully ping the database.
	err := s.db.Ping()
	return err == nil
}

func (s *SQLiteDatabase) CreateImage(ctx context.Context, message, label string, objects []string, file FileMetadata) (*ImageRecord, error) {
	objectsText, fileText, err := encodeRecordBlobs(objects, file)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx,
		"INSERT INTO images (message, label, objects, file) VALUES (?, ?, ?, ?)",
		message, label, objectsText, fileText)
	if err != nil {
		return nil, fmt.Errorf("failed to insert image: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted image id: %w", err)
	}

	record := &ImageRecord{
		ID:      id,
		Message: message,
		Label:   label,
		File:    file,
	}
	// hand back what a reader will decode, not the caller's slice
	if record.Objects, err = decodeObjects(objectsText); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *SQLiteDatabase) GetAllImages(ctx context.Context) ([]*ImageRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+imageColumns+" FROM images ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query images: %w", err)
	}
	defer func() {
		_ = rows.Close() // Explicitly ignore error as we're already returning an error from the function
	}()

	images := []*ImageRecord{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate images: %w", err)
	}
	return images, nil
}

func (s *SQLiteDatabase) GetImageByID(ctx context.Context, id int64) (*ImageRecord, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+imageColumns+" FROM images WHERE id = ?", id)
	img, err := scanImage(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanImage(row rowScanner) (*ImageRecord, error) {
	var (
		img         ImageRecord
		label       sql.NullString
		message     sql.NullString
		objectsText sql.NullString
		fileText    sql.NullString
	)
	if err := row.Scan(&img.ID, &message, &label, &objectsText, &fileText); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan image: %w", err)
	}
	img.Message = message.String
	img.Label = label.String
	if err := decodeRecordBlobs(&img, objectsText.String, fileText.String); err != nil {
		return nil, err
	}
	return &img, nil
}
