package database

import (
	"encoding/json"
	"fmt"
)

// The objects and file columns hold JSON text. Encoding and decoding are kept
// together here so the storage format can change without touching the stores.
// Contract: decodeObjects(encodeObjects(x)) and decodeFile(encodeFile(x)) yield x,
// with a nil label slice normalized to an empty one.

func encodeObjects(objects []string) (string, error) {
	if objects == nil {
		objects = []string{}
	}
	data, err := json.Marshal(objects)
	if err != nil {
		return "", fmt.Errorf("failed to encode objects: %w", err)
	}
	return string(data), nil
}

func decodeObjects(raw string) ([]string, error) {
	objects := []string{}
	if err := json.Unmarshal([]byte(raw), &objects); err != nil {
		return nil, fmt.Errorf("failed to decode objects %q: %w", raw, err)
	}
	if objects == nil {
		// a stored JSON null decodes to nil
		objects = []string{}
	}
	return objects, nil
}

func encodeFile(file FileMetadata) (string, error) {
	data, err := json.Marshal(file)
	if err != nil {
		return "", fmt.Errorf("failed to encode file metadata: %w", err)
	}
	return string(data), nil
}

func decodeFile(raw string) (FileMetadata, error) {
	var file FileMetadata
	if err := json.Unmarshal([]byte(raw), &file); err != nil {
		return FileMetadata{}, fmt.Errorf("failed to decode file metadata: %w", err)
	}
	return file, nil
}

// encodeRecordBlobs serializes both blob columns of a record.
func encodeRecordBlobs(objects []string, file FileMetadata) (string, string, error) {
	objectsText, err := encodeObjects(objects)
	if err != nil {
		return "", "", err
	}
	fileText, err := encodeFile(file)
	if err != nil {
		return "", "", err
	}
	return objectsText, fileText, nil
}

// decodeRecordBlobs fills the structured fields of img from their stored text.
func decodeRecordBlobs(img *ImageRecord, objectsText, fileText string) error {
	objects, err := decodeObjects(objectsText)
	if err != nil {
		return fmt.Errorf("image %d: %w", img.ID, err)
	}
	file, err := decodeFile(fileText)
	if err != nil {
		return fmt.Errorf("image %d: %w", img.ID, err)
	}
	img.Objects = objects
	img.File = file
	return nil
}
