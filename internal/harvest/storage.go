package harvest

import (
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/remintlab/collection-harvester/internal/adapter"
	"github.com/remintlab/collection-harvester/internal/domain"
)

// Storage is the on-disk harvest corpus, keyed by original token id.
// Each record owns a unique path pair so concurrent writers never collide.
type Storage struct {
	root string
	fs   adapter.FileSystem
	json adapter.JSON
}

// NewStorage creates harvest storage rooted at root
func NewStorage(root string, fs adapter.FileSystem, json adapter.JSON) *Storage {
	return &Storage{
		root: root,
		fs:   fs,
		json: json,
	}
}

// CollectionDir returns the directory holding one collection's records
func (s *Storage) CollectionDir(collectionSlug string) string {
	return filepath.Join(s.root, collectionSlug)
}

// RecordExists reports whether a committed record exists for the token
func (s *Storage) RecordExists(collectionSlug, tokenID string) bool {
	_, err := s.fs.Stat(filepath.Join(s.CollectionDir(collectionSlug), tokenID+".json"))
	return err == nil
}

// CommitRecord persists the media bytes and the JSON record for one token.
// The JSON write is the commit point: a record is harvested if and only if
// its JSON file landed. Both writes are all-or-nothing (temp file + rename),
// so an interrupted run leaves only fully-committed records behind.
func (s *Storage) CommitRecord(collectionSlug, tokenID string, record *domain.HarvestedRecord, image []byte, ext string) error {
	dir := s.CollectionDir(collectionSlug)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create harvest directory: %w", err)
	}

	imageName := tokenID + ext
	if err := s.writeAtomic(filepath.Join(dir, imageName), image); err != nil {
		return fmt.Errorf("failed to write media for token %s: %w", tokenID, err)
	}

	record.ImagePath = imageName
	data, err := s.json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record for token %s: %w", tokenID, err)
	}

	if err := s.writeAtomic(filepath.Join(dir, tokenID+".json"), data); err != nil {
		return fmt.Errorf("failed to write record for token %s: %w", tokenID, err)
	}

	return nil
}

// writeAtomic writes data to a unique temp file and renames it into place
func (s *Storage) writeAtomic(path string, data []byte) error {
	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := s.fs.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return err
	}
	return nil
}
