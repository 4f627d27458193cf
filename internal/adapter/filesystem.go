package adapter

import (
	"io"
	"io/fs"
	"os"
)

// FileSystem defines an interface for file system operations to enable mocking
//
//go:generate mockgen -source=filesystem.go -destination=../mocks/filesystem.go -package=mocks -mock_names=FileSystem=MockFileSystem
type FileSystem interface {
	// Create creates or truncates the named file
	Create(name string) (File, error)

	// MkdirAll creates the named directory and any missing parents.
	// It is a no-op when the directory already exists.
	MkdirAll(path string, perm os.FileMode) error

	// Rename atomically renames oldpath to newpath
	Rename(oldpath, newpath string) error

	// Remove removes the named file or directory
	Remove(name string) error

	// ReadDir reads the named directory and returns its entries sorted by name
	ReadDir(name string) ([]fs.DirEntry, error)

	// ReadFile reads the named file and returns its contents
	ReadFile(name string) ([]byte, error)

	// WriteFile writes data to the named file, creating it if necessary
	WriteFile(name string, data []byte, perm os.FileMode) error

	// Stat returns the FileInfo describing the named file
	Stat(name string) (fs.FileInfo, error)
}

// File defines an interface for file operations
type File interface {
	io.Writer
	io.Closer
}

// RealFileSystem implements FileSystem using the standard os package
type RealFileSystem struct{}

// NewFileSystem creates a new real file system
func NewFileSystem() FileSystem {
	return &RealFileSystem{}
}

// Create creates or truncates the named file
func (f *RealFileSystem) Create(name string) (File, error) {
	return os.Create(name) //nolint:gosec,G304
}

// MkdirAll creates the named directory and any missing parents
func (f *RealFileSystem) MkdirAll(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Rename atomically renames oldpath to newpath
func (f *RealFileSystem) Rename(oldpath, newpath string) error {
	return os.Rename(oldpath, newpath)
}

// Remove removes the named file or directory
func (f *RealFileSystem) Remove(name string) error {
	return os.Remove(name)
}

// ReadDir reads the named directory and returns its entries sorted by name
func (f *RealFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

// ReadFile reads the named file and returns its contents
func (f *RealFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name) //nolint:gosec,G304
}

// WriteFile writes data to the named file, creating it if necessary
func (f *RealFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm) //nolint:gosec,G304
}

// Stat returns the FileInfo describing the named file
func (f *RealFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}
