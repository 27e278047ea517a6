package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"cgp-hq/seqval/pkg/manifest/schema"
)

// LoaderConfig contains configuration for loading schema documents.
type LoaderConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes
	MaxFileSize int64

	// AllowedExtensions lists the file extensions treated as schema documents
	AllowedExtensions []string

	// SkipHidden skips files and directories starting with "."
	SkipHidden bool

	// FollowSymlinks controls whether symbolic links are followed
	FollowSymlinks bool

	// RequireNameMatch rejects files whose base name is not "<type>-<version>"
	RequireNameMatch bool
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		MaxFileSize:       schema.MaxDocumentSize,
		AllowedExtensions: []string{".json", ".yaml", ".yml"},
		SkipHidden:        true,
		FollowSymlinks:    true,
		RequireNameMatch:  true,
	}
}

// Loader reads schema documents from the file system.
type Loader struct {
	config *LoaderConfig
}

// NewLoader creates a new loader with the given configuration.
func NewLoader(config *LoaderConfig) *Loader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	return &Loader{config: config}
}

// LoadFile loads a single schema document. Problems reading the file are
// reported as *LoadError; problems with the document as *schema.Errors.
func (l *Loader) LoadFile(path string) (*schema.Schema, error) {
	info, err := os.Stat(path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, &LoadError{FilePath: path, Message: "file not found", Cause: err}
		case os.IsPermission(err):
			return nil, &LoadError{FilePath: path, Message: "permission denied", Cause: err}
		default:
			return nil, &LoadError{FilePath: path, Message: "failed to access file", Cause: err}
		}
	}

	if !info.Mode().IsRegular() {
		return nil, &LoadError{FilePath: path, Message: "not a regular file"}
	}

	if l.config.MaxFileSize > 0 && info.Size() > l.config.MaxFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}

	if !utf8.Valid(data) {
		return nil, &LoadError{FilePath: path, Message: "file contains invalid UTF-8 encoding"}
	}

	s, err := schema.Load(data, path)
	if err != nil {
		return nil, err
	}

	if l.config.RequireNameMatch {
		if fileKey := KeyFromPath(path); fileKey != s.Key() {
			return nil, &NameMismatchError{FilePath: path, FileKey: fileKey, Declared: s.Key()}
		}
	}

	return s, nil
}

// LoadDirectory loads every schema document below dir. Schemas that loaded
// are returned together with an *ErrorList describing the files that did not.
// An empty directory yields no schemas and no error.
func (l *Loader) LoadDirectory(dir string) ([]*schema.Schema, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{FilePath: dir, Message: "directory not found", Cause: err}
		}
		return nil, &LoadError{FilePath: dir, Message: "failed to access directory", Cause: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{FilePath: dir, Message: "not a directory"}
	}

	files, err := l.collectFiles(dir)
	if err != nil {
		return nil, err
	}

	var schemas []*schema.Schema
	errList := &ErrorList{}
	seen := make(map[string]string)

	for _, path := range files {
		s, err := l.LoadFile(path)
		if err != nil {
			errList.Add(err)
			continue
		}
		if prev, dup := seen[s.Key()]; dup {
			errList.Add(&RegistryError{
				Key:       s.Key(),
				Operation: "load",
				Message:   fmt.Sprintf("declared by both %q and %q", prev, path),
			})
			continue
		}
		seen[s.Key()] = path
		schemas = append(schemas, s)
	}

	if errList.HasErrors() {
		return schemas, errList
	}
	return schemas, nil
}

// Load loads a file or every schema document in a directory.
func (l *Loader) Load(path string) ([]*schema.Schema, error) {
	isDir, err := IsDirectory(path)
	if err != nil {
		return nil, err
	}
	if isDir {
		return l.LoadDirectory(path)
	}
	s, err := l.LoadFile(path)
	if err != nil {
		return nil, err
	}
	return []*schema.Schema{s}, nil
}

// collectFiles collects schema file paths in lexical order.
func (l *Loader) collectFiles(dir string) ([]string, error) {
	var files []string
	visited := make(map[string]bool)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if l.config.SkipHidden && strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			if !l.config.FollowSymlinks {
				return nil
			}
			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return &LoadError{FilePath: path, Message: "failed to resolve symlink", Cause: err}
			}
			if visited[realPath] {
				return &LoadError{FilePath: path, Message: "symlink loop detected"}
			}
			visited[realPath] = true
			if !l.hasValidExtension(realPath) {
				return nil
			}
			files = append(files, path)
			return nil
		}

		if l.hasValidExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &LoadError{FilePath: dir, Message: "failed to walk directory", Cause: err}
	}

	return files, nil
}

// hasValidExtension checks if the file has a schema document extension.
func (l *Loader) hasValidExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, validExt := range l.config.AllowedExtensions {
		if ext == strings.ToLower(validExt) {
			return true
		}
	}
	return false
}

// KeyFromPath returns the schema key implied by a file name:
// "schemas/IMPORT-1.0.json" gives "IMPORT-1.0".
func KeyFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IsDirectory checks if the given path is a directory.
func IsDirectory(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, &LoadError{FilePath: path, Message: "path does not exist", Cause: err}
		}
		return false, &LoadError{FilePath: path, Message: "failed to access path", Cause: err}
	}
	return info.IsDir(), nil
}
