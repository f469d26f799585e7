package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/atlasharvest/internal/model"
)

// ErrCorrupt is returned when a partition file exists but is not a valid
// record array.
var ErrCorrupt = errors.New("corrupt partition file")

// Store reads and writes one partition file.
type Store struct {
	path   string
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store for the file at path.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PathFor returns the default partition path of a score type inside dir.
func PathFor(dir string, scoreType model.ScoreType) string {
	return filepath.Join(dir, scoreType.PartitionFile())
}

// Path returns the partition file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the partition. A missing file yields an empty slice; a file
// that cannot be decoded yields an error wrapping ErrCorrupt.
func (s *Store) Load() ([]model.Record, error) {
	records, err := ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("no partition yet", "path", s.path)
		return []model.Record{}, nil
	}
	if err != nil {
		return nil, err
	}
	s.logger.Debug("partition loaded", "path", s.path, "records", len(records))
	return records, nil
}

// Save atomically replaces the partition with records.
func (s *Store) Save(records []model.Record) error {
	if err := WriteFile(s.path, records); err != nil {
		return err
	}
	s.logger.Debug("partition saved", "path", s.path, "records", len(records))
	return nil
}

// ReadFile decodes a record array from path.
func ReadFile(path string) ([]model.Record, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Decode reads a JSON record array from r.
func Decode(r io.Reader) ([]model.Record, error) {
	var records []model.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if records == nil {
		records = []model.Record{}
	}
	return records, nil
}

// Encode writes records to w as an indented JSON array.
func Encode(w io.Writer, records []model.Record) error {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		out = append(out, r.Clone())
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteFile atomically replaces path with records. Missing parent
// directories are created.
func WriteFile(path string, records []model.Record) error {
	var buf bytes.Buffer
	if err := Encode(&buf, records); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("failed to chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
