// Package file stores the task list as a line-oriented text file.
//
// Every Save rewrites the whole file through a temporary sibling that is
// renamed over the target, so readers never observe a half written list.
package file

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"task-list/internal/domain"
	"task-list/internal/errors"
	"task-list/internal/logging"
)

const (
	filePermissions = 0o644
	maxLineBytes    = 1024 * 1024
)

// Store is a storage.Store backed by a single text file.
type Store struct {
	fs      afero.Fs
	path    string
	dirPerm os.FileMode
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used to report skipped lines.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logging.OrNop(logger)
	}
}

// WithDirPermissions sets the mode used when the parent directory has to be created.
func WithDirPermissions(perm os.FileMode) Option {
	return func(s *Store) {
		s.dirPerm = perm
	}
}

// New creates a file store for path on fs. Nothing is touched until the first Load or Save.
func New(fs afero.Fs, path string, opts ...Option) *Store {
	s := &Store{
		fs:      fs,
		path:    path,
		dirPerm: 0o755,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the backing file. A missing file yields an empty list.
// Malformed lines are skipped and only reported at debug level.
func (s *Store) Load(ctx context.Context) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := s.fs.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Task{}, nil
		}
		return nil, errors.NewPersistenceError("open task file", err).WithContext("path", s.path)
	}
	defer f.Close()

	tasks := make([]domain.Task, 0)
	skipped := 0
	lineNo := 0

	reader := bufio.NewReader(f)
	for {
		raw, tooLong, err := readLine(reader, maxLineBytes)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewPersistenceError("read task file", err).WithContext("path", s.path)
		}
		lineNo++

		line := string(raw)
		task, ok := DecodeLine(line)
		if tooLong || !ok {
			if tooLong || len(line) > 0 {
				skipped++
				s.logger.Debug("skipping malformed task line",
					zap.String("path", s.path),
					zap.Int("line", lineNo),
					zap.Bool("too_long", tooLong))
			}
			continue
		}
		tasks = append(tasks, task)
	}

	if skipped > 0 {
		s.logger.Debug("loaded task file with skipped lines", zap.Int("loaded", len(tasks)), zap.Int("skipped", skipped))
	}
	return tasks, nil
}

// readLine returns the next line without its terminator. A line longer than
// limit is consumed in full and reported with tooLong set and no content.
func readLine(r *bufio.Reader, limit int) (line []byte, tooLong bool, err error) {
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			return nil, false, err
		}
		if !tooLong {
			if len(line)+len(chunk) > limit {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if !isPrefix {
			return line, tooLong, nil
		}
	}
}

// Save rewrites the backing file with one line per task.
func (s *Store) Save(ctx context.Context, tasks []domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, s.dirPerm); err != nil {
		return errors.NewPersistenceError("create task directory", err).WithContext("path", dir)
	}

	tmp, err := afero.TempFile(s.fs, dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return errors.NewPersistenceError("create temporary task file", err).WithContext("path", s.path)
	}
	tmpName := tmp.Name()

	if err := writeLines(tmp, tasks); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return errors.NewPersistenceError("write task file", err).WithContext("path", s.path)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return errors.NewPersistenceError("close task file", err).WithContext("path", s.path)
	}
	if err := s.fs.Chmod(tmpName, filePermissions); err != nil {
		s.fs.Remove(tmpName)
		return errors.NewPersistenceError("set task file permissions", err).WithContext("path", s.path)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		s.fs.Remove(tmpName)
		return errors.NewPersistenceError("replace task file", err).WithContext("path", s.path)
	}

	s.logger.Debug("saved task file", zap.String("path", s.path), zap.Int("tasks", len(tasks)))
	return nil
}

// Close is a no-op; the file is only open during Load and Save.
func (s *Store) Close() error {
	return nil
}

func writeLines(f afero.File, tasks []domain.Task) error {
	w := bufio.NewWriter(f)
	for _, t := range tasks {
		if _, err := w.WriteString(EncodeLine(t)); err != nil {
			return err
		}
		if err := w.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return f.Sync()
}
