package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/tangerg/graphrag/pipelineerr"
)

var _ Storage = (*FileStorage)(nil)

// FileStorage is a Storage rooted at a directory on disk. Keys are
// slash-separated paths relative to the root; Set creates parent
// directories as needed.
type FileStorage struct {
	root string
}

// NewFileStorage returns a FileStorage rooted at dir. dir is neither
// checked nor created here: Set creates it on first write, and reads
// against a missing root find no keys.
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{root: filepath.Clean(dir)}
}

func (f *FileStorage) abs(key string) string {
	return filepath.Join(f.root, filepath.FromSlash(key))
}

func (f *FileStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(f.abs(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, pipelineerr.NotFound("key not found: " + key)
		}
		return nil, err
	}
	return file, nil
}

func (f *FileStorage) Set(_ context.Context, key string, r io.Reader) error {
	path := f.abs(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, r)
	return err
}

func (f *FileStorage) Has(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(f.abs(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (f *FileStorage) Delete(_ context.Context, key string) error {
	err := os.Remove(f.abs(key))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

func (f *FileStorage) Clear(_ context.Context) error {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(f.root, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func (f *FileStorage) CreateChild(name string) Storage {
	return NewFileStorage(filepath.Join(f.root, name))
}

func (f *FileStorage) GetCreationDate(_ context.Context, key string) (time.Time, bool, error) {
	info, err := os.Stat(f.abs(key))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return info.ModTime().UTC(), true, nil
}

func (f *FileStorage) Keys(_ context.Context) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(f.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(f.root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Find walks the storage root lazily, yielding every key matching pattern
// within opts.BaseDir, honoring opts.Filter (matched against metadata
// populated from pattern's named capture groups) and opts.Max, checking
// ctx between entries per §5 ("between storage enumerations").
func (f *FileStorage) Find(ctx context.Context, pattern string, opts FindOptions) func(func(FindResult, error) bool) {
	return func(yield func(FindResult, error) bool) {
		re, err := regexp.Compile(pattern)
		if err != nil {
			yield(FindResult{}, err)
			return
		}
		base := f.root
		if opts.BaseDir != "" {
			base = filepath.Join(f.root, opts.BaseDir)
		}
		matched := 0
		walkErr := filepath.WalkDir(base, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			rel, err := filepath.Rel(f.root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			if !re.MatchString(rel) {
				return nil
			}
			meta := namedGroupMetadata(re, rel)
			ok, err := matchesFilter(opts.Filter, meta)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			if !yield(FindResult{Path: rel, Metadata: meta, CreatedAt: info.ModTime().UTC()}, nil) {
				return filepath.SkipAll
			}
			matched++
			if opts.Max > 0 && matched >= opts.Max {
				return filepath.SkipAll
			}
			return nil
		})
		if walkErr != nil && walkErr != filepath.SkipAll {
			if walkErr == ctx.Err() {
				yield(FindResult{}, pipelineerr.Cancelled(walkErr.Error()))
				return
			}
			if !os.IsNotExist(walkErr) {
				yield(FindResult{}, walkErr)
			}
		}
	}
}
