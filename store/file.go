package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/zeu5/vacuum-world/util"
)

// FileStore keeps one <key>.json file per key inside a directory
type FileStore struct {
	dir string
}

var _ Store = &FileStore{}

func NewFileStore(dir string) (*FileStore, error) {
	if err := util.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) path(key string) string {
	return path.Join(f.dir, key+".json")
}

func (f *FileStore) Save(_ context.Context, key string, v interface{}) error {
	if err := validKey(key); err != nil {
		return err
	}
	if err := util.WriteJSON(f.path(key), v); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

func (f *FileStore) Load(_ context.Context, key string, v interface{}) error {
	if err := validKey(key); err != nil {
		return err
	}
	bs, err := os.ReadFile(f.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	} else if err != nil {
		return err
	}
	if err := json.Unmarshal(bs, v); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func (f *FileStore) Keys(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileStore) Close() error {
	return nil
}
