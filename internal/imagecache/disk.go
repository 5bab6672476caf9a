package imagecache

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DiskStore keeps cached images in a local directory served as static files.
type DiskStore struct {
	dir          string
	publicPrefix string
}

func NewDiskStore(dir, publicPrefix string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir, publicPrefix: strings.TrimRight(publicPrefix, "/")}, nil
}

func (s *DiskStore) Exists(name string) bool {
	_, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil
}

func (s *DiskStore) Put(name string, data []byte, _ string, overwrite bool) error {
	if !overwrite && s.Exists(name) {
		return nil
	}
	return os.WriteFile(filepath.Join(s.dir, name), data, 0o644)
}

func (s *DiskStore) PublicURL(name string) string {
	return path.Join(s.publicPrefix, name)
}

func (s *DiskStore) List(prefix string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || !strings.HasPrefix(de.Name(), prefix) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Name: de.Name(), ModTime: info.ModTime()})
	}
	return entries, nil
}

func (s *DiskStore) Remove(name string) error {
	return os.Remove(filepath.Join(s.dir, name))
}
