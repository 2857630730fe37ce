package record

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const takeTimeFormat = "2006-01-02_15-04-05"

// TakeInfo describes one saved take on disk.
type TakeInfo struct {
	Filename  string
	Timestamp time.Time
}

// Store keeps saved takes as timestamped .mid files in one directory.
type Store struct {
	dir string
	now func() time.Time
}

func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

func (s *Store) Dir() string { return s.dir }

// Save writes the recorder's take to a fresh timestamped file and
// reports its path.
func (s *Store) Save(r *Recorder) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("record: create takes dir: %w", err)
	}
	path := filepath.Join(s.dir, s.now().Format(takeTimeFormat)+".mid")
	if err := r.WriteSMF(path); err != nil {
		return "", err
	}
	return path, nil
}

// List reports saved takes, newest first. Files that do not follow
// the timestamp naming are skipped.
func (s *Store) List() ([]TakeInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("record: read takes dir: %w", err)
	}
	var takes []TakeInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".mid") {
			continue
		}
		stamp, err := time.ParseInLocation(takeTimeFormat, strings.TrimSuffix(e.Name(), ".mid"), time.Local)
		if err != nil {
			continue
		}
		takes = append(takes, TakeInfo{Filename: e.Name(), Timestamp: stamp})
	}
	sort.Slice(takes, func(i, j int) bool { return takes[i].Timestamp.After(takes[j].Timestamp) })
	return takes, nil
}
