package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FindLatestList finds the most recently modified list file in dir.
func FindLatestList(dir string) (string, error) {
	files, err := listFiles(dir)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no scrim list files found in %s: %w", dir, ErrNotFound)
	}

	// Sort by modification time (newest first)
	sort.Slice(files, func(i, j int) bool {
		return files[i].mod.After(files[j].mod)
	})

	return files[0].path, nil
}

type listFile struct {
	path string
	mod  time.Time
}

func listFiles(dir string) ([]listFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read lists directory: %w", err)
	}

	var files []listFile
	for _, entry := range entries {
		name := strings.ToLower(entry.Name())
		if entry.IsDir() || !(strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, listFile{path: filepath.Join(dir, entry.Name()), mod: info.ModTime()})
	}
	return files, nil
}

// FileName builds a download name from the list name, falling back to
// "scrim-list". ext includes the dot.
func FileName(l *ScrimList, ext string) string {
	base := ""
	if l != nil {
		base = strings.TrimSpace(l.Name)
	}
	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, base)
	if base == "" {
		base = "scrim-list"
	}
	return base + ext
}

// Dir serves lists stored as YAML files in one directory.
type Dir struct {
	Path string
}

// Lists reads every list in the directory, newest first. Unreadable
// files are skipped. A file without an id is served under its base name.
func (d Dir) Lists() ([]*ScrimList, error) {
	files, err := listFiles(d.Path)
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].mod.After(files[j].mod)
	})

	lists := make([]*ScrimList, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.path)
		if err != nil {
			continue
		}
		var l ScrimList
		if err := yaml.Unmarshal(data, &l); err != nil {
			continue
		}
		if l.ID == "" {
			l.ID = strings.TrimSuffix(filepath.Base(f.path), filepath.Ext(f.path))
		}
		l.EnsureIDs()
		lists = append(lists, &l)
	}
	return lists, nil
}

// Get returns the list with the given ID.
func (d Dir) Get(id string) (*ScrimList, error) {
	lists, err := d.Lists()
	if err != nil {
		return nil, err
	}
	for _, l := range lists {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, fmt.Errorf("list %s: %w", id, ErrNotFound)
}
