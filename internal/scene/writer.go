package scene

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var ErrNotFound = errors.New("scrim list not found")

// WriteList writes a list to a YAML file.
func WriteList(list *ScrimList, path string) error {
	data, err := yaml.Marshal(list)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadList reads a list from a YAML file and backfills missing IDs.
func ReadList(path string) (*ScrimList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, err
	}

	return ParseList(data)
}

// ParseList decodes YAML list data and backfills missing IDs.
func ParseList(data []byte) (*ScrimList, error) {
	var list ScrimList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse scrim list: %w", err)
	}
	if list.ID == "" {
		list.ID = uuid.NewSHA1(uuid.NameSpaceOID, data).String()
	}
	list.EnsureIDs()
	return &list, nil
}

// EnsureIDs assigns IDs to the list, teams and members that have none,
// and replaces duplicate team IDs so the resolver key stays unique.
// Team and member IDs are derived from the list ID and position, so
// reading the same file twice yields the same IDs.
func (l *ScrimList) EnsureIDs() {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	seen := make(map[string]bool, len(l.Teams))
	for i := range l.Teams {
		t := &l.Teams[i]
		if t.ID == "" || seen[t.ID] {
			t.ID = derivedID(l.ID, "team", i)
		}
		seen[t.ID] = true
		for j := range t.Members {
			if t.Members[j].ID == "" {
				t.Members[j].ID = derivedID(l.ID+"/team/"+t.ID, "member", j)
			}
		}
	}
}

func derivedID(parent, kind string, i int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(parent+"/"+kind+"/"+strconv.Itoa(i))).String()
}
