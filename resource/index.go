package resource

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// index is the persisted tag and blacklist state. Both are keyed by preset
// filename.
type index struct {
	Tags      map[string]map[string]struct{}
	Blacklist map[string]struct{}
}

// indexFile is the JSON layout of index; sets are stored as sorted lists.
type indexFile struct {
	Tags      map[string][]string `json:"tags"`
	Blacklist []string            `json:"blacklist"`
}

func readIndex(path string) (index, error) {
	idx := index{
		Tags:      map[string]map[string]struct{}{},
		Blacklist: map[string]struct{}{},
	}
	if path == "" {
		return idx, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return idx, nil
		}
		return idx, errors.Wrapf(err, "read index %s", path)
	}
	var f indexFile
	if err := json.Unmarshal(data, &f); err != nil {
		return idx, errors.Wrapf(err, "parse index %s", path)
	}
	for filename, tags := range f.Tags {
		set := make(map[string]struct{}, len(tags))
		for _, t := range tags {
			set[t] = struct{}{}
		}
		idx.Tags[filename] = set
	}
	for _, filename := range f.Blacklist {
		idx.Blacklist[filename] = struct{}{}
	}
	return idx, nil
}

// writeIndex writes to a temp file then renames it over path.
func writeIndex(path string, idx index) error {
	f := indexFile{
		Tags:      make(map[string][]string, len(idx.Tags)),
		Blacklist: make([]string, 0, len(idx.Blacklist)),
	}
	for filename, set := range idx.Tags {
		tags := make([]string, 0, len(set))
		for t := range set {
			tags = append(tags, t)
		}
		sort.Strings(tags)
		f.Tags[filename] = tags
	}
	for filename := range idx.Blacklist {
		f.Blacklist = append(f.Blacklist, filename)
	}
	sort.Strings(f.Blacklist)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create index dir")
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal index")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(err, "write index")
	}
	return errors.Wrap(os.Rename(tmp, path), "replace index")
}
