// Package resource implements the preset resource server: a registry of
// presets keyed by filename, with a name index, a tag index and a blacklist
// of paths that must not be treated as active resources.
package resource

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	"brushkit/preset"
)

var ErrNoFilename = errors.New("resource has no filename")

// Server is the preset resource server. All methods are safe for concurrent
// use; observers are called synchronously after the server lock is released.
type Server struct {
	mu           sync.RWMutex
	saveLocation string
	indexPath    string
	byFilename   map[string]*preset.Preset
	index        index

	obsMu     sync.Mutex
	observers map[int]func(Event)
	nextObs   int

	log logr.Logger
}

// NewServer creates a server saving presets under saveLocation and keeping
// tags and the blacklist in indexPath. A missing index starts empty.
func NewServer(saveLocation, indexPath string, log logr.Logger) (*Server, error) {
	loc := filepath.Clean(saveLocation) + string(filepath.Separator)
	s := &Server{
		saveLocation: loc,
		indexPath:    indexPath,
		byFilename:   map[string]*preset.Preset{},
		observers:    map[int]func(Event){},
		log:          log.WithName("resource"),
	}
	idx, err := readIndex(indexPath)
	if err != nil {
		return nil, err
	}
	s.index = idx
	return s, nil
}

// SaveLocation returns the directory new presets are written to, with a
// trailing separator.
func (s *Server) SaveLocation() string {
	return s.saveLocation
}

// LoadAll registers every preset file in the save location that is not on
// the blacklist. Files that fail to parse are logged and skipped.
func (s *Server) LoadAll() error {
	matches, err := filepath.Glob(filepath.Join(s.saveLocation, "*"+preset.FileExtension))
	if err != nil {
		return errors.Wrap(err, "scan save location")
	}
	sort.Strings(matches)

	s.mu.Lock()
	loaded := 0
	for _, path := range matches {
		if _, black := s.index.Blacklist[path]; black {
			continue
		}
		p := preset.New("", "")
		p.SetFilename(path)
		if err := p.Load(); err != nil {
			s.log.Error(err, "skipping unreadable preset", "file", path)
			continue
		}
		s.byFilename[path] = p
		loaded++
	}
	s.mu.Unlock()

	s.log.V(1).Info("presets loaded", "count", loaded, "location", s.saveLocation)
	return nil
}

// Resources returns the registered presets ordered by name, then filename.
func (s *Server) Resources() []*preset.Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := make([]*preset.Preset, 0, len(s.byFilename))
	for _, p := range s.byFilename {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name() != list[j].Name() {
			return list[i].Name() < list[j].Name()
		}
		return list[i].Filename() < list[j].Filename()
	})
	return list
}

// ResourceByName returns a registered preset with the given name, or nil.
// When several share a name the one with the lowest filename wins.
func (s *Server) ResourceByName(name string) *preset.Preset {
	name = preset.NormalizeName(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *preset.Preset
	for _, p := range s.byFilename {
		if p.Name() != name {
			continue
		}
		if found == nil || p.Filename() < found.Filename() {
			found = p
		}
	}
	return found
}

// ResourceByFilename returns the preset registered at path, or nil.
func (s *Server) ResourceByFilename(path string) *preset.Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byFilename[path]
}

// AddResource registers p under its filename. With save set the preset file
// is written first and its path leaves the blacklist. With notify set
// observers receive ResourceAdded.
func (s *Server) AddResource(p *preset.Preset, notify, save bool) error {
	if p.Filename() == "" {
		return ErrNoFilename
	}
	if save {
		if err := p.Save(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.byFilename[p.Filename()] = p
	var err error
	if save {
		if _, black := s.index.Blacklist[p.Filename()]; black {
			delete(s.index.Blacklist, p.Filename())
			err = s.persistLocked()
		}
	}
	s.mu.Unlock()

	if notify {
		s.emit(Event{Kind: ResourceAdded, Name: p.Name(), Filename: p.Filename()})
	}
	return err
}

// RemoveResourceAndBlacklist unregisters p and blacklists its path. The
// file itself stays on disk.
func (s *Server) RemoveResourceAndBlacklist(p *preset.Preset) error {
	if p.Filename() == "" {
		return ErrNoFilename
	}
	s.emit(Event{Kind: RemovingResource, Name: p.Name(), Filename: p.Filename()})

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.byFilename[p.Filename()]; ok && cur == p {
		delete(s.byFilename, p.Filename())
	}
	s.index.Blacklist[p.Filename()] = struct{}{}
	return s.persistLocked()
}

// RemoveFromBlacklist clears p's path from the blacklist.
func (s *Server) RemoveFromBlacklist(p *preset.Preset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index.Blacklist[p.Filename()]; !ok {
		return nil
	}
	delete(s.index.Blacklist, p.Filename())
	return s.persistLocked()
}

// IsBlacklisted reports whether path is on the blacklist.
func (s *Server) IsBlacklisted(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index.Blacklist[path]
	return ok
}

// AssignedTagsList returns the tags of p in sorted order.
func (s *Server) AssignedTagsList(p *preset.Preset) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags := make([]string, 0, len(s.index.Tags[p.Filename()]))
	for tag := range s.index.Tags[p.Filename()] {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// AddTag assigns tag to p. Blank tags are ignored.
func (s *Server) AddTag(p *preset.Preset, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil
	}
	s.mu.Lock()
	set, ok := s.index.Tags[p.Filename()]
	if !ok {
		set = map[string]struct{}{}
		s.index.Tags[p.Filename()] = set
	}
	if _, dup := set[tag]; dup {
		s.mu.Unlock()
		return nil
	}
	set[tag] = struct{}{}
	err := s.persistLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: TagsChanged, Name: p.Name(), Filename: p.Filename(), Tag: tag})
	return err
}

// DelTag removes tag from p.
func (s *Server) DelTag(p *preset.Preset, tag string) error {
	s.mu.Lock()
	set := s.index.Tags[p.Filename()]
	if _, ok := set[tag]; !ok {
		s.mu.Unlock()
		return nil
	}
	delete(set, tag)
	if len(set) == 0 {
		delete(s.index.Tags, p.Filename())
	}
	err := s.persistLocked()
	s.mu.Unlock()

	s.emit(Event{Kind: TagsChanged, Name: p.Name(), Filename: p.Filename(), Tag: tag})
	return err
}

// TagNames returns every tag in use, sorted.
func (s *Server) TagNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]struct{}{}
	for _, set := range s.index.Tags {
		for tag := range set {
			seen[tag] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for tag := range seen {
		names = append(names, tag)
	}
	sort.Strings(names)
	return names
}

// SearchTag returns the registered presets carrying tag, ordered by name.
func (s *Server) SearchTag(tag string) []*preset.Preset {
	var out []*preset.Preset
	for _, p := range s.Resources() {
		s.mu.RLock()
		_, ok := s.index.Tags[p.Filename()][tag]
		s.mu.RUnlock()
		if ok {
			out = append(out, p)
		}
	}
	return out
}

// TagCategoryMembersChanged tells observers that tag membership changed.
// The server does not send this on its own.
func (s *Server) TagCategoryMembersChanged() {
	s.emit(Event{Kind: TagCategoryMembersChanged})
}

func (s *Server) persistLocked() error {
	if s.indexPath == "" {
		return nil
	}
	return writeIndex(s.indexPath, s.index)
}
