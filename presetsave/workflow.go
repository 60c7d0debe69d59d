// Package presetsave implements saving a brush preset: replacing or creating
// a named preset in the resource server, backing up the previous version,
// carrying its tags over and attaching the captured thumbnail.
package presetsave

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"

	"brushkit/preset"
)

// BackupSeparator sits between the preset name and the timestamp of a
// backup file.
const BackupSeparator = "_backup_"

var ErrInvalidName = errors.New("invalid preset name")

// ValidateName rejects names that cannot be used as a file name inside the
// save location.
func ValidateName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return errors.Wrap(ErrInvalidName, "name is empty")
	case name == "." || name == "..":
		return errors.Wrapf(ErrInvalidName, "%q", name)
	case strings.ContainsAny(name, "/\\\x00"), strings.ContainsRune(name, filepath.Separator):
		return errors.Wrapf(ErrInvalidName, "%q contains a path separator", name)
	}
	return nil
}

// ResourceServer is the subset of the resource server the workflow drives.
type ResourceServer interface {
	SaveLocation() string
	ResourceByName(name string) *preset.Preset
	ResourceByFilename(path string) *preset.Preset
	AddResource(p *preset.Preset, notify, save bool) error
	RemoveResourceAndBlacklist(p *preset.Preset) error
	RemoveFromBlacklist(p *preset.Preset) error
	AssignedTagsList(p *preset.Preset) []string
	AddTag(p *preset.Preset, tag string) error
	TagCategoryMembersChanged()
}

// UpdateBlocker suspends observer updates of a dependent index.
type UpdateBlocker interface {
	SetBlockUpdates(block bool)
}

// CurrentPreset provides the preset active on the canvas.
type CurrentPreset interface {
	CurrentPreset() *preset.Preset
	SetCurrentPreset(p *preset.Preset)
}

// Request describes one save.
type Request struct {
	// SavingNew selects creating a new preset named Name instead of
	// overwriting the current one.
	SavingNew bool
	Name      string
	Thumbnail image.Image
}

// Workflow saves presets into a resource server.
type Workflow struct {
	mu        sync.Mutex
	server    ResourceServer
	favorites UpdateBlocker
	current   CurrentPreset
	now       func() time.Time
	log       logr.Logger
}

// NewWorkflow returns a workflow saving into server. favorites is blocked
// for the duration of each save.
func NewWorkflow(server ResourceServer, favorites UpdateBlocker, current CurrentPreset, log logr.Logger) *Workflow {
	return &Workflow{
		server:    server,
		favorites: favorites,
		current:   current,
		now:       time.Now,
		log:       log.WithName("presetsave"),
	}
}

// WithClock replaces the clock used for backup names.
func (w *Workflow) WithClock(now func() time.Time) *Workflow {
	w.now = now
	return w
}

// SavePreset stores the current preset according to req and returns the
// preset that is current afterwards. It returns nil without touching the
// server when there is no current preset or the target name is not a valid
// file name inside the save location.
//
// Server failures are logged and the remaining steps still run; there is no
// rollback.
func (w *Workflow) SavePreset(req Request) *preset.Preset {
	w.mu.Lock()
	defer w.mu.Unlock()

	cur := w.current.CurrentPreset()
	if cur == nil {
		return nil
	}

	saveLocation := w.server.SaveLocation()
	name := cur.Name()
	if req.SavingNew {
		name = preset.NormalizeName(req.Name)
	}
	target := saveLocation + name + cur.DefaultFileExtension()
	if err := checkTarget(name, target, saveLocation); err != nil {
		w.log.Error(err, "refusing to save preset", "name", name)
		return nil
	}

	w.favorites.SetBlockUpdates(true)
	defer w.favorites.SetBlockUpdates(false)

	old := cur.Clone()
	if err := old.Load(); err != nil {
		w.log.V(1).Info("using in-memory state as backup content", "preset", cur.Name(), "reason", err.Error())
	}

	if existing := w.server.ResourceByName(name); existing != nil {
		w.backup(cur, old, existing, name, saveLocation, !req.SavingNew && existing == cur)
	}

	if req.SavingNew {
		created := cur.Clone()
		created.SetFilename(target)
		created.SetName(name)
		created.SetImage(req.Thumbnail)
		created.SetPresetDirty(false)
		created.SetValid(true)
		w.check(w.server.AddResource(created, true, true), "add new preset", created)
		w.current.SetCurrentPreset(created)
		cur = created
	} else {
		if !strings.Contains(cur.Filename(), saveLocation) || !strings.Contains(cur.Filename(), name) {
			w.check(w.server.RemoveResourceAndBlacklist(cur), "remove renamed preset", cur)
			cur.SetFilename(target)
			cur.SetName(name)
		}
		if w.server.ResourceByFilename(cur.Filename()) == nil {
			w.check(w.server.AddResource(cur, false, false), "re-register preset", cur)
			w.check(w.server.RemoveFromBlacklist(cur), "clear blacklist", cur)
		}
		cur.SetImage(req.Thumbnail)
		w.check(cur.Save(), "save preset", cur)
		w.check(cur.Load(), "reload preset", cur)
	}

	w.server.TagCategoryMembersChanged()
	w.log.Info("preset saved", "name", cur.Name(), "file", cur.Filename(), "new", req.SavingNew)
	return cur
}

// backup stores old under a timestamped name carrying the live preset's
// tags, then retires the colliding entry. When the colliding entry is the
// live preset being overwritten at its own path it stays registered.
func (w *Workflow) backup(cur, old, existing *preset.Preset, name, saveLocation string, inPlace bool) {
	now := w.now()
	ext := old.DefaultFileExtension()
	base := saveLocation + name + BackupSeparator + now.Format("2006-01-02") + "-" + now.Format("15:04:05")
	path := base + ext
	// Backups taken within the same second are numbered from -2.
	for n := 2; w.server.ResourceByFilename(path) != nil; n++ {
		path = fmt.Sprintf("%s-%d%s", base, n, ext)
	}
	old.SetFilename(path)
	old.SetName(name)
	old.SetPresetDirty(false)
	old.SetValid(true)
	w.check(w.server.AddResource(old, true, true), "add backup", old)

	for _, tag := range w.server.AssignedTagsList(cur) {
		w.check(w.server.AddTag(old, tag), "copy tag to backup", old)
	}

	if inPlace {
		return
	}
	w.check(w.server.RemoveResourceAndBlacklist(existing), "retire colliding preset", existing)
}

func checkTarget(name, target, saveLocation string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	rel, err := filepath.Rel(saveLocation, filepath.Clean(target))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || strings.ContainsRune(rel, filepath.Separator) {
		return errors.Wrapf(ErrInvalidName, "%s is outside %s", target, saveLocation)
	}
	return nil
}

func (w *Workflow) check(err error, step string, p *preset.Preset) {
	if err != nil {
		w.log.Error(err, step, "preset", p.Name(), "file", p.Filename())
	}
}
