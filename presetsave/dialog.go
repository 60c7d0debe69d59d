package presetsave

import (
	"image"
	"sync"

	"github.com/pkg/errors"

	"brushkit/preset"
	"brushkit/thumbnail"
)

const (
	TitleSaveNew      = "Save New Brush Preset"
	TitleSaveExisting = "Save Brush Preset"
)

var ErrDialogClosed = errors.New("save dialog is closed")

// View is the observable state of a save dialog.
type View struct {
	Title           string `json:"title"`
	SavingNew       bool   `json:"savingNew"`
	Name            string `json:"name"`
	CurrentName     string `json:"currentName,omitempty"`
	UsePrevious     bool   `json:"usePreviousThumbnail"`
	PaintingAllowed bool   `json:"paintingAllowed"`
	Visible         bool   `json:"visible"`
}

// Dialog is the toolkit-free model of the "save brush preset" dialog. User
// actions reach it through Dispatch.
type Dialog struct {
	mu          sync.Mutex
	workflow    *Workflow
	current     CurrentPreset
	scratch     *thumbnail.Scratchpad
	savingNew   bool
	name        string
	currentName string
	title       string
	usePrevious bool
	visible     bool
	closed      bool
	onClose     []func()
}

// NewDialog returns a hidden dialog saving through workflow.
func NewDialog(workflow *Workflow, current CurrentPreset, scratch *thumbnail.Scratchpad) *Dialog {
	return &Dialog{workflow: workflow, current: current, scratch: scratch}
}

// IsSavingNewBrush selects between saving a new preset and overwriting the
// current one. Call before ShowDialog.
func (d *Dialog) IsSavingNewBrush(savingNew bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.savingNew = savingNew
}

// ShowDialog prepares the dialog for the selected mode and makes it visible.
func (d *Dialog) ShowDialog() {
	cur := d.current.CurrentPreset()

	d.mu.Lock()
	savingNew := d.savingNew
	if savingNew {
		d.title = TitleSaveNew
		d.usePrevious = false
		if cur != nil {
			d.name = cur.Name() + " Copy"
		}
	} else {
		d.title = TitleSaveExisting
		if cur != nil {
			d.currentName = cur.Name()
		}
	}
	d.visible = true
	d.mu.Unlock()

	if savingNew {
		d.scratch.AllowPainting(true)
		return
	}
	d.UsePreviousThumbnail(true)
}

// UsePreviousThumbnail shows the current preset's thumbnail and locks the
// scratchpad, or clears it for painting a new one.
func (d *Dialog) UsePreviousThumbnail(use bool) {
	d.mu.Lock()
	d.usePrevious = use
	d.mu.Unlock()

	if use {
		d.scratch.PaintPresetImage(d.presetImage())
	} else {
		d.scratch.FillDefault()
	}
	d.scratch.AllowPainting(!use)
}

// LoadImageFromFile paints the image at path into the thumbnail area. An
// empty path means the file chooser was cancelled.
func (d *Dialog) LoadImageFromFile(path string) error {
	if path == "" {
		return nil
	}
	img, err := thumbnail.LoadImage(path)
	if err != nil {
		return err
	}
	d.LoadImage(img)
	return nil
}

// LoadImage replaces the thumbnail area with img scaled to fit.
func (d *Dialog) LoadImage(img image.Image) {
	d.scratch.FillTransparent()
	d.scratch.PaintCustomImage(img)
}

// ClearThumbnail resets the thumbnail area to the background colour.
func (d *Dialog) ClearThumbnail() {
	d.scratch.FillDefault()
}

// SetName sets the name typed for a new preset. Names that are not a plain
// file name are rejected with ErrInvalidName.
func (d *Dialog) SetName(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.name = name
	return nil
}

// CheckName reports whether saving a new preset under the typed name would
// be accepted.
func (d *Dialog) CheckName() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.savingNew {
		return nil
	}
	return ValidateName(d.name)
}

// SavePreset runs the save workflow with the captured thumbnail and closes
// the dialog. With no current preset nothing is saved and the dialog stays
// open.
func (d *Dialog) SavePreset() *preset.Preset {
	d.mu.Lock()
	req := Request{SavingNew: d.savingNew, Name: d.name}
	d.mu.Unlock()
	req.Thumbnail = d.scratch.CutoutOverlay()

	saved := d.workflow.SavePreset(req)
	if saved == nil {
		return nil
	}
	d.Close()
	return saved
}

// Close hides the dialog and runs the close callbacks once.
func (d *Dialog) Close() {
	d.mu.Lock()
	d.visible = false
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	fns := d.onClose
	d.onClose = nil
	d.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// OnClose registers fn to run when the dialog closes.
func (d *Dialog) OnClose(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onClose = append(d.onClose, fn)
}

func (d *Dialog) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Dialog) View() View {
	painting := d.scratch.PaintingAllowed()
	d.mu.Lock()
	defer d.mu.Unlock()
	return View{
		Title:           d.title,
		SavingNew:       d.savingNew,
		Name:            d.name,
		CurrentName:     d.currentName,
		UsePrevious:     d.usePrevious,
		PaintingAllowed: painting,
		Visible:         d.visible,
	}
}

func (d *Dialog) Scratchpad() *thumbnail.Scratchpad {
	return d.scratch
}

func (d *Dialog) presetImage() image.Image {
	if cur := d.current.CurrentPreset(); cur != nil {
		return cur.Image()
	}
	return nil
}
