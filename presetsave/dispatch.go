package presetsave

import "github.com/pkg/errors"

var (
	ErrUnknownAction = errors.New("unknown dialog action")
	ErrLocalOnly     = errors.New("dialog action is only available locally")
)

// Action names a user action on the save dialog.
type Action string

const (
	ActionSave                 Action = "save"
	ActionCancel               Action = "cancel"
	ActionClearThumbnail       Action = "clear-thumbnail"
	ActionUsePreviousThumbnail Action = "use-previous-thumbnail"
	ActionLoadImage            Action = "load-image"
	ActionSetName              Action = "set-name"
)

// Command is one user action with its arguments.
type Command struct {
	Action  Action `json:"action"`
	Enabled bool   `json:"enabled,omitempty"`
	Path    string `json:"path,omitempty"`
	Name    string `json:"name,omitempty"`
}

var handlers = map[Action]func(d *Dialog, cmd Command) error{
	ActionSave: func(d *Dialog, _ Command) error {
		if err := d.CheckName(); err != nil {
			return err
		}
		d.SavePreset()
		return nil
	},
	ActionCancel: func(d *Dialog, _ Command) error {
		d.Close()
		return nil
	},
	ActionClearThumbnail: func(d *Dialog, _ Command) error {
		d.ClearThumbnail()
		return nil
	},
	ActionUsePreviousThumbnail: func(d *Dialog, cmd Command) error {
		d.UsePreviousThumbnail(cmd.Enabled)
		return nil
	},
	ActionLoadImage: func(d *Dialog, cmd Command) error {
		return d.LoadImageFromFile(cmd.Path)
	},
	ActionSetName: func(d *Dialog, cmd Command) error {
		return d.SetName(cmd.Name)
	},
}

// Actions lists every action Dispatch understands.
func Actions() []Action {
	return []Action{
		ActionSave,
		ActionCancel,
		ActionClearThumbnail,
		ActionUsePreviousThumbnail,
		ActionLoadImage,
		ActionSetName,
	}
}

// LocalOnly reports whether a reads from the local file system and must not
// be accepted from remote clients.
func LocalOnly(a Action) bool {
	return a == ActionLoadImage
}

// Dispatch routes cmd to the dialog operation bound to its action.
func (d *Dialog) Dispatch(cmd Command) error {
	if d.Closed() {
		return ErrDialogClosed
	}
	h, ok := handlers[cmd.Action]
	if !ok {
		return errors.Wrapf(ErrUnknownAction, "%q", cmd.Action)
	}
	return h(d, cmd)
}
