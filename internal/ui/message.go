package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/homedeck/internal/live"
	"github.com/desertthunder/homedeck/internal/models"
	"github.com/desertthunder/homedeck/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgCollectionChanged MsgKind = iota
	MsgSaved
	MsgSettingsLoaded
	MsgSettingsSaved
	MsgLiveEvent
	MsgLiveClosed
	MsgDeviceAction
	MsgProgressUpdate
	MsgSubmitted
)

// savedResult is the payload of [MsgSaved].
type savedResult struct {
	action string
	err    error
}

// settingsResult is the payload of [MsgSettingsLoaded] and [MsgSettingsSaved].
type settingsResult struct {
	settings models.Settings
	err      error
}

// actionResult is the payload of [MsgDeviceAction].
type actionResult struct {
	action string
	id     string
	err    error
}

// collectionChangedMsg is the constructor for [MsgCollectionChanged]
func collectionChangedMsg() Msg {
	return Msg{kind: MsgCollectionChanged}
}

// savedMsg is the constructor for [MsgSaved]
func savedMsg(action string, err error) Msg {
	return Msg{kind: MsgSaved, data: savedResult{action, err}}
}

// settingsLoadedMsg is the constructor for [MsgSettingsLoaded]
func settingsLoadedMsg(settings models.Settings, err error) Msg {
	return Msg{kind: MsgSettingsLoaded, data: settingsResult{settings, err}}
}

// settingsSavedMsg is the constructor for [MsgSettingsSaved]
func settingsSavedMsg(settings models.Settings, err error) Msg {
	return Msg{kind: MsgSettingsSaved, data: settingsResult{settings, err}}
}

// liveEventMsg is the constructor for [MsgLiveEvent]
func liveEventMsg(ev live.Event) Msg {
	return Msg{kind: MsgLiveEvent, data: ev}
}

// liveClosedMsg is the constructor for [MsgLiveClosed]
func liveClosedMsg(err error) Msg {
	return Msg{kind: MsgLiveClosed, data: err}
}

// deviceActionMsg is the constructor for [MsgDeviceAction]
func deviceActionMsg(action, id string, err error) Msg {
	return Msg{kind: MsgDeviceAction, data: actionResult{action, id, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// submittedMsg is the constructor for [MsgSubmitted]
func submittedMsg(err error) Msg {
	return Msg{kind: MsgSubmitted, data: err}
}

// errData extracts an error payload.
func errData(m Msg) error {
	err, _ := m.data.(error)
	return err
}
