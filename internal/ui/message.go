package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunesync/internal/tasks"
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
	MsgProgressUpdate MsgKind = iota
	MsgAnalysisDone
	MsgApplyDone
)

type analysis struct {
	result *tasks.RunResult
	err    error
}

type applied struct {
	results []tasks.ActionResult
	err     error
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// analysisDoneMsg is the constructor for [MsgAnalysisDone]
func analysisDoneMsg(result *tasks.RunResult, err error) Msg {
	return Msg{kind: MsgAnalysisDone, data: analysis{result: result, err: err}}
}

// applyDoneMsg is the constructor for [MsgApplyDone]
func applyDoneMsg(results []tasks.ActionResult, err error) Msg {
	return Msg{kind: MsgApplyDone, data: applied{results: results, err: err}}
}
