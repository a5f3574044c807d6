package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/chalet/internal/favorites"
	"github.com/desertthunder/chalet/internal/models"
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
	MsgChaletsFetched MsgKind = iota
	MsgChaletFetched
	MsgToggleDone
	MsgRefresh
	MsgOpened
)

type chaletsFetched struct {
	chalets []models.Chalet
	err     error
}

type chaletFetched struct {
	chalet *models.Chalet
	err    error
}

type toggleDone struct {
	chaletID string
	result   favorites.Result
}

// chaletsFetchedMsg is the constructor for [MsgChaletsFetched]
func chaletsFetchedMsg(chalets []models.Chalet, err error) Msg {
	return Msg{kind: MsgChaletsFetched, data: chaletsFetched{chalets, err}}
}

// chaletFetchedMsg is the constructor for [MsgChaletFetched]
func chaletFetchedMsg(chalet *models.Chalet, err error) Msg {
	return Msg{kind: MsgChaletFetched, data: chaletFetched{chalet, err}}
}

// toggleDoneMsg is the constructor for [MsgToggleDone]
func toggleDoneMsg(chaletID string, result favorites.Result) Msg {
	return Msg{kind: MsgToggleDone, data: toggleDone{chaletID, result}}
}

// refreshMsg is the constructor for [MsgRefresh].
//
// It carries no data: favorite events and controller changes only signal that the rendered state is stale.
func refreshMsg() Msg {
	return Msg{kind: MsgRefresh}
}

// openedMsg is the constructor for [MsgOpened]
func openedMsg(err error) Msg {
	return Msg{kind: MsgOpened, data: err}
}
