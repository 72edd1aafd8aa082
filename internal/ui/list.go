package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/tasks"
)

var (
	_ list.Item = menuItem{}
	_ list.Item = actionItem{}
)

// menuItem is one analysis the user can start.
type menuItem struct {
	kind  models.RunKind
	title string
	desc  string
}

func (i menuItem) FilterValue() string { return i.title }
func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }

func menuItems() []list.Item {
	return []list.Item{
		menuItem{kind: models.RunLiked, title: "Liked songs", desc: "Like tracks that are liked elsewhere"},
		menuItem{kind: models.RunPlaylists, title: "Playlists", desc: "Create missing playlists and add missing tracks"},
	}
}

// actionItem wraps [tasks.ProposedAction] with a selection mark.
type actionItem struct {
	action   tasks.ProposedAction
	selected bool
}

func (i actionItem) FilterValue() string { return i.action.String() }

func (i actionItem) Title() string {
	mark := "[ ]"
	if i.selected {
		mark = "[x]"
	}
	switch i.action.Kind {
	case tasks.CreatePlaylistAction:
		return fmt.Sprintf("%s Create %q", mark, i.action.PlaylistNameOriginal)
	default:
		return fmt.Sprintf("%s %s - %s", mark, i.action.TrackArtist, i.action.TrackTitle)
	}
}

func (i actionItem) Description() string {
	a := i.action
	switch a.Kind {
	case tasks.CreatePlaylistAction:
		return fmt.Sprintf("on %s • name from %s", a.TargetService.Title(), a.SourceExampleService.Title())
	case tasks.AddTrackAction:
		return fmt.Sprintf("add to %q on %s • from %s", a.PlaylistNameOriginal, a.TargetService.Title(), a.SourceService.Title())
	default:
		return fmt.Sprintf("like on %s • from %s", a.TargetService.Title(), a.SourceService.Title())
	}
}
