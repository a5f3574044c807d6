// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [ListView] : Browse the paginated catalog and search it with /
//  2. [FavoritesView] : Browse the chalets liked on this device
//  3. [DetailView] : Inspect one chalet, page through its gallery, and like or unlike it
//
// The [Model] implements the standard Init/Update/View pattern, receiving messages via the Msg union type.
//
// The detail view mounts a [favorites.Controller] for the open chalet. Controllers and the favorites store
// never push state into the model: they ping a one-slot refresh channel and the model re-reads the store
// on the next [MsgRefresh]. Hearts in every list therefore follow likes made in the detail view, in another
// terminal, or by `chalet favorites sync`.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, l, [ ], q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
