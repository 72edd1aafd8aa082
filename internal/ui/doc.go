// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI walks through one sync at a time:
//  1. [MenuView] : Choose liked songs or playlists
//  2. [AnalyzeView] : Watch fetch and reconcile progress
//  3. [ReviewView] : Toggle individual proposed actions
//  4. [ConfirmView] : Confirm the selected actions
//  5. [ApplyView] : Monitor actions as they are executed
//  6. [ResultView] : Summary of applied, missing and failed actions
//
// Analysis and apply run in a goroutine against a [tasks.SyncEngine]. Progress updates and the final
// result arrive through channels and are turned into [Msg] values, so the view never blocks.
// Each analysis is recorded as a dry run in sync history and applying updates that same run.
package ui
