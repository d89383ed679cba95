// Package ui implements the homedeck terminal interface using bubbletea's Elm architecture.
//
// Three views share one message loop design:
//  1. [LinksModel] : the link board with drag reordering, add/edit/delete and page settings
//  2. [DevicesModel] : the Wake-on-LAN dashboard, kept current by the push channel
//  3. [DownloadModel] : a score download form with a live progress bar
//
// Each list view owns a collection whose observer is a board: the collection writes
// renders, row patches and notifications into it from any goroutine, and Update drains
// it when a [MsgCollectionChanged] arrives. Rows are cached per item so a status patch
// redraws one line instead of the whole list.
//
// Mouse drags map to the collection's drag commands: a left press starts a drag, motion
// moves the row in the live layout, and release drops it and persists the new order.
// The keyboard equivalent is space to grab, j/k to move and space again to drop.
package ui
