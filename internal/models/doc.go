// Package models defines the entities homedeck mirrors from its three services.
//
// Collection items implement [Item] so a single synchronizer can hold either kind:
//   - [Link] : a link-tree button with its styling attributes
//   - [Device] : a Wake-on-LAN target with reachability status and optional SSH settings
//
// Whole-document types:
//   - [Settings] : link-tree page settings (theme, button size)
//   - [Snapshot] : links plus settings, the export/import document
//   - [TaskStatus] : one poll result from the download service
//
// [Preference] is the only locally persisted entity; it implements [Model] and is stored through a [Repository].
package models
