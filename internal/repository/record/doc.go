// Package record implements persistence for the local version Record.
//
// The FileRepository stores and loads the record as JSON at a fixed filename
// inside the target directory and exposes a Repository interface that the
// updater service depends on.
package record
