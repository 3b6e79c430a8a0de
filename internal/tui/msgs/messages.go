// Package msgs defines message types shared between the TUI root model and
// its views.
package msgs

// StorageChangedMsg signals that another session rewrote the stored
// document.
type StorageChangedMsg struct{}

// NoticeMsg shows a one-line message in the status bar.
type NoticeMsg struct {
	Text  string
	Error bool
}
