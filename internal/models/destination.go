package models

// Destination is a remote collection entries are delivered into.
type Destination struct {
	ID    string
	Title string
	URL   string
}
