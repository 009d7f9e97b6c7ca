package group

import "strings"

// Group is a community a profile is subscribed to (immutable value object).
// Profiles hold groups by value; identity is the numeric ID.
type Group struct {
	id     int64
	name   string
	status string
}

// New creates a Group.
func New(id int64, name, status string) Group {
	return Group{id: id, name: name, status: status}
}

// ID returns the group identifier.
func (g Group) ID() int64 { return g.id }

// Name returns the group name.
func (g Group) Name() string { return g.name }

// Status returns the group status line.
func (g Group) Status() string { return g.status }

// Text returns the lexical text used for similarity lookup: name and status, trimmed.
func (g Group) Text() string {
	return strings.TrimSpace(g.name + " " + g.status)
}
