package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixSession = "sess"
	PrefixCircle  = "circ"
	PrefixRect    = "rect"
	PrefixGroup   = "grp"
	PrefixWatcher = "watch"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewSessionID() string { return New(PrefixSession) }
func NewCircleID() string  { return New(PrefixCircle) }
func NewRectID() string    { return New(PrefixRect) }
func NewGroupID() string   { return New(PrefixGroup) }
func NewWatcherID() string { return New(PrefixWatcher) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
