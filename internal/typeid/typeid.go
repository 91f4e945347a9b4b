// Package typeid issues the prefixed, sortable ids used for every stored
// entity: users, projects, snapshots, scenes, objects, assets and
// collaboration ops.
package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixUser     = "user"
	PrefixProject  = "proj"
	PrefixSnapshot = "snap"
	PrefixOp       = "op"
	PrefixScene    = "scene"
	PrefixObject   = "obj"
	PrefixAsset    = "asset"
)

// New returns a fresh id with the given prefix. It panics on a prefix
// that typeid rejects, which only the constants above are passed as.
func New(prefix string) string {
	return typeid.MustGenerate(prefix).String()
}

func NewUserID() string     { return New(PrefixUser) }
func NewProjectID() string  { return New(PrefixProject) }
func NewSnapshotID() string { return New(PrefixSnapshot) }
func NewOpID() string       { return New(PrefixOp) }
func NewSceneID() string    { return New(PrefixScene) }
func NewObjectID() string   { return New(PrefixObject) }
func NewAssetID() string    { return New(PrefixAsset) }

// Validate checks that id parses and carries expectedPrefix.
func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if got := parsed.Prefix(); got != expectedPrefix {
		return fmt.Errorf("typeid %q: prefix %q, want %q", id, got, expectedPrefix)
	}
	return nil
}
