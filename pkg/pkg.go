// Package pkg holds the identity of the tplc module: its name, version,
// and authorship, shared by the CLI and generated output headers.
package pkg

import (
	_ "embed"
	"runtime/debug"
	"strings"
	"sync"
)

const (
	// Name is the canonical command and module identifier. It appears
	// in help text, per-user directory names, and the project file.
	Name = "tplc"

	// Description is the one-line summary shown at the top of help
	// output.
	Description = "Hybrid template precompiler"
)

//go:embed VERSION
var version string

// Version returns the semantic version of this build. When the binary
// was built from a version-controlled checkout, the short revision is
// appended so bug reports identify the exact source.
var Version = sync.OnceValue(func() string {
	v := strings.TrimSpace(version)

	if rev := revision(); rev != "" {
		v += "+" + rev
	}

	return v
})

func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}

	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 12 {
			return s.Value[:12]
		}
	}

	return ""
}

// AuthorInfo identifies one project author.
type AuthorInfo struct {
	Name  string
	Email string
}

// String formats the author as "name <email>", omitting whichever part
// is unset.
func (a AuthorInfo) String() string {
	switch {
	case a.Name == "":
		return a.Email
	case a.Email == "":
		return a.Name
	default:
		return a.Name + " <" + a.Email + ">"
	}
}

// Author lists the project authors.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{Name: "ardnew", Email: "andrew@ardnew.com"},
}
