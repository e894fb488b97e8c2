// Package pathguard confines filesystem paths derived from stored or
// client-supplied strings to a configured root directory.
//
// Every read, write, stream or delete under the images and avatars roots goes
// through a Guard. A resolved path is always strictly inside the root: the root
// itself and anything outside it are rejected.
package pathguard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrOutsideRoot = errors.New("path escapes root")
	ErrSymlink     = errors.New("path traverses a symlink")
)

// Resolve turns candidate into an absolute path inside root. A relative
// candidate is joined with root, an absolute one must already live under it.
func Resolve(root, candidate string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root: %w", err)
	}

	if strings.IndexByte(candidate, 0) >= 0 {
		return "", ErrOutsideRoot
	}

	var target string
	if filepath.IsAbs(candidate) {
		target = filepath.Clean(candidate)
	} else {
		target = filepath.Join(rootAbs, candidate)
	}

	if err := within(rootAbs, target); err != nil {
		return "", err
	}

	return target, nil
}

func within(rootAbs, target string) error {
	if !strings.EqualFold(filepath.VolumeName(rootAbs), filepath.VolumeName(target)) {
		return ErrOutsideRoot
	}

	rel, err := filepath.Rel(rootAbs, target)
	if err != nil {
		return ErrOutsideRoot
	}

	if rel == "" || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return ErrOutsideRoot
	}

	return nil
}

// Guard binds Resolve to one root and additionally refuses paths whose
// existing components below the root are symlinks.
type Guard struct {
	root string
}

func New(root string) (*Guard, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("pathguard.New: %w", err)
	}

	return &Guard{root: abs}, nil
}

func (g *Guard) Root() string {
	return g.root
}

func (g *Guard) Resolve(candidate string) (string, error) {
	target, err := Resolve(g.root, candidate)
	if err != nil {
		return "", err
	}

	if err := noSymlinkBelow(g.root, target); err != nil {
		return "", err
	}

	return target, nil
}

// EnsureDir resolves rel and creates it (and any parents) if absent.
// Calling it for an existing directory is a no-op.
func (g *Guard) EnsureDir(rel string) (string, error) {
	dir, err := g.Resolve(rel)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	// the chain may have changed between the check and the mkdir
	if err := noSymlinkBelow(g.root, dir); err != nil {
		return "", err
	}

	return dir, nil
}

// noSymlinkBelow walks from target up to (not including) root. Missing
// components are fine: they are about to be created.
func noSymlinkBelow(root, target string) error {
	current := target
	for current != root {
		info, err := os.Lstat(current)
		switch {
		case err == nil:
			if info.Mode()&os.ModeSymlink != 0 {
				return ErrSymlink
			}
		case !os.IsNotExist(err):
			return fmt.Errorf("inspect path: %w", err)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return ErrOutsideRoot
		}
		current = parent
	}

	return nil
}

// IsViolation reports whether err is a confinement failure rather than an I/O one.
func IsViolation(err error) bool {
	return errors.Is(err, ErrOutsideRoot) || errors.Is(err, ErrSymlink)
}
