package action

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/portside/portside/internal/safecall"
)

// validate rejects bad input before any engine call. Every rejection is a
// safecall validation error, so it reaches the log and the error slot through
// the same channel as an engine failure.
func validate(act Action, targets []string, p Params) error {
	if requiresTarget(act) && len(targets) == 0 {
		return safecall.Validation(act.String(), errors.New("no target selected"))
	}

	switch act {
	case RenameContainer:
		if p.Name == "" {
			return safecall.Validation(act.String(), errors.New("new name is required"))
		}
	case CommitContainer:
		if p.Repo == "" {
			return safecall.Validation(act.String(), errors.New("repository is required"))
		}
	case CopyToContainer:
		if err := validateCopy(p.Src, p.Dest); err != nil {
			return safecall.Validation(act.String(), err)
		}
	case PullImage:
		if p.Ref == "" {
			return safecall.Validation(act.String(), errors.New("image reference is required"))
		}
	case BuildImage:
		if p.Tag == "" {
			return safecall.Validation(act.String(), errors.New("image tag is required"))
		}
		if err := validateDir(p.Dir); err != nil {
			return safecall.Validation(act.String(), err)
		}
	case SaveImage:
		if p.Path == "" {
			return safecall.Validation(act.String(), errors.New("archive path is required"))
		}
	case LoadImage:
		if err := validateFile(p.Path); err != nil {
			return safecall.Validation(act.String(), err)
		}
	case CreateVolume:
		if p.Name == "" {
			return safecall.Validation(act.String(), errors.New("volume name is required"))
		}
	}
	return nil
}

// validateCopy checks a host source and container destination for copy-in.
// Traversal sequences and home-directory shortcuts are rejected outright;
// the source must exist on the host.
func validateCopy(src, dest string) error {
	if src == "" {
		return errors.New("source path is required")
	}
	if strings.HasPrefix(src, "~") {
		return errors.New("source path must not use a home-directory shortcut")
	}
	if hasTraversal(src) {
		return fmt.Errorf("source path %q contains a traversal sequence", src)
	}
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("source path %q does not exist", src)
	}
	if dest == "" {
		return errors.New("destination path is required")
	}
	if strings.HasPrefix(dest, "~") || hasTraversal(dest) {
		return fmt.Errorf("destination path %q is not allowed", dest)
	}
	return nil
}

func validateDir(dir string) error {
	if dir == "" {
		return errors.New("build directory is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("build directory %q does not exist", dir)
	}
	if !info.IsDir() {
		return fmt.Errorf("build path %q is not a directory", dir)
	}
	return nil
}

func validateFile(path string) error {
	if path == "" {
		return errors.New("archive path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("archive %q does not exist", path)
	}
	return nil
}

// hasTraversal reports whether any path element is "..".
func hasTraversal(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == ".." {
			return true
		}
	}
	return false
}
