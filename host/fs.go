package host

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"

	experimentalsys "github.com/tetratelabs/wazero/experimental/sys"

	"github.com/reglet-dev/runguard/domain/entities"
)

// guardedFS reports opens and mutations to the runner before delegating to
// the host directory. A refused operation fails with EACCES.
type guardedFS struct {
	experimentalsys.FS

	root   string
	runner *Runner
	ctx    context.Context
}

// hostPath maps a path relative to the mount to an absolute host path.
func (g *guardedFS) hostPath(name string) string {
	p := filepath.Join(g.root, filepath.FromSlash(name))
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func (g *guardedFS) check(name, mode string) experimentalsys.Errno {
	event := entities.Event{Kind: entities.EventOpen, Path: g.hostPath(name), Mode: mode}
	if err := g.runner.emit(g.ctx, event); err != nil {
		return experimentalsys.EACCES
	}
	return 0
}

// OpenFile implements experimentalsys.FS. Opens of the mount root or of an
// existing directory are not reported.
func (g *guardedFS) OpenFile(name string, flag experimentalsys.Oflag, perm fs.FileMode) (experimentalsys.File, experimentalsys.Errno) {
	if !g.isDir(name, flag) {
		if errno := g.check(name, openMode(flag)); errno != 0 {
			return nil, errno
		}
	}
	return g.FS.OpenFile(name, flag, perm)
}

// isDir reports whether an open of name targets a directory. wazero opens
// the mount root read-only, without O_DIRECTORY, the first time a guest
// touches its preopen.
func (g *guardedFS) isDir(name string, flag experimentalsys.Oflag) bool {
	if flag&experimentalsys.O_DIRECTORY != 0 {
		return true
	}
	if path.Clean("/"+name) == "/" {
		return true
	}
	st, errno := g.FS.Stat(name)
	return errno == 0 && st.Mode.IsDir()
}

// Mkdir implements experimentalsys.FS.
func (g *guardedFS) Mkdir(name string, perm fs.FileMode) experimentalsys.Errno {
	if errno := g.check(name, "w"); errno != 0 {
		return errno
	}
	return g.FS.Mkdir(name, perm)
}

// Rmdir implements experimentalsys.FS.
func (g *guardedFS) Rmdir(name string) experimentalsys.Errno {
	if errno := g.check(name, "w"); errno != 0 {
		return errno
	}
	return g.FS.Rmdir(name)
}

// Unlink implements experimentalsys.FS.
func (g *guardedFS) Unlink(name string) experimentalsys.Errno {
	if errno := g.check(name, "w"); errno != 0 {
		return errno
	}
	return g.FS.Unlink(name)
}

// Rename implements experimentalsys.FS. Both ends are reported.
func (g *guardedFS) Rename(from, to string) experimentalsys.Errno {
	if errno := g.check(from, "w"); errno != 0 {
		return errno
	}
	if errno := g.check(to, "w"); errno != 0 {
		return errno
	}
	return g.FS.Rename(from, to)
}

// Chmod implements experimentalsys.FS.
func (g *guardedFS) Chmod(name string, perm fs.FileMode) experimentalsys.Errno {
	if errno := g.check(name, "w"); errno != 0 {
		return errno
	}
	return g.FS.Chmod(name, perm)
}

// Link implements experimentalsys.FS. The new name is reported.
func (g *guardedFS) Link(oldPath, newPath string) experimentalsys.Errno {
	if errno := g.check(newPath, "w"); errno != 0 {
		return errno
	}
	return g.FS.Link(oldPath, newPath)
}

// Symlink implements experimentalsys.FS. The link name is reported.
func (g *guardedFS) Symlink(oldPath, linkName string) experimentalsys.Errno {
	if errno := g.check(linkName, "w"); errno != 0 {
		return errno
	}
	return g.FS.Symlink(oldPath, linkName)
}

// openMode renders open flags as the equivalent fopen mode string.
func openMode(flag experimentalsys.Oflag) string {
	access := flag & (experimentalsys.O_RDONLY | experimentalsys.O_RDWR | experimentalsys.O_WRONLY)
	switch access {
	case experimentalsys.O_RDWR:
		switch {
		case flag&experimentalsys.O_APPEND != 0:
			return "a+"
		case flag&(experimentalsys.O_CREAT|experimentalsys.O_TRUNC) != 0:
			return "w+"
		default:
			return "r+"
		}
	case experimentalsys.O_WRONLY:
		switch {
		case flag&experimentalsys.O_APPEND != 0:
			return "a"
		case flag&experimentalsys.O_CREAT != 0 && flag&experimentalsys.O_EXCL != 0:
			return "x"
		default:
			return "w"
		}
	default:
		return "r"
	}
}
