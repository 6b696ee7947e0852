package taskgraph

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mvdan.cc/sh/v3/interp"
)

// commandOverrides routes rm, mv and mkdir to our cross-platform
// implementations to make sure they behave consistently. Everything else goes
// to the default exec handler.
func commandOverrides(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(ctx context.Context, args []string) error {
		if len(args) > 0 {
			hc := interp.HandlerCtx(ctx)
			switch args[0] {
			case "rm":
				return runRemove(hc, args[1:])
			case "mv":
				return runMove(hc, args[1:])
			case "mkdir":
				return runMkdir(hc, args[1:])
			}
		}

		return next(ctx, args)
	}
}

var defaultOpenHandler = interp.DefaultOpenHandler()

// openOverrides maps /dev/null to the platform's null device so redirects
// keep working on Windows.
func openOverrides(ctx context.Context, path string, flag int, perm os.FileMode) (io.ReadWriteCloser, error) {
	if path == "/dev/null" {
		path = os.DevNull
	}

	return defaultOpenHandler(ctx, path, flag, perm)
}

func failf(hc interp.HandlerContext, format string, a ...interface{}) error {
	fmt.Fprintf(hc.Stderr, format+"\n", a...)
	return interp.NewExitStatus(1)
}

func resolveArg(hc interp.HandlerContext, arg string) string {
	if filepath.IsAbs(arg) {
		return filepath.Clean(arg)
	}
	return filepath.Join(hc.Dir, arg)
}

func splitFlags(args []string) (flags string, paths []string) {
	for _, arg := range args {
		if len(arg) > 1 && arg[0] == '-' {
			flags += arg[1:]
		} else {
			paths = append(paths, arg)
		}
	}
	return flags, paths
}

// runRemove deletes the given paths. With -f, paths that don't exist (or
// glob patterns that matched nothing and arrived here literally) are
// silently skipped, which keeps deletions idempotent.
func runRemove(hc interp.HandlerContext, args []string) error {
	flags, paths := splitFlags(args)
	recursive := false
	force := false

	for _, flag := range flags {
		switch flag {
		case 'r', 'R':
			recursive = true
		case 'f':
			force = true
		default:
			return failf(hc, "rm: unsupported flag -%c", flag)
		}
	}

	for _, item := range paths {
		path := resolveArg(hc, item)
		info, err := os.Stat(path)
		if err != nil {
			if force && os.IsNotExist(err) {
				continue
			}
			return failf(hc, "rm: could not stat %s: %v", item, err)
		}

		if info.IsDir() && !recursive {
			return failf(hc, "rm: %s is a directory but -r wasn't passed", item)
		}

		if err := os.RemoveAll(path); err != nil {
			return failf(hc, "rm: could not delete %s: %v", item, err)
		}
	}

	return nil
}

func runMkdir(hc interp.HandlerContext, args []string) error {
	flags, paths := splitFlags(args)
	makeParents := false

	for _, flag := range flags {
		switch flag {
		case 'p':
			makeParents = true
		default:
			return failf(hc, "mkdir: unsupported flag -%c", flag)
		}
	}

	for _, item := range paths {
		path := resolveArg(hc, item)

		var err error
		if makeParents {
			err = os.MkdirAll(path, 0o770)
		} else {
			err = os.Mkdir(path, 0o770)
		}
		if err != nil {
			return failf(hc, "mkdir: failed to create %s: %v", item, err)
		}
	}

	return nil
}

func runMove(hc interp.HandlerContext, args []string) error {
	_, paths := splitFlags(args)
	if len(paths) < 2 {
		return failf(hc, "mv: not enough arguments")
	}

	dest := resolveArg(hc, paths[len(paths)-1])
	sources := paths[:len(paths)-1]

	destInfo, err := os.Stat(dest)
	destIsDir := err == nil && destInfo.IsDir()
	if err != nil && !os.IsNotExist(err) {
		return failf(hc, "mv: could not stat %s: %v", paths[len(paths)-1], err)
	}

	if len(sources) > 1 && !destIsDir {
		return failf(hc, "mv: can't move multiple items to %s because it is not a directory", paths[len(paths)-1])
	}

	for _, item := range sources {
		src := resolveArg(hc, item)
		target := dest
		if destIsDir {
			target = filepath.Join(dest, filepath.Base(src))
		}

		if err := os.Rename(src, target); err != nil {
			return failf(hc, "mv: failed to move %s to %s: %v", item, target, err)
		}
	}

	return nil
}
