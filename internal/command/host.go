package command

import (
	"log/slog"

	"github.com/pkg/errors"
)

// host implements the host primitives on top of the local file system
// and process table.
type host struct {
	opts   *Options
	logger *slog.Logger
}

// NewHostRouter returns a router serving every host primitive.
func NewHostRouter(funcs ...OptionFunc) (*Router, error) {
	opts, err := NewOptions(funcs...)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	h := &host{
		opts:   opts,
		logger: opts.Logger.With("component", "command-host"),
	}

	router := NewRouter(opts.Logger)

	router.Handle(PathExists, h.pathExists)
	router.Handle(PathJoin, h.pathJoin)
	router.Handle(PathSplit, h.pathSplit)
	router.Handle(PathRead, h.pathRead)
	router.Handle(PathDelete, h.pathDelete)
	router.Handle(PathRelativeWithHomeDir, h.pathRelativeWithHomeDir)
	router.Handle(PathAbsoluteWithHomeDir, h.pathAbsoluteWithHomeDir)
	router.Handle(PathMakeUnusedPath, h.pathMakeUnusedPath)
	router.Handle(PathNewTempFilePath, h.pathNewTempFilePath)

	router.Handle(DirList, h.dirList)

	router.Handle(FileRead, h.fileRead)
	router.Handle(FileWrite, h.fileWrite)
	router.Handle(FileRename, h.fileRename)
	router.Handle(FileCopy, h.fileCopy)
	router.Handle(FileHash, h.fileHash)
	router.Handle(FileInfoBasic, h.fileInfoBasic)
	router.Handle(FileCountFiles, h.fileCountFiles)
	router.Handle(FileExifGet, h.fileExifGet)

	router.Handle(EnvPlatform, h.envPlatform)
	router.Handle(EnvArch, h.envArch)
	router.Handle(EnvAppDataDir, h.envAppDataDir)
	router.Handle(EnvHomeDir, h.envHomeDir)
	router.Handle(EnvIsDebug, h.envIsDebug)

	router.HandlePrefix(ShellPrefix, h.shell)
	router.HandlePrefix(ToolExecutablePrefix, h.toolExecutable)

	return router, nil
}
