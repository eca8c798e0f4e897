package server

import (
	"time"

	"github.com/brettbedarf/dirshell/config"
	"github.com/brettbedarf/dirshell/filesystem"
	"github.com/brettbedarf/dirshell/internal/util"
	"github.com/brettbedarf/dirshell/shell"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// MountView serves a shell's directory tree as a read-only FUSE filesystem
type MountView struct {
	sh     *shell.Shell
	cfg    *config.Config
	server *fuse.Server
	logger util.Logger
}

// New creates a MountView of sh. Nothing is mounted until Serve.
func New(sh *shell.Shell, cfg *config.Config) *MountView {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	return &MountView{
		sh:     sh,
		cfg:    cfg,
		logger: util.GetLogger("MountView").With().Str("session", sh.ID()).Logger(),
	}
}

// Serve mounts the tree at mountPoint and returns once the mount is live
func (m *MountView) Serve(mountPoint string) error {
	// the tree changes under the kernel's feet, so nothing may be cached
	var noCache time.Duration
	opts := m.cfg.MountOptions
	root := &dirNode{sh: m.sh, index: filesystem.RootIndex}

	srv, err := fs.Mount(mountPoint, root, &fs.Options{
		EntryTimeout:    &noCache,
		AttrTimeout:     &noCache,
		NegativeTimeout: &noCache,
		MountOptions: fuse.MountOptions{
			Name:       opts.Name,
			FsName:     opts.FsName,
			AllowOther: opts.AllowOther,
			Debug:      opts.Debug || m.cfg.LogLvl == util.TraceLevel,
			Logger:     util.NewLogLogger("FuseServer", util.TraceLevel),
		},
	})
	if err != nil {
		return err
	}
	m.server = srv
	m.logger.Info().Str("mountpoint", mountPoint).Msg("Tree mounted")
	return nil
}

// ServeAsync mounts in the background and reports the result on the channel
func (m *MountView) ServeAsync(mountPoint string) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- m.Serve(mountPoint)
		close(done)
	}()

	return done
}

// Unmount cleanly unmounts the filesystem. It is a no-op when not mounted.
func (m *MountView) Unmount() error {
	if m.server == nil {
		return nil
	}
	if err := m.server.Unmount(); err != nil {
		return err
	}
	m.server = nil
	m.logger.Info().Msg("Tree unmounted")
	return nil
}
