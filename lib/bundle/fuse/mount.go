// Copyright 2026 The Montage Authors
// SPDX-License-Identifier: Apache-2.0

package fuse

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/montage-foundation/montage/lib/bundle"
)

// mediaPrefix is where bundle media lives in the entry table.
const mediaPrefix = "media/"

// Options configures the FUSE mount.
type Options struct {
	// Mountpoint is the directory where the filesystem is mounted.
	Mountpoint string

	// Reader is the open bundle. For encrypted bundles it must be
	// unlocked before mounting. The reader must stay open until the
	// server is unmounted.
	Reader *bundle.Reader

	// AllowOther permits other users (including root) to access the
	// mount. Requires user_allow_other in /etc/fuse.conf. Set this
	// when a render farm user other than the mounting one needs to
	// read the media.
	AllowOther bool

	// Logger receives diagnostic messages. If nil, an error-level
	// stderr logger is used.
	Logger *slog.Logger
}

// Mount mounts the bundle FUSE filesystem at the configured
// mountpoint. The caller must call Unmount on the returned server
// when done. The mountpoint directory is created if it does not
// exist.
func Mount(options Options) (*fuse.Server, error) {
	if options.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if options.Reader == nil {
		return nil, fmt.Errorf("bundle reader is required")
	}
	if !options.Reader.Unlocked() {
		return nil, fmt.Errorf("bundle is encrypted: unlock the reader before mounting")
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	// Ensure the mountpoint exists.
	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", options.Mountpoint, err)
	}

	root := &rootNode{options: &options}

	entryTimeout := 1 * time.Second
	attrTimeout := 1 * time.Second
	negativeTimeout := 100 * time.Millisecond

	server, err := gofuse.Mount(options.Mountpoint, root, &gofuse.Options{
		EntryTimeout:    &entryTimeout,
		AttrTimeout:     &attrTimeout,
		NegativeTimeout: &negativeTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     "montage-bundle",
			Name:       "montage",
			AllowOther: options.AllowOther,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", options.Mountpoint, err)
	}

	options.Logger.Info("bundle FUSE filesystem mounted",
		"mountpoint", options.Mountpoint,
		"bundle", bundle.FormatID(options.Reader.ID()),
	)
	return server, nil
}

// rootNode is the filesystem root: the document entry as a regular
// file plus, when the bundle carries media, a "media" directory.
type rootNode struct {
	gofuse.Inode
	options *Options
}

var _ gofuse.InodeEmbedder = (*rootNode)(nil)
var _ gofuse.NodeOnAdder = (*rootNode)(nil)

func (r *rootNode) OnAdd(ctx context.Context) {
	manifest := r.options.Reader.Manifest()

	if entry, ok := manifest.DocumentEntry(); ok {
		node := &entryFileNode{options: r.options, entry: entry}
		child := r.NewPersistentInode(ctx, node, gofuse.StableAttr{Mode: syscall.S_IFREG})
		r.AddChild(manifest.Document, child, true)
	}

	if len(manifest.MediaEntries()) > 0 {
		mediaDir := r.NewPersistentInode(ctx, &mediaDirNode{options: r.options}, gofuse.StableAttr{Mode: syscall.S_IFDIR})
		r.AddChild("media", mediaDir, true)
	}
}

// mediaDirNode is a directory under "media/". It dynamically lists
// the immediate children of its prefix, so nested media paths in
// hand-built bundles mount correctly even though Create writes a
// flat layout.
type mediaDirNode struct {
	gofuse.Inode
	options *Options
	prefix  string // empty for media/ itself, "foo/" for subdirectories
}

var _ gofuse.InodeEmbedder = (*mediaDirNode)(nil)
var _ gofuse.NodeLookuper = (*mediaDirNode)(nil)
var _ gofuse.NodeReaddirer = (*mediaDirNode)(nil)

func (m *mediaDirNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	fullPath := mediaPrefix + m.prefix + name
	manifest := m.options.Reader.Manifest()

	// Check if this exact path is an entry (leaf file).
	entry, isEntry := manifest.Entry(fullPath)

	// Check if this path is a prefix of other entries (directory).
	childPrefix := fullPath + "/"
	isDir := false
	for _, candidate := range manifest.Entries {
		if strings.HasPrefix(candidate.Path, childPrefix) {
			isDir = true
			break
		}
	}

	if isDir {
		// Directory takes precedence over a same-named entry.
		child := m.NewPersistentInode(ctx, &mediaDirNode{
			options: m.options,
			prefix:  m.prefix + name + "/",
		}, gofuse.StableAttr{Mode: syscall.S_IFDIR})
		out.Mode = syscall.S_IFDIR | 0o555
		return child, 0
	}

	if isEntry {
		node := &entryFileNode{options: m.options, entry: entry}
		child := m.NewPersistentInode(ctx, node, gofuse.StableAttr{Mode: syscall.S_IFREG})
		out.Mode = syscall.S_IFREG | 0o444
		out.Size = uint64(entry.Size)
		return child, 0
	}

	return nil, syscall.ENOENT
}

func (m *mediaDirNode) Readdir(ctx context.Context) (gofuse.DirStream, syscall.Errno) {
	manifest := m.options.Reader.Manifest()
	dirPrefix := mediaPrefix + m.prefix

	// Extract unique immediate children under our prefix.
	seen := make(map[string]bool)
	var entries []fuse.DirEntry

	for _, entry := range manifest.Entries {
		relative := strings.TrimPrefix(entry.Path, dirPrefix)
		if relative == entry.Path || relative == "" {
			continue
		}

		// Extract the first path component.
		component := relative
		isDirectory := false
		if slashIndex := strings.IndexByte(relative, '/'); slashIndex >= 0 {
			component = relative[:slashIndex]
			isDirectory = true
		}

		if seen[component] {
			continue
		}
		seen[component] = true

		mode := uint32(syscall.S_IFREG)
		if isDirectory {
			mode = syscall.S_IFDIR
		}

		entries = append(entries, fuse.DirEntry{
			Name: component,
			Mode: mode,
		})
	}

	return &sliceDirStream{entries: entries}, 0
}

// entryFileNode represents a single bundle entry as a regular file.
// Content is loaded (read, decrypted, decompressed, digest-checked)
// lazily on first Open and kept for the life of the mount.
type entryFileNode struct {
	gofuse.Inode
	options *Options
	entry   bundle.Entry

	// mu protects data and loaded (lazy initialization).
	mu     sync.Mutex
	data   []byte
	loaded bool
}

var _ gofuse.InodeEmbedder = (*entryFileNode)(nil)
var _ gofuse.NodeGetattrer = (*entryFileNode)(nil)
var _ gofuse.NodeOpener = (*entryFileNode)(nil)
var _ gofuse.NodeReader = (*entryFileNode)(nil)

func (e *entryFileNode) Getattr(ctx context.Context, f gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = syscall.S_IFREG | 0o444
	out.Size = uint64(e.entry.Size)
	out.Blocks = (out.Size + 511) / 512
	return 0
}

func (e *entryFileNode) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	// Reject anything that isn't a read.
	if flags&(syscall.O_WRONLY|syscall.O_RDWR) != 0 {
		return nil, 0, syscall.EROFS
	}

	if err := e.ensureContent(); err != nil {
		e.options.Logger.Error("failed to load bundle entry",
			"path", e.entry.Path,
			"error", err,
		)
		return nil, 0, syscall.EIO
	}

	// Enable kernel page cache. Bundle content is immutable, so the
	// cache is always valid.
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (e *entryFileNode) Read(ctx context.Context, f gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	if err := e.ensureContent(); err != nil {
		return nil, syscall.EIO
	}

	e.mu.Lock()
	data := e.data
	e.mu.Unlock()

	if off >= int64(len(data)) {
		return fuse.ReadResultData(nil), 0
	}
	end := off + int64(len(dest))
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return fuse.ReadResultData(data[off:end]), 0
}

func (e *entryFileNode) ensureContent() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.loaded {
		return nil
	}

	content, err := e.options.Reader.EntryBytes(e.entry.Path)
	if err != nil {
		return err
	}
	e.data = content
	e.loaded = true
	return nil
}

// sliceDirStream implements fs.DirStream from a slice of entries.
type sliceDirStream struct {
	entries []fuse.DirEntry
	index   int
}

func (s *sliceDirStream) HasNext() bool {
	return s.index < len(s.entries)
}

func (s *sliceDirStream) Next() (fuse.DirEntry, syscall.Errno) {
	if s.index >= len(s.entries) {
		return fuse.DirEntry{}, syscall.EINVAL
	}
	entry := s.entries[s.index]
	s.index++
	return entry, 0
}

func (s *sliceDirStream) Close() {}
