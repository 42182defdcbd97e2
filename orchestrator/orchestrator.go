// Package orchestrator drives a full extract or create run: walking the
// VFS archive's manifest, handing each raw file to the processor that
// owns it, and staging reassembled files back into a fresh archive.
package orchestrator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kyufie-go/hltool/diag"
	"github.com/kyufie-go/hltool/hlerr"
	"github.com/kyufie-go/hltool/procs"
	"github.com/kyufie-go/hltool/vfsarchive"
)

// ToolVersion is recorded into vfs.json on extract and checked on
// create; a mismatch refuses to proceed rather than risk reassembling
// an archive laid out by an incompatible version of this tool.
const ToolVersion = "2.0.0"

const metaFileName = "vfs.json"
const stagingMarker = ".hltool-tmp"

type meta struct {
	Version string `json:"version"`
	RawOnly bool   `json:"raw_only"`
}

// Extract disassembles archive into baseDir: every file named in the
// archive's manifest is written under baseDir/raw, and unless rawOnly is
// set, every processor target is further decoded into its own work
// directory under baseDir.
func Extract(archive io.ReadSeeker, baseDir string, rawOnly bool, sink *diag.Sink) error {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}
	if err := writeMeta(baseDir, meta{Version: ToolVersion, RawOnly: rawOnly}); err != nil {
		return err
	}

	idx, err := vfsarchive.BuildIndex(archive)
	if err != nil {
		return err
	}
	names, err := vfsarchive.ReadManifest(archive, idx)
	if err != nil {
		return err
	}

	rawDir := filepath.Join(baseDir, "raw")
	for _, name := range names {
		sink.Log("[vfsproc] Extracting: %s", name)
		data, err := vfsarchive.ReadEntry(archive, idx, name)
		if err != nil {
			return fmt.Errorf("extracting %q: %w", name, err)
		}
		dest := filepath.Join(rawDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return err
		}
	}

	if rawOnly {
		return nil
	}

	for _, proc := range procs.All() {
		sidecarDir := filepath.Join(baseDir, proc.WorkDir())
		if err := os.MkdirAll(sidecarDir, 0o755); err != nil {
			return err
		}
		for _, target := range proc.Targets() {
			sink.Log("[%s] Disassemble: %s", proc.Name(), target)
			rawPath := filepath.Join(rawDir, filepath.FromSlash(target))
			if err := proc.Disassemble(target, rawPath, sidecarDir, sink); err != nil {
				return fmt.Errorf("%s: %w", proc.Name(), err)
			}
		}
	}
	return nil
}

// Create reassembles baseDir back into archive. It refuses to run if
// vfs.json's recorded tool version doesn't match ToolVersion.
func Create(archive io.Writer, baseDir string, sink *diag.Sink) error {
	m, err := readMeta(baseDir)
	if err != nil {
		return err
	}
	if m.Version != ToolVersion {
		return fmt.Errorf("%w: archive was extracted by %s, running tool is %s", hlerr.ErrIncompatibleVersion, m.Version, ToolVersion)
	}

	rawDir := filepath.Join(baseDir, "raw")

	if m.RawOnly {
		return packDir(archive, rawDir, sink)
	}

	tmpDir := filepath.Join(baseDir, ".tmp")
	if err := stageTmp(rawDir, tmpDir); err != nil {
		return err
	}

	for _, proc := range procs.All() {
		sidecarDir := filepath.Join(baseDir, proc.WorkDir())
		for _, target := range proc.Targets() {
			sink.Log("[%s] Assemble: %s", proc.Name(), target)
			outPath := filepath.Join(tmpDir, filepath.FromSlash(target))
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return err
			}
			if err := proc.Assemble(target, sidecarDir, outPath, sink); err != nil {
				return fmt.Errorf("%s: %w", proc.Name(), err)
			}
		}
	}

	return packDir(archive, tmpDir, sink)
}

// stageTmp prepares tmpDir as a working copy of rawDir. A pre-existing
// tmpDir is only removed if it carries this tool's marker file (the mark
// of a prior hltool run) or is empty; otherwise Create refuses to touch it
// rather than silently delete files it may not own.
func stageTmp(rawDir, tmpDir string) error {
	if info, err := os.Stat(tmpDir); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%w: %s exists and is not a directory", hlerr.ErrStagingDirty, tmpDir)
		}
		if _, err := os.Stat(filepath.Join(tmpDir, stagingMarker)); err != nil {
			entries, lerr := os.ReadDir(tmpDir)
			if lerr == nil && len(entries) > 0 {
				return fmt.Errorf("%w: %s", hlerr.ErrStagingDirty, tmpDir)
			}
		}
		if err := os.RemoveAll(tmpDir); err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := copyTree(rawDir, tmpDir); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(tmpDir, stagingMarker), nil, 0o644)
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, info.Mode())
	})
}

// packDir writes every regular file under dir into archive as a VFS
// entry, addressed by its path relative to dir, then appends the
// manifest. The staging marker file is never packed.
func packDir(archive io.Writer, dir string, sink *diag.Sink) error {
	w := vfsarchive.NewWriter(archive)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == stagingMarker {
			return nil
		}
		sink.Log("[vfsproc] Packing: %s", rel)
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return w.WriteFile(rel, data)
	})
	if err != nil {
		return err
	}
	return w.WriteManifest()
}

func writeMeta(baseDir string, m meta) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(baseDir, metaFileName), data, 0o644)
}

func readMeta(baseDir string) (meta, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, metaFileName))
	if err != nil {
		return meta{}, err
	}
	var m meta
	if err := json.Unmarshal(data, &m); err != nil {
		return meta{}, err
	}
	return m, nil
}
