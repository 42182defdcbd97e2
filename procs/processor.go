// Package procs implements the nine record processors: the translation
// between one raw file under an extracted archive's raw/ tree and its
// editable sidecar (JSON, PNG, or both) under the processor's own work
// directory.
package procs

import (
	"fmt"

	"github.com/kyufie-go/hltool/diag"
)

// Processor disassembles one raw archive file into editable sidecar
// files, and assembles sidecar files back into the raw file's bytes.
// Implementations never chdir; every path they need is passed in
// explicitly.
type Processor interface {
	// Name identifies the processor in log output, e.g. "questproc".
	Name() string
	// WorkDir is the subdirectory of the base directory this
	// processor's sidecars live under, e.g. "quest".
	WorkDir() string
	// Targets lists the archive-relative raw file paths this
	// processor owns.
	Targets() []string
	// Disassemble reads the raw file at rawPath (target's raw copy)
	// and writes sidecar file(s) under sidecarDir.
	Disassemble(target, rawPath, sidecarDir string, sink *diag.Sink) error
	// Assemble reads sidecar file(s) under sidecarDir and writes the
	// reassembled raw bytes to outPath.
	Assemble(target, sidecarDir, outPath string, sink *diag.Sink) error
}

// All returns the nine record processors in the order the original
// tool runs them, which also governs log ordering during extract/create.
func All() []Processor {
	return []Processor{
		NewCommonTextProcessor(),
		NewSceneProcessor(),
		NewQuestProcessor(),
		NewEnemyProcessor(),
		NewClassProcessor(),
		NewSkillProcessor(),
		NewItemProcessor(),
		NewMGRProcessor(),
		NewGBMProcessor(),
	}
}

// numberedTargets builds a target list like "c/map/tile_%03d.gbm" for i
// in [0, count), skipping any index named in skip.
func numberedTargets(format string, count int, skip ...int) []string {
	skipSet := make(map[int]bool, len(skip))
	for _, s := range skip {
		skipSet[s] = true
	}
	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if skipSet[i] {
			continue
		}
		out = append(out, fmt.Sprintf(format, i))
	}
	return out
}
