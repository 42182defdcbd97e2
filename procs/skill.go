package procs

import "github.com/kyufie-go/hltool/recordfmt"

// NewSkillProcessor builds the skill record processor. Binary field
// order is name, data, desc; the JSON sidecar presents name, desc, data.
func NewSkillProcessor() Processor {
	return &docArrayProcessor{
		name:    "skillproc",
		workDir: "skill",
		targets: []string{
			"c/csv/skill_00.dat",
			"c/csv/skill_01.dat",
			"c/csv/skill_02.dat",
			"c/csv/skill_03.dat",
			"c/csv/skill_05.dat",
		},
		schema: recordfmt.Schema{Fields: []recordfmt.Field{
			{Key: "name", Codec: recordfmt.P8LegacyString()},
			{Key: "data", Codec: recordfmt.FixedBytes(47)},
			{Key: "desc", Codec: recordfmt.P8LegacyString()},
		}},
		displayOrder: []string{"name", "desc", "data"},
	}
}
