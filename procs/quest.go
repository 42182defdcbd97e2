package procs

import (
	"fmt"

	"github.com/kyufie-go/hltool/recordfmt"
)

// NewQuestProcessor builds the quest record processor. Binary field
// order is data1, name, desc, type, data2; the JSON sidecar presents
// name, desc, type, data1, data2.
func NewQuestProcessor() Processor {
	targets := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		targets = append(targets, fmt.Sprintf("c/csv/quest_%d.dat", i))
	}
	schema := recordfmt.Schema{Fields: []recordfmt.Field{
		{Key: "data1", Codec: recordfmt.FixedBytes(3)},
		{Key: "name", Codec: recordfmt.P8LegacyString()},
		{Key: "desc", Codec: recordfmt.P8LegacyString()},
		{Key: "type", Codec: recordfmt.P8LegacyString()},
		{Key: "data2", Codec: recordfmt.FixedBytes(38)},
	}}
	return &docArrayProcessor{
		name:         "questproc",
		workDir:      "quest",
		targets:      targets,
		schema:       schema,
		displayOrder: []string{"name", "desc", "type", "data1", "data2"},
	}
}
