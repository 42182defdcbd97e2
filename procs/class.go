package procs

import "github.com/kyufie-go/hltool/recordfmt"

// NewClassProcessor builds the class record processor.
func NewClassProcessor() Processor {
	return &docArrayProcessor{
		name:    "classproc",
		workDir: "misc",
		targets: []string{"c/csv/class.dat"},
		schema: recordfmt.Schema{Fields: []recordfmt.Field{
			{Key: "name", Codec: recordfmt.P8LegacyString()},
			{Key: "data", Codec: recordfmt.FixedBytes(59)},
		}},
	}
}
