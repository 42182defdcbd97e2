package procs

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/kyufie-go/hltool/diag"
	"github.com/kyufie-go/hltool/recordfmt"
)

var itemTargetRe = regexp.MustCompile(`item_([0-9]+)\.dat$`)

// equipmentSchema is the fixed 16-field group-specific tail shared by
// item groups 0 through 10 (equipment).
var equipmentSchema = recordfmt.Schema{Fields: []recordfmt.Field{
	{Key: "sprite_id", Codec: recordfmt.Int{Bits: 16}},
	{Key: "sprite_color_effect", Codec: recordfmt.Int{Bits: 16}},
	{Key: "atk_speed", Codec: recordfmt.Int{Bits: 8}},
	{Key: "class", Codec: recordfmt.Int{Bits: 8}},
	{Key: "min_atk/phys_def", Codec: recordfmt.Int{Bits: 16}},
	{Key: "max_atk/magic_def", Codec: recordfmt.Int{Bits: 16}},
	{Key: "param_ah", Codec: recordfmt.Int{Bits: 16}},
	{Key: "param_ch", Codec: recordfmt.Int{Bits: 8}},
	{Key: "param_dh", Codec: recordfmt.Int{Bits: 8}},
	{Key: "param_eh", Codec: recordfmt.Int{Bits: 8}},
	{Key: "param_fh", Codec: recordfmt.Int{Bits: 8}},
	{Key: "param_10h", Codec: recordfmt.Int{Bits: 8}},
	{Key: "param_11h", Codec: recordfmt.Int{Bits: 8}},
	{Key: "param_12h", Codec: recordfmt.Int{Bits: 8}},
	{Key: "param_13h", Codec: recordfmt.Int{Bits: 8}},
	{Key: "param_14h", Codec: recordfmt.Int{Bits: 8}},
}}

// itemProcessor dispatches a different "extras" codec per item file
// depending on the numeric group id embedded in the file name: groups
// 0-10 are fixed-schema equipment, groups 11-18 are opaque remainder
// bytes. The dispatch happens once per file, before the schema for that
// file is built, never by mutating a schema shared across files.
type itemProcessor struct {
	targets []string
}

// NewItemProcessor builds the item record processor.
func NewItemProcessor() Processor {
	targets := make([]string, 0, 19)
	for i := 0; i < 19; i++ {
		targets = append(targets, fmt.Sprintf("c/csv/item_%02d.dat", i))
	}
	return &itemProcessor{targets: targets}
}

func (p *itemProcessor) Name() string      { return "itemproc" }
func (p *itemProcessor) WorkDir() string   { return "item" }
func (p *itemProcessor) Targets() []string { return p.targets }

func itemGroupID(target string) (int, error) {
	m := itemTargetRe.FindStringSubmatch(target)
	if m == nil {
		return 0, fmt.Errorf("item target %q does not match item_NN.dat", target)
	}
	return strconv.Atoi(m[1])
}

// itemSchema builds the schema for one item file: general fields in
// binary order (type_id, name, price, desc) plus a group-dependent
// "extras" tail.
func itemSchema(groupID int) recordfmt.Schema {
	var extras recordfmt.Codec
	if groupID >= 0 && groupID <= 10 {
		extras = recordfmt.Struct{Schema: equipmentSchema}
	} else {
		extras = recordfmt.RemainderBytes()
	}
	return recordfmt.Schema{Fields: []recordfmt.Field{
		{Key: "type_id", Codec: recordfmt.Int{Bits: 16}},
		{Key: "name", Codec: recordfmt.P8LegacyString()},
		{Key: "price", Codec: recordfmt.Int{Bits: 32}},
		{Key: "desc", Codec: recordfmt.P8LegacyString()},
		{Key: "extras", Codec: extras},
	}}
}

var itemDisplayOrder = []string{"name", "desc", "price", "type_id", "extras"}

func (p *itemProcessor) Disassemble(target, rawPath, sidecarDir string, sink *diag.Sink) error {
	gid, err := itemGroupID(target)
	if err != nil {
		return err
	}
	schema := itemSchema(gid)

	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return err
	}
	docs, err := recordfmt.ReadPascalArray(bytes.NewReader(raw), 16, 16, sink,
		func(sub *bytes.Reader, idx int) (*recordfmt.Document, error) {
			return schema.ReadBounded(sub, sink)
		})
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}
	for i, d := range docs {
		docs[i] = d.Project(itemDisplayOrder)
	}
	return writeJSONSidecar(sidecarPath(sidecarDir, target), docs)
}

func (p *itemProcessor) Assemble(target, sidecarDir, outPath string, sink *diag.Sink) error {
	gid, err := itemGroupID(target)
	if err != nil {
		return err
	}
	schema := itemSchema(gid)

	var docs []*recordfmt.Document
	if err := readJSONSidecar(sidecarPath(sidecarDir, target), &docs); err != nil {
		return err
	}
	var buf bytes.Buffer
	err = recordfmt.WritePascalArray(&buf, 16, 16, docs,
		func(elemBuf *bytes.Buffer, e *recordfmt.Document, idx int) error {
			_, err := schema.Write(elemBuf, e, sink)
			return err
		})
	if err != nil {
		return fmt.Errorf("%s: %w", target, err)
	}
	return os.WriteFile(outPath, buf.Bytes(), 0o644)
}
