package procs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/kyufie-go/hltool/diag"
	"github.com/kyufie-go/hltool/recordfmt"
)

func newSink() *diag.Sink {
	return diag.NewSink(&bytes.Buffer{}, true)
}

// buildPascalArrayFile encodes docs under schema as a 16/16-bit Pascal
// array, the container shape docArrayProcessor and itemProcessor both
// read/write.
func buildPascalArrayFile(t *testing.T, schema recordfmt.Schema, docs []*recordfmt.Document, sink *diag.Sink) []byte {
	t.Helper()
	var buf bytes.Buffer
	err := recordfmt.WritePascalArray(&buf, 16, 16, docs,
		func(elemBuf *bytes.Buffer, e *recordfmt.Document, idx int) error {
			_, err := schema.Write(elemBuf, e, sink)
			return err
		})
	if err != nil {
		t.Fatalf("WritePascalArray: %v", err)
	}
	return buf.Bytes()
}

func TestClassProcessorDisassembleAssembleRoundTrip(t *testing.T) {
	proc := NewClassProcessor().(*docArrayProcessor)
	target := proc.Targets()[0]
	sink := newSink()

	doc := recordfmt.NewDocument()
	doc.Set("name", "hero")
	doc.Set("data", make([]byte, 59))
	raw := buildPascalArrayFile(t, proc.schema, []*recordfmt.Document{doc}, sink)

	rawDir, sidecarDir := t.TempDir(), t.TempDir()
	rawPath := filepath.Join(rawDir, "class.dat")
	if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := proc.Disassemble(target, rawPath, sidecarDir, sink); err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	outPath := filepath.Join(rawDir, "out.dat")
	if err := proc.Assemble(target, sidecarDir, outPath, sink); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("round trip mismatch:\n got  %x\n want %x", got, raw)
	}
}

func TestCommonTextProcessorRoundTrip(t *testing.T) {
	proc := NewCommonTextProcessor()
	target := proc.Targets()[0]
	sink := newSink()

	var raw bytes.Buffer
	if err := writeStringPascalArray(&raw, []string{"hello", "world"}, sink); err != nil {
		t.Fatalf("writeStringPascalArray: %v", err)
	}

	rawDir, sidecarDir := t.TempDir(), t.TempDir()
	rawPath := filepath.Join(rawDir, "common_text.dat")
	if err := os.WriteFile(rawPath, raw.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := proc.Disassemble(target, rawPath, sidecarDir, sink); err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	outPath := filepath.Join(rawDir, "out.dat")
	if err := proc.Assemble(target, sidecarDir, outPath, sink); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, raw.Bytes()) {
		t.Fatalf("round trip mismatch:\n got  %x\n want %x", got, raw.Bytes())
	}
}

func TestSceneProcessorRoundTrip(t *testing.T) {
	proc := NewSceneProcessor()
	target := proc.Targets()[0]
	sink := newSink()

	var raw bytes.Buffer
	header := make([]int, 15)
	header[0] = 1 // arr1 length-vector width
	header[1] = 2 // arr2 length-vector width
	header[2] = 1 // strings length-vector width
	for _, b := range header {
		raw.WriteByte(byte(b))
	}
	if err := writeExtArrayBytes(&raw, header[0], [][]byte{{1, 2, 3}, {4, 5}}); err != nil {
		t.Fatalf("writeExtArrayBytes arr1: %v", err)
	}
	if err := writeExtArrayBytes(&raw, header[1], [][]byte{{9, 9}}); err != nil {
		t.Fatalf("writeExtArrayBytes arr2: %v", err)
	}
	if err := writeExtArrayStrings(&raw, header[2], []string{"start", "end"}, sink); err != nil {
		t.Fatalf("writeExtArrayStrings: %v", err)
	}

	rawDir, sidecarDir := t.TempDir(), t.TempDir()
	rawPath := filepath.Join(rawDir, "00000.scn")
	if err := os.WriteFile(rawPath, raw.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := proc.Disassemble(target, rawPath, sidecarDir, sink); err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	outPath := filepath.Join(rawDir, "out.scn")
	if err := proc.Assemble(target, sidecarDir, outPath, sink); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, raw.Bytes()) {
		t.Fatalf("round trip mismatch:\n got  %x\n want %x", got, raw.Bytes())
	}
}

func TestItemGroupIDDispatch(t *testing.T) {
	cases := []struct {
		target string
		want   int
	}{
		{"c/csv/item_00.dat", 0},
		{"c/csv/item_10.dat", 10},
		{"c/csv/item_11.dat", 11},
		{"c/csv/item_18.dat", 18},
	}
	for _, c := range cases {
		got, err := itemGroupID(c.target)
		if err != nil {
			t.Fatalf("itemGroupID(%q): %v", c.target, err)
		}
		if got != c.want {
			t.Fatalf("itemGroupID(%q) = %d, want %d", c.target, got, c.want)
		}
	}
}

func TestItemSchemaDispatchesEquipmentVsRemainder(t *testing.T) {
	equipExtras := itemSchema(0).Fields[4].Codec
	if _, ok := equipExtras.(recordfmt.Struct); !ok {
		t.Fatalf("itemSchema(0) extras codec = %T, want recordfmt.Struct", equipExtras)
	}
	remExtras := itemSchema(15).Fields[4].Codec
	if _, ok := remExtras.(recordfmt.Bytes); !ok {
		t.Fatalf("itemSchema(15) extras codec = %T, want recordfmt.Bytes", remExtras)
	}
}

func TestItemProcessorEquipmentGroupRoundTrip(t *testing.T) {
	proc := NewItemProcessor()
	target := "c/csv/item_00.dat"
	sink := newSink()

	equip := recordfmt.NewDocument()
	equip.Set("sprite_id", int64(1))
	equip.Set("sprite_color_effect", int64(0))
	equip.Set("atk_speed", int64(10))
	equip.Set("class", int64(2))
	equip.Set("min_atk/phys_def", int64(5))
	equip.Set("max_atk/magic_def", int64(15))
	equip.Set("param_ah", int64(0))
	equip.Set("param_ch", int64(0))
	equip.Set("param_dh", int64(0))
	equip.Set("param_eh", int64(0))
	equip.Set("param_fh", int64(0))
	equip.Set("param_10h", int64(0))
	equip.Set("param_11h", int64(0))
	equip.Set("param_12h", int64(0))
	equip.Set("param_13h", int64(0))
	equip.Set("param_14h", int64(0))

	item := recordfmt.NewDocument()
	item.Set("type_id", int64(1))
	item.Set("name", "sword")
	item.Set("price", int64(100))
	item.Set("desc", "a blade")
	item.Set("extras", equip)

	schema := itemSchema(0)
	raw := buildPascalArrayFile(t, schema, []*recordfmt.Document{item}, sink)

	rawDir, sidecarDir := t.TempDir(), t.TempDir()
	rawPath := filepath.Join(rawDir, "item_00.dat")
	if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := proc.Disassemble(target, rawPath, sidecarDir, sink); err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	outPath := filepath.Join(rawDir, "out.dat")
	if err := proc.Assemble(target, sidecarDir, outPath, sink); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("round trip mismatch:\n got  %x\n want %x", got, raw)
	}
}

func TestEnemyProcessorRoundTrip(t *testing.T) {
	proc := NewEnemyProcessor().(*docArrayProcessor)
	target := proc.Targets()[0]
	sink := newSink()

	doc := recordfmt.NewDocument()
	doc.Set("name", "goblin")
	for _, p := range enemyParamWidths {
		doc.Set(p.key, int64(0))
	}
	raw := buildPascalArrayFile(t, proc.schema, []*recordfmt.Document{doc}, sink)

	rawDir, sidecarDir := t.TempDir(), t.TempDir()
	rawPath := filepath.Join(rawDir, "enemy_0.dat")
	if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := proc.Disassemble(target, rawPath, sidecarDir, sink); err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	outPath := filepath.Join(rawDir, "out.dat")
	if err := proc.Assemble(target, sidecarDir, outPath, sink); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("round trip mismatch:\n got  %x\n want %x", got, raw)
	}
}

func TestItemProcessorRemainderGroupRoundTrip(t *testing.T) {
	proc := NewItemProcessor()
	target := "c/csv/item_15.dat"
	sink := newSink()

	item := recordfmt.NewDocument()
	item.Set("type_id", int64(9))
	item.Set("name", "potion")
	item.Set("price", int64(10))
	item.Set("desc", "heals you")
	item.Set("extras", []byte{0xde, 0xad, 0xbe, 0xef})

	schema := itemSchema(15)
	raw := buildPascalArrayFile(t, schema, []*recordfmt.Document{item}, sink)

	rawDir, sidecarDir := t.TempDir(), t.TempDir()
	rawPath := filepath.Join(rawDir, "item_15.dat")
	if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := proc.Disassemble(target, rawPath, sidecarDir, sink); err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	outPath := filepath.Join(rawDir, "out.dat")
	if err := proc.Assemble(target, sidecarDir, outPath, sink); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("round trip mismatch:\n got  %x\n want %x", got, raw)
	}
}
