package procs

import "github.com/kyufie-go/hltool/recordfmt"

// enemyParamWidths lists the bit width of each of the 73 integer fields
// in wire order: level, atk, hp, and 70 unnamed param_XXh fields, XXh
// being the original hex byte offset. The param fields' meaning
// is an open question this tool makes no attempt to resolve; they are
// preserved as plain integers.
var enemyParamWidths = []struct {
	key  string
	bits int
}{
	{"param_0h", 8}, {"level", 8}, {"param_2h", 8}, {"param_3h", 8},
	{"atk", 16}, {"param_6h", 8}, {"param_7h", 8}, {"param_8h", 16},
	{"param_ah", 16}, {"param_ch", 8}, {"param_dh", 16}, {"param_fh", 8},
	{"param_10h", 8}, {"param_11h", 16}, {"param_13h", 16}, {"param_15h", 8},
	{"param_16h", 16}, {"param_18h", 8}, {"param_19h", 8}, {"param_1ah", 16},
	{"param_1ch", 16}, {"param_1eh", 8}, {"param_1fh", 16}, {"param_21h", 8},
	{"param_22h", 8}, {"param_23h", 16}, {"param_25h", 16}, {"param_27h", 32},
	{"param_2bh", 32}, {"param_2fh", 32}, {"param_33h", 32}, {"param_37h", 32},
	{"param_3bh", 32}, {"param_3fh", 32}, {"param_43h", 8}, {"param_44h", 8},
	{"param_45h", 8}, {"param_46h", 8}, {"param_47h", 8}, {"param_48h", 8},
	{"param_49h", 8}, {"param_4ah", 8}, {"param_4bh", 16}, {"param_4dh", 8},
	{"param_4eh", 8}, {"param_4fh", 8}, {"hp", 32}, {"param_54h", 16},
	{"param_56h", 16}, {"param_58h", 16}, {"param_5ah", 16}, {"param_5ch", 16},
	{"param_5eh", 16}, {"param_60h", 16}, {"param_62h", 16}, {"param_64h", 16},
	{"param_66h", 16}, {"param_68h", 16}, {"param_6ah", 16}, {"param_6ch", 16},
	{"param_6eh", 16}, {"param_70h", 16}, {"param_72h", 16}, {"param_74h", 16},
	{"param_76h", 8}, {"param_77h", 8}, {"param_78h", 8}, {"param_79h", 8},
	{"param_7ah", 8}, {"param_7bh", 8}, {"param_7ch", 8}, {"param_7dh", 16},
	{"param_7fh", 8},
}

// NewEnemyProcessor builds the enemy record processor: a name field
// followed by 73 fixed-width integer stat fields in wire order.
func NewEnemyProcessor() Processor {
	fields := make([]recordfmt.Field, 0, len(enemyParamWidths)+1)
	fields = append(fields, recordfmt.Field{Key: "name", Codec: recordfmt.P8LegacyString()})
	for _, p := range enemyParamWidths {
		fields = append(fields, recordfmt.Field{
			Key:   p.key,
			Codec: recordfmt.Int{Bits: p.bits, Endian: 0, Signed: false},
		})
	}

	return &docArrayProcessor{
		name:    "enemyproc",
		workDir: "enemy",
		targets: []string{
			"c/csv/enemy_0.dat",
			"c/csv/enemy_1.dat",
			"c/csv/enemy_2.dat",
			"c/csv/enemy_expert_0.dat",
			"c/csv/enemy_expert_1.dat",
			"c/csv/enemy_expert_2.dat",
		},
		schema: recordfmt.Schema{Fields: fields},
	}
}
