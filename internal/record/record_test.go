package record_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scryfall/internal/record"
)

func TestParse_PreservesKeyOrder(t *testing.T) {
	r, err := record.Parse([]byte(`{"zeta":1,"alpha":"a","mid":{"y":true,"x":null}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, r.Keys())
	assert.Equal(t, []string{"y", "x"}, r.Object("mid").Keys())

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zeta":1,"alpha":"a","mid":{"y":true,"x":null}}`, string(out))
	assert.Equal(t, `{"zeta":1,"alpha":"a","mid":{"y":true,"x":null}}`, string(out))
}

func TestParse_KeepsNumbersExact(t *testing.T) {
	r := record.MustParse(`{"big":9007199254740993,"frac":0.5}`)

	v, ok := r.Raw("big")
	require.True(t, ok)
	assert.Equal(t, json.Number("9007199254740993"), v)
	assert.Equal(t, 9007199254740993, r.Int("big"))
	assert.Equal(t, 0.5, r.Float("frac"))
}

func TestParse_UnescapesStrings(t *testing.T) {
	r := record.MustParse(`{"type_line":"Creature — Elf","quote":"say \"hi\""}`)

	assert.Equal(t, "Creature — Elf", r.String("type_line"))
	assert.Equal(t, `say "hi"`, r.String("quote"))
}

func TestParse_Rejects(t *testing.T) {
	cases := map[string]string{
		"array top level":  `[{"object":"card"}]`,
		"string top level": `"card"`,
		"truncated":        `{"object":"ca`,
		"empty":            ``,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := record.Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestParse_NestedArrays(t *testing.T) {
	r := record.MustParse(`{"data":[{"object":"card"},[1,2],"x",null,[]]}`)

	items := r.Array("data")
	require.Len(t, items, 5)
	assert.IsType(t, record.Record{}, items[0])
	assert.Equal(t, []any{json.Number("1"), json.Number("2")}, items[1])
	assert.Equal(t, "x", items[2])
	assert.Nil(t, items[3])
	assert.Equal(t, []any{}, items[4])
}

func TestFromMap_SortsAndNormalizes(t *testing.T) {
	r := record.FromMap(map[string]any{
		"name":   "Forest",
		"cmc":    0,
		"colors": []string{"G"},
		"prices": map[string]any{"usd": "0.10"},
	})

	assert.Equal(t, []string{"cmc", "colors", "name", "prices"}, r.Keys())
	assert.Equal(t, 0, r.Int("cmc"))
	assert.Equal(t, []string{"G"}, record.Strings(r, "colors"))
	assert.Equal(t, "0.10", r.Object("prices").String("usd"))
}

func TestFromMap_NumericKindsAndMapSlices(t *testing.T) {
	r := record.FromMap(map[string]any{
		"i32":   int32(5),
		"u":     uint(7),
		"f32":   float32(1.5),
		"faces": []map[string]any{{"name": "Front"}, {"name": "Back"}},
	})

	assert.Equal(t, 5, r.Int("i32"))
	assert.Equal(t, 7, r.Int("u"))
	assert.Equal(t, 1.5, r.Float("f32"))
	faces := record.List(r, "faces", record.AsRecord, func(f record.Record) string { return f.String("name") })
	assert.Equal(t, []string{"Front", "Back"}, faces)
}

func TestZeroRecord_IsUsable(t *testing.T) {
	var r record.Record

	assert.Equal(t, 0, r.Len())
	assert.False(t, r.Has("object"))
	assert.Empty(t, r.Keys())
	assert.Equal(t, "", r.String("object"))
	assert.Equal(t, -1, r.Int("x"))

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(out))
}

func TestArray_ReturnsCopy(t *testing.T) {
	r := record.MustParse(`{"colors":["W","U"]}`)

	first := r.Array("colors")
	first[0] = "B"

	assert.Equal(t, []string{"W", "U"}, record.Strings(r, "colors"))
}
