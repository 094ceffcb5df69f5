package formatter

import (
	"testing"

	"github.com/andreyvit/diff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonedit/internal/parser"
)

func TestIntegration_LoadDumpIsIdempotent(t *testing.T) {
	inputs := map[string]string{
		"compact object": `{"user_id":123,"username":"johndoe","is_active":true,"profile":{"full_name":"John Doe","email":"john.doe@example.com"}}`,
		"loose spacing": `{
		"b" : [ 1 , 2.50 , -0 , 1E3 ],
		"a" :{ } ,
		"c":[ ]
	}`,
		"escapes":        `["tab\there", "é", "😀", "</script>"]`,
		"root scalar":    ` "just a string" `,
		"deep nesting":   `[[[[{"k":[null,false,{"z":0.000001}]}]]]]`,
		"big numbers":    `[1e21, 123456789012345678, 1.5e-7]`,
		"duplicate keys": `{"a":1,"b":2,"a":3}`,
	}

	formatter := NewFormatter()
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			first, err := formatter.Reformat(input)
			require.NoError(t, err)

			second, err := formatter.Reformat(first)
			require.NoError(t, err)

			if first != second {
				t.Errorf("dump is not stable:\n%s", diff.LineDiff(first, second))
			}
		})
	}
}

func TestIntegration_DumpOfLoad(t *testing.T) {
	doc, err := parser.Load(`{"b":[1,2.50,-0,1E3],"a":{},"c":"é"}`)
	require.NoError(t, err)

	formatted, err := Dump(doc)
	require.NoError(t, err)

	expected := `{
    "b": [
        1,
        2.5,
        0,
        1000
    ],
    "a": {},
    "c": "é"
}`
	assert.Equal(t, expected, formatted, diff.LineDiff(expected, formatted))
}

func TestIntegration_ReformatInvalid(t *testing.T) {
	_, err := NewFormatter().Reformat(`{"a":`)
	assert.Error(t, err)
}
