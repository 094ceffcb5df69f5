package form

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsonedit/internal/config"
	"github.com/mcncl/jsonedit/internal/models"
)

func load(t *testing.T, text string) *models.Value {
	t.Helper()
	var v models.Value
	require.NoError(t, json.Unmarshal([]byte(text), &v))
	return &v
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		contains []string
	}{
		{
			name: "empty object",
			doc:  `{}`,
			contains: []string{
				`<em>Empty object</em>`,
				`<button type="button" class="add-property-btn" data-path="" data-indent="0" onclick="addProperty(this)">+ Add Property</button>`,
			},
		},
		{
			name: "simple properties",
			doc:  `{"name":"John","age":30,"nick":null}`,
			contains: []string{
				`<label for="name">name:</label>`,
				`<input type="text" name="field:name" id="name" value="John">`,
				`<input type="text" name="field:age" id="age" value="30">`,
				`<input type="text" name="field:nick" id="nick" value="">`,
				`<button type="button" class="delete-property-btn" data-path="" data-key="age" onclick="deleteProperty(this)">Delete</button>`,
			},
		},
		{
			name: "nested containers",
			doc:  `{"user":{"tags":["a",{"k":true}]}}`,
			contains: []string{
				`<div class="json-field" style="margin-left: 0px;"><label for="user">user:</label><button type="button" class="delete-property-btn" data-path="" data-key="user"`,
				`<input type="text" name="field:user.tags[0]" id="user.tags[0]" value="a">`,
				`<button type="button" class="delete-array-item-btn" data-path="user.tags" data-index="1" onclick="deleteArrayItem(this)">Delete</button>`,
				`<input type="text" name="field:user.tags[1].k" id="user.tags[1].k" value="true">`,
				`<div class="json-field" style="margin-left: 60px;">`,
				`data-path="user.tags[1]" data-indent="3" onclick="addProperty(this)"`,
				`<button type="button" class="add-array-item-btn" data-path="user.tags" data-indent="2" onclick="addArrayItem(this)">+ Add Item</button>`,
			},
		},
		{
			name: "empty array",
			doc:  `{"list":[]}`,
			contains: []string{
				`<em>Empty array</em>`,
				`class="add-array-item-btn" data-path="list" data-indent="1"`,
			},
		},
		{
			name: "scalar root",
			doc:  `12.5`,
			contains: []string{
				`<div class="json-field"><label for="">Value:</label><input type="text" name="field:" id="" value="12.5"></div>`,
			},
		},
		{
			name: "escaping",
			doc:  `{"<b>":"\"quoted\" & <i>"}`,
			contains: []string{
				`<label for="&lt;b&gt;">&lt;b&gt;:</label>`,
				`value="&#34;quoted&#34; &amp; &lt;i&gt;"`,
				`data-key="&lt;b&gt;"`,
			},
		},
	}

	renderer := NewRenderer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := renderer.Render(load(t, tt.doc))
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestRender_DocumentOrder(t *testing.T) {
	out := NewRenderer().Render(load(t, `{"zeta":1,"alpha":2,"mid":3}`))

	zeta := strings.Index(out, `id="zeta"`)
	alpha := strings.Index(out, `id="alpha"`)
	mid := strings.Index(out, `id="mid"`)
	assert.True(t, zeta < alpha && alpha < mid, "properties must render in document order")
}

func TestRender_ReadOnly(t *testing.T) {
	out := NewRenderer(WithReadOnly(true)).Render(load(t, `{"a":{"b":[1,"<x>"]},"e":{}}`))

	assert.NotContains(t, out, "<input")
	assert.NotContains(t, out, "<button")
	assert.Contains(t, out, `<label>a:</label></div>`)
	assert.Contains(t, out, `<div class="json-field" style="margin-left: 40px;"><label>[1]:</label><span class="json-value">&lt;x&gt;</span></div>`)
	assert.Contains(t, out, `<em>Empty object</em>`)
}

func TestRender_UnaddressableKeys(t *testing.T) {
	out := NewRenderer().Render(load(t, `{"a.b":1,"x[0]":{"y":"z"},"ok":2}`))

	assert.Contains(t, out, `<label>a.b:</label><span class="json-value">1</span></div>`)
	assert.Contains(t, out, `<label>x[0]:</label></div>`)
	assert.Contains(t, out, `<div class="json-field" style="margin-left: 20px;"><label>y:</label><span class="json-value">z</span></div>`)
	assert.NotContains(t, out, `field:a`)
	assert.NotContains(t, out, `field:x`)
	assert.NotContains(t, out, `data-key="a.b"`)
	assert.NotContains(t, out, `data-key="x[0]"`)
	assert.NotContains(t, out, `data-path="x[0]"`)
	assert.Contains(t, out, `<input type="text" name="field:ok" id="ok" value="2">`)
	assert.Contains(t, out, `data-path="" data-indent="0" onclick="addProperty(this)"`)
}

func TestRender_HumanizedLabels(t *testing.T) {
	out := NewRenderer(WithHumanizedLabels(true)).Render(load(t, `{"firstName":"x","zip_code":"y"}`))

	assert.Contains(t, out, `<label for="firstName">First Name:</label>`)
	assert.Contains(t, out, `<label for="zip_code">Zip Code:</label>`)
	assert.Contains(t, out, `name="field:firstName"`, "paths keep the raw key")
}

func TestWithConfig(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Server.ReadOnly = true
	cfg.Form.HumanizeLabels = true

	r := NewRenderer(WithConfig(cfg))
	assert.True(t, r.ReadOnly())
	assert.Contains(t, r.Render(load(t, `{"userName":"x"}`)), `<label>User Name:</label>`)
}

func TestInputText(t *testing.T) {
	assert.Equal(t, "plain", InputText(models.NewString("plain")))
	assert.Equal(t, "", InputText(models.NewNull()))
	assert.Equal(t, "false", InputText(models.NewBool(false)))
	assert.Equal(t, "0.5", InputText(models.NewNumber(0.5)))
}
