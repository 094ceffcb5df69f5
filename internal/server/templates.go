package server

import "html/template"

const layoutTemplate = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{template "title" .}}</title>
    <style>
        body { font-family: sans-serif; margin: 2em; }
        .json-field { margin: 4px 0; }
        .json-field label { display: inline-block; min-width: 8em; }
        .json-value { font-family: monospace; }
        .error { color: #b00020; }
        .hidden { display: none; }
    </style>
</head>
<body>
    <p><a href="/">JSON edit</a></p>
    {{template "content" .}}
</body>
</html>
{{end}}`

const indexTemplate = `{{define "title"}}JSON Edit{{end}}
{{define "content"}}
<h1>JSON edit</h1>
<h2>Edit</h2>
<ul>
    <li><a href="/upload">Edit existing JSON</a></li>
    <li><a href="/new">New JSON object</a></li>
    <li><a href="/new-array">New JSON array</a></li>
</ul>
<h2>Functions</h2>
<ul>
    <li><a href="/flatten">Flatten document</a></li>
    <li><a href="/compare">Compare documents</a></li>
    <li><a href="/from-schema">New document from JSON Schema</a></li>
</ul>
{{end}}`

const uploadTemplate = `{{define "title"}}Upload JSON{{end}}
{{define "content"}}
<form action="/upload" method="post" enctype="multipart/form-data">
    <h2>Upload JSON File</h2>
    <input type="file" name="jsonFile" accept=".json" required>
    <button type="submit">Edit</button>
</form>
{{end}}`

const editTemplate = `{{define "title"}}Edit JSON{{end}}
{{define "content"}}
<h1>Edit JSON</h1>
{{if .Error}}
<p class="error">{{.Error}}</p>
{{end}}
<form id="editForm" action="/save" method="post">
    <div id="jsonFields">
        {{.FormContent}}
    </div>
    <textarea name="jsonContent" id="jsonContent" class="hidden">{{.Content}}</textarea>
    {{if not .ReadOnly}}
    <button type="submit">Save and Download</button>
    {{end}}
    <button type="button" onclick="window.location.href='/'">Back to Upload</button>
</form>
<script>
function runAction(params) {
    var form = document.getElementById("editForm");
    form.action = "/action?" + new URLSearchParams(params).toString();
    form.submit();
}

function askValue(params) {
    var type = window.prompt("Type (string, number, boolean, null, object, array):", "string");
    if (type === null) {
        return null;
    }
    params.type = type;
    params.value = "";
    if (type !== "object" && type !== "array" && type !== "null") {
        var value = window.prompt("Value:");
        if (value === null) {
            return null;
        }
        params.value = value;
    }
    return params;
}

function addProperty(button) {
    var name = window.prompt("Property name:");
    if (name === null) {
        return;
    }
    var params = askValue({op: "add-property", path: button.dataset.path, name: name});
    if (params !== null) {
        runAction(params);
    }
}

function addArrayItem(button) {
    var params = askValue({op: "add-item", path: button.dataset.path});
    if (params !== null) {
        runAction(params);
    }
}

function deleteProperty(button) {
    if (window.confirm({{.PropertyPrompt}})) {
        runAction({op: "delete-property", path: button.dataset.path, key: button.dataset.key, confirm: "yes"});
    }
}

function deleteArrayItem(button) {
    if (window.confirm({{.ItemPrompt}})) {
        runAction({op: "delete-item", path: button.dataset.path, index: button.dataset.index, confirm: "yes"});
    }
}
</script>
{{end}}`

const flattenTemplate = `{{define "title"}}Flatten JSON{{end}}
{{define "content"}}
<form action="/flatten" method="post" enctype="multipart/form-data">
    <h2>Flatten JSON File</h2>
    <input type="file" name="jsonFileFlat" accept=".json" required>
    <button type="submit">Flatten</button>
</form>
{{end}}`

const flattenResultTemplate = `{{define "title"}}JSON Flatten Result{{end}}
{{define "content"}}
<h1>JSON Flatten Result</h1>
<div class="flatten-result">
    <pre>{{.FlattenResult}}</pre>
</div>
<div style="margin-top: 20px;">
    <button onclick="window.location.href='/'">Return to Home</button>
</div>
{{end}}`

const compareTemplate = `{{define "title"}}Compare JSON{{end}}
{{define "content"}}
<form action="/compare" method="post" enctype="multipart/form-data">
    <h2>Compare Two JSON Files</h2>
    <div>
        <label for="jsonFile1">First JSON File:</label>
        <input type="file" name="jsonFile1" id="jsonFile1" accept=".json" required>
    </div>
    <div>
        <label for="jsonFile2">Second JSON File:</label>
        <input type="file" name="jsonFile2" id="jsonFile2" accept=".json" required>
    </div>
    <button type="submit">Compare</button>
</form>
{{end}}`

const compareResultTemplate = `{{define "title"}}JSON Comparison Result{{end}}
{{define "content"}}
<h1>JSON Comparison Result</h1>
<div class="comparison-result">
    {{if .Diff}}<pre>{{.Diff}}</pre>{{else}}No changes{{end}}
</div>
<div style="margin-top: 20px;">
    <button onclick="window.location.href='/'">Return to Home</button>
</div>
{{end}}`

const fromSchemaTemplate = `{{define "title"}}JSON from Schema{{end}}
{{define "content"}}
<form action="/from-schema" method="post" enctype="multipart/form-data">
    <h2>Generate JSON from Schema</h2>
    <div>
        <label for="schemaFile">JSON Schema File:</label>
        <input type="file" name="schemaFile" id="schemaFile" accept=".json" required>
    </div>
    <button type="submit">Generate</button>
</form>
{{end}}`

var (
	indexPage         = page(indexTemplate)
	uploadPage        = page(uploadTemplate)
	editPage          = page(editTemplate)
	flattenPage       = page(flattenTemplate)
	flattenResultPage = page(flattenResultTemplate)
	comparePage       = page(compareTemplate)
	compareResultPage = page(compareResultTemplate)
	fromSchemaPage    = page(fromSchemaTemplate)
)

// page joins body, which defines "title" and "content", with the layout.
func page(body string) *template.Template {
	t := template.Must(template.New("page").Parse(layoutTemplate))
	return template.Must(t.Parse(body))
}
