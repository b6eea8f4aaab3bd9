// Package openapi renders an OpenAPI document to Markdown. The output
// is deterministic: paths and methods follow document order, while
// unordered collections (content types, response codes, security
// schemes) are sorted.
package openapi

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/custodia-labs/apidocs-cli/internal/specjson"
)

// methodOrder is the fallback ordering when the source carries no
// usable document order (YAML input).
var methodOrder = []string{"get", "post", "put", "delete", "patch"}

var renderedMethods = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true, "patch": true,
}

// Renderer converts one OpenAPI document to one Markdown document.
type Renderer struct {
	loader *openapi3.Loader
}

// New returns a Renderer. Reference resolution stays within the
// document; external refs are not followed.
func New() *Renderer {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	return &Renderer{loader: loader}
}

// Render produces the Markdown for one raw OpenAPI document.
// Identical input yields byte-identical output.
func (r *Renderer) Render(raw []byte) (string, error) {
	doc, err := r.loader.LoadFromData(raw)
	if err != nil {
		return "", fmt.Errorf("parsing openapi document: %w", err)
	}

	order := r.docOrder(raw, doc)

	var md []string

	title := "API Documentation"
	if doc.Info != nil && doc.Info.Title != "" {
		title = doc.Info.Title
	}
	md = append(md, "# "+title, "")

	if doc.Info != nil && doc.Info.Description != "" {
		md = append(md, doc.Info.Description, "")
	}
	if doc.Info != nil && doc.Info.Version != "" {
		md = append(md, "**Version:** "+doc.Info.Version, "")
	}
	if ts := extensionString(doc.Info, "x-downloaded-timestamp"); ts != "" {
		md = append(md, fmt.Sprintf("*Last updated: %s*", ts), "")
	}

	md = append(md, r.renderServers(doc)...)
	md = append(md, r.renderSecuritySchemes(doc)...)
	md = append(md, r.renderOperations(doc, order)...)

	return strings.Join(md, "\n"), nil
}

// docOrder recovers path and method order from the raw JSON. YAML
// input falls back to sorted paths with a fixed method order.
func (r *Renderer) docOrder(raw []byte, doc *openapi3.T) specjson.DocOrder {
	if order, err := specjson.PathOrder(raw); err == nil {
		return order
	}
	order := specjson.DocOrder{Methods: map[string][]string{}}
	if doc.Paths != nil {
		for path := range doc.Paths.Map() {
			order.Paths = append(order.Paths, path)
		}
		sort.Strings(order.Paths)
		for _, path := range order.Paths {
			order.Methods[path] = methodOrder
		}
	}
	return order
}

func (r *Renderer) renderServers(doc *openapi3.T) []string {
	if len(doc.Servers) == 0 {
		return nil
	}
	md := []string{"## Base URL"}
	for _, server := range doc.Servers {
		md = append(md, "* "+server.URL)
		if server.Description != "" {
			md = append(md, "  * "+server.Description)
		}
	}
	return append(md, "")
}

func (r *Renderer) renderSecuritySchemes(doc *openapi3.T) []string {
	if doc.Components == nil || len(doc.Components.SecuritySchemes) == 0 {
		return nil
	}
	names := make([]string, 0, len(doc.Components.SecuritySchemes))
	for name := range doc.Components.SecuritySchemes {
		names = append(names, name)
	}
	sort.Strings(names)

	md := []string{"## Authentication"}
	for _, name := range names {
		scheme := doc.Components.SecuritySchemes[name].Value
		if scheme == nil {
			continue
		}
		md = append(md, "### "+name, "**Type:** "+scheme.Type)
		if scheme.Description != "" {
			md = append(md, "", scheme.Description)
		}
		if scheme.Type == "http" {
			md = append(md, "**Scheme:** "+scheme.Scheme)
		}
		if scheme.BearerFormat != "" {
			md = append(md, "**Bearer Format:** "+scheme.BearerFormat)
		}
		md = append(md, "")
	}
	return md
}

type taggedOperation struct {
	path      string
	method    string
	operation *openapi3.Operation
}

func (r *Renderer) renderOperations(doc *openapi3.T, order specjson.DocOrder) []string {
	// Tag sections appear in first-encountered operation order;
	// untagged operations land in "default".
	var tagOrder []string
	grouped := map[string][]taggedOperation{}
	for _, path := range order.Paths {
		pathItem := doc.Paths.Find(path)
		if pathItem == nil {
			continue
		}
		for _, method := range order.Methods[path] {
			if !renderedMethods[method] {
				continue
			}
			op := pathItem.GetOperation(strings.ToUpper(method))
			if op == nil {
				continue
			}
			tags := op.Tags
			if len(tags) == 0 {
				tags = []string{"default"}
			}
			for _, tag := range tags {
				if _, seen := grouped[tag]; !seen {
					tagOrder = append(tagOrder, tag)
				}
				grouped[tag] = append(grouped[tag], taggedOperation{path, method, op})
			}
		}
	}

	var md []string
	for _, tag := range tagOrder {
		md = append(md, "## "+tag)
		if t := doc.Tags.Get(tag); t != nil && t.Description != "" {
			md = append(md, t.Description, "")
		}
		for _, op := range grouped[tag] {
			md = append(md, r.renderOperation(doc, op)...)
		}
	}
	return md
}

func (r *Renderer) renderOperation(doc *openapi3.T, to taggedOperation) []string {
	op := to.operation

	summary := op.Summary
	if summary == "" {
		summary = op.OperationID
	}
	if summary == "" {
		summary = to.method + " " + to.path
	}

	md := []string{"### " + summary, ""}
	if op.Description != "" {
		md = append(md, op.Description, "")
	}
	md = append(md, "```", strings.ToUpper(to.method)+" "+to.path, "```", "")

	md = append(md, renderParameters(op.Parameters)...)
	md = append(md, renderRequestBody(doc, op.RequestBody)...)
	md = append(md, renderResponses(op.Responses)...)
	return md
}

func renderParameters(params openapi3.Parameters) []string {
	if len(params) == 0 {
		return nil
	}
	md := []string{
		"#### Parameters",
		"",
		"| Name | In | Type | Required | Description |",
		"|------|----|----|----------|-------------|",
	}
	for _, ref := range params {
		p := ref.Value
		if p == nil {
			continue
		}
		required := "No"
		if p.Required {
			required = "Yes"
		}
		description := strings.ReplaceAll(p.Description, "\n", "<br>")
		md = append(md, fmt.Sprintf("| %s | %s | %s | %s | %s |",
			p.Name, p.In, parameterType(p.Schema), required, description))
	}
	return append(md, "")
}

func parameterType(schema *openapi3.SchemaRef) string {
	if schema == nil || schema.Value == nil {
		return "object"
	}
	t := schemaTypeName(schema.Value)
	if t == "array" && schema.Value.Items != nil && schema.Value.Items.Value != nil {
		return "array of " + schemaTypeName(schema.Value.Items.Value)
	}
	return t
}

func schemaTypeName(schema *openapi3.Schema) string {
	if schema.Type == nil || len(*schema.Type) == 0 {
		return "object"
	}
	return (*schema.Type)[0]
}

func renderRequestBody(doc *openapi3.T, ref *openapi3.RequestBodyRef) []string {
	if ref == nil || ref.Value == nil {
		return nil
	}
	body := ref.Value

	md := []string{"#### Request Body", ""}
	if body.Description != "" {
		md = append(md, body.Description, "")
	}
	for _, contentType := range sortedKeys(body.Content) {
		mediaType := body.Content[contentType]
		md = append(md, fmt.Sprintf("**Content Type:** `%s`", contentType), "")

		if mediaType.Schema != nil && mediaType.Schema.Ref != "" {
			refName := refBaseName(mediaType.Schema.Ref)
			md = append(md, "Schema: "+refName)
			// One-hop resolution only: surface the referenced
			// schema's example, nothing deeper.
			if example, ok := schemaExample(doc, refName, mediaType); ok {
				md = append(md, renderExample(example)...)
			}
		} else if mediaType.Example != nil {
			md = append(md, renderExample(mediaType.Example)...)
		}
	}
	return append(md, "")
}

// schemaExample prefers the media-type example over the referenced
// component schema's own example.
func schemaExample(doc *openapi3.T, refName string, mediaType *openapi3.MediaType) (any, bool) {
	if doc.Components == nil {
		return nil, false
	}
	component, ok := doc.Components.Schemas[refName]
	if !ok || component.Value == nil {
		return nil, false
	}
	if mediaType.Example != nil {
		return mediaType.Example, true
	}
	if component.Value.Example != nil {
		return component.Value.Example, true
	}
	return nil, false
}

func renderResponses(responses *openapi3.Responses) []string {
	md := []string{"#### Responses", ""}
	if responses == nil {
		return md
	}
	byCode := responses.Map()
	for _, code := range sortedKeys(byCode) {
		ref := byCode[code]
		if ref == nil || ref.Value == nil {
			continue
		}
		response := ref.Value

		md = append(md, "**Status Code:** "+code)
		if response.Description != nil && *response.Description != "" {
			md = append(md, "**Description:** "+*response.Description)
		}
		for _, contentType := range sortedKeys(response.Content) {
			mediaType := response.Content[contentType]
			md = append(md, fmt.Sprintf("**Content Type:** `%s`", contentType))
			if mediaType.Schema != nil && mediaType.Schema.Ref != "" {
				md = append(md, "Schema: "+refBaseName(mediaType.Schema.Ref))
				if mediaType.Example != nil {
					md = append(md, renderExample(mediaType.Example)...)
				}
			}
		}
		md = append(md, "")
	}
	return md
}

func renderExample(example any) []string {
	encoded, err := json.MarshalIndent(example, "", "  ")
	if err != nil {
		return nil
	}
	return []string{"**Example:**", "```json", string(encoded), "```"}
}

func refBaseName(ref string) string {
	parts := strings.Split(ref, "/")
	return parts[len(parts)-1]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// extensionString reads a string-valued extension, tolerating both
// decoded strings and raw JSON depending on how the document was
// loaded.
func extensionString(info *openapi3.Info, key string) string {
	if info == nil || info.Extensions == nil {
		return ""
	}
	switch v := info.Extensions[key].(type) {
	case string:
		return v
	case json.RawMessage:
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	}
	return ""
}
