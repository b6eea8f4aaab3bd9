package specjson

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/custodia-labs/apidocs-cli/internal/core/domain"
)

// DocOrder captures the source order of an OpenAPI document's paths and
// of the members within each path item.
type DocOrder struct {
	// Paths holds path templates in document order.
	Paths []string

	// Methods maps each path to its member keys in document order.
	// Keys include non-operation members such as "parameters"; the
	// caller filters to HTTP methods.
	Methods map[string][]string
}

// PathOrder extracts path and method ordering from a raw specification.
// Documents without a paths object yield an empty order.
func PathOrder(raw []byte) (DocOrder, error) {
	order := DocOrder{Methods: make(map[string][]string)}

	doc, err := ParseObject(raw)
	if err != nil {
		return order, fmt.Errorf("parse document: %w", err)
	}

	pathsRaw, ok := doc.Get("paths")
	if !ok {
		return order, nil
	}

	paths, err := ParseObject(pathsRaw)
	if err != nil {
		return order, fmt.Errorf("parse paths: %w", err)
	}

	for _, m := range paths {
		order.Paths = append(order.Paths, m.Key)

		item, err := ParseObject(m.Value)
		if err != nil {
			// Non-object path items (e.g. a $ref string) carry no
			// method order.
			continue
		}
		order.Methods[m.Key] = item.Keys()
	}

	return order, nil
}

// InjectProvenance annotates a specification's info block with download
// metadata without disturbing member order elsewhere in the document.
// A missing info block is created. The result is indented JSON ready to
// be written to disk.
func InjectProvenance(raw []byte, prov domain.Provenance) ([]byte, error) {
	doc, err := ParseObject(raw)
	if err != nil {
		return nil, fmt.Errorf("parse specification: %w", err)
	}

	var info Object
	if infoRaw, ok := doc.Get("info"); ok {
		info, err = ParseObject(infoRaw)
		if err != nil {
			return nil, fmt.Errorf("parse info block: %w", err)
		}
	}

	info = info.SetString("x-api-id", prov.APIID)
	info = info.SetString("x-api-name", prov.APIName)
	info = info.SetString("x-downloaded-timestamp", prov.DownloadedAt.Format(time.RFC3339))
	if prov.ServiceURL != "" {
		info = info.SetString("x-api-service-url", prov.ServiceURL)
	}
	if prov.Description != "" {
		info = info.SetString("description", prov.Description)
	}

	infoRaw, err := info.MarshalJSON()
	if err != nil {
		return nil, err
	}
	doc = doc.Set("info", infoRaw)

	return doc.Encode()
}

// Extraction truncation limits, expressed in entries kept.
const (
	// MaxExtractionPaths bounds the paths object.
	MaxExtractionPaths = 50

	// MaxExtractionSchemas bounds definitions / components.schemas.
	MaxExtractionSchemas = 20
)

// TrimForExtraction reduces an oversized specification to its leading
// entries so it fits a model context window: the info block, the first
// MaxExtractionPaths paths, and the first MaxExtractionSchemas schema
// definitions, all in document order. Returns indented JSON.
func TrimForExtraction(raw []byte) ([]byte, error) {
	doc, err := ParseObject(raw)
	if err != nil {
		return nil, fmt.Errorf("parse specification: %w", err)
	}

	var trimmed Object

	if infoRaw, ok := doc.Get("info"); ok {
		trimmed = trimmed.Set("info", infoRaw)
	} else {
		trimmed = trimmed.Set("info", json.RawMessage("{}"))
	}

	pathsOut := json.RawMessage("{}")
	if pathsRaw, ok := doc.Get("paths"); ok {
		if paths, err := ParseObject(pathsRaw); err == nil {
			pathsOut, err = paths.Truncate(MaxExtractionPaths).MarshalJSON()
			if err != nil {
				return nil, err
			}
		}
	}
	trimmed = trimmed.Set("paths", pathsOut)

	// Swagger 2.0 keeps schemas under definitions, OpenAPI 3 under
	// components.schemas. Carry over whichever is present.
	if defsRaw, ok := doc.Get("definitions"); ok {
		if defs, err := ParseObject(defsRaw); err == nil {
			defsOut, err := defs.Truncate(MaxExtractionSchemas).MarshalJSON()
			if err != nil {
				return nil, err
			}
			trimmed = trimmed.Set("definitions", defsOut)
		}
	} else if compRaw, ok := doc.Get("components"); ok {
		if comp, err := ParseObject(compRaw); err == nil {
			if schemasRaw, ok := comp.Get("schemas"); ok {
				if schemas, err := ParseObject(schemasRaw); err == nil {
					schemasOut, err := schemas.Truncate(MaxExtractionSchemas).MarshalJSON()
					if err != nil {
						return nil, err
					}
					var compOut Object
					compOut = compOut.Set("schemas", schemasOut)
					compRawOut, err := compOut.MarshalJSON()
					if err != nil {
						return nil, err
					}
					trimmed = trimmed.Set("components", compRawOut)
				}
			}
		}
	}

	return trimmed.Encode()
}
