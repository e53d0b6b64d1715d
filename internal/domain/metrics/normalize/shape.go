// Package normalize maps heterogeneous vendor payload shapes into the
// canonical profile metrics model.
package normalize

import (
	"encoding/json"
	"fmt"

	"github.com/vadim/social-pulse/internal/domain/metrics/entity"
)

// shapeKind tags the payload envelope variants the vendor actors produce
type shapeKind int

const (
	shapeList         shapeKind = iota // bare JSON array of items
	shapeWrappedData                   // {"data": <item or list>}
	shapeWrappedItems                  // {"items": [...]}
	shapeBare                          // a single item object
)

// vendorShape is the decoded payload envelope
type vendorShape struct {
	kind  shapeKind
	items []map[string]any
}

// decodeShape classifies the raw payload into one of the known envelope
// variants. It favors explicit matching over key probing so a new actor
// shape fails loudly instead of silently extracting nothing.
func decodeShape(raw json.RawMessage) (vendorShape, error) {
	var asList []map[string]any
	if err := json.Unmarshal(raw, &asList); err == nil {
		return vendorShape{kind: shapeList, items: asList}, nil
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(raw, &asObject); err != nil {
		return vendorShape{}, fmt.Errorf("%w: %v", entity.ErrMalformedPayload, err)
	}

	if data, ok := asObject["data"]; ok {
		var dataList []map[string]any
		if err := json.Unmarshal(data, &dataList); err == nil {
			return vendorShape{kind: shapeWrappedData, items: dataList}, nil
		}
		var dataItem map[string]any
		if err := json.Unmarshal(data, &dataItem); err == nil {
			return vendorShape{kind: shapeWrappedData, items: []map[string]any{dataItem}}, nil
		}
		return vendorShape{}, fmt.Errorf("%w: unrecognized data envelope", entity.ErrMalformedPayload)
	}

	if items, ok := asObject["items"]; ok {
		var itemList []map[string]any
		if err := json.Unmarshal(items, &itemList); err == nil {
			return vendorShape{kind: shapeWrappedItems, items: itemList}, nil
		}
		return vendorShape{}, fmt.Errorf("%w: unrecognized items envelope", entity.ErrMalformedPayload)
	}

	var bare map[string]any
	if err := json.Unmarshal(raw, &bare); err != nil {
		return vendorShape{}, fmt.Errorf("%w: %v", entity.ErrMalformedPayload, err)
	}
	return vendorShape{kind: shapeBare, items: []map[string]any{bare}}, nil
}

// first returns the first item of the payload, or ErrEmptyResult
func (s vendorShape) first() (map[string]any, error) {
	if len(s.items) == 0 {
		return nil, entity.ErrEmptyResult
	}
	return s.items[0], nil
}
