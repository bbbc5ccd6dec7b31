// Package listupdate implements the native script that updates one element
// of a list field in place.
//
// Parameters:
//   - field:   name of the list field in the document (required)
//   - idField: key identifying an element inside the list (required)
//   - idValue: identifier of the element to replace or remove (required)
//   - value:   replacement element; when absent the element is removed
package listupdate

import (
	"fmt"

	"github.com/eleven-am/searchnode/internal/domain"
	"github.com/eleven-am/searchnode/internal/script"
)

const (
	Name        = "listUpdate"
	FactoryType = "listupdate.UpdateListScriptFactory"

	ParamField   = "field"
	ParamIDField = "idField"
	ParamIDValue = "idValue"
	ParamValue   = "value"
)

type Factory struct{}

func (Factory) Type() string {
	return FactoryType
}

func (Factory) New(params script.Params) (script.NativeScript, error) {
	field, err := requiredString(params, ParamField)
	if err != nil {
		return nil, err
	}
	idField, err := requiredString(params, ParamIDField)
	if err != nil {
		return nil, err
	}
	idValue, ok := params[ParamIDValue]
	if !ok || idValue == nil {
		return nil, missingParam(ParamIDValue)
	}

	return &Script{
		field:   field,
		idField: idField,
		idValue: fmt.Sprint(idValue),
		value:   params[ParamValue],
	}, nil
}

type Script struct {
	field   string
	idField string
	idValue string
	value   interface{}
}

func (s *Script) Run(source script.Source) error {
	if source == nil {
		return domain.NewScriptError("document source is nil", domain.ErrInvalidInput)
	}

	var items []interface{}
	switch current := source[s.field].(type) {
	case nil:
	case []interface{}:
		items = current
	default:
		items = []interface{}{current}
	}

	updated := make([]interface{}, 0, len(items)+1)
	for _, item := range items {
		if s.matches(item) {
			continue
		}
		updated = append(updated, item)
	}
	if s.value != nil {
		updated = append(updated, s.value)
	}

	source[s.field] = updated
	return nil
}

func (s *Script) matches(item interface{}) bool {
	obj, ok := item.(map[string]interface{})
	if !ok {
		return false
	}
	id, ok := obj[s.idField]
	if !ok || id == nil {
		return false
	}
	return fmt.Sprint(id) == s.idValue
}

func requiredString(params script.Params, key string) (string, error) {
	raw, ok := params[key]
	if !ok || raw == nil {
		return "", missingParam(key)
	}
	v, ok := raw.(string)
	if !ok || v == "" {
		return "", missingParam(key)
	}
	return v, nil
}

func missingParam(key string) error {
	return domain.NewScriptError(fmt.Sprintf("missing '%s' parameter", key), domain.ErrInvalidInput,
		domain.WithComponent("script.listupdate"))
}

var _ script.Factory = Factory{}
