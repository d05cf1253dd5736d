package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Answer is a submitted answer payload. The concrete type is fixed by the
// question's input type:
//
//	text          -> TextAnswer
//	single_choice -> ChoiceAnswer
//	multi_choice  -> MultiChoiceAnswer
//	ranking       -> RankingAnswer
//	multi_field   -> FieldsAnswer
//	scale         -> ScaleAnswer
//
// A nil Answer means the client sent null.
type Answer interface {
	InputType() InputType
	// Empty reports whether the payload counts as missing for a required question.
	Empty() bool
}

type TextAnswer struct{ Value string }

type ChoiceAnswer struct{ Value string }

type MultiChoiceAnswer struct{ Values []string }

type RankingAnswer struct{ Items []string }

type FieldsAnswer struct{ Values map[string]string }

type ScaleAnswer struct{ Values map[string]float64 }

func (TextAnswer) InputType() InputType        { return InputText }
func (ChoiceAnswer) InputType() InputType      { return InputSingleChoice }
func (MultiChoiceAnswer) InputType() InputType { return InputMultiChoice }
func (RankingAnswer) InputType() InputType     { return InputRanking }
func (FieldsAnswer) InputType() InputType      { return InputMultiField }
func (ScaleAnswer) InputType() InputType       { return InputScale }

func (a TextAnswer) Empty() bool        { return a.Value == "" }
func (a ChoiceAnswer) Empty() bool      { return a.Value == "" }
func (a MultiChoiceAnswer) Empty() bool { return len(a.Values) == 0 }
func (a RankingAnswer) Empty() bool     { return len(a.Items) == 0 }
func (a FieldsAnswer) Empty() bool      { return len(a.Values) == 0 }
func (a ScaleAnswer) Empty() bool       { return len(a.Values) == 0 }

// DecodeAnswer turns the raw JSON payload into the answer type required by the
// question. A payload of the wrong shape is rejected with a *ValidationError.
func DecodeAnswer(n *Node, raw json.RawMessage) (Answer, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	switch n.InputType {
	case InputText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, invalid(n, "Invalid text format")
		}
		return TextAnswer{Value: s}, nil

	case InputSingleChoice:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, invalid(n, "Invalid selection format")
		}
		return ChoiceAnswer{Value: s}, nil

	case InputMultiChoice:
		var items []string
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, invalid(n, "Invalid selection format")
		}
		return MultiChoiceAnswer{Values: items}, nil

	case InputRanking:
		var items []string
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, invalid(n, "Invalid ranking format")
		}
		return RankingAnswer{Items: items}, nil

	case InputMultiField:
		var obj map[string]interface{}
		if err := decodeObject(raw, &obj); err != nil {
			return nil, invalid(n, "Invalid format for multi-field answer")
		}
		values := make(map[string]string, len(obj))
		for k, v := range obj {
			values[k] = stringify(v)
		}
		return FieldsAnswer{Values: values}, nil

	case InputScale:
		var obj map[string]interface{}
		if err := decodeObject(raw, &obj); err != nil {
			return nil, invalid(n, "Invalid format for scale answer")
		}
		values := make(map[string]float64, len(obj))
		for k, v := range obj {
			num, ok := v.(json.Number)
			if !ok {
				return nil, invalid(n, "Invalid rating value for: %s", fieldLabel(n, k))
			}
			f, err := num.Float64()
			if err != nil {
				return nil, invalid(n, "Invalid rating value for: %s", fieldLabel(n, k))
			}
			values[k] = f
		}
		return ScaleAnswer{Values: values}, nil
	}

	return nil, invalid(n, "Unsupported input type %q", n.InputType)
}

func decodeObject(raw json.RawMessage, out *map[string]interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return err
	}
	if *out == nil {
		return fmt.Errorf("not an object")
	}
	return nil
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

func fieldLabel(n *Node, name string) string {
	for _, f := range n.Fields {
		if f.Name == name {
			return f.displayName()
		}
	}
	return name
}
