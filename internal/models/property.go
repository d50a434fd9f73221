package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kapturehq/kapture/internal/common"
)

// PropertyKind tags a PropertyValue variant. The values mirror the remote
// API's property types.
type PropertyKind string

const (
	KindTitle       PropertyKind = "title"
	KindRichText    PropertyKind = "rich_text"
	KindNumber      PropertyKind = "number"
	KindSelect      PropertyKind = "select"
	KindMultiSelect PropertyKind = "multi_select"
	KindDate        PropertyKind = "date"
	KindCheckbox    PropertyKind = "checkbox"
	KindURL         PropertyKind = "url"
	KindEmail       PropertyKind = "email"
	KindPhoneNumber PropertyKind = "phone_number"
	KindStatus      PropertyKind = "status"
)

// kindOrder is the fixed decode probe order for UnmarshalJSON.
var kindOrder = []PropertyKind{
	KindTitle, KindRichText, KindNumber, KindSelect, KindMultiSelect,
	KindDate, KindCheckbox, KindURL, KindEmail, KindPhoneNumber, KindStatus,
}

// ParseKind validates a property kind string.
func ParseKind(s string) (PropertyKind, error) {
	k := PropertyKind(s)
	for _, known := range kindOrder {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: unknown kind %q", common.ErrInvalidProperty, s)
}

// PropertyValue is a tagged variant holding one property payload. Exactly
// one payload field is meaningful, selected by Kind:
//
//	Text:    title, rich_text, url, email, phone_number
//	Number:  number
//	Checked: checkbox
//	Date:    date
//	Options: select/status (first element), multi_select (all elements)
type PropertyValue struct {
	Kind    PropertyKind
	Text    string
	Number  float64
	Checked bool
	Date    time.Time
	Options []string
}

func Title(s string) PropertyValue    { return PropertyValue{Kind: KindTitle, Text: s} }
func RichText(s string) PropertyValue { return PropertyValue{Kind: KindRichText, Text: s} }
func Number(n float64) PropertyValue  { return PropertyValue{Kind: KindNumber, Number: n} }
func Checkbox(b bool) PropertyValue   { return PropertyValue{Kind: KindCheckbox, Checked: b} }
func URL(s string) PropertyValue      { return PropertyValue{Kind: KindURL, Text: s} }
func Email(s string) PropertyValue    { return PropertyValue{Kind: KindEmail, Text: s} }
func Phone(s string) PropertyValue    { return PropertyValue{Kind: KindPhoneNumber, Text: s} }

func Date(t time.Time) PropertyValue {
	return PropertyValue{Kind: KindDate, Date: t}
}

func Select(option string) PropertyValue {
	return PropertyValue{Kind: KindSelect, Options: []string{option}}
}

func Status(option string) PropertyValue {
	return PropertyValue{Kind: KindStatus, Options: []string{option}}
}

func MultiSelect(options ...string) PropertyValue {
	return PropertyValue{Kind: KindMultiSelect, Options: options}
}

// Wire payload fragments, matching the remote API's property shapes.

type textSegment struct {
	Text struct {
		Content string `json:"content"`
	} `json:"text"`
}

func newTextSegment(s string) textSegment {
	var seg textSegment
	seg.Text.Content = s
	return seg
}

type namedOption struct {
	Name string `json:"name"`
}

type datePayload struct {
	Start string `json:"start"`
}

// MarshalJSON encodes the value in the remote API's payload shape, e.g.
// {"title":[{"text":{"content":"..."}}]} or {"checkbox":true}. The switch
// is exhaustive over PropertyKind; an unknown kind is an error.
func (v PropertyValue) MarshalJSON() ([]byte, error) {
	var payload any

	switch v.Kind {
	case KindTitle, KindRichText:
		payload = []textSegment{newTextSegment(v.Text)}
	case KindNumber:
		payload = v.Number
	case KindSelect, KindStatus:
		if len(v.Options) == 0 {
			return nil, fmt.Errorf("%w: %s requires an option", common.ErrInvalidProperty, v.Kind)
		}
		payload = namedOption{Name: v.Options[0]}
	case KindMultiSelect:
		opts := make([]namedOption, 0, len(v.Options))
		for _, o := range v.Options {
			opts = append(opts, namedOption{Name: o})
		}
		payload = opts
	case KindDate:
		payload = datePayload{Start: v.Date.Format(time.RFC3339)}
	case KindCheckbox:
		payload = v.Checked
	case KindURL, KindEmail, KindPhoneNumber:
		payload = v.Text
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", common.ErrInvalidProperty, v.Kind)
	}

	return json.Marshal(map[PropertyKind]any{v.Kind: payload})
}

// UnmarshalJSON decodes a single-key payload object back into the variant.
func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	var raw map[PropertyKind]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for _, kind := range kindOrder {
		payload, ok := raw[kind]
		if !ok {
			continue
		}
		return v.decodePayload(kind, payload)
	}

	return fmt.Errorf("%w: no recognized property kind", common.ErrInvalidProperty)
}

func (v *PropertyValue) decodePayload(kind PropertyKind, payload json.RawMessage) error {
	*v = PropertyValue{Kind: kind}

	switch kind {
	case KindTitle, KindRichText:
		var segs []textSegment
		if err := json.Unmarshal(payload, &segs); err != nil {
			return err
		}
		if len(segs) > 0 {
			v.Text = segs[0].Text.Content
		}
	case KindNumber:
		return json.Unmarshal(payload, &v.Number)
	case KindSelect, KindStatus:
		var opt namedOption
		if err := json.Unmarshal(payload, &opt); err != nil {
			return err
		}
		v.Options = []string{opt.Name}
	case KindMultiSelect:
		var opts []namedOption
		if err := json.Unmarshal(payload, &opts); err != nil {
			return err
		}
		v.Options = make([]string, 0, len(opts))
		for _, o := range opts {
			v.Options = append(v.Options, o.Name)
		}
	case KindDate:
		var d datePayload
		if err := json.Unmarshal(payload, &d); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339, d.Start)
		if err != nil {
			return fmt.Errorf("%w: bad date %q", common.ErrInvalidProperty, d.Start)
		}
		v.Date = parsed
	case KindCheckbox:
		return json.Unmarshal(payload, &v.Checked)
	case KindURL, KindEmail, KindPhoneNumber:
		return json.Unmarshal(payload, &v.Text)
	}

	return nil
}

// Property pairs a property identifier with its value.
type Property struct {
	ID    string
	Value PropertyValue
}

// Properties is an order-preserving property map. It marshals to a JSON
// object whose keys appear in slice order, which is also the order sent to
// the remote API.
type Properties []Property

func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, prop := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(prop.ID)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(prop.Value)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", prop.ID, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (p *Properties) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: expected object", common.ErrInvalidProperty)
	}

	out := Properties{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("%w: expected string key", common.ErrInvalidProperty)
		}
		var value PropertyValue
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("property %q: %w", key, err)
		}
		out = append(out, Property{ID: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*p = out
	return nil
}
