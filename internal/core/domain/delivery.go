package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Reserved delivery document fields.
const (
	FieldAPIType        = "api-type"
	FieldContentType    = "content-type"
	FieldAPIEndpoint    = "api-endpoint"
	FieldWebDAVEndpoint = "webdav-endpoint"
	FieldID             = "id"
	FieldPayload        = "payload"
	FieldFolderID       = "folder-id"
	FieldLibraryID      = "library_id"
	FieldSiteID         = "site_id"
	FieldSlotID         = "slot_id"
	FieldLocale         = "locale"
	FieldPath           = "path"
	FieldScope          = "scope"
	FieldContext        = "context"
)

// API types understood by the transport side.
const (
	APITypeOCAPI  = "ocapi"
	APITypeWebDAV = "webdav"
)

// Content types produced by the built-in builder plugins.
const (
	ContentTypeContentAsset      = "content-asset"
	ContentTypeContentSlotConfig = "content-slot-config"
	ContentTypeStaticAsset       = "static-asset"
)

var placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)

// Delivery is the normalised document one replication action produces.
//
// Merge contract:
//   - top-level scalars are first-writer-wins (Set never overwrites)
//   - the folder-id array is appended, skipping folders already present
//   - the payload object is created on first use and deep-merged
type Delivery struct {
	fields  map[string]any
	folders []string
	payload Payload
}

// NewDelivery returns an empty delivery document.
func NewDelivery() *Delivery {
	return &Delivery{fields: make(map[string]any)}
}

// Set stores a top-level value unless the key is already set.
// It reports whether the value was written. Nil values are ignored.
func (d *Delivery) Set(key string, value any) bool {
	if value == nil || key == FieldPayload || key == FieldFolderID {
		return false
	}
	if _, exists := d.fields[key]; exists {
		return false
	}
	d.fields[key] = value
	return true
}

// SetAPIType records the api type if no earlier plugin did.
func (d *Delivery) SetAPIType(apiType string) bool {
	return d.Set(FieldAPIType, apiType)
}

// SetContentType records the content type if no earlier plugin did.
func (d *Delivery) SetContentType(contentType string) bool {
	return d.Set(FieldContentType, contentType)
}

// Has reports whether a top-level field is present.
func (d *Delivery) Has(key string) bool {
	switch key {
	case FieldPayload:
		return d.payload != nil
	case FieldFolderID:
		return len(d.folders) > 0
	}
	_, ok := d.fields[key]
	return ok
}

// Get returns a top-level field.
func (d *Delivery) Get(key string) (any, bool) {
	v, ok := d.fields[key]
	return v, ok
}

// String returns a top-level field formatted as a string, or "" when absent.
func (d *Delivery) String(key string) string {
	v, ok := d.fields[key]
	if !ok {
		return ""
	}
	return stringify(v)
}

// APIType returns the api-type field.
func (d *Delivery) APIType() string {
	return d.String(FieldAPIType)
}

// ContentType returns the content-type field.
func (d *Delivery) ContentType() string {
	return d.String(FieldContentType)
}

// ID returns the id field.
func (d *Delivery) ID() string {
	return d.String(FieldID)
}

// AppendFolders adds folder ids in order, skipping blanks and duplicates.
func (d *Delivery) AppendFolders(folders ...string) {
	for _, f := range folders {
		f = strings.TrimSpace(f)
		if f == "" || d.hasFolder(f) {
			continue
		}
		d.folders = append(d.folders, f)
	}
}

func (d *Delivery) hasFolder(folder string) bool {
	for _, f := range d.folders {
		if f == folder {
			return true
		}
	}
	return false
}

// Folders returns a copy of the folder-id array.
func (d *Delivery) Folders() []string {
	out := make([]string, len(d.folders))
	copy(out, d.folders)
	return out
}

// Payload returns the payload object, creating it on first use.
func (d *Delivery) Payload() Payload {
	if d.payload == nil {
		d.payload = Payload{}
	}
	return d.payload
}

// HasPayload reports whether any plugin created the payload.
func (d *Delivery) HasPayload() bool {
	return d.payload != nil
}

// IsEmpty reports whether no plugin contributed anything.
func (d *Delivery) IsEmpty() bool {
	return len(d.fields) == 0 && len(d.folders) == 0 && d.payload == nil
}

// Expand replaces every {name} token in template with the matching field.
// Tokens without a matching field are left intact.
func (d *Delivery) Expand(template string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := token[1 : len(token)-1]
		if v, ok := d.fields[name]; ok {
			return stringify(v)
		}
		return token
	})
}

// MarshalJSON encodes the document with sorted keys so equal documents
// always serialise to identical bytes.
func (d *Delivery) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(d.fields)+2)
	for k, v := range d.fields {
		m[k] = v
	}
	if len(d.folders) > 0 {
		m[FieldFolderID] = d.folders
	}
	if d.payload != nil {
		m[FieldPayload] = map[string]any(d.payload)
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a document, keeping numbers as json.Number.
func (d *Delivery) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDelivery(data)
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}

// ParseDelivery decodes a serialised delivery document.
func ParseDelivery(data []byte) (*Delivery, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode delivery: %w", err)
	}

	d := NewDelivery()
	for k, v := range raw {
		switch k {
		case FieldPayload:
			p, ok := v.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: payload is not an object", ErrInvalidInput)
			}
			d.payload = Payload(p)
		case FieldFolderID:
			d.AppendFolders(toStrings(v)...)
		default:
			if v != nil {
				d.fields[k] = v
			}
		}
	}
	return d, nil
}

// Payload is the protocol specific body nested under the payload field.
type Payload map[string]any

// Set stores a payload value. A nil value removes the key. When both the
// existing and the new value are objects they are deep-merged.
func (p Payload) Set(key string, value any) {
	if value == nil {
		delete(p, key)
		return
	}
	if incoming, ok := asObject(value); ok {
		if existing, ok := asObject(p[key]); ok {
			mergeObjects(existing, incoming)
			p[key] = existing
			return
		}
		p[key] = incoming
		return
	}
	p[key] = value
}

// Merge deep-merges every entry of other into the payload.
func (p Payload) Merge(other map[string]any) {
	for k, v := range other {
		p.Set(k, v)
	}
}

// String returns a payload value as a string, or "" when absent.
func (p Payload) String(key string) string {
	v, ok := p[key]
	if !ok {
		return ""
	}
	return stringify(v)
}

// Bool returns a payload value as a bool.
func (p Payload) Bool(key string) bool {
	switch v := p[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Object returns a nested payload object.
func (p Payload) Object(key string) (map[string]any, bool) {
	return asObject(p[key])
}

func asObject(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Payload:
		return map[string]any(m), true
	case map[string]any:
		return m, true
	}
	return nil, false
}

func mergeObjects(dst, src map[string]any) {
	for k, v := range src {
		if v == nil {
			delete(dst, k)
			continue
		}
		if incoming, ok := asObject(v); ok {
			if existing, ok := asObject(dst[k]); ok {
				mergeObjects(existing, incoming)
				continue
			}
			dst[k] = incoming
			continue
		}
		dst[k] = v
	}
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}

func toStrings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if item != nil {
				out = append(out, stringify(item))
			}
		}
		return out
	case string:
		return []string{s}
	}
	return nil
}
