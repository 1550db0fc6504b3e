package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProperties_String(t *testing.T) {
	p := Properties{
		"title":  "Hello",
		"multi":  []any{"a", "b"},
		"number": json.Number("42"),
		"nil":    nil,
	}

	assert.Equal(t, "Hello", p.String("title"))
	assert.Equal(t, "a", p.String("multi"))
	assert.Equal(t, "42", p.String("number"))
	assert.Equal(t, "", p.String("nil"))
	assert.False(t, p.Has("nil"))
	assert.Equal(t, "fallback", p.StringOr("missing", "fallback"))
}

func TestProperties_Strings(t *testing.T) {
	p := Properties{"one": "x", "many": []string{"a", "b"}}

	assert.Equal(t, []string{"x"}, p.Strings("one"))
	assert.Equal(t, []string{"a", "b"}, p.Strings("many"))
	assert.Nil(t, p.Strings("missing"))
}

func TestProperties_Bool(t *testing.T) {
	p := Properties{"yes": "True ", "flag": true, "no": "nope"}

	assert.True(t, p.Bool("yes"))
	assert.True(t, p.Bool("flag"))
	assert.False(t, p.Bool("no"))
	assert.False(t, p.Bool("missing"))
}

func TestProperties_Int(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int64
		ok    bool
	}{
		{"int", 3, 3, true},
		{"float", float64(4), 4, true},
		{"json number", json.Number("5"), 5, true},
		{"string", " 6 ", 6, true},
		{"not a number", "six", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Properties{"n": tt.value}.Int("n")
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProperties_Time(t *testing.T) {
	p := Properties{"on": "2024-03-01T10:00:00+01:00", "bad": "tomorrow"}

	got, ok := p.Time("on")
	assert.True(t, ok)
	assert.True(t, got.Equal(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))

	_, ok = p.Time("bad")
	assert.False(t, ok)
}
