package converters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sfcc-replicator/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
	"github.com/custodia-labs/sfcc-replicator/internal/core/services"
	"github.com/custodia-labs/sfcc-replicator/internal/resolvers"
)

func page(t *testing.T, props map[string]any, inherited map[string]any) driven.Resource {
	t.Helper()
	tree := memory.NewResourceTree(&memory.Node{Children: []*memory.Node{
		memory.Page("site", "commerce/page", inherited,
			memory.Page("page", "commerce/page", props),
		),
	}})
	r, err := tree.Resolve(context.Background(), "/site/page")
	require.NoError(t, err)
	return r
}

func attr(source, target, converter, def string) domain.AttributeDescriptor {
	return domain.AttributeDescriptor{SourceName: source, TargetName: target, ConverterID: converter, DefaultValue: def}
}

func TestFixValue(t *testing.T) {
	assert.Equal(t, true, FixValue("true"))
	assert.Equal(t, true, FixValue("TRUE"))
	assert.Equal(t, false, FixValue("trueish"))
	assert.Equal(t, false, FixValue("True "))
	assert.Equal(t, false, FixValue("False"))
	assert.Equal(t, false, FixValue("falsey"))
	assert.Equal(t, "yes", FixValue("yes"))
	assert.Equal(t, 5, FixValue(5))
}

func TestDefault(t *testing.T) {
	c := NewDefault()
	p := page(t, map[string]any{"jcr:title": "Hello", "dwreOnline": "true"}, nil)

	assert.True(t, c.CanHandle(attr("jcr:title", "name", "", ""), p))
	assert.True(t, c.CanHandle(attr("jcr:title", "name", "Default", ""), p))
	assert.False(t, c.CanHandle(attr("jcr:title", "name", "i18n", ""), p))
	assert.False(t, c.CanHandle(attr("missing", "x", "", ""), p))
	assert.True(t, c.CanHandle(attr("missing", "x", "", "fallback"), p))

	assert.Equal(t, "Hello", c.Convert(attr("jcr:title", "name", "", ""), p))
	assert.Equal(t, true, c.Convert(attr("dwreOnline", "online", "", ""), p))
	assert.Equal(t, "fallback", c.Convert(attr("missing", "x", "", "fallback"), p))
}

func TestI18n_KeysByLocale(t *testing.T) {
	c := NewI18n(resolvers.NewLocaleResolver())

	withLang := page(t, map[string]any{"jcr:title": "Hallo"}, map[string]any{"jcr:language": "de_DE"})
	assert.Equal(t, map[string]any{"de-DE": "Hallo"}, c.Convert(attr("jcr:title", "name", "i18n", ""), withLang))

	noLang := page(t, map[string]any{"jcr:title": "Hello"}, nil)
	assert.Equal(t, map[string]any{"default": "Hello"}, c.Convert(attr("jcr:title", "name", "i18n", ""), noLang))
}

func TestSite_KeysBySite(t *testing.T) {
	c := NewSite()
	p := page(t, map[string]any{"dwreOnline": "false"}, map[string]any{"dwreSite": "site1"})

	require.True(t, c.CanHandle(attr("dwreOnline", "online", "site", ""), p))
	assert.Equal(t, map[string]any{"site1": false}, c.Convert(attr("dwreOnline", "online", "site", ""), p))
}

func TestCSV(t *testing.T) {
	c := NewCSV()
	p := page(t, map[string]any{"tags": " a, ,b ,true", "blank": "  "}, nil)

	assert.True(t, c.CanHandle(attr("tags", "t", "comma-separated-values", ""), p))
	assert.True(t, c.CanHandle(attr("tags", "t", "[comma-separated-values]", ""), p))
	assert.Equal(t, []any{"a", "b", true}, c.Convert(attr("tags", "t", "comma-separated-values", ""), p))
	assert.Equal(t, []any{"x", "y"}, c.Convert(attr("blank", "t", "comma-separated-values", "x,y"), p))
}

func TestRegistry_SelectionOrder(t *testing.T) {
	registry := services.NewConverterRegistry(Defaults(resolvers.NewLocaleResolver())...)
	p := page(t, map[string]any{"jcr:title": "Hello"}, nil)

	c, ok := registry.Select(attr("jcr:title", "name", "i18n", ""), p)
	require.True(t, ok)
	assert.Equal(t, IDI18n, c.Name())

	c, ok = registry.Select(attr("jcr:title", "name", "", ""), p)
	require.True(t, ok)
	assert.Equal(t, IDDefault, c.Name())

	_, ok = registry.Select(attr("jcr:title", "name", "unknown", ""), p)
	assert.False(t, ok)
}

func TestRegistry_SkipsInapplicable(t *testing.T) {
	registry := services.NewConverterRegistry(Defaults(nil)...)
	p := page(t, map[string]any{}, nil)

	out := registry.Convert([]domain.AttributeDescriptor{attr("jcr:title", "name", "i18n", "")}, p)

	assert.Empty(t, out)
}
