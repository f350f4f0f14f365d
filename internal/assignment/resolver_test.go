package assignment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveExactMatch(t *testing.T) {
	r := NewResolver()

	vehicle, ok := r.Resolve("Вокзальный п/з")
	assert.True(t, ok)
	assert.Equal(t, "Машина 4", vehicle)
}

func TestResolveIsCaseAndSpaceInsensitive(t *testing.T) {
	r := NewResolver()

	vehicle, ok := r.Resolve("  ВОКЗАЛЬНЫЙ П/З  ")
	assert.True(t, ok)
	assert.Equal(t, "Машина 4", vehicle)

	vehicle, ok = r.Resolve("ЦеНтРаЛьНыЙ")
	assert.True(t, ok)
	assert.Equal(t, "Машина 1", vehicle)
}

func TestResolveSubstringBothDirections(t *testing.T) {
	r := NewResolver()

	// Input contains a table entry.
	vehicle, ok := r.Resolve("центральный район, ул. Мира 12")
	assert.True(t, ok)
	assert.Equal(t, "Машина 1", vehicle)

	// Table entry contains the input.
	vehicle, ok = r.Resolve("ленинск")
	assert.True(t, ok)
	assert.Equal(t, "Машина 2", vehicle)
}

func TestResolveFirstTableHitWins(t *testing.T) {
	r := NewResolver(WithSynonyms([]Synonym{
		{Region: "северный берег", Vehicle: "Машина 9"},
		{Region: "северный", Vehicle: "Машина 4"},
	}))

	vehicle, ok := r.Resolve("северный берег, д. 3")
	assert.True(t, ok)
	assert.Equal(t, "Машина 9", vehicle)
}

func TestResolveUnknownRegionFallsBack(t *testing.T) {
	r := NewResolver()

	vehicle, ok := r.Resolve("Новая застройка без названия")
	assert.True(t, ok)
	assert.Equal(t, FallbackVehicle, vehicle)
}

func TestResolveEmptyRegion(t *testing.T) {
	r := NewResolver()

	vehicle, ok := r.Resolve("   ")
	assert.False(t, ok)
	assert.Empty(t, vehicle)
}

func TestResolveCustomFallback(t *testing.T) {
	r := NewResolver(WithFallbackVehicle("Резерв"))

	vehicle, ok := r.Resolve("улица без района")
	assert.True(t, ok)
	assert.Equal(t, "Резерв", vehicle)
}
