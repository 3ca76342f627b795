// Package orderedmap haelt JSON-Objekte in Einfuegereihenfolge.
//
// Modul: orderedmap.go - Generische geordnete Map
// Enthaelt: Map, New, Get, Set, Len, All, ToMap, MarshalJSON, UnmarshalJSON
//
// Tool-Argumente und Schema-Properties muessen beim Serialisieren die
// Reihenfolge behalten, in der das Modell bzw. der Client sie geschrieben hat.
package orderedmap

import (
	"iter"

	wk8 "github.com/wk8/go-ordered-map/v2"
)

// Map ist eine geordnete Map. Der Nullwert ist nicht benutzbar, New verwenden.
type Map[K comparable, V any] struct {
	om *wk8.OrderedMap[K, V]
}

// New erzeugt eine leere Map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{om: wk8.New[K, V]()}
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	return m.om.Get(key)
}

// Set setzt key auf value. Ein bestehender Schluessel behaelt seine Position.
func (m *Map[K, V]) Set(key K, value V) {
	m.om.Set(key, value)
}

func (m *Map[K, V]) Len() int {
	return m.om.Len()
}

// All iteriert in Einfuegereihenfolge.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
			if !yield(pair.Key, pair.Value) {
				return
			}
		}
	}
}

// ToMap kopiert in eine normale Map (Reihenfolge geht verloren).
func (m *Map[K, V]) ToMap() map[K]V {
	out := make(map[K]V, m.om.Len())
	for pair := m.om.Oldest(); pair != nil; pair = pair.Next() {
		out[pair.Key] = pair.Value
	}
	return out
}

func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	return m.om.MarshalJSON()
}

func (m *Map[K, V]) UnmarshalJSON(data []byte) error {
	if m.om == nil {
		m.om = wk8.New[K, V]()
	}
	return m.om.UnmarshalJSON(data)
}
