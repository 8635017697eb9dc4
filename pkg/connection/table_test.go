// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package connection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableInsertGetRemove(t *testing.T) {
	table := NewTable()
	a := newTestConnection(t, 1, 1, true)
	b := newTestConnection(t, 2, 2, true)

	ha := table.Insert(a)
	hb := table.Insert(b)
	assert.False(t, ha.IsZero())
	assert.NotEqual(t, ha, hb)
	assert.Equal(t, 2, table.Len())
	assert.Less(t, a.Seq(), b.Seq())

	got, ok := table.Get(ha)
	assert.True(t, ok)
	assert.Same(t, a, got)

	assert.True(t, table.Remove(ha))
	assert.False(t, table.Remove(ha), "double remove")
	_, ok = table.Get(ha)
	assert.False(t, ok)
	assert.Equal(t, 1, table.Len())
}

func TestTableStaleHandleAfterReuse(t *testing.T) {
	table := NewTable()
	old := table.Insert(newTestConnection(t, 1, 1, true))
	assert.True(t, table.Remove(old))

	c := newTestConnection(t, 3, 3, true)
	fresh := table.Insert(c)
	assert.NotEqual(t, old, fresh)

	_, ok := table.Get(old)
	assert.False(t, ok, "stale handle must not resolve to the reused slot")

	got, ok := table.Get(fresh)
	assert.True(t, ok)
	assert.Same(t, c, got)
}

func TestTableZeroHandle(t *testing.T) {
	table := NewTable()
	table.Insert(newTestConnection(t, 1, 1, true))

	var h Handle
	assert.True(t, h.IsZero())
	assert.Equal(t, "none", h.String())
	_, ok := table.Get(h)
	assert.False(t, ok)
	assert.Equal(t, Handle{}, table.Insert(nil))
}

func TestTableRange(t *testing.T) {
	table := NewTable()
	h1 := table.Insert(newTestConnection(t, 1, 1, true))
	h2 := table.Insert(newTestConnection(t, 2, 2, true))
	h3 := table.Insert(newTestConnection(t, 3, 3, true))
	table.Remove(h2)

	var seen []Handle
	table.Range(func(h Handle, _ *Connection) bool {
		seen = append(seen, h)

		return true
	})
	assert.Equal(t, []Handle{h1, h3}, seen)

	seen = seen[:0]
	table.Range(func(h Handle, _ *Connection) bool {
		seen = append(seen, h)

		return false
	})
	assert.Equal(t, []Handle{h1}, seen)
}
