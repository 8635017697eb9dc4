// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package connection

import "fmt"

// Handle is a stable, copyable reference to a Connection owned by a Table.
// A handle outlives its Connection: once the Connection is removed the
// handle stops resolving, even if the slot is reused. The zero Handle
// never resolves.
type Handle struct {
	index      uint32
	generation uint32
}

// IsZero reports if h is the zero Handle.
func (h Handle) IsZero() bool { return h.generation == 0 }

func (h Handle) String() string {
	if h.IsZero() {
		return "none"
	}

	return fmt.Sprintf("%d#%d", h.index, h.generation)
}

type tableSlot struct {
	conn       *Connection
	generation uint32
}

// Table owns Connections and hands out Handles to them. It is not safe for
// concurrent use.
type Table struct {
	slots []tableSlot
	free  []uint32
	seq   uint64
	size  int
}

// NewTable creates an empty Table.
func NewTable() *Table {
	return &Table{}
}

// Insert takes ownership of conn and returns a handle to it.
func (t *Table) Insert(conn *Connection) Handle {
	if conn == nil {
		return Handle{}
	}

	t.seq++
	conn.seq = t.seq
	t.size++

	if n := len(t.free); n > 0 {
		index := t.free[n-1]
		t.free = t.free[:n-1]
		slot := &t.slots[index]
		slot.conn = conn

		return Handle{index: index, generation: slot.generation}
	}

	t.slots = append(t.slots, tableSlot{conn: conn, generation: 1})

	return Handle{index: uint32(len(t.slots) - 1), generation: 1} //nolint:gosec // G115
}

// Get resolves a handle. It returns false for the zero handle and for
// handles whose Connection has been removed.
func (t *Table) Get(h Handle) (*Connection, bool) {
	if h.IsZero() || int(h.index) >= len(t.slots) {
		return nil, false
	}
	slot := t.slots[h.index]
	if slot.generation != h.generation || slot.conn == nil {
		return nil, false
	}

	return slot.conn, true
}

// Remove destroys the Connection behind h. It returns false if h did not
// resolve.
func (t *Table) Remove(h Handle) bool {
	if _, ok := t.Get(h); !ok {
		return false
	}

	slot := &t.slots[h.index]
	slot.conn = nil
	slot.generation++
	if slot.generation == 0 {
		// Skip zero so a wrapped generation never looks like the zero handle.
		slot.generation = 1
	}
	t.free = append(t.free, h.index)
	t.size--

	return true
}

// Len is the number of live Connections.
func (t *Table) Len() int { return t.size }

// Range calls f for every live Connection in slot order until f returns false.
func (t *Table) Range(f func(Handle, *Connection) bool) {
	for i, slot := range t.slots {
		if slot.conn == nil {
			continue
		}
		if !f(Handle{index: uint32(i), generation: slot.generation}, slot.conn) { //nolint:gosec // G115
			return
		}
	}
}
