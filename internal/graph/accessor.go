package graph

import (
	"strings"

	"printsettings/internal/user/models"
)

// FieldTable reads named fields off an already-resolved parent value. It backs
// guarded fields that have no resolver of their own.
type FieldTable map[string]func(source any) any

// Fields builds a FieldTable for sources of type T. Names are matched
// case-insensitively; a source of any other type reads as nil.
func Fields[T any](getters map[string]func(T) any) FieldTable {
	table := make(FieldTable, len(getters))
	for name, get := range getters {
		table[strings.ToLower(name)] = func(source any) any {
			v, ok := source.(T)
			if !ok {
				return nil
			}
			return get(v)
		}
	}
	return table
}

// Read returns the value of field name on source, or nil when the table has no
// such field.
func (t FieldTable) Read(source any, name string) any {
	get, ok := t[strings.ToLower(name)]
	if !ok {
		return nil
	}
	return get(source)
}

// userFields exposes id and email. The password digest is never readable
// through the graph.
var userFields = Fields(map[string]func(*models.User) any{
	"id": func(u *models.User) any {
		if u == nil {
			return nil
		}
		return u.ID
	},
	"email": func(u *models.User) any {
		if u == nil {
			return nil
		}
		return u.Email
	},
})
