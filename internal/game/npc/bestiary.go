package npc

import (
	"fmt"
	"sort"
)

// Bestiary indexes templates by id and by faction.
type Bestiary struct {
	byID      map[string]*Template
	byFaction map[string][]*Template
}

// NewBestiary indexes templates. Within a faction, variants are ordered by
// Variant then ID.
//
// Postcondition: Returns an error on duplicate template IDs.
func NewBestiary(templates []*Template) (*Bestiary, error) {
	b := &Bestiary{
		byID:      make(map[string]*Template, len(templates)),
		byFaction: make(map[string][]*Template),
	}
	for _, t := range templates {
		if _, dup := b.byID[t.ID]; dup {
			return nil, fmt.Errorf("npc: duplicate template id %q", t.ID)
		}
		b.byID[t.ID] = t
		b.byFaction[t.Faction] = append(b.byFaction[t.Faction], t)
	}
	for _, list := range b.byFaction {
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Variant != list[j].Variant {
				return list[i].Variant < list[j].Variant
			}
			return list[i].ID < list[j].ID
		})
	}
	return b, nil
}

// Template returns the template with id.
func (b *Bestiary) Template(id string) (*Template, bool) {
	t, ok := b.byID[id]
	return t, ok
}

// Variants returns the faction's templates in variant order.
func (b *Bestiary) Variants(faction string) []*Template {
	return b.byFaction[faction]
}

// Variant selects the template for a nonzero spawn cell value v:
// variants[(v-1) % len(variants)].
//
// Postcondition: Returns false when v < 1 or the faction has no variants.
func (b *Bestiary) Variant(faction string, v int) (*Template, bool) {
	list := b.byFaction[faction]
	if v < 1 || len(list) == 0 {
		return nil, false
	}
	return list[(v-1)%len(list)], true
}
