package combat

import (
	"github.com/cory-johannsen/warband/internal/game/geom"
	"github.com/cory-johannsen/warband/internal/game/stat"
)

// StatView is the wire form of one stat.
type StatView struct {
	Current  float64 `json:"current"`
	Capacity float64 `json:"capacity"`
}

// View is the wire form of a unit used by ent-create, map-join and
// player-select.
type View struct {
	ID        string                 `json:"id"`
	OwnerID   string                 `json:"ownerId"`
	Kind      string                 `json:"kind"`
	Name      string                 `json:"name"`
	Type      string                 `json:"type"`
	Faction   string                 `json:"faction"`
	X         float64                `json:"x"`
	Y         float64                `json:"y"`
	Width     float64                `json:"width"`
	Height    float64                `json:"height"`
	Facing    geom.Facing            `json:"facing"`
	Anim      string                 `json:"anim"`
	Level     int                    `json:"level"`
	Stats     map[stat.Name]StatView `json:"stats"`
	Abilities map[string]bool        `json:"abilities"`

	Archetype string `json:"archetype,omitempty"`
	XP        *int   `json:"xp,omitempty"`
	XPToGo    *int   `json:"xpRequired,omitempty"`
	Merits    *int   `json:"merits,omitempty"`
	Rank      Rank   `json:"rank,omitempty"`
	Sleeping  bool   `json:"sleeping,omitempty"`
}

// View returns the wire form of u.
func (u *Unit) View() View {
	v := View{
		ID:        u.ID,
		OwnerID:   u.OwnerID,
		Kind:      u.Kind.String(),
		Name:      u.Name,
		Type:      u.Type,
		Faction:   u.Faction,
		X:         u.Body.Rect.X,
		Y:         u.Body.Rect.Y,
		Width:     u.Body.Rect.W,
		Height:    u.Body.Rect.H,
		Facing:    u.Body.Facing,
		Anim:      u.Body.Anim,
		Level:     u.Level(),
		Stats:     make(map[stat.Name]StatView, 4),
		Abilities: u.Abilities.ReadyMap(),
	}
	for _, st := range u.Stats.All() {
		v.Stats[st.Name()] = StatView{Current: st.Current(), Capacity: st.Capacity()}
	}
	if p := u.Player; p != nil {
		v.Archetype = p.Archetype
		v.XP = ptr(p.XP)
		v.XPToGo = ptr(xpRequired(p.Level))
		v.Merits = ptr(p.Merits)
	}
	if n := u.NPC; n != nil {
		v.Rank = n.Rank
		v.Sleeping = n.Sleeping
	}
	return v
}
