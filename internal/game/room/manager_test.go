package room_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/warband/internal/game/ai"
	"github.com/cory-johannsen/warband/internal/game/combat"
	"github.com/cory-johannsen/warband/internal/gameerr"
)

func TestManager_ListInCreationOrder(t *testing.T) {
	f := newFixture(t, 1)
	one := f.create(t, "", "Training")
	two, err := f.rooms.Create("crypt", "Night Watch", "pw", "Elite")
	require.NoError(t, err)

	list := f.rooms.List()
	require.Len(t, list, 2)
	assert.Equal(t, one.ID, list[0].ID)
	assert.Equal(t, "Test Grounds", list[0].CustomName)
	assert.False(t, list[0].Locked)
	assert.Equal(t, two.ID, list[1].ID)
	assert.Equal(t, "Night Watch", list[1].CustomName)
	assert.Equal(t, "Elite", list[1].Difficulty)
	assert.True(t, list[1].Locked)
	assert.Equal(t, 6, list[1].PopulationLimit)

	got, ok := f.rooms.Get(two.ID)
	require.True(t, ok)
	assert.Same(t, two, got)
}

func TestManager_LeaveDestroysEmptyInstance(t *testing.T) {
	f := newFixture(t, 1)
	inst := f.create(t, "", "Training")
	alice := newMember("alice")
	a := f.knight(t, alice, "Alice")
	_, err := f.rooms.Join(inst.ID, alice, a, "")
	require.NoError(t, err)
	spawned := npcs(inst)

	require.NoError(t, f.rooms.Leave(inst.ID, alice))

	assert.True(t, inst.Destroyed())
	assert.Equal(t, 0, f.rooms.Count())
	_, ok := f.rooms.Get(inst.ID)
	assert.False(t, ok)
	for _, u := range spawned {
		assert.Empty(t, u.MapID)
	}

	before := spawned[0].Body.Rect
	f.clock.Advance(10 * ai.DefaultTickInterval)
	assert.Equal(t, before, spawned[0].Body.Rect)

	assert.ErrorIs(t, f.rooms.Leave(inst.ID, alice), gameerr.ErrMapNotFound)
	_, err = f.rooms.Join(inst.ID, alice, a, "")
	assert.ErrorIs(t, err, gameerr.ErrMapNotFound)
}

func TestManager_LeaveKeepsOccupiedInstance(t *testing.T) {
	f := newFixture(t, 1)
	inst := f.create(t, "", "Training")
	alice, bob := newMember("alice"), newMember("bob")
	_, err := f.rooms.Join(inst.ID, alice, f.knight(t, alice, "Alice"), "")
	require.NoError(t, err)
	_, err = f.rooms.Join(inst.ID, bob, f.knight(t, bob, "Bob"), "")
	require.NoError(t, err)

	require.NoError(t, f.rooms.Leave(inst.ID, alice))
	assert.False(t, inst.Destroyed())
	assert.Equal(t, 1, f.rooms.Count())
}

func TestManager_DestroyAll(t *testing.T) {
	f := newFixture(t, 1)
	f.create(t, "", "Training")
	f.create(t, "", "Veteran")
	f.rooms.DestroyAll()
	assert.Equal(t, 0, f.rooms.Count())
	assert.Empty(t, f.rooms.List())
}

func TestProperty_PopulationNeverExceedsLimit(t *testing.T) {
	f := newFixture(t, 9)
	rapid.Check(t, func(t *rapid.T) {
		inst, err := f.rooms.Create("test", "", "", "Training")
		require.NoError(t, err)
		defer f.rooms.Destroy(inst.ID)

		members := make([]*member, 8)
		units := make([]*combat.Unit, 8)
		for n := range members {
			members[n] = newMember(fmt.Sprintf("m%d", n))
		}
		ops := rapid.SliceOfN(rapid.IntRange(0, 15), 1, 40).Draw(t, "ops")
		for _, op := range ops {
			n := op % 8
			if op < 8 {
				if units[n] == nil || units[n].MapID != "" {
					units[n] = combatKnight(f, members[n])
				}
				_ = inst.AddUser(members[n], units[n], "")
			} else {
				_ = inst.RemoveUser(members[n])
			}
			require.LessOrEqual(t, inst.Population(), inst.Limit())
		}
	})
}
