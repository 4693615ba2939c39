// pkg/physics/group.go
package physics

import (
	"context"
	"fmt"
)

// MaxGroups is the number of collision groups a 32-bit mask can address.
// Index 31 is reserved so masks stay positive when stored as signed ints.
const MaxGroups = 31

// NoGroup marks a collider that belongs to no collision group
const NoGroup = -1

// Mask is a set of collision groups, one bit per group index
type Mask uint32

// GroupMask maps a group index to its single-bit mask. Out-of-range indices
// are logged and yield an empty mask, so the collider matches no group.
func GroupMask(index int) Mask {
	if index < 0 || index >= MaxGroups {
		if index != NoGroup {
			logger.Warn(context.Background(), "collision group index out of range",
				"index", index,
				"max", MaxGroups-1,
			)
		}
		return 0
	}
	return Mask(1) << uint(index)
}

// MaskOf builds a mask from a list of group indices
func MaskOf(groups ...int) Mask {
	var m Mask
	for _, g := range groups {
		m |= GroupMask(g)
	}
	return m
}

// Has reports whether the mask contains the given group
func (m Mask) Has(group int) bool {
	bit := GroupMask(group)
	return bit != 0 && m&bit != 0
}

// Groups lists the group indices contained in the mask, ascending
func (m Mask) Groups() []int {
	groups := make([]int, 0, MaxGroups)
	for i := 0; i < MaxGroups; i++ {
		if m&(Mask(1)<<uint(i)) != 0 {
			groups = append(groups, i)
		}
	}
	return groups
}

// String formats the mask as its group list
func (m Mask) String() string {
	return fmt.Sprint(m.Groups())
}

func checkGroup(group int) error {
	if group != NoGroup && (group < 0 || group >= MaxGroups) {
		return fmt.Errorf("group %d: %w", group, ErrGroupOutOfRange)
	}
	return nil
}
