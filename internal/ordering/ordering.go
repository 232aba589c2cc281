// Package ordering holds the position rules for sibling entities: columns
// within a board and tasks within a column. Positions are plain sortable
// integers; neither uniqueness nor density is enforced.
package ordering

// Append returns the position for a new sibling created without an explicit
// position: the current sibling count, so default view order follows
// insertion order.
func Append(siblingCount int) int {
	return siblingCount
}

// BatchPosition returns the position for the i-th entry of an inline batch
// (e.g. columns supplied with a new board): the 0-based batch index, in the
// order received.
func BatchPosition(index int) int {
	return index
}

// Normalize clamps a caller-supplied position to the non-negative range.
func Normalize(position int) int {
	if position < 0 {
		return 0
	}
	return position
}

// Less reports whether sibling a sorts before sibling b. Equal positions are
// tolerated; the id tie-break keeps repeated listings deterministic.
func Less(positionA int, idA string, positionB int, idB string) bool {
	if positionA != positionB {
		return positionA < positionB
	}
	return idA < idB
}
