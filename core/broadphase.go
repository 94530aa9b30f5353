package core

import "math"

// cellKey addresses one cell of the uniform spatial hash:
// floor(position / cellSize) per axis.
type cellKey struct {
	x, y, z int32
}

// candidate is a broad-phase particle pair, by index into the step's dense
// particle view.
type candidate struct {
	i, j int
}

// broadPhase hashes particle centres into a uniform grid and emits pairs
// from each cell's 27-neighbourhood. With a cell size of twice the largest
// radius, every overlapping pair lands in adjacent cells, and for spatially
// localized packings the expected cost stays close to linear.
type broadPhase struct {
	cellSize float64
	cells    map[cellKey][]int
}

func newBroadPhase() *broadPhase {
	return &broadPhase{cells: make(map[cellKey][]int)}
}

func (bp *broadPhase) keyFor(p Vec3) cellKey {
	return cellKey{
		x: int32(math.Floor(p.X / bp.cellSize)),
		y: int32(math.Floor(p.Y / bp.cellSize)),
		z: int32(math.Floor(p.Z / bp.cellSize)),
	}
}

// rebuild rehashes all particles. maxRadius sets the cutoff; an empty system
// leaves the grid empty.
func (bp *broadPhase) rebuild(positions []Vec3, maxRadius float64) {
	for k := range bp.cells {
		delete(bp.cells, k)
	}
	if len(positions) == 0 || maxRadius <= 0 {
		return
	}
	bp.cellSize = 2 * maxRadius
	for i, pos := range positions {
		k := bp.keyFor(pos)
		bp.cells[k] = append(bp.cells[k], i)
	}
}

// halfNeighbourhood enumerates the cell itself plus 13 of its 26 neighbours,
// so that every unordered cell pair is visited exactly once.
var halfNeighbourhood = [14]cellKey{
	{0, 0, 0},
	{1, 0, 0},
	{-1, 1, 0}, {0, 1, 0}, {1, 1, 0},
	{-1, -1, 1}, {0, -1, 1}, {1, -1, 1},
	{-1, 0, 1}, {0, 0, 1}, {1, 0, 1},
	{-1, 1, 1}, {0, 1, 1}, {1, 1, 1},
}

// pairs appends all candidate pairs to dst and returns it.
func (bp *broadPhase) pairs(dst []candidate) []candidate {
	for key, occupants := range bp.cells {
		// Pairs within the cell.
		for a := 0; a < len(occupants); a++ {
			for b := a + 1; b < len(occupants); b++ {
				dst = append(dst, candidate{i: occupants[a], j: occupants[b]})
			}
		}
		// Pairs against the forward half of the neighbourhood.
		for _, off := range halfNeighbourhood[1:] {
			neighbour := cellKey{x: key.x + off.x, y: key.y + off.y, z: key.z + off.z}
			others, ok := bp.cells[neighbour]
			if !ok {
				continue
			}
			for _, a := range occupants {
				for _, b := range others {
					dst = append(dst, candidate{i: a, j: b})
				}
			}
		}
	}
	return dst
}
