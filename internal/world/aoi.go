package world

// AOIGrid implements a cell-based Area of Interest system.
// Cell size is chosen so that a 3x3 neighbourhood of cells fully covers
// the screen range (Chebyshev distance 18).
// Guarded by State's lock.

const cellSize = 20

type cellKey struct {
	mapID uint32
	cx    int32
	cy    int32
}

func toCellCoord(v int32) int32 {
	if v < 0 {
		return (v - cellSize + 1) / cellSize
	}
	return v / cellSize
}

// AOIGrid tracks which combatants are in which cells.
type AOIGrid struct {
	cells map[cellKey]map[uint32]struct{} // cellKey → set of combatant ids
}

func NewAOIGrid() *AOIGrid {
	return &AOIGrid{
		cells: make(map[cellKey]map[uint32]struct{}),
	}
}

func (g *AOIGrid) key(p Point, mapID uint32) cellKey {
	return cellKey{mapID: mapID, cx: toCellCoord(p.X), cy: toCellCoord(p.Y)}
}

// Add places a combatant into the grid.
func (g *AOIGrid) Add(id uint32, p Point, mapID uint32) {
	k := g.key(p, mapID)
	cell := g.cells[k]
	if cell == nil {
		cell = make(map[uint32]struct{})
		g.cells[k] = cell
	}
	cell[id] = struct{}{}
}

// Remove takes a combatant out of the grid.
func (g *AOIGrid) Remove(id uint32, p Point, mapID uint32) {
	k := g.key(p, mapID)
	if cell := g.cells[k]; cell != nil {
		delete(cell, id)
		if len(cell) == 0 {
			delete(g.cells, k)
		}
	}
}

// Move updates a combatant's cell when its position changes.
func (g *AOIGrid) Move(id uint32, from, to Point, mapID uint32) {
	if g.key(from, mapID) == g.key(to, mapID) {
		return
	}
	g.Remove(id, from, mapID)
	g.Add(id, to, mapID)
}

// Nearby returns all ids in the 3x3 neighbourhood of cells around p.
// Caller does fine-grained distance filtering.
func (g *AOIGrid) Nearby(p Point, mapID uint32) []uint32 {
	cx, cy := toCellCoord(p.X), toCellCoord(p.Y)
	var result []uint32
	for dx := int32(-1); dx <= 1; dx++ {
		for dy := int32(-1); dy <= 1; dy++ {
			for id := range g.cells[cellKey{mapID: mapID, cx: cx + dx, cy: cy + dy}] {
				result = append(result, id)
			}
		}
	}
	return result
}
