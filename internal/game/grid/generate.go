package grid

import "fmt"

// Generate builds a size x size board whose terrain follows dist, a map of
// percentages summing to 100. Cells left over by rounding become Desert.
func Generate(size int, dist map[Terrain]int, rng Rand) (*Battlefield, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid battlefield size %d", size)
	}
	if len(dist) == 0 {
		dist = DefaultDistribution()
	}
	total := 0
	for t, pct := range dist {
		if pct < 0 {
			return nil, fmt.Errorf("negative share %d for %s", pct, t)
		}
		total += pct
	}
	if total != 100 {
		return nil, fmt.Errorf("terrain distribution sums to %d, want 100", total)
	}

	cellCount := size * size
	pool := make([]Terrain, 0, cellCount)
	for _, t := range Terrains() {
		n := cellCount * dist[t] / 100
		for i := 0; i < n; i++ {
			pool = append(pool, t)
		}
	}
	for len(pool) < cellCount {
		pool = append(pool, Desert)
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	b := NewBattlefield(size, Desert)
	for i, c := range b.Cells() {
		c.terrain = pool[i]
	}
	return b, nil
}

// Parse builds a battlefield from rows of terrain icons, one string per row.
// Handy for fixtures: "..FS" is desert, desert, forest, stone.
func Parse(rows ...string) (*Battlefield, error) {
	size := len(rows)
	if size == 0 {
		return nil, fmt.Errorf("empty battlefield layout")
	}
	byIcon := make(map[rune]Terrain, len(terrainTable))
	for t, info := range terrainTable {
		byIcon[rune(info.icon[0])] = t
	}
	b := NewBattlefield(size, Desert)
	for y, row := range rows {
		runes := []rune(row)
		if len(runes) != size {
			return nil, fmt.Errorf("row %d has %d cells, want %d", y, len(runes), size)
		}
		for x, r := range runes {
			t, ok := byIcon[r]
			if !ok {
				return nil, fmt.Errorf("row %d col %d: unknown terrain icon %q", y, x, r)
			}
			b.cells[y][x].terrain = t
		}
	}
	return b, nil
}

// Layout renders the board as icon rows, the inverse of Parse.
func (b *Battlefield) Layout() []string {
	rows := make([]string, b.size)
	for y, row := range b.cells {
		buf := make([]byte, 0, b.size)
		for _, c := range row {
			buf = append(buf, c.terrain.Icon()...)
		}
		rows[y] = string(buf)
	}
	return rows
}
