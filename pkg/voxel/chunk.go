package voxel

// Grid is one chunk's voxels, indexed by LocalToIndex
type Grid [ChunkVolume]VoxelID

// Get returns the voxel at local coordinates; out of bounds reads as air
func (g *Grid) Get(x, y, z int) VoxelID {
	if !InBounds(x, y, z) {
		return Air
	}
	return g[LocalToIndex(x, y, z)]
}

// Set stores a voxel at local coordinates; out of bounds writes are ignored
func (g *Grid) Set(x, y, z int, id VoxelID) {
	if !InBounds(x, y, z) {
		return
	}
	g[LocalToIndex(x, y, z)] = id
}

// Fill sets every voxel of the grid to id
func (g *Grid) Fill(id VoxelID) {
	for i := range g {
		g[i] = id
	}
}

// Empty reports whether the grid holds only air
func (g *Grid) Empty() bool {
	for _, id := range g {
		if id != Air {
			return false
		}
	}
	return true
}

// OnBoundary returns the directions in which local coordinates touch the chunk's edge
func OnBoundary(x, y, z int) []Direction {
	var dirs []Direction
	if x == ChunkSize-1 {
		dirs = append(dirs, Front)
	}
	if x == 0 {
		dirs = append(dirs, Back)
	}
	if y == 0 {
		dirs = append(dirs, Left)
	}
	if y == ChunkSize-1 {
		dirs = append(dirs, Right)
	}
	if z == ChunkSize-1 {
		dirs = append(dirs, Top)
	}
	if z == 0 {
		dirs = append(dirs, Bottom)
	}
	return dirs
}
