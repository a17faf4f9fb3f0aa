// Package game streams chunks around the player: it generates, meshes and
// uploads the chunks inside the view distance and soft-unloads the rest.
package game

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/leterax/chunkworld/pkg/buffers"
	"github.com/leterax/chunkworld/pkg/voxel"
)

// ErrChunkNotFound is returned when querying a chunk that is not active
var ErrChunkNotFound = errors.New("chunk not active")

// ChunkUploader places chunk meshes in GPU-visible buffers.
// buffers.ChunkBufferManager is the production implementation.
type ChunkUploader interface {
	Upload(coord voxel.ChunkCoord, mesh *voxel.Mesh) (buffers.ChunkAllocation, error)
	Remove(coord voxel.ChunkCoord) bool
}

// Options controls the streaming policy
type Options struct {
	// ViewDistance is the radius in chunks around the player's chunk
	ViewDistance int
	// VerticalStreaming streams a cube instead of a square at the player's z
	VerticalStreaming bool
	// RemeshNeighbours rebuilds resident neighbours of newly streamed chunks
	RemeshNeighbours bool
}

// World owns the active chunks. It is driven from the render loop and
// is not safe for concurrent use.
type World struct {
	opts      Options
	generator voxel.TerrainGenerator
	mesher    *voxel.Mesher
	uploader  ChunkUploader
	archive   *GridArchive

	active            map[voxel.ChunkCoord]*ChunkState
	previouslyVisible map[voxel.ChunkCoord]struct{}
	pending           map[voxel.ChunkCoord]struct{}

	lastPlayerChunk voxel.ChunkCoord
	hasPlayerChunk  bool

	generated int
	restored  int
	meshed    int
	reclaimed int
}

// NewWorld creates an empty world. archive may be nil, in which case
// reclaimed chunks are regenerated from terrain when they return.
func NewWorld(opts Options, generator voxel.TerrainGenerator, mesher *voxel.Mesher, uploader ChunkUploader, archive *GridArchive) *World {
	return &World{
		opts:              opts,
		generator:         generator,
		mesher:            mesher,
		uploader:          uploader,
		archive:           archive,
		active:            make(map[voxel.ChunkCoord]*ChunkState),
		previouslyVisible: make(map[voxel.ChunkCoord]struct{}),
		pending:           make(map[voxel.ChunkCoord]struct{}),
	}
}

// UpdateView streams the neighbourhood of the chunk containing the player.
// It does nothing while the player stays inside the same chunk and reports
// whether any streaming happened.
func (w *World) UpdateView(x, y, z float32) bool {
	playerChunk := voxel.ChunkCoordFromWorld(x, y, z)
	if w.hasPlayerChunk && playerChunk == w.lastPlayerChunk {
		return false
	}
	w.lastPlayerChunk = playerChunk
	w.hasPlayerChunk = true

	for coord := range w.previouslyVisible {
		if state, ok := w.active[coord]; ok {
			state.Visible = false
		}
	}
	clear(w.previouslyVisible)

	var created []*ChunkState
	for _, coord := range w.neighbourhood(playerChunk) {
		w.previouslyVisible[coord] = struct{}{}
		if state, ok := w.active[coord]; ok {
			state.Visible = true
			continue
		}

		state := w.load(coord)
		state.Visible = true
		w.active[coord] = state

		if !w.opts.RemeshNeighbours {
			w.rebuild(state)
			continue
		}
		created = append(created, state)
	}

	if len(created) == 0 {
		return true
	}

	// Mesh every new chunk once all of them have grids, then fix up the
	// boundary faces of chunks that were resident before this update
	isNew := make(map[voxel.ChunkCoord]struct{}, len(created))
	for _, state := range created {
		isNew[state.Coord] = struct{}{}
	}
	stale := make(map[voxel.ChunkCoord]struct{})
	for _, state := range created {
		w.rebuild(state)
		for _, d := range voxel.Directions {
			n := state.Coord.Neighbor(d)
			if _, fresh := isNew[n]; fresh {
				continue
			}
			if _, ok := w.active[n]; ok {
				stale[n] = struct{}{}
			}
		}
	}
	for _, coord := range sortedCoords(stale) {
		w.rebuild(w.active[coord])
	}
	return true
}

// neighbourhood lists the coordinates within view distance of center
func (w *World) neighbourhood(center voxel.ChunkCoord) []voxel.ChunkCoord {
	r := int32(w.opts.ViewDistance)
	minZ, maxZ := center.Z, center.Z
	if w.opts.VerticalStreaming {
		minZ, maxZ = center.Z-r, center.Z+r
	}

	coords := make([]voxel.ChunkCoord, 0, (2*r+1)*(2*r+1)*(maxZ-minZ+1))
	for x := center.X - r; x <= center.X+r; x++ {
		for y := center.Y - r; y <= center.Y+r; y++ {
			for z := minZ; z <= maxZ; z++ {
				coords = append(coords, voxel.ChunkCoord{X: x, Y: y, Z: z})
			}
		}
	}
	return coords
}

// load creates the state of a chunk entering the world, restoring an
// archived grid when there is one
func (w *World) load(coord voxel.ChunkCoord) *ChunkState {
	state := &ChunkState{Coord: coord}
	if w.archive != nil {
		grid, ok, err := w.archive.Load(coord)
		if err != nil {
			log.Printf("Restoring chunk %v failed, regenerating: %v", coord, err)
		}
		if ok {
			state.Grid = grid
			state.Edited = true
			w.restored++
			return state
		}
	}
	state.Grid = w.generator.Generate(coord)
	w.generated++
	return state
}

// rebuild remeshes a chunk from its grid and its active neighbours and uploads the result
func (w *World) rebuild(state *ChunkState) {
	state.Mesh = w.mesher.MeshChunk(state.Coord, state.Grid, w)
	w.meshed++
	w.upload(state)
}

func (w *World) upload(state *ChunkState) bool {
	alloc, err := w.uploader.Upload(state.Coord, state.Mesh)
	if err != nil {
		// The old placement may still hold an outdated mesh
		w.uploader.Remove(state.Coord)
		state.Alloc = buffers.ChunkAllocation{}
		state.Uploaded = false
		w.pending[state.Coord] = struct{}{}
		if errors.Is(err, buffers.ErrOutOfSpace) {
			log.Printf("Chunk %v left undrawn until buffers free up: %v", state.Coord, err)
		} else {
			log.Printf("Failed to upload chunk %v: %v", state.Coord, err)
		}
		return false
	}
	state.Alloc = alloc
	state.Uploaded = true
	delete(w.pending, state.Coord)
	return true
}

// GridAt implements voxel.NeighbourSource over the active chunks
func (w *World) GridAt(coord voxel.ChunkCoord) (*voxel.Grid, bool) {
	state, ok := w.active[coord]
	if !ok {
		return nil, false
	}
	return state.Grid, true
}

// Chunk returns the state of an active chunk
func (w *World) Chunk(coord voxel.ChunkCoord) (*ChunkState, error) {
	state, ok := w.active[coord]
	if !ok {
		return nil, fmt.Errorf("chunk %v: %w", coord, ErrChunkNotFound)
	}
	return state, nil
}

// IsVisible reports whether an active chunk is inside the view distance
func (w *World) IsVisible(coord voxel.ChunkCoord) (bool, error) {
	state, err := w.Chunk(coord)
	if err != nil {
		return false, err
	}
	return state.Visible, nil
}

// ActiveChunks returns the coordinates of all active chunks, ordered
func (w *World) ActiveChunks() []voxel.ChunkCoord {
	coords := make([]voxel.ChunkCoord, 0, len(w.active))
	for coord := range w.active {
		coords = append(coords, coord)
	}
	sortCoords(coords)
	return coords
}

// PlayerChunk returns the chunk of the last streamed player position
func (w *World) PlayerChunk() (voxel.ChunkCoord, bool) {
	return w.lastPlayerChunk, w.hasPlayerChunk
}

// VoxelAt returns the voxel at a world position inside an active chunk
func (w *World) VoxelAt(worldX, worldY, worldZ int32) (voxel.VoxelID, error) {
	state, err := w.Chunk(voxel.WorldToChunkCoord(worldX, worldY, worldZ))
	if err != nil {
		return voxel.Air, err
	}
	x, y, z := voxel.WorldToLocalCoord(worldX, worldY, worldZ)
	return state.Grid.Get(x, y, z), nil
}

// SetVoxel edits a voxel of an active chunk and remeshes what the edit can
// affect: the chunk itself and, on a boundary, the adjacent active chunks
func (w *World) SetVoxel(worldX, worldY, worldZ int32, id voxel.VoxelID) error {
	state, err := w.Chunk(voxel.WorldToChunkCoord(worldX, worldY, worldZ))
	if err != nil {
		return err
	}
	x, y, z := voxel.WorldToLocalCoord(worldX, worldY, worldZ)
	if state.Grid.Get(x, y, z) == id {
		return nil
	}
	state.Grid.Set(x, y, z, id)
	state.Edited = true
	w.rebuild(state)

	for _, d := range voxel.OnBoundary(x, y, z) {
		if neighbour, ok := w.active[state.Coord.Neighbor(d)]; ok {
			w.rebuild(neighbour)
		}
	}
	return nil
}

// Reclaim destroys up to limit soft-unloaded chunks, giving their buffer
// regions back and archiving edited grids. limit <= 0 reclaims all of them.
// It returns how many chunks were destroyed.
func (w *World) Reclaim(limit int) int {
	var invisible []voxel.ChunkCoord
	for coord, state := range w.active {
		if !state.Visible {
			invisible = append(invisible, coord)
		}
	}
	sortCoords(invisible)
	if limit > 0 && len(invisible) > limit {
		invisible = invisible[:limit]
	}

	for _, coord := range invisible {
		state := w.active[coord]
		w.uploader.Remove(coord)
		if state.Edited && w.archive != nil {
			w.archive.Store(coord, state.Grid)
		}
		delete(w.active, coord)
		delete(w.pending, coord)
	}
	w.reclaimed += len(invisible)
	if len(invisible) > 0 {
		log.Printf("Reclaimed %d chunks, %d active", len(invisible), len(w.active))
	}
	return len(invisible)
}

// RetryUploads re-attempts uploads that failed earlier, e.g. after Reclaim
// or after the buffers grew. It returns how many succeeded.
func (w *World) RetryUploads() int {
	if len(w.pending) == 0 {
		return 0
	}
	uploaded := 0
	for _, coord := range sortedCoords(w.pending) {
		state, ok := w.active[coord]
		if !ok {
			delete(w.pending, coord)
			continue
		}
		if state.Mesh == nil {
			state.Mesh = w.mesher.MeshChunk(coord, state.Grid, w)
			w.meshed++
		}
		if w.upload(state) {
			uploaded++
		}
	}
	if uploaded > 0 {
		log.Printf("Uploaded %d pending chunks, %d still pending", uploaded, len(w.pending))
	}
	return uploaded
}

// VisibleChunks returns the draw data of every visible, uploaded chunk with geometry, ordered by coordinate
func (w *World) VisibleChunks() []RenderData {
	coords := make([]voxel.ChunkCoord, 0, len(w.previouslyVisible))
	for coord := range w.previouslyVisible {
		coords = append(coords, coord)
	}
	sortCoords(coords)

	data := make([]RenderData, 0, len(coords))
	for _, coord := range coords {
		state, ok := w.active[coord]
		if !ok || !state.Drawable() {
			continue
		}
		data = append(data, RenderData{
			Coord:       coord,
			Mesh:        state.Mesh,
			Alloc:       state.Alloc,
			Translation: coord.Origin(),
		})
	}
	return data
}

// Stats returns counters describing the world
func (w *World) Stats() Stats {
	s := Stats{
		Active:         len(w.active),
		PendingUploads: len(w.pending),
		Generated:      w.generated,
		Restored:       w.restored,
		Meshed:         w.meshed,
		Reclaimed:      w.reclaimed,
	}
	for _, state := range w.active {
		if state.Visible {
			s.Visible++
		}
	}
	if w.archive != nil {
		s.Archived = w.archive.Len()
	}
	return s
}

func sortCoords(coords []voxel.ChunkCoord) {
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
}

func sortedCoords(set map[voxel.ChunkCoord]struct{}) []voxel.ChunkCoord {
	coords := make([]voxel.ChunkCoord, 0, len(set))
	for coord := range set {
		coords = append(coords, coord)
	}
	sortCoords(coords)
	return coords
}
