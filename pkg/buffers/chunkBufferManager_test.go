package buffers

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/leterax/chunkworld/pkg/voxel"
)

const (
	faceVertexBytes = 4 * voxel.VertexSize
	faceIndexBytes  = 6 * voxel.IndexSize
)

// quads builds a mesh of n front faces
func quads(n int) *voxel.Mesh {
	mesh := voxel.NewMesh()
	for i := 0; i < n; i++ {
		mesh.AddFace(voxel.FrontFace(uint16(i)), mgl32.Vec3{float32(i), 0, 0}, 4, 0.25)
	}
	return mesh
}

func newTestManager(faces int) (*ChunkBufferManager, *MemoryBuffer, *MemoryBuffer) {
	vb := NewMemoryBuffer(faces * faceVertexBytes)
	ib := NewMemoryBuffer(faces * faceIndexBytes)
	return NewChunkBufferManager(vb, ib, 0), vb, ib
}

func TestUploadWritesMeshBytes(t *testing.T) {
	m, vb, ib := newTestManager(16)
	a := voxel.ChunkCoord{X: 0}
	b := voxel.ChunkCoord{X: 1}

	if _, err := m.Upload(a, quads(3)); err != nil {
		t.Fatal(err)
	}
	mesh := quads(2)
	alloc, err := m.Upload(b, mesh)
	if err != nil {
		t.Fatal(err)
	}

	if alloc.Vertices.Size != 2*faceVertexBytes || alloc.Indices.Size != 2*faceIndexBytes || alloc.IndexCount != 12 {
		t.Errorf("allocation = %+v", alloc)
	}
	if !bytes.Equal(vb.Bytes(alloc.Vertices.Offset, alloc.Vertices.Size), mesh.VertexBytes()) {
		t.Error("vertex bytes not written at the allocated offset")
	}
	if !bytes.Equal(ib.Bytes(alloc.Indices.Offset, alloc.Indices.Size), mesh.IndexBytes()) {
		t.Error("index bytes not written at the allocated offset")
	}

	cmd := alloc.Command(7)
	if cmd.Count != 12 || cmd.InstanceCount != 1 || cmd.BaseInstance != 7 {
		t.Errorf("command = %+v", cmd)
	}
	if int(cmd.FirstIndex)*voxel.IndexSize != alloc.Indices.Offset || int(cmd.BaseVertex)*voxel.VertexSize != alloc.Vertices.Offset {
		t.Errorf("command offsets %+v do not match allocation %+v", cmd, alloc)
	}
}

func TestUploadReplacesPreviousAllocation(t *testing.T) {
	m, _, _ := newTestManager(16)
	c := voxel.ChunkCoord{}

	if _, err := m.Upload(c, quads(4)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Upload(c, quads(2)); err != nil {
		t.Fatal(err)
	}

	s := m.Stats()
	if s.Chunks != 1 {
		t.Errorf("chunks = %d, want 1", s.Chunks)
	}
	if s.VertexUsed != 2*faceVertexBytes || s.IndexUsed != 2*faceIndexBytes {
		t.Errorf("used = %d/%d, want only the new mesh", s.VertexUsed, s.IndexUsed)
	}
	if s.VertexUsed+s.VertexFree != 16*faceVertexBytes {
		t.Errorf("vertex capacity changed: %+v", s)
	}
}

func TestUploadOutOfSpace(t *testing.T) {
	m, vb, _ := newTestManager(4)
	if _, err := m.Upload(voxel.ChunkCoord{X: 0}, quads(3)); err != nil {
		t.Fatal(err)
	}
	writes := vb.Writes()
	before := m.Stats()

	_, err := m.Upload(voxel.ChunkCoord{X: 1}, quads(2))
	if !errors.Is(err, ErrOutOfSpace) {
		t.Fatalf("err = %v, want ErrOutOfSpace", err)
	}
	if m.Stats() != before {
		t.Errorf("failed upload changed stats: %+v -> %+v", before, m.Stats())
	}
	if vb.Writes() != writes {
		t.Error("failed upload wrote to the buffer")
	}
	if _, ok := m.Allocation(voxel.ChunkCoord{X: 1}); ok {
		t.Error("failed chunk has an allocation")
	}

	if err := m.Grow(8*faceVertexBytes, 8*faceIndexBytes); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Upload(voxel.ChunkCoord{X: 1}, quads(2)); err != nil {
		t.Errorf("upload after grow: %v", err)
	}
	if vb.Len() != 8*faceVertexBytes {
		t.Errorf("backend length = %d", vb.Len())
	}
}

func TestReplacementFallsBackToOldSpace(t *testing.T) {
	m, _, _ := newTestManager(4)
	c := voxel.ChunkCoord{}
	if _, err := m.Upload(c, quads(4)); err != nil {
		t.Fatal(err)
	}
	// No room next to the old mesh, but its own space fits the new one
	alloc, err := m.Upload(c, quads(3))
	if err != nil {
		t.Fatalf("replacement: %v", err)
	}
	if alloc.Vertices.Offset != 0 {
		t.Errorf("replacement at %d, want 0", alloc.Vertices.Offset)
	}
	if m.Stats().Chunks != 1 {
		t.Errorf("chunks = %d", m.Stats().Chunks)
	}
}

func TestUploadEmptyMeshRemoves(t *testing.T) {
	m, _, _ := newTestManager(4)
	c := voxel.ChunkCoord{}
	if _, err := m.Upload(c, quads(2)); err != nil {
		t.Fatal(err)
	}
	alloc, err := m.Upload(c, voxel.NewMesh())
	if err != nil {
		t.Fatal(err)
	}
	if !alloc.Empty() {
		t.Errorf("empty mesh got allocation %+v", alloc)
	}
	if s := m.Stats(); s.Chunks != 0 || s.VertexUsed != 0 || s.IndexUsed != 0 {
		t.Errorf("stats after empty upload = %+v", s)
	}
}

func TestRemoveAndPeriodicCoalesce(t *testing.T) {
	vb := NewMemoryBuffer(8 * faceVertexBytes)
	ib := NewMemoryBuffer(8 * faceIndexBytes)
	m := NewChunkBufferManager(vb, ib, 2)

	coords := []voxel.ChunkCoord{{X: 0}, {X: 1}, {X: 2}, {X: 3}}
	for _, c := range coords {
		if _, err := m.Upload(c, quads(2)); err != nil {
			t.Fatal(err)
		}
	}
	if !m.Remove(coords[0]) || !m.Remove(coords[1]) {
		t.Fatal("Remove reported a missing chunk")
	}
	if m.Remove(coords[0]) {
		t.Error("second Remove of the same chunk reported success")
	}

	// The second release triggered a coalesce pass
	if got := len(m.VertexRegions().FreeRegions()); got != 1 {
		t.Errorf("vertex free fragments = %d, want 1: %v", got, m.VertexRegions().FreeRegions())
	}
	if got := m.Chunks(); len(got) != 2 || got[0] != coords[2] || got[1] != coords[3] {
		t.Errorf("Chunks = %v", got)
	}
}

func TestDrawCommandsSkipMissingChunks(t *testing.T) {
	m, _, _ := newTestManager(8)
	a := voxel.ChunkCoord{X: 0}
	b := voxel.ChunkCoord{X: 1}
	missing := voxel.ChunkCoord{X: 9}
	if _, err := m.Upload(a, quads(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Upload(b, quads(2)); err != nil {
		t.Fatal(err)
	}

	cmds := m.DrawCommands([]voxel.ChunkCoord{a, missing, b})
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	if cmds[0].BaseInstance != 0 || cmds[1].BaseInstance != 2 {
		t.Errorf("base instances = %d, %d, want 0, 2", cmds[0].BaseInstance, cmds[1].BaseInstance)
	}
	if cmds[1].Count != 12 {
		t.Errorf("count = %d, want 12", cmds[1].Count)
	}
}

func TestGrowRejectsShrink(t *testing.T) {
	m, _, _ := newTestManager(4)
	if err := m.Grow(2*faceVertexBytes, 0); err == nil {
		t.Error("shrinking grow accepted")
	}
}

func TestMemoryBufferBounds(t *testing.T) {
	b := NewMemoryBuffer(8)
	if err := b.WriteAt(4, []byte{1, 2, 3, 4}); err != nil {
		t.Fatal(err)
	}
	if err := b.WriteAt(6, []byte{1, 2, 3}); err == nil {
		t.Error("write past the end accepted")
	}
	if err := b.Grow(4); err == nil {
		t.Error("shrink accepted")
	}
	if err := b.Grow(16); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b.Bytes(4, 4), []byte{1, 2, 3, 4}) {
		t.Error("grow lost contents")
	}
}
