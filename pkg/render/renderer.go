package render

import (
	_ "embed"
	"fmt"
	"log"
	"math"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/leterax/chunkworld/internal/openglhelper"
	"github.com/leterax/chunkworld/pkg/buffers"
	"github.com/leterax/chunkworld/pkg/config"
	"github.com/leterax/chunkworld/pkg/game"
	"github.com/leterax/chunkworld/pkg/voxel"
)

//go:embed shaders/chunk.vert
var chunkVertexShader string

//go:embed shaders/chunk.frag
var chunkFragmentShader string

//go:embed shaders/hud.vert
var hudVertexShader string

//go:embed shaders/hud.frag
var hudFragmentShader string

// maintenanceInterval is how often, in seconds, the renderer reclaims
// hidden chunks and retries failed uploads
const maintenanceInterval = 1.0

// Renderer drives the streaming world and draws every visible chunk with a
// single multi-draw-indirect call over the shared chunk buffers.
type Renderer struct {
	window *openglhelper.Window
	camera *Camera
	cfg    config.Config
	title  string

	chunkShader *openglhelper.Shader
	atlas       *openglhelper.Texture

	// Status overlay
	hudShader  *openglhelper.Shader
	hudText    *HUDText
	hudTexture *openglhelper.Texture
	hudQuad    *openglhelper.ScreenQuad
	showHUD    bool

	// World state
	world   *game.World
	archive *game.GridArchive

	// Shared chunk storage
	chunkBuffers   *buffers.ChunkBufferManager
	vertexBuffer   *openglhelper.BufferObject
	indexBuffer    *openglhelper.BufferObject
	chunkVAO       *openglhelper.ChunkVertexArray
	indirectBuffer *openglhelper.BufferObject
	translationBuf *openglhelper.BufferObject

	// Per-frame scratch, reused between frames
	commands     []buffers.DrawElementsIndirectCommand
	translations []mgl32.Vec4

	// Timing
	lastFrameTime    float64
	deltaTime        float32
	sinceMaintenance float32
}

// NewRenderer opens a window and builds the world described by cfg
func NewRenderer(cfg config.Config, width, height int, title string) (*Renderer, error) {
	window, err := openglhelper.NewWindow(width, height, title, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	generator := voxel.NewGenerator(cfg.TerrainParams())
	ground := float32(generator.TerrainHeight(0, 0))
	camera := NewCamera(mgl32.Vec3{0, 0, ground + 8})
	camera.LookAt(mgl32.Vec3{voxel.ChunkSize, 0, ground})
	camera.UpdateProjectionMatrix(width, height)

	renderer := &Renderer{
		window:  window,
		camera:  camera,
		cfg:     cfg,
		title:   title,
		showHUD: true,
	}

	// Set up callbacks
	window.GLFWWindow().SetKeyCallback(renderer.keyCallback)
	window.GLFWWindow().SetCursorPosCallback(renderer.cursorPosCallback)
	window.GLFWWindow().SetMouseButtonCallback(renderer.mouseButtonCallback)
	window.GLFWWindow().SetScrollCallback(renderer.scrollCallback)
	window.GLFWWindow().SetFramebufferSizeCallback(renderer.framebufferSizeCallback)

	shader, err := openglhelper.NewShader(chunkVertexShader, chunkFragmentShader)
	if err != nil {
		window.Close()
		return nil, fmt.Errorf("failed to compile chunk shader: %w", err)
	}
	renderer.chunkShader = shader
	renderer.atlas = openglhelper.NewTexture(NewPaletteAtlas(cfg.Atlas.Width))

	if err := renderer.initHUD(); err != nil {
		renderer.Cleanup()
		return nil, err
	}

	catalog, err := voxel.DefaultCatalog(cfg.Atlas.Width)
	if err != nil {
		renderer.Cleanup()
		return nil, fmt.Errorf("failed to build voxel catalog: %w", err)
	}
	archive, err := game.NewGridArchive()
	if err != nil {
		renderer.Cleanup()
		return nil, fmt.Errorf("failed to create chunk archive: %w", err)
	}
	renderer.archive = archive

	renderer.initChunkBuffers()
	renderer.world = game.NewWorld(cfg.WorldOptions(), generator, voxel.NewMesher(catalog), renderer.chunkBuffers, archive)

	return renderer, nil
}

// initHUD sets up the text overlay
func (r *Renderer) initHUD() error {
	shader, err := openglhelper.NewShader(hudVertexShader, hudFragmentShader)
	if err != nil {
		return fmt.Errorf("failed to compile HUD shader: %w", err)
	}
	r.hudShader = shader

	text, err := NewHUDText()
	if err != nil {
		return err
	}
	r.hudText = text
	r.hudTexture = openglhelper.NewTexture(text.Canvas())
	r.hudQuad = openglhelper.NewScreenQuad()
	return nil
}

// refreshHUD redraws the overlay text from the current counters
func (r *Renderer) refreshHUD() {
	lines := statusLines(r.world.Stats(), r.chunkBuffers.Stats(), r.archive.Ratio())
	if err := r.hudText.Draw(lines); err != nil {
		log.Printf("failed to draw HUD: %v", err)
		return
	}
	r.hudTexture.Update(r.hudText.Canvas())
}

// initChunkBuffers allocates the shared GPU buffers every chunk mesh lives in
func (r *Renderer) initChunkBuffers() {
	b := r.cfg.Buffers
	r.vertexBuffer = openglhelper.NewBufferObject(gl.ARRAY_BUFFER, b.VertexBytes, nil, openglhelper.DynamicDraw)
	r.indexBuffer = openglhelper.NewBufferObject(gl.ELEMENT_ARRAY_BUFFER, b.IndexBytes, nil, openglhelper.DynamicDraw)
	r.chunkBuffers = buffers.NewChunkBufferManager(r.vertexBuffer, r.indexBuffer, b.CoalesceEvery)
	r.chunkVAO = openglhelper.NewChunkVertexArray(r.vertexBuffer, r.indexBuffer)

	side := 2*r.cfg.ViewDistance + 1
	r.indirectBuffer = openglhelper.NewIndirectBuffer(side*side, openglhelper.StreamDraw)
	r.translationBuf = openglhelper.NewBufferObject(gl.SHADER_STORAGE_BUFFER, side*side*16, nil, openglhelper.StreamDraw)
}

// update streams chunks around the camera and runs periodic maintenance
func (r *Renderer) update() {
	pos := r.camera.Position()
	if r.world.UpdateView(pos.X(), pos.Y(), pos.Z()) {
		center, _ := r.world.PlayerChunk()
		r.window.SetTitle(fmt.Sprintf("%s (%d, %d, %d)", r.title, center.X, center.Y, center.Z))
	}

	r.sinceMaintenance += r.deltaTime
	if r.sinceMaintenance < maintenanceInterval {
		return
	}
	r.sinceMaintenance = 0
	defer r.refreshHUD()

	r.world.Reclaim(r.cfg.Reclaim.MaxPerPass)
	r.world.RetryUploads()
	if r.world.Stats().PendingUploads == 0 {
		return
	}

	// Uploads still failing after reclaiming means the buffers are too small
	stats := r.chunkBuffers.Stats()
	vertexBytes := 2 * (stats.VertexUsed + stats.VertexFree)
	indexBytes := 2 * (stats.IndexUsed + stats.IndexFree)
	if err := r.chunkBuffers.Grow(vertexBytes, indexBytes); err != nil {
		log.Printf("failed to grow chunk buffers: %v", err)
		return
	}
	log.Printf("grew chunk buffers to %d vertex bytes, %d index bytes", vertexBytes, indexBytes)
	r.world.RetryUploads()
}

// render draws all visible chunks and the overlay
func (r *Renderer) render() {
	r.window.Clear(SkyColor)
	r.renderChunks()
	if r.showHUD {
		r.renderHUD()
	}
}

// renderChunks issues one multi-draw-indirect call for every visible chunk
func (r *Renderer) renderChunks() {
	visible := r.world.VisibleChunks()
	r.commands = r.commands[:0]
	r.translations = r.translations[:0]
	for i, rd := range visible {
		r.commands = append(r.commands, rd.Alloc.Command(uint32(i)))
		r.translations = append(r.translations, rd.Translation.Vec4(0))
	}
	if len(r.commands) == 0 {
		return
	}

	if err := r.indirectBuffer.UpdateIndirectCommands(r.commands); err != nil {
		log.Printf("failed to upload draw commands: %v", err)
		return
	}
	if err := openglhelper.UpdateStorage(r.translationBuf, r.translations); err != nil {
		log.Printf("failed to upload chunk translations: %v", err)
		return
	}
	r.translationBuf.BindBase(0)

	r.chunkShader.Use()
	r.chunkShader.SetMat4("view", r.camera.ViewMatrix())
	r.chunkShader.SetMat4("projection", r.camera.ProjectionMatrix())
	r.chunkShader.SetVec3("fogColor", SkyColor.Vec3())
	r.chunkShader.SetFloat("fogEnd", float32(r.cfg.ViewDistance*voxel.ChunkSize))
	r.chunkShader.SetInt("atlas", 0)
	r.atlas.Bind(0)

	// Growing the chunk buffers replaces their GL names
	r.chunkVAO.Attach(r.vertexBuffer, r.indexBuffer)
	r.chunkVAO.Bind()
	r.indirectBuffer.Bind()
	openglhelper.MultiDrawElementsIndirect(gl.TRIANGLES, gl.UNSIGNED_INT, len(r.commands))
	r.chunkVAO.Unbind()
}

// renderHUD draws the status canvas at its pixel size in the top-left corner
func (r *Renderer) renderHUD() {
	width, height := r.window.Size()
	if width == 0 || height == 0 {
		return
	}
	w := 2 * float32(hudWidth) / float32(width)
	h := 2 * float32(hudHeight) / float32(height)

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	r.hudShader.Use()
	r.hudShader.SetVec4("rect", mgl32.Vec4{-1, 1 - h, w, h})
	r.hudShader.SetInt("hud", 0)
	r.hudTexture.Bind(0)
	r.hudQuad.Draw()

	gl.Disable(gl.BLEND)
	gl.Enable(gl.DEPTH_TEST)
}

// Run starts the main rendering loop
func (r *Renderer) Run() {
	r.lastFrameTime = glfw.GetTime()
	r.refreshHUD()

	for !r.window.ShouldClose() {
		currentTime := glfw.GetTime()
		r.deltaTime = float32(currentTime - r.lastFrameTime)
		r.lastFrameTime = currentTime

		r.camera.ProcessKeyboardInput(r.deltaTime, r.window)
		r.update()
		r.render()

		r.window.SwapBuffers()
		r.window.PollEvents()
	}

	r.Cleanup()
}

// Cleanup frees all resources
func (r *Renderer) Cleanup() {
	if r.archive != nil {
		r.archive.Close()
	}
	for _, bo := range []*openglhelper.BufferObject{r.vertexBuffer, r.indexBuffer, r.indirectBuffer, r.translationBuf} {
		if bo != nil {
			bo.Delete()
		}
	}
	if r.chunkVAO != nil {
		r.chunkVAO.Delete()
	}
	if r.atlas != nil {
		r.atlas.Delete()
	}
	if r.chunkShader != nil {
		r.chunkShader.Delete()
	}
	if r.hudQuad != nil {
		r.hudQuad.Delete()
	}
	if r.hudTexture != nil {
		r.hudTexture.Delete()
	}
	if r.hudShader != nil {
		r.hudShader.Delete()
	}

	r.window.Close()
}

// pick marches a ray from the camera and returns the first solid voxel it
// hits together with the empty voxel right before it.
func (r *Renderer) pick() (hit, before [3]int32, ok bool) {
	origin := r.camera.Position()
	dir := r.camera.FrontVector()

	before = voxelAt(origin)
	for t := float32(0); t <= ReachDistance; t += reachStep {
		cell := voxelAt(origin.Add(dir.Mul(t)))
		if cell == before && t > 0 {
			continue
		}
		id, err := r.world.VoxelAt(cell[0], cell[1], cell[2])
		if err != nil {
			return hit, before, false
		}
		if id != voxel.Air {
			return cell, before, true
		}
		before = cell
	}
	return hit, before, false
}

func voxelAt(p mgl32.Vec3) [3]int32 {
	return [3]int32{
		int32(math.Floor(float64(p.X()))),
		int32(math.Floor(float64(p.Y()))),
		int32(math.Floor(float64(p.Z()))),
	}
}

// Callback functions
func (r *Renderer) keyCallback(window *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if action != Press {
		return
	}
	switch key {
	case KeyEscape:
		r.window.GLFWWindow().SetShouldClose(true)
	case KeyC:
		// Toggle mouse capture
		r.window.ToggleMouseCaptured()
		r.camera.ResetMouseState()
	case KeyV:
		r.window.SetVSync(!r.window.VSync())
	case KeyH:
		r.showHUD = !r.showHUD
	case KeyR:
		for _, line := range statusLines(r.world.Stats(), r.chunkBuffers.Stats(), r.archive.Ratio()) {
			log.Print(line)
		}
	}
}

func (r *Renderer) cursorPosCallback(_ *glfw.Window, xpos, ypos float64) {
	if r.window.IsMouseCaptured() {
		r.camera.HandleMouseMovement(xpos, ypos)
	}
}

func (r *Renderer) mouseButtonCallback(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
	if action != Press || !r.window.IsMouseCaptured() {
		return
	}
	hit, before, ok := r.pick()
	if !ok {
		return
	}

	var err error
	switch button {
	case glfw.MouseButtonLeft:
		err = r.world.SetVoxel(hit[0], hit[1], hit[2], voxel.Air)
	case glfw.MouseButtonRight:
		err = r.world.SetVoxel(before[0], before[1], before[2], voxel.Dirt)
	}
	if err != nil {
		log.Printf("failed to edit voxel: %v", err)
	}
}

func (r *Renderer) scrollCallback(_ *glfw.Window, xoffset, yoffset float64) {
	r.camera.HandleMouseScroll(yoffset)
}

func (r *Renderer) framebufferSizeCallback(_ *glfw.Window, width, height int) {
	r.window.OnResize(width, height)
	r.camera.UpdateProjectionMatrix(width, height)
}
