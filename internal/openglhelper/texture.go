package openglhelper

import (
	"image"

	"github.com/go-gl/gl/v4.6-core/gl"
)

// Texture is a 2D RGBA texture sampled with nearest filtering
type Texture struct {
	ID uint32
}

// NewTexture uploads an RGBA image
func NewTexture(img *image.RGBA) *Texture {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA,
		int32(img.Rect.Size().X), int32(img.Rect.Size().Y),
		0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	return &Texture{ID: id}
}

// Bind binds the texture to a texture unit
func (t *Texture) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
}

// Delete releases the texture
func (t *Texture) Delete() {
	gl.DeleteTextures(1, &t.ID)
}

// Update replaces the texture contents. img must match the size the texture was created with.
func (t *Texture) Update(img *image.RGBA) {
	gl.BindTexture(gl.TEXTURE_2D, t.ID)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0,
		int32(img.Rect.Size().X), int32(img.Rect.Size().Y),
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
}
