//go:build tinygo || !cgo

package gltext

import (
	"errors"
	"image"

	"github.com/ElArtista/sdftext/atlas"
)

var errNoCGO = errors.New("GPU text rendering requires CGo and is not supported on TinyGo")

// Renderer owns the GPU side of the pipeline. This build has no GL support;
// every method returns an error.
type Renderer struct{}

// NewRenderer is unavailable without CGo.
func NewRenderer(atlasW, atlasH int) (*Renderer, error) {
	return nil, errNoCGO
}

func (r *Renderer) UploadRegion(reg image.Rectangle, data []byte) error { return errNoCGO }

func (r *Renderer) Upload(a *atlas.Atlas) error { return errNoCGO }

func (r *Renderer) Draw(verts []Vertex, indices []uint32, mvp [16]float32, opts Options) error {
	return errNoCGO
}

func (r *Renderer) Release() {}

// CreateWindow is unavailable without CGo.
func CreateWindow(width, height int, title string) (Window, func(), error) {
	return nil, nil, errNoCGO
}

// PollEvents processes pending window events. No-op without CGo.
func PollEvents() {}

func Clear(rgba [4]float32) {}
