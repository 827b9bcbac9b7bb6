package sparks

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is the view the renderer projects particles through.
type Camera struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
	FovY     float32 // degrees
	Near     float32
	Far      float32
}

func DefaultCamera() *Camera {
	return &Camera{
		Position: mgl32.Vec3{0, 15, 80},
		Target:   mgl32.Vec3{0, 15, 0},
		Up:       mgl32.Vec3{0, 1, 0},
		FovY:     45,
		Near:     1,
		Far:      1000,
	}
}

func (c *Camera) View() mgl32.Mat4 {
	up := c.Up
	if up.Len() == 0 {
		up = mgl32.Vec3{0, 1, 0}
	}
	return mgl32.LookAtV(c.Position, c.Target, up)
}

func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), aspect, c.Near, c.Far)
}

func (c *Camera) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.Projection(aspect).Mul4(c.View())
}
