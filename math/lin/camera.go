// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "math"

// Camera is an orbit camera: it looks at Target from Distance units away,
// along the direction given by Yaw (around the world Y axis) and Pitch
// (tilt up/down), rather than tracking a free location and orientation
// directly. This matches how a scene-review tool frames a single subject
// rather than flying through a level.
//
// As with the rest of this package, Camera holds its derived matrices as
// scratch fields that are recomputed in place rather than reallocated, so
// that Orbit/Pan/Dolly can be called every frame without pressuring the
// garbage collector.
type Camera struct {
	Target *V3 // point the camera looks at.

	Yaw   float64 // degrees, rotation around world Y axis.
	Pitch float64 // degrees, clamped to [-89, 89] to avoid gimbal flip.

	Distance float64 // units from Target to the eye.
	MinDist  float64 // Dolly will not bring Distance below this.
	MaxDist  float64 // Dolly will not push Distance above this.

	Fov    float64 // vertical field of view, degrees.
	Aspect float64 // width/height.
	Near   float64
	Far    float64

	vm  *M4 // view matrix, recomputed by update.
	pm  *M4 // projection matrix, recomputed by SetPerspective.
	vp  *M4 // cached view * projection, recomputed by update.
	eye *V3 // scratch: current eye position.
}

// NewCamera returns an orbit camera looking at the origin from 10 units
// back, with a typical 60 degree vertical fov.
func NewCamera() *Camera {
	c := &Camera{
		Target:   &V3{},
		Distance: 10,
		MinDist:  0.01,
		MaxDist:  Large,
		Fov:      60,
		Aspect:   16.0 / 9.0,
		Near:     0.1,
		Far:      1000,
		vm:       &M4{},
		pm:       &M4{},
		vp:       &M4{},
		eye:      &V3{},
	}
	c.pm.Persp(c.Fov, c.Aspect, c.Near, c.Far)
	c.update()
	return c
}

// SetPerspective sets the camera's projection. Call after changing Fov,
// Aspect, Near, or Far.
func (c *Camera) SetPerspective(fov, aspect, near, far float64) *Camera {
	c.Fov, c.Aspect, c.Near, c.Far = fov, aspect, near, far
	c.pm.Persp(fov, aspect, near, far)
	c.update()
	return c
}

// Orbit adjusts Yaw and Pitch by the given degrees, clamping Pitch to
// avoid the view flipping past the poles.
func (c *Camera) Orbit(dyaw, dpitch float64) *Camera {
	c.Yaw = Nang(Rad(c.Yaw+dyaw)) * RadDeg
	c.Pitch = Clamp(c.Pitch+dpitch, -89, 89)
	c.update()
	return c
}

// Pan moves Target along the camera's current right and up axes, scaled
// by Distance so panning feels consistent whether zoomed in or out.
func (c *Camera) Pan(dx, dy float64) *Camera {
	right, up := c.axes()
	scale := c.Distance * 0.002
	c.Target.X += (right.X*dx + up.X*dy) * scale
	c.Target.Y += (right.Y*dx + up.Y*dy) * scale
	c.Target.Z += (right.Z*dx + up.Z*dy) * scale
	c.update()
	return c
}

// Dolly scales Distance by (1+delta), so a given delta moves the eye
// toward or away from Target by the same fraction of its current distance
// whether zoomed in or out (-0.1 moves 10% closer). The result is clamped
// to [MinDist, MaxDist].
func (c *Camera) Dolly(delta float64) *Camera {
	c.Distance = Clamp(c.Distance*(1+delta), c.MinDist, c.MaxDist)
	c.update()
	return c
}

// axes returns the camera's current right and up basis vectors, derived
// from Yaw/Pitch the same way update does, without touching the cached
// eye/view matrix.
func (c *Camera) axes() (right, up *V3) {
	forward := c.forward()
	worldUp := &V3{0, 1, 0}
	right = &V3{}
	right.Cross(forward, worldUp)
	if right.LenSqr() < Epsilon {
		worldUp = &V3{0, 0, 1}
		right.Cross(forward, worldUp)
	}
	right.Unit()
	up = &V3{}
	up.Cross(right, forward)
	up.Unit()
	return right, up
}

// forward returns the unit view direction (target - eye) implied by the
// current Yaw and Pitch, independent of Distance.
func (c *Camera) forward() *V3 {
	yaw, pitch := Rad(c.Yaw), Rad(c.Pitch)
	cp := math.Cos(pitch)
	return &V3{
		X: cp * math.Sin(yaw),
		Y: math.Sin(pitch),
		Z: cp * math.Cos(yaw),
	}
}

// update recomputes the eye position and the view and view-projection
// matrices from Target, Yaw, Pitch, and Distance.
func (c *Camera) update() {
	f := c.forward()
	c.eye.X = c.Target.X - f.X*c.Distance
	c.eye.Y = c.Target.Y - f.Y*c.Distance
	c.eye.Z = c.Target.Z - f.Z*c.Distance

	right, up := c.axes()
	eye := c.eye
	c.vm.Xx, c.vm.Yx, c.vm.Zx = right.X, right.Y, right.Z
	c.vm.Xy, c.vm.Yy, c.vm.Zy = up.X, up.Y, up.Z
	c.vm.Xz, c.vm.Yz, c.vm.Zz = -f.X, -f.Y, -f.Z
	c.vm.Xw, c.vm.Yw, c.vm.Zw = 0, 0, 0
	c.vm.Wx = -right.Dot(eye)
	c.vm.Wy = -up.Dot(eye)
	c.vm.Wz = f.Dot(eye)
	c.vm.Ww = 1

	c.vp.Mult(c.vm, c.pm)
}

// ViewMatrix returns the camera's current view matrix. The returned
// pointer is owned by the camera and is overwritten on the next Orbit,
// Pan, Dolly, or SetPerspective call.
func (c *Camera) ViewMatrix() *M4 { return c.vm }

// ProjMatrix returns the camera's current projection matrix, subject to
// the same aliasing caveat as ViewMatrix.
func (c *Camera) ProjMatrix() *M4 { return c.pm }

// ViewProj returns the cached product of the view and projection
// matrices, subject to the same aliasing caveat as ViewMatrix.
func (c *Camera) ViewProj() *M4 { return c.vp }

// Eye returns the camera's current world-space eye position.
func (c *Camera) Eye() (x, y, z float64) { return c.eye.X, c.eye.Y, c.eye.Z }

// PrimaryRay returns a camera ray through NDC coordinates (ndcX, ndcY),
// each in [-1, 1] with +Y up, built directly from the camera's basis
// rather than by unprojecting through ViewProj's inverse.
func (c *Camera) PrimaryRay(ndcX, ndcY float64) *Ray {
	f := c.forward()
	right, up := c.axes()
	tanHalfFov := math.Tan(Rad(c.Fov) * 0.5)
	dir := &V3{
		X: f.X + (ndcX*c.Aspect*tanHalfFov)*right.X + (ndcY*tanHalfFov)*up.X,
		Y: f.Y + (ndcX*c.Aspect*tanHalfFov)*right.Y + (ndcY*tanHalfFov)*up.Y,
		Z: f.Z + (ndcX*c.Aspect*tanHalfFov)*right.Z + (ndcY*tanHalfFov)*up.Z,
	}
	dir.Unit()
	return NewRay(&V3{c.eye.X, c.eye.Y, c.eye.Z}, dir)
}
