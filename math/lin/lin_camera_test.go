// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

import "testing"

func TestOrbitCameraEyeAtDistance(t *testing.T) {
	c := NewCamera()
	c.Target.SetS(0, 0, 0)
	c.Yaw, c.Pitch, c.Distance = 0, 0, 5
	c.update()
	x, y, z := c.Eye()
	if !Aeq(x*x+y*y+z*z, 25) {
		t.Errorf("expected eye 5 units from target, got (%v,%v,%v)", x, y, z)
	}
}

func TestOrbitCameraDollyClamps(t *testing.T) {
	c := NewCamera()
	c.MinDist, c.MaxDist = 2, 10
	c.Dolly(-100)
	if !Aeq(c.Distance, 2) {
		t.Errorf("expected dolly to clamp at MinDist, got %v", c.Distance)
	}
	c.Dolly(100)
	if !Aeq(c.Distance, 10) {
		t.Errorf("expected dolly to clamp at MaxDist, got %v", c.Distance)
	}
}

func TestOrbitCameraPitchClamps(t *testing.T) {
	c := NewCamera()
	c.Orbit(0, 1000)
	if c.Pitch > 89 || c.Pitch < -89 {
		t.Errorf("expected pitch to clamp within [-89, 89], got %v", c.Pitch)
	}
}
