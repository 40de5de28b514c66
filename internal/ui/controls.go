package ui

import (
	"math"

	"fyne.io/fyne/v2"

	"github.com/neildanson/sdf/internal/scene"
)

const (
	moveStep  = 0.25
	phaseStep = math.Pi / 36
)

// applyKey moves the camera for WASDQE and turns the orbit phase for the
// left/right arrows. It returns a status message and whether cam changed.
func applyKey(cam *scene.Camera, key fyne.KeyName) (string, bool) {
	switch key {
	case fyne.KeyW:
		cam.Position.Z += moveStep
	case fyne.KeyS:
		cam.Position.Z -= moveStep
	case fyne.KeyA:
		cam.Position.X -= moveStep
	case fyne.KeyD:
		cam.Position.X += moveStep
	// +Y points down the image.
	case fyne.KeyQ:
		cam.Position.Y += moveStep
	case fyne.KeyE:
		cam.Position.Y -= moveStep
	case fyne.KeyLeft, fyne.KeyRight:
		if cam.Orbit == nil {
			return "Camera has no orbit", false
		}
		orbit := *cam.Orbit
		if key == fyne.KeyLeft {
			orbit.Phase -= phaseStep
		} else {
			orbit.Phase += phaseStep
		}
		orbit.Phase = math.Remainder(orbit.Phase, 2*math.Pi)
		cam.Orbit = &orbit
		return "Orbit phase changed", true
	default:
		return "", false
	}
	return "Camera moved (WASDQE)", true
}
