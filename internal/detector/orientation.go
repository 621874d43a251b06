package detector

import "fmt"

// DeviceOrientation is the physical orientation of the capture device
type DeviceOrientation string

const (
	Portrait           DeviceOrientation = "portrait"
	PortraitUpsideDown DeviceOrientation = "portrait-upside-down"
	LandscapeLeft      DeviceOrientation = "landscape-left"
	LandscapeRight     DeviceOrientation = "landscape-right"
)

// ParseOrientation validates an orientation name
func ParseOrientation(s string) (DeviceOrientation, error) {
	switch o := DeviceOrientation(s); o {
	case Portrait, PortraitUpsideDown, LandscapeLeft, LandscapeRight:
		return o, nil
	default:
		return "", fmt.Errorf("unknown device orientation %q", s)
	}
}

// ExifOrientation returns the EXIF orientation tag describing how frames
// from a device held in the given orientation must be rotated to be upright.
func ExifOrientation(o DeviceOrientation) int {
	switch o {
	case PortraitUpsideDown:
		return 8
	case LandscapeLeft:
		return 3
	case LandscapeRight:
		return 1
	default:
		return 6
	}
}

// PigoAngle converts an EXIF orientation tag into the rotation pigo applies
// to its detection window, as a fraction of a full turn.
func PigoAngle(exif int) float64 {
	switch exif {
	case 3:
		return 0.5
	case 6:
		return 0.75
	case 8:
		return 0.25
	default:
		return 0
	}
}
