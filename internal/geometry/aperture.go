package geometry

// ApertureBox computes where the video content is drawn inside a viewport.
//
// The aperture is given in sensor orientation, which is rotated 90° relative
// to the display, so its height is compared against the viewport width and
// its width against the viewport height. The box is centred on both axes; on
// an axis where it is larger than the viewport the origin keeps a positive
// sign (half the overflow).
func ApertureBox(viewport, aperture Size) Rect {
	MustValid(viewport, aperture)

	apertureRatio := aperture.Height / aperture.Width
	viewRatio := viewport.Width / viewport.Height

	var size Size
	if viewRatio > apertureRatio {
		size.Width = viewport.Width
		size.Height = aperture.Width * (viewport.Width / aperture.Height)
	} else {
		size.Width = aperture.Height * (viewport.Height / aperture.Width)
		size.Height = viewport.Height
	}

	box := Rect{Size: size}

	if size.Width < viewport.Width {
		box.Origin.X = (viewport.Width - size.Width) / 2
	} else {
		box.Origin.X = (size.Width - viewport.Width) / 2
	}

	if size.Height < viewport.Height {
		box.Origin.Y = (viewport.Height - size.Height) / 2
	} else {
		box.Origin.Y = (size.Height - viewport.Height) / 2
	}

	return box
}
