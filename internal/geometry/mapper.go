package geometry

// MapFaceRect maps a face bounding box from sensor space into display space.
//
// The sensor is assumed to be rotated 90° relative to the display and the
// preview is mirrored (front camera), so the rect is axis swapped, scaled into
// the aperture box, shifted by the box's vertical offset and finally flipped
// horizontally across the viewport. The result is not clamped to the viewport.
//
// facePosition is a landmark inside the face; it does not affect the result
// and is accepted so callers can pass detector output through unchanged.
func MapFaceRect(facePosition Point, faceBounds Rect, aperture, viewport Size) Rect {
	previewBox := ApertureBox(viewport, aperture)

	faceRect := faceBounds.Swapped()

	widthScale := previewBox.Size.Width / aperture.Height
	heightScale := previewBox.Size.Height / aperture.Width

	faceRect.Size.Width *= widthScale
	faceRect.Size.Height *= heightScale
	faceRect.Origin.X *= widthScale
	faceRect.Origin.Y *= heightScale

	faceRect = faceRect.Offset(0, previewBox.Origin.Y)

	x := viewport.Width - faceRect.Origin.X - faceRect.Size.Width + previewBox.Origin.X

	return NewRect(x, faceRect.Origin.Y, faceRect.Size.Width, faceRect.Size.Height)
}

// MapFeature maps a detected feature into display space
func MapFeature(f FaceFeature, aperture, viewport Size) Rect {
	return MapFaceRect(f.Mouth, f.Bounds, aperture, viewport)
}
