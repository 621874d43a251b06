package detector

import "image"

// DecodeLevel exposes the SCRFD anchor decode to the external test package.
func DecodeLevel(scores, boxes, kps []float32, stride, grid int, threshold, scale float32, frame image.Point) []Face {
	return decodeLevel(levelOutputs{scores: scores, boxes: boxes, kps: kps}, stride, grid, threshold,
		letterbox{scale: scale, frame: frame})
}
