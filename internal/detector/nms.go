package detector

import (
	"cmp"
	"slices"
)

// nms performs Non-Maximum Suppression on detected faces, keeping the
// highest scoring face of every overlapping group.
func nms(faces []Face, iouThreshold float32) []Face {
	if len(faces) == 0 {
		return faces
	}

	slices.SortStableFunc(faces, func(a, b Face) int {
		return cmp.Compare(b.Score, a.Score)
	})

	result := make([]Face, 0, len(faces))
	for _, face := range faces {
		suppressed := false
		for _, kept := range result {
			if iou(kept.BoundingBox, face.BoundingBox) > iouThreshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			result = append(result, face)
		}
	}

	return result
}

// iou calculates Intersection over Union of two bounding boxes
func iou(a, b BoundingBox) float32 {
	x1 := max(a.X1, b.X1)
	y1 := max(a.Y1, b.Y1)
	x2 := min(a.X2, b.X2)
	y2 := min(a.Y2, b.Y2)

	if x1 >= x2 || y1 >= y2 {
		return 0
	}

	intersection := (x2 - x1) * (y2 - y1)
	union := a.Area() + b.Area() - intersection

	if union <= 0 {
		return 0
	}

	return intersection / union
}

func clamp(x, lo, hi float32) float32 {
	return min(max(x, lo), hi)
}

// clampBox limits a box to the frame
func clampBox(b BoundingBox, width, height int) BoundingBox {
	return BoundingBox{
		X1: clamp(b.X1, 0, float32(width)),
		Y1: clamp(b.Y1, 0, float32(height)),
		X2: clamp(b.X2, 0, float32(width)),
		Y2: clamp(b.Y2, 0, float32(height)),
	}
}
