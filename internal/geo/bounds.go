package geo

// Within returns the points inside box, inclusive of its edges, in input order.
// The result is always a new slice.
func Within(points []GeoPoint, box BoundingBox) []GeoPoint {
	out := make([]GeoPoint, 0, len(points))
	for _, p := range points {
		if box.Contains(p) {
			out = append(out, p)
		}
	}

	return out
}

// WithinFeatures is Within for normalized features.
func WithinFeatures(features []NormalizedFeature, box BoundingBox) []NormalizedFeature {
	out := make([]NormalizedFeature, 0, len(features))
	for _, f := range features {
		if box.Contains(f.Location) {
			out = append(out, f)
		}
	}

	return out
}
