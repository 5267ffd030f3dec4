package telemetry

// Span and attribute names used for instrumentation.
const (
	SpanSequenceForward = "sequence.forward"
	SpanSequenceReverse = "sequence.reverse"
	SpanSequenceSet     = "sequence.set"
	SpanDatasetLoad     = "dataset.load"
	SpanDatasetReload   = "dataset.reload"
	SpanFrameCompute    = "frame.compute"

	AttrDataset   = "atlas.dataset"
	AttrAttribute = "atlas.attribute"
	AttrIndex     = "atlas.index"
	AttrMarkers   = "atlas.markers_updated"
)
