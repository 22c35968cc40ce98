// Package pipeline implements the per-source processing pipeline.
//
// A frame moves through three stages:
//   - Preprocessor: simulated normalization and enhancement
//   - InferenceEngine: mock defect detection
//   - Postprocessor: confidence filtering, severity classification, scoring
//
// The first two stages simulate real processing latency and honor context
// cancellation; the postprocessor is pure. The assembled Pipeline satisfies
// ports.Pipeline.
package pipeline
