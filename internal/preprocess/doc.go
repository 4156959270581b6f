// Package preprocess turns a photograph of a wine label into a black/white image
// suitable for text recognition.
//
// The pipeline is strictly linear:
//
//	Decoded -> Downscaled -> Grayscale -> Dewarped -> ContrastStretched ->
//	Equalized -> Binarized -> Encoded
//
// Every stage is a pure function of the previous buffer and an immutable Config.
// Any failure aborts the whole run; intermediate buffers are never returned.
//
// # Buffers and Ownership
//
// Stages operate on Gray grids (one byte per pixel, row-major). A stage takes
// ownership of its input: it either mutates it in place and returns it
// (StretchContrast) or returns a freshly allocated grid (Dewarp, Equalize and the
// threshold strategies). Callers must not use a grid after passing it to a stage.
// All grids of one run share the same width and height; no stage resizes.
//
// # Numeric Semantics
//
// Conversions from floating point to pixel values truncate toward zero and are
// clamped to [0,255]. Histogram and LUT arithmetic is integer. Integral tables use
// uint64 accumulators, which hold the sum of squares of a 1500x1500 image of 255s
// (about 1.46e11) without overflow.
//
// # Threshold Strategies
//
// Three strategies implement ThresholdStrategy:
//   - Sauvola: local mean and standard deviation (production default).
//   - MeanBias: local mean minus a fixed bias; with FallbackConfig it is the
//     low-cost mode that skips dewarp, contrast stretch and CLAHE.
//   - Otsu: a single global threshold chosen from the histogram.
//
// # Concurrency
//
// A Pipeline holds no mutable state and may be shared. Each Run owns its buffers,
// so independent images can be processed in parallel (see ProcessBatch).
// Cancellation is coarse: the context is checked between stages.
package preprocess
