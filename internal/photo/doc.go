// Package photo loads label photographs from disk and describes them.
//
// Cache keeps the raw file bytes keyed by path so that repeated tool calls on
// the same photo (describe, then binarize, then recognize) read the disk once.
// Bytes are cached rather than decoded images: the preprocessing pipeline
// decodes every run itself and owns the resulting buffers.
//
// Describe reports what a caller needs before running the pipeline: the
// source dimensions and format, the working size after downscaling, and a
// rough exposure estimate from the mean color of a small thumbnail.
package photo
