// Package ocr defines the text-recognition contract the label pipeline hands
// its binarized output to.
//
// A Recognizer turns an image into a Result: the full recognized text plus the
// individual words with their confidence and bounding box. The gosseract
// implementation lives in the tesseract subpackage; callers that only need the
// contract (the tool server, tests) depend on this package alone.
//
// # Coordinates
//
// Boxes are in pixel coordinates of the image that was recognized, with
// (X0, Y0) the top-left corner and (X1, Y1) the exclusive bottom-right corner.
// RecognizeRegion shifts the boxes back into the coordinates of the full image.
//
// # Confidence
//
// Confidence is reported on the engine's 0-100 scale. Filter drops words
// below a threshold on the same scale.
package ocr
