// Package encode packs point attributes into the compact float layouts the
// point shaders decode.
//
// Positions are split into a high and a low float32 part so that the vertex
// shader can subtract the eye position with relative-to-eye precision.
// Colors are packed three bytes per float (exact in float32 up to 2^24) and
// scalars in [0, 1] are quantized to bytes.
package encode
