// Package render turns a decoded 2D FITS sample array into a greyscale
// picture on a drawing surface.
//
// The pipeline has three stages:
//
//  1. Normalize: log10 every sample, scan global min/max, rescale to [0,1].
//  2. Grey: map each intensity to an HSL colour with zero hue and
//     saturation and lightness equal to the intensity.
//  3. Renderer.Render: clear the surface, establish a width x height
//     cartesian coordinate system and fill one unit rectangle per pixel,
//     then present once.
//
// Normalization does not mask non-positive samples. log10 of zero or a
// negative value yields -Inf or NaN and that propagates into the intensity
// field; Grey clamps such values so drawing always succeeds. Diagnostics
// reports how many intensities were not finite.
//
// Surfaces are owned by the caller and looked up by id through a
// SurfaceLocator; Registry is the in-process implementation and
// RasterSurface the image-backed surface used by the CLI.
package render
