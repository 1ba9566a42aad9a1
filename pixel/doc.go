// Package pixel implements the color keys and RGBA pixel buffers used for overlay reconciliation.
//
// Colors are identified by a [Key], a packed 24-bit RGB value that is cheap to hash and
// compare. Buffers are flat R,G,B,A byte sequences compatible with Go's native
// [image.Image] / [draw.Image] interfaces.
package pixel
