// Package mix provides the fixed mixing matrices used by feedback delay
// networks.
//
//   - HadamardInPlace: recursive butterfly, unnormalized (H·H = N·I).
//   - HouseholderInPlace: reflection x_i -= 2/N·Σx, orthogonal.
//   - SubtractiveInPlace: y_i = x_i - Σ_{j≠i} x_j, the sparse stage mix of
//     the 12-line recursive-subtraction reverb.
//
// All functions work in place on one frame (one value per channel) and do
// not allocate.
package mix
