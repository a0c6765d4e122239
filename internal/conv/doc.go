// Package conv provides checked integer conversions for the on-disk envelope
// header and blob sizes.
package conv
