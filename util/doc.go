// Package util provides small generic helpers, mainly for the pointer
// fields of optional request parameters.
package util
