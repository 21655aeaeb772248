// Package util contains small helpers shared by the engines. Currently this is
// SizeHistogram, which engines use to describe the sizes of the values they
// hold without scanning them.
package util
