// Package helper provides the small pure utilities shared by the report
// fetch/save code: content fingerprinting and key-sorted serialization of
// flat objects.
package helper
