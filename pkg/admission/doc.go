// Package admission provides the in-flight request limit that protects the
// gateway and its backends from overload.
package admission
