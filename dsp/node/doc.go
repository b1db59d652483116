// Package node builds strings and reverbs by type name and drives any
// core.Node over arbitrarily long port buffers.
//
// A Registry maps type names to factories together with the port layout of
// the node they build, so hosts can wire control arrays by port name.
// DefaultRegistry knows every component in this module.
package node
