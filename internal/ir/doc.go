// Package ir provides the circuit-level value types shared by every qopt package.
//
// This package contains plain data only. All other internal packages
// import ir; ir imports nothing internal. This keeps the circuit description
// the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Wires are identified by (register, index) and formatted as "name[index]"
//   - Parameters are either bound angles or unbound symbols, never both
//   - Canonical JSON never contains floats; angles are encoded as shortest
//     round-trip decimal strings before hashing
//   - All JSON tags use snake_case
package ir
