// Package refgraph implements an identity-preserving text codec for
// graphs of Go structs.
//
// A record is a struct type T; a record instance is a *T. Records may
// point at other records through *U fields, and those pointers may form
// shared sub-graphs and cycles. Encode walks the graph and produces one
// self-describing string; Decode rebuilds an equivalent graph in which
// every shared or cyclic pointer is shared again.
//
// # Format
//
//	record       := "{" [field ("," field)*] "}"
//	field        := name ":" value
//	value        := primitive | text-literal | backref | record
//	backref      := "~" digits "~"
//	text-literal := "\"" escaped-chars "\""
//
// Example:
//
//	type Node struct {
//	    A    int
//	    B    int
//	    Self *Node
//	}
//
//	n := &Node{A: 1, B: 2}
//	n.Self = n
//	s, _ := refgraph.Marshal(n) // {A:1,B:2,Self:~0~}
//
// # Reference Table
//
// Every record instance visited in one top-level call is registered in
// visitation order, before its own fields are walked. A field pointing at
// an already registered instance is written as ~N~ where N is that
// instance's position. Decode mirrors this: a fresh instance is
// registered right after allocation, so ~N~ can point at a record whose
// fields are still being filled.
//
// # Fields
//
// Fields are taken from the struct declaration in order:
//   - bool, ints, uints, floats and string are leaves
//   - pointers to leaves are optional leaves (nil is omitted)
//   - *U with U a struct is a nested record (nil is omitted)
//   - refgraph:"-" excludes a field, refgraph:"name" renames it
//   - embedded fields are skipped
//   - unexported fields are inaccessible: skipped on encode, reported on decode
//
// Text is framed with double quotes; embedded quotes are replaced by the
// private-use rune U+E000 while encoded.
package refgraph
