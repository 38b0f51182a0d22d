// Package declfile handles YAML declaration files.
//
// A declaration file lists classes the way a Go package would declare them,
// with type expressions in the textual form typelib.ParseExpr accepts:
//
//	version: "1"
//	package: example.com/shop
//	classes:
//	  - name: Super
//	    params: [T]
//	    members:
//	      - {name: Thing, type: T}
//	  - name: Bound
//	    params: ["T extends Number"]
//	    extends: Super[T]
//	  - name: Color
//	    kind: enum
//	    constants: [RED, GREEN, BLUE]
//
// Bare class names declared in the file resolve to the file's package.
// LoadFile and Parse apply defaults and check the structure; Validate
// reports semantic problems and ToSpecs turns a valid file into class specs.
package declfile
