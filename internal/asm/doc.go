// Package asm builds mutable klasses from YAML program files.
//
// A program lists klasses with their fields and methods; method bodies are
// blocks of one-line instructions:
//
//	format: "1.0.0"
//	klasses:
//	  - name: demo.Counter
//	    modifiers: [public]
//	    fields:
//	      - {name: hits, type: int, modifiers: [private, static]}
//	    methods:
//	      - name: bump
//	        descriptor: (I)I
//	        modifiers: [public, static]
//	        arguments: [n]
//	        blocks:
//	          - name: entry
//	            code:
//	              - old = load demo.Counter.hits
//	              - new = add old n
//	              - store demo.Counter.hits new
//	              - return new
//
// An instruction is "[name =] opcode operands...". Operands are separated
// by spaces or commas and are either names of arguments, locals, blocks and
// earlier instructions, or literals:
//
//	int:5 long:-1 bool:true byte:7 char:65 short:3 float:1.5 double:2.5
//	str:text str:"with spaces" class:java.lang.String null
//
// Types use source spelling (int, java.lang.String, long[][]). Fields are
// referenced as Owner.field and methods as Owner.name(descriptor). Switch
// cases are written value=block and phi inputs block=value. Names must be
// defined before they are used, except phi inputs, which are resolved once
// the whole method is built.
//
// Klasses are created in file order, so a superclass defined in the same
// program must come first. Fields and method signatures of every klass are
// declared before any body is built, so bodies may call forward.
package asm
