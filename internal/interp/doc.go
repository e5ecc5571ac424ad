// Package interp executes resolved method bodies.
//
// The interpreter exists to check observable behavior: that a transform
// such as DCE or cloning leaves results unchanged, and that synthesized
// methods do what they claim. It is not a JVM. There is no exception
// handling, no threads, no garbage collection, and dispatch is limited to
// selecting an override by name and descriptor on the receiver's klass.
//
// Runtime values use a fixed Go representation:
//
//	boolean, byte, char, short, int  int32
//	long                             int64
//	float                            float32
//	double                           float64
//	null                             nil
//	java.lang.String                 string
//	java.lang.Class                  *ir.Klass
//	wrapper instances                *Box
//	arrays                           *Array
//	other objects                    *Object
//
// Any other Go value may be passed in as an opaque host reference, for
// example a trampoline bound to a static field. Host references satisfy
// every cast and instanceof test; the Map natives use them through the
// Remove, Get, Put, ContainsKey and Len methods they implement.
package interp
