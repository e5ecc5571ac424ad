// Package dump prints klasses and method bodies as text.
//
// The listing is deterministic: members print in declaration order and
// values without a name are numbered %0, %1, ... in order of first
// appearance within their method.
//
//	public class demo.Sum extends java.lang.Object {
//	  private static int calls
//
//	  public static int sum(int %n) {
//	    local int %acc
//	  %entry:
//	    store %acc, 0
//	    ...
//	  }
//	}
package dump
