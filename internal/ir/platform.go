package ir

// Well-known class names the core relies on.
const (
	ObjectClass       = "java.lang.Object"
	CloneableClass    = "java.lang.Cloneable"
	SerializableClass = "java.io.Serializable"
	StringClass       = "java.lang.String"
	ClassClass        = "java.lang.Class"
	ThrowableClass    = "java.lang.Throwable"
)

// RuntimeExceptions lists the unchecked exceptions raised by instruction
// semantics.
var RuntimeExceptions = []string{
	"java.lang.ArithmeticException",
	"java.lang.NullPointerException",
	"java.lang.ClassCastException",
	"java.lang.ArrayIndexOutOfBoundsException",
	"java.lang.NegativeArraySizeException",
}

// coreSource holds the compiled-in descriptors for the classes every Module
// needs: the array supertypes, the constant types, Throwable and the
// primitive wrappers. It takes precedence over user class sources.
var coreSource = buildCoreSource()

func methodDesc(name, desc string, mods ...Modifier) MethodDescriptor {
	return MethodDescriptor{Name: name, Descriptor: desc, Modifiers: Mods(mods...)}
}

func buildCoreSource() MapSource {
	pub := Mods(Public)
	iface := Mods(Public, Interface, Abstract)
	src := MapSource{}
	add := func(d *ClassDescriptor) { src[d.Name] = d }

	add(&ClassDescriptor{
		Name:      ObjectClass,
		Modifiers: pub.With(Super),
		Methods: []MethodDescriptor{
			methodDesc("<init>", "()V", Public),
			methodDesc("hashCode", "()I", Public, Native),
			methodDesc("equals", "(Ljava/lang/Object;)Z", Public),
			methodDesc("toString", "()Ljava/lang/String;", Public),
			methodDesc("getClass", "()Ljava/lang/Class;", Public, Final, Native),
		},
	})
	add(&ClassDescriptor{Name: CloneableClass, Modifiers: iface})
	add(&ClassDescriptor{Name: SerializableClass, Modifiers: iface})
	add(&ClassDescriptor{
		Name:      "java.lang.Comparable",
		Modifiers: iface,
		Methods:   []MethodDescriptor{methodDesc("compareTo", "(Ljava/lang/Object;)I", Public, Abstract)},
	})
	add(&ClassDescriptor{
		Name:      "java.lang.CharSequence",
		Modifiers: iface,
		Methods: []MethodDescriptor{
			methodDesc("length", "()I", Public, Abstract),
			methodDesc("charAt", "(I)C", Public, Abstract),
		},
	})
	add(&ClassDescriptor{
		Name:       StringClass,
		Superclass: ObjectClass,
		Interfaces: []string{SerializableClass, "java.lang.Comparable", "java.lang.CharSequence"},
		Modifiers:  pub.With(Final, Super),
		Methods: []MethodDescriptor{
			methodDesc("<init>", "()V", Public),
			methodDesc("length", "()I", Public),
			methodDesc("charAt", "(I)C", Public),
			methodDesc("concat", "(Ljava/lang/String;)Ljava/lang/String;", Public),
			methodDesc("equals", "(Ljava/lang/Object;)Z", Public),
			methodDesc("hashCode", "()I", Public),
			methodDesc("valueOf", "(I)Ljava/lang/String;", Public, Static),
		},
	})
	add(&ClassDescriptor{
		Name:       ClassClass,
		Superclass: ObjectClass,
		Interfaces: []string{SerializableClass},
		Modifiers:  pub.With(Final, Super),
		Methods:    []MethodDescriptor{methodDesc("getName", "()Ljava/lang/String;", Public)},
	})
	add(&ClassDescriptor{
		Name:       "java.lang.Number",
		Superclass: ObjectClass,
		Interfaces: []string{SerializableClass},
		Modifiers:  pub.With(Abstract, Super),
		Methods: []MethodDescriptor{
			methodDesc("<init>", "()V", Public),
			methodDesc("intValue", "()I", Public, Abstract),
			methodDesc("longValue", "()J", Public, Abstract),
			methodDesc("floatValue", "()F", Public, Abstract),
			methodDesc("doubleValue", "()D", Public, Abstract),
		},
	})
	for _, k := range PrimitiveKinds {
		super := "java.lang.Number"
		if k == Boolean || k == Char {
			super = ObjectClass
		}
		boxed := classDescriptor(k.WrapperName())
		add(&ClassDescriptor{
			Name:       k.WrapperName(),
			Superclass: super,
			Interfaces: []string{SerializableClass, "java.lang.Comparable"},
			Modifiers:  pub.With(Final, Super),
			Fields: []FieldDescriptor{
				{Name: "TYPE", Type: "Ljava/lang/Class;", Modifiers: Mods(Public, Static, Final)},
			},
			Methods: []MethodDescriptor{
				methodDesc("<init>", "("+k.Descriptor()+")V", Public),
				methodDesc("valueOf", "("+k.Descriptor()+")"+boxed, Public, Static),
				methodDesc(k.UnboxMethodName(), "()"+k.Descriptor(), Public),
				methodDesc("hashCode", "()I", Public),
				methodDesc("equals", "(Ljava/lang/Object;)Z", Public),
			},
		})
	}
	add(&ClassDescriptor{
		Name:       "java.lang.Void",
		Superclass: ObjectClass,
		Modifiers:  pub.With(Final, Super),
		Fields: []FieldDescriptor{
			{Name: "TYPE", Type: "Ljava/lang/Class;", Modifiers: Mods(Public, Static, Final)},
		},
	})
	throwable := func(name, super string) {
		add(&ClassDescriptor{
			Name:       name,
			Superclass: super,
			Interfaces: ifaceFor(name),
			Modifiers:  pub.With(Super),
			Methods: []MethodDescriptor{
				methodDesc("<init>", "()V", Public),
				methodDesc("<init>", "(Ljava/lang/String;)V", Public),
				methodDesc("getMessage", "()Ljava/lang/String;", Public),
			},
		})
	}
	throwable(ThrowableClass, ObjectClass)
	throwable("java.lang.Exception", ThrowableClass)
	throwable("java.lang.RuntimeException", "java.lang.Exception")
	for _, name := range RuntimeExceptions {
		throwable(name, "java.lang.RuntimeException")
	}
	return src
}

func ifaceFor(name string) []string {
	if name == ThrowableClass {
		return []string{SerializableClass}
	}
	return nil
}
