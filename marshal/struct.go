package marshal

// Struct is a Go value with a native versioned representation. Each
// versioned struct type binds exactly one Layout.
//
// A version embedding its predecessor may call the embedded methods and
// discard their result: Encoder and Decoder errors are sticky, so the
// outer method's final Err reports the first failure either way.
type Struct interface {
	Layout() *Layout
	MarshalNative(e *Encoder) error
	UnmarshalNative(d *Decoder) error
}
