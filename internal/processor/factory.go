package processor

// DefaultName is the name given to processors built by Create.
const DefaultName = "Cmd"

// Create builds a processor named DefaultName over shared.
func Create[C any](shared C, opts ...Option) *Processor[C] {
	return New(DefaultName, shared, opts...)
}

// Factory holds the configuration for building processors.
// The zero Factory builds processors named DefaultName with default options.
type Factory struct {
	Name    string
	Options []Option
}

// Build creates a processor from f bound to shared.
//
// Go methods cannot take type parameters, so Build is a function.
func Build[C any](f Factory, shared C) *Processor[C] {
	name := f.Name
	if name == "" {
		name = DefaultName
	}
	return New(name, shared, f.Options...)
}
