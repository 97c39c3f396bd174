package interpreter

// Environment represents a scope for variable bindings
type Environment struct {
	store map[string]Value
	outer *Environment // parent scope for nested scopes
}

// NewEnvironment creates a new top-level environment
func NewEnvironment() *Environment {
	return &Environment{
		store: make(map[string]Value),
	}
}

// NewEnclosedEnvironment creates a new environment enclosed by an outer environment
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Get retrieves a value by name, searching the current scope and all parent
// scopes
func (e *Environment) Get(name string) (Value, bool) {
	value, ok := e.store[name]
	if !ok && e.outer != nil {
		return e.outer.Get(name)
	}
	return value, ok
}

// Set assigns a value in the current scope, potentially shadowing parent
// variables
func (e *Environment) Set(name string, value Value) {
	e.store[name] = value
}

// Names returns the variable names visible from this scope. Shadowed names
// appear once.
func (e *Environment) Names() []string {
	seen := make(map[string]bool)
	names := []string{}
	for env := e; env != nil; env = env.outer {
		for name := range env.store {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}
