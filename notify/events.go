package notify

// ObjectCreated is sent after a factory constructs an object.
type ObjectCreated struct {
	Object any
}

// PropertyChanging is sent before a property value is replaced.
type PropertyChanging struct {
	Name     string
	OldValue any
	NewValue any
}

// PropertyChanged is sent after a property value was replaced.
type PropertyChanged struct {
	Name  string
	Value any
}
