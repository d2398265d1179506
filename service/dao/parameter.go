package dao

// Parameter narrows a List call, for example filtering permission records by
// task type. Stores ignore parameters they do not understand.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter builds a Parameter, keeping a single value scalar.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
