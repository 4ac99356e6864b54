package event

import "reflect"

// typeName returns the bare type name with pointers unwrapped (e.g., "ResultSuccess").
//
// Names are for logs and metrics only. Filtering always uses reflect.Type identity, so
// two types that share a name in different packages never receive each other's events.
func typeName(t reflect.Type) string {
	if t == nil {
		return ""
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}
