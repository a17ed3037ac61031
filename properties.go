package tiled

// PropertyType is the declared type of a custom property.
type PropertyType uint8

const (
	PropertyNone   PropertyType = iota // missing or unknown type
	PropertyInt                        // "int": Value is int
	PropertyBool                       // "bool": Value is bool
	PropertyFloat                      // "float": Value is float64
	PropertyString                     // "string": Value is string
	PropertyFile                       // "file": Value is string (path)
	PropertyColor                      // "color": Value is Color
	PropertyObject                     // "object": Value is int (object id)
	PropertyClass                      // "class": Value is Properties
)

func propertyTypeFromString(s string) PropertyType {
	switch s {
	case "int":
		return PropertyInt
	case "bool":
		return PropertyBool
	case "float":
		return PropertyFloat
	case "string", "":
		return PropertyString
	case "file":
		return PropertyFile
	case "color":
		return PropertyColor
	case "object":
		return PropertyObject
	case "class":
		return PropertyClass
	default:
		return PropertyNone
	}
}

// String returns the Tiled name of the type.
func (t PropertyType) String() string {
	switch t {
	case PropertyInt:
		return "int"
	case PropertyBool:
		return "bool"
	case PropertyFloat:
		return "float"
	case PropertyString:
		return "string"
	case PropertyFile:
		return "file"
	case PropertyColor:
		return "color"
	case PropertyObject:
		return "object"
	case PropertyClass:
		return "class"
	default:
		return "none"
	}
}

// Property is a single named, typed custom property.
type Property struct {
	Name string
	Type PropertyType
	// PropertyType names the custom class for PropertyClass values.
	PropertyType string
	Value        any
}

// Properties is an ordered list of custom properties. Lookups return the
// first property with a matching name.
type Properties []Property

// Get returns the property with the given name.
func (p Properties) Get(name string) (Property, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop, true
		}
	}
	return Property{}, false
}

// Has reports whether a property with the given name exists.
func (p Properties) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Int returns the named int or object property, or def.
func (p Properties) Int(name string, def int) int {
	prop, ok := p.Get(name)
	if !ok {
		return def
	}
	switch v := prop.Value.(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// Float returns the named float or int property, or def.
func (p Properties) Float(name string, def float64) float64 {
	prop, ok := p.Get(name)
	if !ok {
		return def
	}
	switch v := prop.Value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}

// Bool returns the named bool property, or def.
func (p Properties) Bool(name string, def bool) bool {
	prop, ok := p.Get(name)
	if !ok {
		return def
	}
	if v, ok := prop.Value.(bool); ok {
		return v
	}
	return def
}

// String returns the named string or file property, or def.
func (p Properties) String(name string, def string) string {
	prop, ok := p.Get(name)
	if !ok {
		return def
	}
	if v, ok := prop.Value.(string); ok {
		return v
	}
	return def
}

// Color returns the named color property, or def.
func (p Properties) Color(name string, def Color) Color {
	prop, ok := p.Get(name)
	if !ok {
		return def
	}
	if v, ok := prop.Value.(Color); ok {
		return v
	}
	return def
}

// Class returns the members of the named class property.
func (p Properties) Class(name string) Properties {
	prop, ok := p.Get(name)
	if !ok {
		return nil
	}
	v, _ := prop.Value.(Properties)
	return v
}
