package apidocs

import (
	"path"
	"reflect"
	"strings"
	"time"

	"github.com/go-openapi/spec"
)

var timeType = reflect.TypeOf(time.Time{})

// definitions junta los schemas de los structs de respuesta, con nombre
// <paquete>.<Tipo> (p.ej. pets.PetResponse).
type definitions spec.Definitions

func defName(t reflect.Type) string {
	return path.Base(t.PkgPath()) + "." + t.Name()
}

// schemaOf devuelve el schema de t. Los structs con nombre se registran en
// defs y se referencian con $ref.
func (defs definitions) schemaOf(t reflect.Type) *spec.Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch {
	case t == timeType:
		return spec.DateTimeProperty()
	case t.Kind() == reflect.String:
		return spec.StringProperty()
	case t.Kind() == reflect.Bool:
		return spec.BoolProperty()
	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Uint64:
		return spec.Int64Property()
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		return spec.Float64Property()
	case t.Kind() == reflect.Slice || t.Kind() == reflect.Array:
		return spec.ArrayProperty(defs.schemaOf(t.Elem()))
	case t.Kind() == reflect.Map:
		return spec.MapProperty(defs.schemaOf(t.Elem()))
	case t.Kind() == reflect.Struct && t.Name() != "":
		name := defName(t)
		if _, ok := defs[name]; !ok {
			// placeholder para cortar ciclos
			defs[name] = spec.Schema{}
			defs[name] = *defs.structSchema(t)
		}
		return spec.RefSchema("#/definitions/" + name)
	case t.Kind() == reflect.Struct:
		return defs.structSchema(t)
	}
	return &spec.Schema{}
}

func (defs definitions) structSchema(t reflect.Type) *spec.Schema {
	s := &spec.Schema{SchemaProps: spec.SchemaProps{
		Type:       []string{"object"},
		Properties: spec.SchemaProperties{},
	}}
	defs.addFields(s, t)
	return s
}

func (defs definitions) addFields(s *spec.Schema, t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			defs.addFields(s, f.Type)
			continue
		}
		if name == "" {
			name = f.Name
		}

		prop := defs.schemaOf(f.Type)
		if f.Type.Kind() == reflect.Pointer && prop.Ref.String() == "" {
			prop.AddExtension("x-nullable", true)
		}
		s.Properties[name] = *prop
		if !strings.Contains(opts, "omitempty") && f.Type.Kind() != reflect.Pointer {
			s.Required = append(s.Required, name)
		}
	}
}
