package utils

import "reflect"

// LoopOverStructFields visits the exported fields of a struct in declaration
// order. Fields of embedded structs without a `db` tag are visited in place
// of the embedded field itself.
func LoopOverStructFields(value reflect.Value, fieldHandler func(fieldDefinition reflect.StructField, fieldValue reflect.Value) error) error {
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			value = reflect.New(value.Type().Elem())
		}
		value = value.Elem()
	}

	if value.Kind() != reflect.Struct {
		return nil
	}

	for i := range value.NumField() {
		fieldValue := value.Field(i)
		fieldDefinition := value.Type().Field(i)

		if fieldDefinition.Anonymous && fieldDefinition.Tag.Get("db") == "" && fieldDefinition.Type.Kind() == reflect.Struct {
			if err := LoopOverStructFields(fieldValue, fieldHandler); err != nil {
				return err
			}

			continue
		}

		if !fieldDefinition.IsExported() {
			continue
		}

		if err := fieldHandler(fieldDefinition, fieldValue); err != nil {
			return err
		}
	}

	return nil
}
