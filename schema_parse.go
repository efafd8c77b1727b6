package avro

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// ParseSchemaFile reads file and parses its contents as an Avro schema. It
// may return an error if the file cannot be read or the schema is
// ill-formed.
func ParseSchemaFile(file string) (Schema, error) {
	fileContents, err := os.ReadFile(file)
	if err != nil {
		return nil, newSchemaParseError("cannot read schema file %q: %v", file, err)
	}
	return ParseSchema(string(fileContents))
}

// LoadSchemas parses every ".avsc" file under dir against a shared names
// registry and returns that registry keyed by each named schema's full name
// (namespace-qualified). Schemas are loaded in directory order, so a schema
// referencing another by name must either come after it or be in the same
// file.
func LoadSchemas(dir string) map[string]Schema {
	registry := make(map[string]Schema)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return registry
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".avsc" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if _, err := ParseSchemaWithRegistry(string(raw), registry); err != nil {
			continue
		}
	}
	return registry
}

// ParseSchema parses rawSchema with a fresh names registry. Equivalent to
// ParseSchemaWithRegistry(rawSchema, make(map[string]Schema)).
func ParseSchema(rawSchema string) (Schema, error) {
	return ParseSchemaWithRegistry(rawSchema, make(map[string]Schema))
}

// ParseSchemaWithRegistry parses rawSchema, resolving and populating named
// type references against schemas. Passing the same registry across several
// calls lets later schemas reference earlier ones by fullname.
func ParseSchemaWithRegistry(rawSchema string, schemas map[string]Schema) (Schema, error) {
	var parsed interface{}
	if err := jsonAPI.Unmarshal([]byte(rawSchema), &parsed); err != nil {
		// A bare type name like `"string"` is valid JSON already; anything
		// else that fails to parse is treated as a bare (unquoted) type name.
		parsed = rawSchema
	}
	return schemaByType(parsed, schemas, "")
}

// MustParseSchema is like ParseSchema but panics if rawSchema cannot be
// parsed. Intended for package init-time schema literals.
func MustParseSchema(rawSchema string) Schema {
	s, err := ParseSchema(rawSchema)
	if err != nil {
		panic(err)
	}
	return s
}

func schemaByType(i interface{}, registry map[string]Schema, namespace string) (Schema, error) {
	switch v := i.(type) {
	case nil:
		return new(NullSchema), nil
	case string:
		switch v {
		case typeNull:
			return new(NullSchema), nil
		case typeBoolean:
			return new(BooleanSchema), nil
		case typeInt:
			return new(IntSchema), nil
		case typeLong:
			return new(LongSchema), nil
		case typeFloat:
			return new(FloatSchema), nil
		case typeDouble:
			return new(DoubleSchema), nil
		case typeBytes:
			return new(BytesSchema), nil
		case typeString:
			return new(StringSchema), nil
		default:
			// Names containing a dot are already fully qualified; see
			// https://avro.apache.org/docs/1.8.2/spec.html#Names
			fullName := v
			if !strings.ContainsRune(fullName, '.') {
				fullName = getFullName(v, namespace)
			}
			schema, ok := registry[fullName]
			if !ok {
				return nil, newSchemaParseError("unknown type name: %s", v)
			}
			return schema, nil
		}
	case map[string]interface{}:
		typeField, ok := v[schemaTypeField]
		if !ok {
			return nil, newSchemaParseError("missing %q attribute", schemaTypeField)
		}
		switch t := typeField.(type) {
		case string:
			switch t {
			case typeNull:
				return new(NullSchema), nil
			case typeBoolean:
				return new(BooleanSchema), nil
			case typeInt:
				return new(IntSchema), nil
			case typeLong:
				if logicalType, ok := v[schemaLogicalTypeField].(string); ok {
					return &LongSchema{LogicalType: logicalType}, nil
				}
				return new(LongSchema), nil
			case typeFloat:
				return new(FloatSchema), nil
			case typeDouble:
				return new(DoubleSchema), nil
			case typeBytes:
				return parseBytesSchema(v, registry, namespace)
			case typeString:
				return new(StringSchema), nil
			case typeArray:
				items, err := schemaByType(v[schemaItemsField], registry, namespace)
				if err != nil {
					return nil, err
				}
				return &ArraySchema{Items: items, Properties: getProperties(v)}, nil
			case typeMap:
				values, err := schemaByType(v[schemaValuesField], registry, namespace)
				if err != nil {
					return nil, err
				}
				return &MapSchema{Values: values, Properties: getProperties(v)}, nil
			case typeEnum:
				return parseEnumSchema(v, registry, namespace)
			case typeFixed:
				return parseFixedSchema(v, registry, namespace)
			case typeRecord:
				return parseRecordSchema(v, registry, namespace)
			default:
				// a reference spelled {"type": "otherType"}
				return schemaByType(t, registry, namespace)
			}
		case []interface{}:
			return parseUnionSchema(t, registry, namespace)
		default:
			return nil, newSchemaParseError("malformed %q attribute", schemaTypeField)
		}
	case []interface{}:
		return parseUnionSchema(v, registry, namespace)
	default:
		return nil, newSchemaParseError("unparsable schema node: %#v", i)
	}
}

func parseEnumSchema(v map[string]interface{}, registry map[string]Schema, namespace string) (Schema, error) {
	rawSymbols, ok := v[schemaSymbolsField].([]interface{})
	if !ok {
		return nil, newSchemaParseError("enum %v missing %q attribute", v[schemaNameField], schemaSymbolsField)
	}
	symbols := make([]string, len(rawSymbols))
	seen := make(map[string]bool, len(rawSymbols))
	for i, symbol := range rawSymbols {
		s, ok := symbol.(string)
		if !ok {
			return nil, newSchemaParseError("enum symbol %#v is not a string", symbol)
		}
		if seen[s] {
			return nil, newSchemaParseError("enum symbol %q declared more than once", s)
		}
		seen[s] = true
		symbols[i] = s
	}

	name, ok := v[schemaNameField].(string)
	if !ok {
		return nil, newSchemaParseError("enum missing %q attribute", schemaNameField)
	}
	schema := &EnumSchema{Name: name, Symbols: symbols}
	setOptionalField(&schema.Namespace, v, schemaNamespaceField)
	setOptionalField(&schema.Doc, v, schemaDocField)
	if err := setOptionalStringListField(&schema.Aliases, v, schemaAliasesField); err != nil {
		return nil, err
	}
	schema.Properties = getProperties(v)

	return addSchema(getFullName(name, namespace), schema, registry), nil
}

func parseFixedSchema(v map[string]interface{}, registry map[string]Schema, namespace string) (Schema, error) {
	size, ok := v[schemaSizeField].(float64)
	if !ok || size < 0 {
		return nil, newSchemaParseError("fixed %v has invalid or missing %q attribute", v[schemaNameField], schemaSizeField)
	}
	name, ok := v[schemaNameField].(string)
	if !ok {
		return nil, newSchemaParseError("fixed missing %q attribute", schemaNameField)
	}
	schema := &FixedSchema{
		Name:       name,
		Size:       int(size),
		Properties: getProperties(v),
	}
	setOptionalField(&schema.Namespace, v, schemaNamespaceField)
	if err := setOptionalStringListField(&schema.Aliases, v, schemaAliasesField); err != nil {
		return nil, err
	}
	return addSchema(getFullName(name, namespace), schema, registry), nil
}

func parseBytesSchema(v map[string]interface{}, registry map[string]Schema, namespace string) (Schema, error) {
	logicalType, scale, precision, err := parseLogicalType(v)
	if err != nil {
		return nil, err
	}
	return &BytesSchema{LogicalType: logicalType, Scale: scale, Precision: precision}, nil
}

func parseLogicalType(v map[string]interface{}) (logicalType string, scale, precision int, err error) {
	logicalType, _ = v[schemaLogicalTypeField].(string)
	if logicalType == logicalTypeDecimal {
		if tmp, ok := v[schemaScaleField].(float64); ok {
			scale = int(tmp)
		}
		if tmp, ok := v[schemaPrecisionField].(float64); ok {
			precision = int(tmp)
		} else {
			return "", 0, 0, newSchemaParseError("decimal logical type requires %q", schemaPrecisionField)
		}
	}
	return logicalType, scale, precision, nil
}

// parseUnionSchema validates and builds a union from its branch list.
// Per spec.md §4.2: a union may not be empty, may not directly nest another
// union, and may not declare two branches of the same unnamed kind (e.g. two
// "array" branches) — named types (record/enum/fixed) are distinguished by
// fullname instead.
func parseUnionSchema(v []interface{}, registry map[string]Schema, namespace string) (Schema, error) {
	if len(v) == 0 {
		return nil, newSchemaParseError("union must declare at least one branch")
	}
	types := make([]Schema, len(v))
	seenKinds := make(map[int]bool, len(v))
	seenNames := make(map[string]bool, len(v))
	for i := range v {
		t, err := schemaByType(v[i], registry, namespace)
		if err != nil {
			return nil, err
		}
		if t.Type() == Union {
			return nil, newSchemaParseError("union may not directly contain another union")
		}
		switch t.Type() {
		case Record, Enum, Fixed, Recursive:
			name := GetFullName(t)
			if seenNames[name] {
				return nil, newSchemaParseError("union declares named branch %q more than once", name)
			}
			seenNames[name] = true
		default:
			if seenKinds[t.Type()] {
				return nil, newSchemaParseError("union declares more than one %q branch", t.GetName())
			}
			seenKinds[t.Type()] = true
		}
		types[i] = t
	}
	return &UnionSchema{Types: types}, nil
}

func parseRecordSchema(v map[string]interface{}, registry map[string]Schema, namespace string) (Schema, error) {
	name, ok := v[schemaNameField].(string)
	if !ok {
		return nil, newSchemaParseError("record missing %q attribute", schemaNameField)
	}
	schema := &RecordSchema{Name: name}
	setOptionalField(&schema.Namespace, v, schemaNamespaceField)
	setOptionalField(&namespace, v, schemaNamespaceField)
	setOptionalField(&schema.Doc, v, schemaDocField)
	if err := setOptionalStringListField(&schema.Aliases, v, schemaAliasesField); err != nil {
		return nil, err
	}
	// Register a recursive placeholder before parsing fields so that a field
	// referencing this record by name (directly or through a cycle) resolves
	// against the eventual schema instead of recursing forever.
	addSchema(getFullName(name, namespace), newRecursiveSchema(schema), registry)

	rawFields, ok := v[schemaFieldsField].([]interface{})
	if !ok {
		return nil, newSchemaParseError("record %s missing %q attribute", name, schemaFieldsField)
	}
	fields := make([]*SchemaField, len(rawFields))
	seen := make(map[string]bool, len(rawFields))
	for i := range rawFields {
		field, err := parseSchemaField(rawFields[i], registry, namespace)
		if err != nil {
			return nil, err
		}
		if seen[field.Name] {
			return nil, newSchemaParseError("record %s declares field %q more than once", name, field.Name)
		}
		seen[field.Name] = true
		fields[i] = field
	}
	schema.Fields = fields
	schema.Properties = getProperties(v)

	return schema, nil
}

func parseSchemaField(i interface{}, registry map[string]Schema, namespace string) (*SchemaField, error) {
	v, ok := i.(map[string]interface{})
	if !ok {
		return nil, newSchemaParseError("field must be a JSON object, got %#v", i)
	}
	name, ok := v[schemaNameField].(string)
	if !ok {
		return nil, newSchemaParseError("field missing %q attribute", schemaNameField)
	}
	field := &SchemaField{Name: name, Properties: getProperties(v)}
	setOptionalField(&field.Doc, v, schemaDocField)
	if err := setOptionalStringListField(&field.Aliases, v, schemaAliasesField); err != nil {
		return nil, err
	}

	fieldType, err := schemaByType(v[schemaTypeField], registry, namespace)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", name, err)
	}
	field.Type = fieldType

	if def, exists := v[schemaDefaultField]; exists {
		field.HasDefault = true
		field.Default = coerceDefault(def, fieldType)
		if !fieldType.Validate(reflect.ValueOf(field.Default)) {
			return nil, newSchemaParseError("field %q: default value %#v does not conform to its schema", name, field.Default)
		}
	}
	return field, nil
}

// coerceDefault narrows a jsoniter-decoded JSON number (always float64) to
// the Go numeric type the field's schema calls for.
func coerceDefault(def interface{}, fieldType Schema) interface{} {
	f, ok := def.(float64)
	if !ok {
		return def
	}
	switch fieldType.Type() {
	case Int:
		return int32(f)
	case Long:
		return int64(f)
	case Float:
		return float32(f)
	case Double:
		return f
	default:
		return def
	}
}

func setOptionalField(where *string, v map[string]interface{}, fieldName string) {
	if field, exists := v[fieldName]; exists {
		if s, ok := field.(string); ok {
			*where = s
		}
	}
}

func setOptionalStringListField(where *[]string, v map[string]interface{}, fieldName string) error {
	field, exists := v[fieldName]
	if !exists {
		return nil
	}
	boxedList, ok := field.([]interface{})
	if !ok {
		return newSchemaParseError("%q must be a list of strings", fieldName)
	}
	stringList := make([]string, len(boxedList))
	for i := range boxedList {
		s, ok := boxedList[i].(string)
		if !ok {
			return newSchemaParseError("%q entry %#v is not a string", fieldName, boxedList[i])
		}
		stringList[i] = s
	}
	*where = stringList
	return nil
}

func addSchema(name string, schema Schema, schemas map[string]Schema) Schema {
	if schemas == nil {
		return schema
	}
	if existing, ok := schemas[name]; ok {
		return existing
	}
	schemas[name] = schema
	return schema
}

// getProperties collects the custom (non-reserved) JSON attributes of a
// schema node so they survive as Schema.Prop lookups.
func getProperties(v map[string]interface{}) map[string]interface{} {
	props := make(map[string]interface{})
	for name, value := range v {
		if !isReserved(name) {
			props[name] = value
		}
	}
	return props
}

func isReserved(name string) bool {
	switch name {
	case schemaAliasesField, schemaDefaultField, schemaDocField, schemaFieldsField, schemaItemsField,
		schemaNameField, schemaLogicalTypeField, schemaPrecisionField, schemaScaleField,
		schemaNamespaceField, schemaSizeField, schemaSymbolsField, schemaTypeField, schemaValuesField:
		return true
	default:
		return false
	}
}
