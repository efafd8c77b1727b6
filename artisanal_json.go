package avro

import (
	"bytes"
	"encoding/json"
	"strconv"
)

/*
 * this file contains a bunch of helper methods for writing bespoke JSON marshal functions.
 */

func writeFieldName(buf *bytes.Buffer, fieldname string, precedingComma bool) {
	if precedingComma {
		buf.WriteRune(',')
	}
	buf.WriteRune('"')
	buf.WriteString(fieldname)
	buf.WriteRune('"')
	buf.WriteRune(':')
}

func writeInt(buf *bytes.Buffer, fieldname string, value int, precedingComma bool) {
	writeFieldName(buf, fieldname, precedingComma)
	buf.WriteString(strconv.FormatInt(int64(value), 10))
}

func writeString(buf *bytes.Buffer, fieldname, value string, precedingComma bool) {
	writeFieldName(buf, fieldname, precedingComma)
	formatted, _ := json.Marshal(value)
	buf.Write(formatted)
}

// marshalLogical renders a primitive decorated with a logical type
// (decimal/date/time/timestamp) as its full JSON object form; scale and
// precision are only emitted for "decimal".
func marshalLogical(primitive, logicalType string, scale, precision int) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteRune('{')
	writeString(&buf, "type", primitive, false)
	writeString(&buf, "logicalType", logicalType, true)
	if logicalType == logicalTypeDecimal {
		writeInt(&buf, "precision", precision, true)
		if scale != 0 {
			writeInt(&buf, "scale", scale, true)
		}
	}
	buf.WriteRune('}')
	return buf.Bytes(), nil
}
