/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sql

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	ferrors "pgmock/internal/errors"
)

// ParamTag is the struct tag read when parameters are given as a struct.
const ParamTag = "param"

// DecodeParams turns a parameter container into a name/value map. params
// may be nil, a map with string keys, or a struct whose fields carry a
// `param` tag (untagged fields use the field name).
func DecodeParams(params interface{}) (map[string]interface{}, error) {
	if params == nil {
		return nil, nil
	}
	if m, ok := params.(map[string]interface{}); ok {
		return m, nil
	}
	out := make(map[string]interface{})
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: ParamTag,
		Result:  &out,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(params); err != nil {
		return nil, ferrors.Substitution("*", err)
	}
	return out, nil
}

// SubstituteParams replaces :name placeholders with quoted literals.
// Placeholders inside quotes and comments, and :: casts, are left alone.
// Missing names and falsy values leave the placeholder in place. On error
// the original text is returned with the error.
func SubstituteParams(text string, params interface{}) (string, error) {
	values, err := DecodeParams(params)
	if err != nil {
		return text, err
	}
	if len(values) == 0 {
		return text, nil
	}

	var b strings.Builder
	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '\'' || c == '"':
			end := skipQuoted(text, i)
			b.WriteString(text[i:end])
			i = end
		case strings.HasPrefix(text[i:], "--"):
			end := strings.IndexByte(text[i:], '\n')
			if end < 0 {
				end = len(text) - i
			}
			b.WriteString(text[i : i+end])
			i += end
		case strings.HasPrefix(text[i:], "/*"):
			end := strings.Index(text[i+2:], "*/")
			if end < 0 {
				end = len(text) - i
			} else {
				end += 4
			}
			b.WriteString(text[i : i+end])
			i += end
		case strings.HasPrefix(text[i:], "::"):
			b.WriteString("::")
			i += 2
		case c == ':' && i+1 < len(text) && isIdentStart(text[i+1]):
			j := i + 1
			for j < len(text) && (isIdentStart(text[j]) || isDigit(text[j])) {
				j++
			}
			name := text[i+1 : j]
			v, ok := values[name]
			if !ok || isFalsy(v) {
				b.WriteString(text[i:j])
			} else {
				lit, err := renderParam(v)
				if err != nil {
					return text, ferrors.Substitution(name, err)
				}
				b.WriteString(lit)
			}
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// skipQuoted returns the offset just past the quoted run starting at i.
func skipQuoted(text string, i int) int {
	quote := text[i]
	for j := i + 1; j < len(text); j++ {
		if text[j] == quote {
			if j+1 < len(text) && text[j+1] == quote {
				j++
				continue
			}
			return j + 1
		}
	}
	return len(text)
}

func isFalsy(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return rv.IsNil()
	case reflect.Struct:
		return false
	}
	return rv.IsZero()
}

// renderParam quotes a scalar, or comma-joins the quoted elements of a
// slice or array.
func renderParam(v interface{}) (string, error) {
	rv := reflect.ValueOf(v)
	if (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) && rv.Type().Elem().Kind() != reflect.Uint8 {
		parts := make([]string, rv.Len())
		for i := range parts {
			s, err := scalarText(rv.Index(i).Interface())
			if err != nil {
				return "", err
			}
			parts[i] = quoteLiteral(s)
		}
		return strings.Join(parts, ", "), nil
	}
	s, err := scalarText(v)
	if err != nil {
		return "", err
	}
	return quoteLiteral(s), nil
}

func scalarText(v interface{}) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case decimal.Decimal:
		return x.String(), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	case reflect.String:
		return rv.String(), nil
	}
	return "", fmt.Errorf("unsupported parameter type %T", v)
}
