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

/*
Package sql contains the mapping from PostgreSQL column types to storage
categories.

Supported Categories:
=====================

  - integer: smallint, integer, bigint, the serial types
  - numeric: numeric, decimal, real, double precision, money
  - boolean: boolean
  - timestamp: timestamp (with or without time zone), date
  - text: everything else, including arrays, json, uuid and bytea

The declared type is kept next to the category as the column's
SourceType, so \d shows what CREATE TABLE said.
*/
package sql

import (
	"strings"

	"pgmock/internal/storage"
)

// typeCategories maps a base type name (lower case, no modifiers) to its
// storage category.
var typeCategories = map[string]storage.Category{
	"smallint":    storage.CategoryInteger,
	"integer":     storage.CategoryInteger,
	"int":         storage.CategoryInteger,
	"int2":        storage.CategoryInteger,
	"int4":        storage.CategoryInteger,
	"int8":        storage.CategoryInteger,
	"bigint":      storage.CategoryInteger,
	"smallserial": storage.CategoryInteger,
	"serial":      storage.CategoryInteger,
	"serial2":     storage.CategoryInteger,
	"serial4":     storage.CategoryInteger,
	"serial8":     storage.CategoryInteger,
	"bigserial":   storage.CategoryInteger,

	"numeric":          storage.CategoryNumeric,
	"decimal":          storage.CategoryNumeric,
	"real":             storage.CategoryNumeric,
	"float":            storage.CategoryNumeric,
	"float4":           storage.CategoryNumeric,
	"float8":           storage.CategoryNumeric,
	"double precision": storage.CategoryNumeric,
	"money":            storage.CategoryNumeric,

	"boolean": storage.CategoryBoolean,
	"bool":    storage.CategoryBoolean,

	"timestamp":                   storage.CategoryTimestamp,
	"timestamptz":                 storage.CategoryTimestamp,
	"timestamp with time zone":    storage.CategoryTimestamp,
	"timestamp without time zone": storage.CategoryTimestamp,
	"date":                        storage.CategoryTimestamp,
}

// TypeCategory returns the storage category for a declared column type.
// Unknown types are text.
func TypeCategory(typeName string) storage.Category {
	t := strings.ToLower(strings.TrimSpace(typeName))
	if strings.HasSuffix(t, "[]") {
		return storage.CategoryText
	}
	if cat, ok := typeCategories[baseType(t)]; ok {
		return cat
	}
	return storage.CategoryText
}

// baseType drops precision modifiers and schema qualification:
// "pg_catalog.numeric(10,2)" becomes "numeric" and
// "timestamp(3) with time zone" becomes "timestamp with time zone".
func baseType(t string) string {
	var b strings.Builder
	depth := 0
	for _, r := range t {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case depth == 0:
			b.WriteRune(r)
		}
	}
	base := strings.Join(strings.Fields(b.String()), " ")
	if i := strings.LastIndex(strings.SplitN(base, " ", 2)[0], "."); i >= 0 {
		base = base[i+1:]
	}
	return base
}

// integerTypeBounds are the value ranges of the types a sequence may be
// declared AS.
var integerTypeBounds = map[string][2]int64{
	"smallint": {-32768, 32767},
	"int2":     {-32768, 32767},
	"integer":  {-2147483648, 2147483647},
	"int":      {-2147483648, 2147483647},
	"int4":     {-2147483648, 2147483647},
}

// IntegerBounds returns the range of an integer type. Bigint and unknown
// types report false and stay unbounded.
func IntegerBounds(typeName string) (min, max int64, ok bool) {
	b, ok := integerTypeBounds[baseType(strings.ToLower(typeName))]
	return b[0], b[1], ok
}
