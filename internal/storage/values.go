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

package storage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	ferrors "pgmock/internal/errors"
)

// Category is the storage class a column type maps to.
type Category string

const (
	CategoryInteger   Category = "integer"
	CategoryNumeric   Category = "numeric"
	CategoryBoolean   Category = "boolean"
	CategoryTimestamp Category = "timestamp"
	CategoryText      Category = "text"
)

// Accepted timestamp literal layouts, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// Coerce converts an evaluated SQL value to the Go representation of
// category. NULL (nil) is valid for every category. The column name is
// only used in error messages.
func Coerce(category Category, value interface{}, column string) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	mismatch := func() *ferrors.MockError {
		return ferrors.TypeMismatch(string(category), describe(value), column)
	}

	switch category {
	case CategoryInteger:
		switch v := value.(type) {
		case int64:
			return v, nil
		case int:
			return int64(v), nil
		case decimal.Decimal:
			if !v.Equal(v.Truncate(0)) {
				return nil, mismatch()
			}
			if !v.BigInt().IsInt64() {
				return nil, mismatch().WithDetail("out of range for bigint")
			}
			return v.IntPart(), nil
		case string:
			n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
			if err != nil {
				return nil, mismatch()
			}
			return n, nil
		}

	case CategoryNumeric:
		switch v := value.(type) {
		case decimal.Decimal:
			return v, nil
		case int64:
			return decimal.NewFromInt(v), nil
		case int:
			return decimal.NewFromInt(int64(v)), nil
		case float64:
			return decimal.NewFromFloat(v), nil
		case string:
			d, err := decimal.NewFromString(strings.TrimSpace(v))
			if err != nil {
				return nil, mismatch()
			}
			return d, nil
		}

	case CategoryBoolean:
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			switch strings.ToLower(strings.TrimSpace(v)) {
			case "t", "true", "y", "yes", "on", "1":
				return true, nil
			case "f", "false", "n", "no", "off", "0":
				return false, nil
			}
		}

	case CategoryTimestamp:
		switch v := value.(type) {
		case time.Time:
			return v, nil
		case string:
			s := strings.TrimSpace(v)
			for _, layout := range timestampLayouts {
				if ts, err := time.Parse(layout, s); err == nil {
					return ts, nil
				}
			}
		}

	default:
		return FormatValue(value), nil
	}
	return nil, mismatch()
}

// FormatValue renders a stored value the way psql would print it.
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case decimal.Decimal:
		return v.String()
	case bool:
		if v {
			return "t"
		}
		return "f"
	case time.Time:
		return v.Format("2006-01-02 15:04:05.999999999Z07:00")
	default:
		return fmt.Sprint(v)
	}
}

func describe(value interface{}) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("'%s'", v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return FormatValue(v)
	}
}
