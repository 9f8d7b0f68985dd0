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
Package errors provides the structured error system for pgmock.

Every failure raised by the mock carries:
  - a numeric code for programmatic handling
  - a category grouping related failures
  - a user-facing message with optional detail and hint
  - an optional cause for root cause analysis

Error Categories:
  - PARSE: statement structure did not match the expected grammar
  - STATEMENT: the statement kind is not emulated
  - SCHEMA: name collisions and missing tables, columns or sequences
  - DATA: values out of range or of the wrong type
  - SUBSTITUTION: parameter placeholders could not be expanded
  - TRANSACTION: misuse of BEGIN/COMMIT/ROLLBACK
  - CONFIG: invalid configuration
  - GRAMMAR: a declarative grammar failed to load

Errors are returned as *MockError. The IsXxx helpers accept wrapped errors.
*/
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a unique error identifier.
type ErrorCode int

const (
	// Parse errors (1000-1999)
	ErrCodeParse           ErrorCode = 1000
	ErrCodeParseStructure  ErrorCode = 1001
	ErrCodeUnexpectedToken ErrorCode = 1002
	ErrCodeUnclosedString  ErrorCode = 1003
	ErrCodeUnknownDialect  ErrorCode = 1004

	// Statement errors (2000-2999)
	ErrCodeStatement            ErrorCode = 2000
	ErrCodeUnsupportedStatement ErrorCode = 2001

	// Schema errors (3000-3999)
	ErrCodeSchema           ErrorCode = 3000
	ErrCodeDuplicateName    ErrorCode = 3001
	ErrCodeTableNotFound    ErrorCode = 3002
	ErrCodeColumnNotFound   ErrorCode = 3003
	ErrCodeSequenceNotFound ErrorCode = 3004

	// Data errors (4000-4999)
	ErrCodeData         ErrorCode = 4000
	ErrCodeOutOfRange   ErrorCode = 4001
	ErrCodeTypeMismatch ErrorCode = 4002
	ErrCodeInvalidValue ErrorCode = 4003

	// Substitution errors (5000-5999)
	ErrCodeSubstitution ErrorCode = 5000

	// Transaction errors (6000-6999)
	ErrCodeTransaction       ErrorCode = 6000
	ErrCodeNestedTransaction ErrorCode = 6001
	ErrCodeTxNotActive       ErrorCode = 6002

	// Config errors (7000-7999)
	ErrCodeConfig        ErrorCode = 7000
	ErrCodeInvalidConfig ErrorCode = 7001

	// Grammar errors (8000-8999)
	ErrCodeGrammar     ErrorCode = 8000
	ErrCodeGrammarLoad ErrorCode = 8001
)

// Category represents the error category.
type Category string

const (
	CategoryParse        Category = "PARSE"
	CategoryStatement    Category = "STATEMENT"
	CategorySchema       Category = "SCHEMA"
	CategoryData         Category = "DATA"
	CategorySubstitution Category = "SUBSTITUTION"
	CategoryTransaction  Category = "TRANSACTION"
	CategoryConfig       Category = "CONFIG"
	CategoryGrammar      Category = "GRAMMAR"
)

// MockError represents a structured error raised by the mock database.
type MockError struct {
	Code     ErrorCode
	Category Category
	Message  string
	Detail   string
	Hint     string
	Cause    error
}

// Error implements the error interface.
func (e *MockError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("ERROR %d (%s): %s - %s", e.Code, e.Category, e.Message, e.Detail)
	}
	return fmt.Sprintf("ERROR %d (%s): %s", e.Code, e.Category, e.Message)
}

// Unwrap returns the underlying cause.
func (e *MockError) Unwrap() error {
	return e.Cause
}

// SQLSTATE returns the PostgreSQL SQLSTATE a real server would report
// for the same condition.
func (e *MockError) SQLSTATE() string {
	switch e.Code {
	case ErrCodeParse, ErrCodeParseStructure, ErrCodeUnexpectedToken, ErrCodeUnclosedString:
		return "42601"
	case ErrCodeUnsupportedStatement:
		return "0A000"
	case ErrCodeDuplicateName:
		return "42P07"
	case ErrCodeTableNotFound, ErrCodeSequenceNotFound:
		return "42P01"
	case ErrCodeColumnNotFound:
		return "42703"
	case ErrCodeOutOfRange:
		return "2200H"
	case ErrCodeTypeMismatch:
		return "42804"
	case ErrCodeInvalidValue:
		return "22023"
	case ErrCodeNestedTransaction, ErrCodeTxNotActive:
		return "25000"
	}
	return "XX000"
}

// UserMessage returns a user-friendly error message.
func (e *MockError) UserMessage() string {
	msg := fmt.Sprintf("ERROR: %s", e.Message)
	if e.Detail != "" {
		msg += fmt.Sprintf(" (%s)", e.Detail)
	}
	if e.Hint != "" {
		msg += fmt.Sprintf("\nHINT: %s", e.Hint)
	}
	return msg
}

// WithDetail adds detail to the error.
func (e *MockError) WithDetail(detail string) *MockError {
	e.Detail = detail
	return e
}

// WithHint adds a hint to the error.
func (e *MockError) WithHint(hint string) *MockError {
	e.Hint = hint
	return e
}

// WithCause adds a cause to the error.
func (e *MockError) WithCause(cause error) *MockError {
	e.Cause = cause
	return e
}

// ============================================================================
// Parse Error Constructors
// ============================================================================

// NewParseError creates a generic parse error.
func NewParseError(message string) *MockError {
	return &MockError{
		Code:     ErrCodeParse,
		Category: CategoryParse,
		Message:  message,
	}
}

// ParseStructure reports that the state graph walker found no matching
// continuation. It aborts extraction of the whole statement.
func ParseStructure(statement, expected, got string) *MockError {
	return &MockError{
		Code:     ErrCodeParseStructure,
		Category: CategoryParse,
		Message:  fmt.Sprintf("no state found for %s: expected %s, got %s", statement, expected, got),
	}
}

// UnexpectedToken creates an error for unexpected tokens.
func UnexpectedToken(expected, got string) *MockError {
	return &MockError{
		Code:     ErrCodeUnexpectedToken,
		Category: CategoryParse,
		Message:  fmt.Sprintf("unexpected token: expected %s, got %s", expected, got),
		Hint:     "Check your SQL syntax",
	}
}

// UnclosedString creates an error for a quote or parenthesis left open.
func UnclosedString(what string) *MockError {
	return &MockError{
		Code:     ErrCodeUnclosedString,
		Category: CategoryParse,
		Message:  fmt.Sprintf("unterminated %s", what),
	}
}

// UnknownDialect creates an error for a dialect the parser does not know.
func UnknownDialect(dialect string) *MockError {
	return &MockError{
		Code:     ErrCodeUnknownDialect,
		Category: CategoryParse,
		Message:  fmt.Sprintf("unknown dialect: %s", dialect),
		Hint:     "Supported dialects: postgres",
	}
}

// ============================================================================
// Statement Error Constructors
// ============================================================================

// UnsupportedStatement creates an error for statements no handler emulates.
func UnsupportedStatement(statement string) *MockError {
	return &MockError{
		Code:     ErrCodeUnsupportedStatement,
		Category: CategoryStatement,
		Message:  "unsupported statement",
		Detail:   statement,
		Hint:     "Supported statements: SELECT, CREATE TABLE, CREATE SEQUENCE, ALTER TABLE, INSERT, BEGIN, COMMIT, ROLLBACK",
	}
}

// ============================================================================
// Schema Error Constructors
// ============================================================================

// DuplicateName creates an error for a relation created twice.
func DuplicateName(kind, name string) *MockError {
	return &MockError{
		Code:     ErrCodeDuplicateName,
		Category: CategorySchema,
		Message:  fmt.Sprintf("%s '%s' already exists", kind, name),
		Hint:     "Use IF NOT EXISTS to skip existing relations",
	}
}

// TableNotFound creates an error for missing tables.
func TableNotFound(table string) *MockError {
	return &MockError{
		Code:     ErrCodeTableNotFound,
		Category: CategorySchema,
		Message:  fmt.Sprintf("table not found: %s", table),
	}
}

// ColumnNotFound creates an error for missing columns.
func ColumnNotFound(column, table string) *MockError {
	return &MockError{
		Code:     ErrCodeColumnNotFound,
		Category: CategorySchema,
		Message:  fmt.Sprintf("column '%s' not found in table '%s'", column, table),
	}
}

// SequenceNotFound creates an error for missing sequences.
func SequenceNotFound(name string) *MockError {
	return &MockError{
		Code:     ErrCodeSequenceNotFound,
		Category: CategorySchema,
		Message:  fmt.Sprintf("sequence not found: %s", name),
	}
}

// ============================================================================
// Data Error Constructors
// ============================================================================

// OutOfRange creates an error for a sequence value outside its bounds.
func OutOfRange(sequence string, value int64, bound string) *MockError {
	return &MockError{
		Code:     ErrCodeOutOfRange,
		Category: CategoryData,
		Message:  fmt.Sprintf("nextval: reached %s of sequence '%s'", bound, sequence),
		Detail:   fmt.Sprintf("candidate value %d", value),
	}
}

// TypeMismatch creates an error for type mismatches.
func TypeMismatch(expected, got, column string) *MockError {
	return &MockError{
		Code:     ErrCodeTypeMismatch,
		Category: CategoryData,
		Message:  fmt.Sprintf("type mismatch for column '%s': expected %s, got %s", column, expected, got),
	}
}

// InvalidValue creates an error for a value that is well-formed but not acceptable.
func InvalidValue(field, value string) *MockError {
	return &MockError{
		Code:     ErrCodeInvalidValue,
		Category: CategoryData,
		Message:  fmt.Sprintf("invalid value for %s: %s", field, value),
	}
}

// ============================================================================
// Substitution, Transaction, Config and Grammar Error Constructors
// ============================================================================

// Substitution creates an error for a parameter that could not be rendered.
func Substitution(param string, cause error) *MockError {
	return &MockError{
		Code:     ErrCodeSubstitution,
		Category: CategorySubstitution,
		Message:  fmt.Sprintf("cannot substitute parameter :%s", param),
		Cause:    cause,
	}
}

// NestedTransaction creates an error for a BEGIN inside an open group.
func NestedTransaction() *MockError {
	return &MockError{
		Code:     ErrCodeNestedTransaction,
		Category: CategoryTransaction,
		Message:  "BEGIN inside an open transaction group",
		Hint:     "Close the previous group with COMMIT or ROLLBACK",
	}
}

// TxNotActive creates an error for committing or rolling back a finished transaction.
func TxNotActive(op string) *MockError {
	return &MockError{
		Code:     ErrCodeTxNotActive,
		Category: CategoryTransaction,
		Message:  fmt.Sprintf("cannot %s: transaction is not active", op),
	}
}

// InvalidConfig creates an error for a configuration value that fails validation.
func InvalidConfig(field, reason string) *MockError {
	return &MockError{
		Code:     ErrCodeInvalidConfig,
		Category: CategoryConfig,
		Message:  fmt.Sprintf("invalid %s", field),
		Detail:   reason,
	}
}

// GrammarLoad creates an error for a grammar definition that cannot be compiled.
func GrammarLoad(grammar, reason string) *MockError {
	return &MockError{
		Code:     ErrCodeGrammarLoad,
		Category: CategoryGrammar,
		Message:  fmt.Sprintf("cannot load grammar %s", grammar),
		Detail:   reason,
	}
}

// ============================================================================
// Error Checking Helpers
// ============================================================================

func asMockError(err error) (*MockError, bool) {
	var e *MockError
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func hasCode(err error, code ErrorCode) bool {
	e, ok := asMockError(err)
	return ok && e.Code == code
}

// IsParseStructure checks if an error is a structural parse failure.
func IsParseStructure(err error) bool {
	return hasCode(err, ErrCodeParseStructure)
}

// IsUnsupportedStatement checks if an error is an unsupported statement.
func IsUnsupportedStatement(err error) bool {
	return hasCode(err, ErrCodeUnsupportedStatement)
}

// IsDuplicateName checks if an error is a name collision.
func IsDuplicateName(err error) bool {
	return hasCode(err, ErrCodeDuplicateName)
}

// IsOutOfRange checks if an error is a sequence bound violation.
func IsOutOfRange(err error) bool {
	return hasCode(err, ErrCodeOutOfRange)
}

// IsSubstitution checks if an error is a parameter substitution failure.
func IsSubstitution(err error) bool {
	return hasCode(err, ErrCodeSubstitution)
}

// IsParseError checks if an error belongs to the parse category.
func IsParseError(err error) bool {
	e, ok := asMockError(err)
	return ok && e.Category == CategoryParse
}

// IsSchemaError checks if an error belongs to the schema category.
func IsSchemaError(err error) bool {
	e, ok := asMockError(err)
	return ok && e.Category == CategorySchema
}

// IsTransactionError checks if an error belongs to the transaction category.
func IsTransactionError(err error) bool {
	e, ok := asMockError(err)
	return ok && e.Category == CategoryTransaction
}

// GetCode returns the error code if it's a MockError, or 0 otherwise.
func GetCode(err error) ErrorCode {
	if e, ok := asMockError(err); ok {
		return e.Code
	}
	return 0
}

// FormatError formats an error for user display.
func FormatError(err error) string {
	if e, ok := asMockError(err); ok {
		return e.UserMessage()
	}
	return fmt.Sprintf("ERROR: %v", err)
}

// FormatErrorWithSQLSTATE prefixes the user message with its SQLSTATE.
func FormatErrorWithSQLSTATE(err error) string {
	if e, ok := asMockError(err); ok {
		return fmt.Sprintf("[%s] %s", e.SQLSTATE(), e.UserMessage())
	}
	return fmt.Sprintf("[XX000] ERROR: %v", err)
}
