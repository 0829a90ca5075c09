package errtree

// Category classifies leaf errors along a coarse axis. A category is the
// "family" of a code: predicates can match a whole category instead of
// enumerating every code in it.
type Category string

// Categories group codes by the nature of the failure.
const (
	// CategoryInput indicates a malformed or otherwise unusable value.
	// Examples: wrong type, missing key, value out of range.
	CategoryInput Category = "input"

	// CategoryIO indicates an operating-system or I/O level failure.
	// Examples: blocked descriptor, timeout, connection reset.
	CategoryIO Category = "io"

	// CategoryResource indicates exhaustion of some bounded resource.
	// Examples: rate limiting, quota exceeded.
	CategoryResource Category = "resource"

	// CategoryInternal indicates unexpected failures and invariant
	// violations. Examples: recovered panic, assertion failure.
	CategoryInternal Category = "internal"
)

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}

// Code identifies a specific leaf error type. Codes are the type tags that
// clause predicates match against.
type Code string

// Codes for common failure types.
const (
	// Input codes
	CodeValue   Code = "VALUE"   // Value is of the right type but unusable
	CodeType    Code = "TYPE"    // Value has the wrong type
	CodeKey     Code = "KEY"     // Lookup key is missing
	CodeIndex   Code = "INDEX"   // Sequence index out of range
	CodeParse   Code = "PARSE"   // Input could not be parsed

	// I/O codes
	CodeOS         Code = "OS"          // Generic operating-system failure
	CodeBlockingIO Code = "BLOCKING_IO" // Operation would block
	CodeTimeout    Code = "TIMEOUT"     // Operation timed out
	CodeNetwork    Code = "NETWORK"     // Network connectivity failure
	CodeClosed     Code = "CLOSED"      // Resource already closed

	// Resource codes
	CodeRateLimit Code = "RATE_LIMITED" // Rate limit exceeded
	CodeQuota     Code = "QUOTA"        // Quota exhausted
	CodeCapacity  Code = "CAPACITY"     // System at capacity

	// Internal codes
	CodeInternal  Code = "INTERNAL"  // Unexpected internal error
	CodeAssertion Code = "ASSERTION" // Invariant violation
	CodePanic     Code = "PANIC"     // Recovered from panic
	CodeCanceled  Code = "CANCELED"  // Operation canceled

	// CodeAggregate is the reserved tag reported by Group nodes. It never
	// tags a leaf, and a predicate built over it is ambiguous: dispatch
	// validation rejects such predicates before any clause runs.
	CodeAggregate Code = "AGGREGATE"
)

// String returns the string representation of the code.
func (c Code) String() string {
	return string(c)
}

// Category returns the category a code belongs to. Unknown codes fall back
// to CategoryInternal.
func (c Code) Category() Category {
	switch c {
	case CodeValue, CodeType, CodeKey, CodeIndex, CodeParse:
		return CategoryInput
	case CodeOS, CodeBlockingIO, CodeTimeout, CodeNetwork, CodeClosed:
		return CategoryIO
	case CodeRateLimit, CodeQuota, CodeCapacity:
		return CategoryResource
	default:
		return CategoryInternal
	}
}

// codeDescriptions provides human-readable descriptions for codes.
var codeDescriptions = map[Code]string{
	CodeValue:      "unusable value",
	CodeType:       "wrong type",
	CodeKey:        "key not found",
	CodeIndex:      "index out of range",
	CodeParse:      "parse failure",
	CodeOS:         "operating system failure",
	CodeBlockingIO: "operation would block",
	CodeTimeout:    "operation timed out",
	CodeNetwork:    "network failure",
	CodeClosed:     "resource closed",
	CodeRateLimit:  "rate limit exceeded",
	CodeQuota:      "quota exhausted",
	CodeCapacity:   "system at capacity",
	CodeInternal:   "internal error",
	CodeAssertion:  "assertion failed",
	CodePanic:      "recovered from panic",
	CodeCanceled:   "operation canceled",
	CodeAggregate:  "aggregated errors",
}

// Description returns a human-readable description for the code.
func (c Code) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}
