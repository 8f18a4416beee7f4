// Package errors provides structured, actionable error messages for the
// toast server and CLI.
//
// The toast store itself never fails; errors only arise at the edges:
// loading configuration, decoding API requests, serving connections and
// talking to a running server from the CLI.
//
// # Error Categories
//
//   - config: configuration files (missing, unparsable, invalid values)
//   - validation: API and CLI input (unknown type or position, bad ids)
//   - transport: HTTP and WebSocket serving
//   - cli: command line failures
//
// # Error Codes
//
// Each error has a unique code (e.g., "E201") that maps to a short message,
// an optional explanation, an HTTP status and a documentation URL.
//
// # Usage
//
//	err := errors.New("E202").
//	    WithDetailf("%q is not a position", name).
//	    WithSuggestion("Use one of top-start ... bottom-end")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E202: Unknown toast position
//	//
//	//   "left" is not a position
//	//
//	//   Hint: Use one of top-start ... bottom-end
//	//
//	//   Learn more: https://vango.dev/docs/toast/errors/E202
package errors
