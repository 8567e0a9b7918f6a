// Package errors provides structured, actionable error messages for vroute.
//
// Every failure the router can report is registered under a stable code
// (e.g. "R001") that maps to:
//   - A short message describing the error
//   - A detailed explanation
//   - A documentation URL
//
// # Error Categories
//
//   - config: route declarations that cannot be registered (fatal at startup)
//   - navigation: failures scoped to a single navigation attempt
//   - validation: parameter and path input errors
//   - history: history adapter and persistence errors
//   - cli: command line usage errors
//
// # Usage
//
//	err := errors.New("R001").
//	    WithRoute("/write", 2).
//	    WithSuggestion("Give every named route a unique name")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR R001: Duplicate route name
//	//
//	//   route #2 /write
//	//
//	//   Hint: Give every named route a unique name
//	//
//	//   Learn more: https://vango.dev/docs/vroute/errors/R001
package errors
