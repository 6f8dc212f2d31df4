// Package extractors provides implementations of the TextExtractor interface
// for the supported document formats, and a Registry that dispatches on file
// extension.
//
// Extractors are registered with the Registry at startup.
package extractors
