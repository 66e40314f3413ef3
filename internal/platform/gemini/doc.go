// Package gemini implements the generation interfaces using Google's Gemini
// API with schema-constrained JSON output.
package gemini
