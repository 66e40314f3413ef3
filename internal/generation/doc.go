// Package generation defines the boundary between the application core and
// the generative-AI provider used for lesson content and question analysis.
package generation
