// Package analysis turns repository metadata and README text into a
// structured project profile used for prompting the suggestion generator.
package analysis
