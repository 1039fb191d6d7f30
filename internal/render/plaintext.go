// Package render turns a pipeline result into downloadable artifacts.
package render

import "github.com/Finnson11-star/pdf-translator/internal/pipeline"

// PlainText returns the aggregate text unchanged. A nil result yields "".
func PlainText(result *pipeline.Result) string {
	if result == nil {
		return ""
	}
	return result.AggregateText
}
