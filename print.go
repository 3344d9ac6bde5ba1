package contentsafety

import (
	"fmt"
	"io"
)

// FprintDetectionResult writes the final decision followed by the license and source URLs of
// every citation to w. A nil result yields ErrNilResult and writes nothing.
func FprintDetectionResult(w io.Writer, result *DetectionResult) error {
	if result == nil {
		return ErrNilResult
	}
	analysis := result.ProtectedMaterialAnalysis
	if _, err := fmt.Fprintf(w, "Final decision: %t\n", analysis.Detected); err != nil {
		return err
	}
	for _, citation := range analysis.CodeCitations {
		if _, err := fmt.Fprintf(w, "License: %s\nSource URLs:\n", citation.License); err != nil {
			return err
		}
		for _, url := range citation.SourceURLs {
			if _, err := fmt.Fprintln(w, url); err != nil {
				return err
			}
		}
	}
	return nil
}

// FprintShieldPromptResult writes whether an attack was found in the user prompt and in each
// document to w.
func FprintShieldPromptResult(w io.Writer, result *ShieldPromptResult) error {
	if result == nil {
		return ErrNilResult
	}
	if _, err := fmt.Fprintf(w, "User prompt attack detected: %t\n", result.UserPromptAnalysis.AttackDetected); err != nil {
		return err
	}
	for i, doc := range result.DocumentsAnalysis {
		if _, err := fmt.Fprintf(w, "Document %d attack detected: %t\n", i+1, doc.AttackDetected); err != nil {
			return err
		}
	}
	return nil
}
