package extract

import (
	"fmt"
	"strings"

	"github.com/lu4p/cat"
)

// extractRTF delegates to lu4p/cat, which sniffs the content type itself.
func extractRTF(content []byte) (string, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return "", fmt.Errorf("extract RTF: %w", err)
	}
	return strings.TrimSpace(text), nil
}
