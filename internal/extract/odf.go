package extract

import (
	"fmt"
	"regexp"
	"strings"
)

const odfContentPath = "content.xml"

// Innermost text:p, text:h and text:span elements, in document order.
var odfText = regexp.MustCompile(`<text:(?:p|h|span)(?:\s[^>]*)?>([^<]*)</text:(?:p|h|span)>`)

// extractODF handles OpenDocument text, presentation and spreadsheet files,
// which all keep their body in content.xml.
func extractODF(content []byte) (string, error) {
	zr, err := openZip(content, "OpenDocument")
	if err != nil {
		return "", err
	}
	xml, err := readPart(zr, odfContentPath)
	if err != nil {
		return "", fmt.Errorf("extract OpenDocument: %w", err)
	}
	if xml == nil {
		return "", fmt.Errorf("extract OpenDocument: %s not found", odfContentPath)
	}
	var b strings.Builder
	joinMatches(&b, odfText, xml)
	return b.String(), nil
}
