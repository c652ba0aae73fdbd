package extract

import (
	"archive/zip"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	docxDocumentXMLPath = "word/document.xml"
	contentTypesPath    = "[Content_Types].xml"
	docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	pptxSlidePrefix     = "ppt/slides/slide"
)

var (
	// <w:t>text</w:t> or <w:t xml:space="preserve">text</w:t>
	wtTag = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
	// <a:t>text</a:t> in DrawingML slides
	atTag = regexp.MustCompile(`<a:t(?:\s[^>]*)?>([^<]*)</a:t>`)

	overrideTag  = regexp.MustCompile(`<Override\s[^>]*>`)
	partNameAttr = regexp.MustCompile(`PartName="([^"]+)"`)
	slideNumber  = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
)

// docxMainPart finds the main document part from [Content_Types].xml, which
// may be renamed by some producers. Falls back to word/document.xml.
func docxMainPart(zr *zip.Reader) string {
	types, err := readPart(zr, contentTypesPath)
	if err != nil || types == nil {
		return docxDocumentXMLPath
	}
	for _, tag := range overrideTag.FindAll(types, -1) {
		if !strings.Contains(string(tag), `ContentType="`+docxMainContentType+`"`) {
			continue
		}
		if m := partNameAttr.FindSubmatch(tag); m != nil {
			return strings.TrimPrefix(string(m[1]), "/")
		}
	}
	return docxDocumentXMLPath
}

// extractDOCX pulls every <w:t> run out of the main document part. Matching
// runs rather than paragraphs copes with arbitrary paragraph attributes.
func extractDOCX(content []byte) (string, error) {
	zr, err := openZip(content, "DOCX")
	if err != nil {
		return "", err
	}
	part := docxMainPart(zr)
	xml, err := readPart(zr, part)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: %w", err)
	}
	if xml == nil {
		return "", fmt.Errorf("extract DOCX: %s not found", part)
	}
	var b strings.Builder
	joinMatches(&b, wtTag, xml)
	return b.String(), nil
}

// extractPPTX reads slides in slide-number order.
func extractPPTX(content []byte) (string, error) {
	zr, err := openZip(content, "PPTX")
	if err != nil {
		return "", err
	}
	type slide struct {
		n    int
		name string
	}
	var slides []slide
	for _, f := range zr.File {
		if m := slideNumber.FindStringSubmatch(f.Name); m != nil {
			n, _ := strconv.Atoi(m[1])
			slides = append(slides, slide{n: n, name: f.Name})
		}
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].n < slides[j].n })

	var b strings.Builder
	for _, s := range slides {
		xml, err := readPart(zr, s.name)
		if err != nil {
			return "", fmt.Errorf("extract PPTX: %w", err)
		}
		joinMatches(&b, atTag, xml)
	}
	return b.String(), nil
}
