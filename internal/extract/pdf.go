// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFCPUReader extracts text from PDF page content streams with pdfcpu.
// It reads text drawn with the text-showing operators; scanned PDFs that
// only contain images yield "".
type PDFCPUReader struct{}

// ReadText returns the text of every page, concatenated with no separator.
// Pages without text contribute nothing.
func (PDFCPUReader) ReadText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	ctx, err := api.ReadValidateAndOptimize(f, model.NewDefaultConfiguration())
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	var b strings.Builder
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
		if err != nil || r == nil {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil || len(data) == 0 {
			continue
		}
		b.WriteString(streamText(data))
	}
	return b.String(), nil
}

// streamText collects the string operands of the text-showing operators
// (Tj, TJ, ' and ") in a content stream. Positioning operators start a new
// line.
func streamText(data []byte) string {
	var out strings.Builder
	var pending []string

	newline := func() {
		if out.Len() > 0 && !strings.HasSuffix(out.String(), "\n") {
			out.WriteByte('\n')
		}
	}

	for i := 0; i < len(data); {
		c := data[i]
		switch {
		case isPDFSpace(c), c == '[', c == ']', c == '{', c == '}', c == '>':
			i++
		case c == '%':
			for i < len(data) && data[i] != '\n' && data[i] != '\r' {
				i++
			}
		case c == '/':
			i++
			for i < len(data) && !isPDFSpace(data[i]) && !isPDFDelim(data[i]) {
				i++
			}
		case c == '(':
			s, n := readLiteral(data[i:])
			pending = append(pending, s)
			i += n
		case c == '<':
			// Dictionary open or hex string; hex glyph codes are skipped.
			if i+1 < len(data) && data[i+1] == '<' {
				i += 2
				continue
			}
			for i < len(data) && data[i] != '>' {
				i++
			}
			i++
		default:
			j := i
			for j < len(data) && !isPDFSpace(data[j]) && !isPDFDelim(data[j]) {
				j++
			}
			if j == i {
				// Lone delimiter such as ')' or '/'.
				j++
			}
			tok := string(data[i:j])
			i = j

			switch tok {
			case "Tj", "TJ":
				out.WriteString(strings.Join(pending, ""))
				pending = nil
			case "'", "\"":
				newline()
				out.WriteString(strings.Join(pending, ""))
				pending = nil
			case "T*", "Td", "TD", "ET":
				newline()
				pending = nil
			default:
				if isOperator(tok) {
					pending = nil
				}
			}
		}
	}

	var lines []string
	for _, line := range strings.Split(out.String(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// readLiteral decodes a PDF literal string starting at data[0] == '('. It
// returns the decoded text and the number of bytes consumed.
func readLiteral(data []byte) (string, int) {
	var b strings.Builder
	depth := 0
	i := 0
	for i < len(data) {
		c := data[i]
		switch c {
		case '(':
			if depth > 0 {
				b.WriteByte(c)
			}
			depth++
			i++
		case ')':
			depth--
			i++
			if depth == 0 {
				return b.String(), i
			}
			b.WriteByte(c)
		case '\\':
			i++
			if i >= len(data) {
				return b.String(), i
			}
			e := data[i]
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case '\n':
				// Line continuation.
			case '\r':
				if i+1 < len(data) && data[i+1] == '\n' {
					i++
				}
			default:
				if e >= '0' && e <= '7' {
					val := 0
					k := 0
					for k < 3 && i < len(data) && data[i] >= '0' && data[i] <= '7' {
						val = val*8 + int(data[i]-'0')
						i++
						k++
					}
					b.WriteByte(byte(val))
					continue
				}
				b.WriteByte(e)
			}
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), i
}

func isPDFSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' || c == 0
}

func isPDFDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// isOperator reports whether tok is an operator rather than a number or a
// name operand.
func isOperator(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	return c != '/' && c != '-' && c != '+' && c != '.' && (c < '0' || c > '9')
}
