package alfred

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	xmlHeader = "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<items>\n"
	xmlFooter = "</items>\n"
	xmlIndent = "    "
)

// ErrWriterClosed is returned when writing to a closed XMLWriter.
var ErrWriterClosed = errors.New("alfred: xml writer closed")

// XMLWriter streams items as the legacy Alfred 2 XML document. The first
// write error is remembered and returned from every later call.
type XMLWriter struct {
	w      io.Writer
	err    error
	closed bool
}

// NewXMLWriter writes the document header to w.
func NewXMLWriter(w io.Writer) (*XMLWriter, error) {
	if _, err := io.WriteString(w, xmlHeader); err != nil {
		return nil, err
	}
	return &XMLWriter{w: w}, nil
}

// WriteItem appends one <item> element.
func (x *XMLWriter) WriteItem(it Item) error {
	if x.err != nil {
		return x.err
	}
	if x.closed {
		return ErrWriterClosed
	}
	if err := writeXMLItem(x.w, it, 1); err != nil {
		x.err = err
		return err
	}
	return nil
}

// Close writes the closing </items> tag. It does not close the underlying
// writer.
func (x *XMLWriter) Close() error {
	if x.err != nil {
		return x.err
	}
	if x.closed {
		return nil
	}
	x.closed = true
	if _, err := io.WriteString(x.w, xmlFooter); err != nil {
		x.err = err
		return err
	}
	return nil
}

// WriteXML writes a complete XML document holding items.
func WriteXML(w io.Writer, items []Item) error {
	bw := bufio.NewWriter(w)
	xw, err := NewXMLWriter(bw)
	if err != nil {
		return err
	}
	for _, it := range items {
		if err := xw.WriteItem(it); err != nil {
			return err
		}
	}
	if err := xw.Close(); err != nil {
		return err
	}
	return bw.Flush()
}

func writeXMLItem(out io.Writer, it Item, indent int) error {
	w := bufio.NewWriterSize(out, 512)
	pad := strings.Repeat(xmlIndent, indent)
	inner := pad + xmlIndent

	w.WriteString(pad)
	w.WriteString("<item")
	if it.UID != nil {
		writeAttr(w, "uid", *it.UID)
	}
	if it.Arg != nil {
		writeAttr(w, "arg", *it.Arg)
	}
	if it.Type != TypeDefault {
		writeAttr(w, "type", it.Type.String())
	}
	if !it.Valid {
		writeAttr(w, "valid", "no")
	}
	if it.Autocomplete != nil {
		writeAttr(w, "autocomplete", *it.Autocomplete)
	}
	w.WriteString(">\n")

	writeElem(w, inner, "title", "", it.Title)
	if it.Subtitle != nil {
		writeElem(w, inner, "subtitle", "", *it.Subtitle)
	}
	if it.Icon != nil {
		writeElem(w, inner, "icon", it.Icon.typeName(), it.Icon.Value)
	}

	for _, m := range AllModifiers {
		d, ok := it.Modifiers[m]
		if !ok || d == nil {
			continue
		}
		w.WriteString(inner)
		w.WriteString("<mod")
		writeAttr(w, "key", m.Key())
		if d.Subtitle != nil {
			writeAttr(w, "subtitle", *d.Subtitle)
		}
		if d.Arg != nil {
			writeAttr(w, "arg", *d.Arg)
		}
		if d.Valid != nil {
			if *d.Valid {
				writeAttr(w, "valid", "yes")
			} else {
				writeAttr(w, "valid", "no")
			}
		}
		w.WriteString("/>\n")
	}

	if it.TextCopy != nil {
		writeElem(w, inner, "text", "copy", *it.TextCopy)
	}
	if it.TextLargeType != nil {
		writeElem(w, inner, "text", "largetype", *it.TextLargeType)
	}
	if it.QuicklookURL != nil {
		writeElem(w, inner, "quicklookurl", "", *it.QuicklookURL)
	}

	w.WriteString(pad)
	w.WriteString("</item>\n")
	return w.Flush()
}

// writeAttr and writeElem ignore write errors; bufio.Writer keeps the first
// one and Flush reports it.
func writeAttr(w *bufio.Writer, name, value string) {
	w.WriteString(" ")
	w.WriteString(name)
	w.WriteString(`="`)
	w.WriteString(encodeEntities(value))
	w.WriteString(`"`)
}

func writeElem(w *bufio.Writer, pad, name, typ, value string) {
	w.WriteString(pad)
	w.WriteString("<")
	w.WriteString(name)
	if typ != "" {
		writeAttr(w, "type", typ)
	}
	w.WriteString(">")
	w.WriteString(encodeEntities(value))
	w.WriteString("</")
	w.WriteString(name)
	w.WriteString(">\n")
}

// encodeEntities escapes markup characters and replaces characters XML 1.0
// forbids with U+FFFD.
func encodeEntities(s string) string {
	if !strings.ContainsFunc(s, needsEncoding) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	for _, r := range s {
		switch {
		case r == '<':
			b.WriteString("&lt;")
		case r == '>':
			b.WriteString("&gt;")
		case r == '"':
			b.WriteString("&quot;")
		case r == '&':
			b.WriteString("&amp;")
		case invalidXMLChar(r):
			b.WriteRune('\uFFFD')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func needsEncoding(r rune) bool {
	return r == '<' || r == '>' || r == '"' || r == '&' || invalidXMLChar(r)
}

func invalidXMLChar(r rune) bool {
	switch {
	case r <= 0x08, r == 0x0B, r == 0x0C, r >= 0x0E && r <= 0x1F:
		return true
	case r == 0xFFFE, r == 0xFFFF:
		return true
	default:
		return false
	}
}
