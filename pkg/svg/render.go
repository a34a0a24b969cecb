package svg

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// Write serializes the subtree rooted at el as indented SVG markup.
func Write(w io.Writer, el *Element) error {
	var buf bytes.Buffer
	writeElement(&buf, el, 0)
	_, err := w.Write(buf.Bytes())
	return err
}

// String renders the subtree rooted at e.
func (e *Element) String() string {
	var buf bytes.Buffer
	writeElement(&buf, e, 0)
	return buf.String()
}

func writeElement(buf *bytes.Buffer, el *Element, depth int) {
	indent := strings.Repeat("  ", depth)
	buf.WriteString(indent)
	buf.WriteByte('<')
	buf.WriteString(el.Tag)
	for _, a := range el.attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		escape(buf, a.Value)
		buf.WriteByte('"')
	}

	if len(el.children) == 0 && el.text == "" {
		buf.WriteString("/>\n")
		return
	}

	buf.WriteByte('>')
	escape(buf, el.text)
	if len(el.children) > 0 {
		buf.WriteByte('\n')
		for _, c := range el.children {
			writeElement(buf, c, depth+1)
		}
		buf.WriteString(indent)
	}
	buf.WriteString("</")
	buf.WriteString(el.Tag)
	buf.WriteString(">\n")
}

// escape never fails when writing to a bytes.Buffer.
func escape(buf *bytes.Buffer, s string) {
	_ = xml.EscapeText(buf, []byte(s))
}
