package enginetest

import (
	"bytes"
	"fmt"
	"regexp"
)

// FakePassword unlocks EncryptedDocument on Fake.
const FakePassword = "secret"

type pdfWriter struct {
	buf  bytes.Buffer
	objs int
}

func (w *pdfWriter) obj(body string) {
	w.objs++
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", w.objs, body)
}

func (w *pdfWriter) finish(trailer string) []byte {
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d /Root 1 0 R%s >>\n%%%%EOF\n", w.objs+1, trailer)
	return w.buf.Bytes()
}

func newPDF() *pdfWriter {
	w := &pdfWriter{}
	w.buf.WriteString("%PDF-1.7\n")
	return w
}

// EmptyDocument is a document with a catalog and no pages.
func EmptyDocument() []byte {
	w := newPDF()
	w.obj("<< /Type /Catalog /Pages 2 0 R >>")
	w.obj("<< /Type /Pages /Kids [] /Count 0 >>")
	return w.finish("")
}

// MultiPageDocument is a document with n blank letter-size pages.
func MultiPageDocument(n int) []byte {
	w := newPDF()
	w.obj("<< /Type /Catalog /Pages 2 0 R >>")

	var kids bytes.Buffer
	for i := 0; i < n; i++ {
		fmt.Fprintf(&kids, "%d 0 R ", i+3)
	}
	w.obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids.String(), n))
	for i := 0; i < n; i++ {
		w.obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}
	return w.finish("")
}

// FormDocument is a one-page document with an AcroForm text field.
func FormDocument() []byte {
	w := newPDF()
	w.obj("<< /Type /Catalog /Pages 2 0 R /AcroForm << /Fields [4 0 R] >> >>")
	w.obj("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	w.obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Annots [4 0 R] >>")
	w.obj("<< /Type /Annot /Subtype /Widget /FT /Tx /T (name) /V (Ada) /Rect [72 700 300 720] /P 3 0 R >>")
	return w.finish("")
}

// FieldsDocument is a one-page document with a text field, a list box
// and a check box, in that annotation order.
func FieldsDocument() []byte {
	w := newPDF()
	w.obj("<< /Type /Catalog /Pages 2 0 R /AcroForm << /Fields [4 0 R 5 0 R 6 0 R] >> >>")
	w.obj("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	w.obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Annots [4 0 R 5 0 R 6 0 R] >>")
	w.obj("<< /Type /Annot /Subtype /Widget /FT /Tx /T (name) /V (Ada) /Rect [72 700 300 720] /P 3 0 R >>")
	w.obj("<< /Type /Annot /Subtype /Widget /FT /Ch /T (lang) /Opt [(Go) (C) (Zig)] /Rect [72 660 300 680] /P 3 0 R >>")
	w.obj("<< /Type /Annot /Subtype /Widget /FT /Btn /T (agree) /Rect [72 620 84 632] /P 3 0 R >>")
	return w.finish("")
}

// EncryptedDocument is a one-page document that requires FakePassword.
func EncryptedDocument() []byte {
	w := newPDF()
	w.obj("<< /Type /Catalog /Pages 2 0 R >>")
	w.obj("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	w.obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	w.obj("<< /Filter /Standard /V 1 /R 2 >>")
	return w.finish(" /Encrypt 4 0 R")
}

// CountPages counts page objects in a fixture.
func CountPages(data []byte) int {
	return bytes.Count(data, []byte("/Type /Page "))
}

var widgetType = regexp.MustCompile(`/Subtype /Widget /FT /(\w+)`)

// WidgetTypes lists the field type of every widget in a fixture, in
// document order.
func WidgetTypes(data []byte) []string {
	var types []string
	for _, m := range widgetType.FindAllSubmatch(data, -1) {
		types = append(types, string(m[1]))
	}
	return types
}
