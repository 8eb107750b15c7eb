package report

import (
	"bytes"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"time"

	"github.com/google/uuid"

	"opsdiary/internal/errors"
)

// BuildEML packages a rendered email as an RFC 5322 message with a
// multipart/alternative body, ready to be opened in a mail client as a
// draft. From and to are plain addresses; to may be empty for a draft
// without recipients.
func BuildEML(email Email, from, to string, now time.Time) ([]byte, error) {
	boundary := "opsdiary-" + uuid.NewString()

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	if to != "" {
		fmt.Fprintf(&b, "To: %s\r\n", to)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@opsdiary>\r\n", uuid.NewString())
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("X-Unsent: 1\r\n")
	b.WriteString("\r\n")

	if err := writePart(&b, boundary, "text/plain", email.Text); err != nil {
		return nil, err
	}
	if err := writePart(&b, boundary, "text/html", email.HTML); err != nil {
		return nil, err
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes(), nil
}

func writePart(b *bytes.Buffer, boundary, contentType, body string) error {
	fmt.Fprintf(b, "--%s\r\n", boundary)
	fmt.Fprintf(b, "Content-Type: %s; charset=utf-8\r\n", contentType)
	b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n")
	b.WriteString("\r\n")
	w := quotedprintable.NewWriter(b)
	if _, err := w.Write([]byte(body)); err != nil {
		return errors.NewReportError("encode email part", err)
	}
	if err := w.Close(); err != nil {
		return errors.NewReportError("encode email part", err)
	}
	b.WriteString("\r\n")
	return nil
}
