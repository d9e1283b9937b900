package http

import (
	"errors"
	"mime"
	"net/url"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// FilenameCharset is the charset the filename parameter bytes are declared in.
const FilenameCharset = "ISO-8859-1"

type DispositionType string

const (
	DispositionInline     DispositionType = "inline"
	DispositionAttachment DispositionType = "attachment"
)

var (
	ErrUnknownDisposition   = errors.New("http: unknown disposition type")
	ErrNoFilename           = errors.New("http: disposition has no filename")
	ErrFilenameCharset      = errors.New("http: filename not representable in " + FilenameCharset)
	ErrMalformedDisposition = errors.New("http: malformed disposition parameters")
)

// Disposition is a Content-Disposition header value carrying a single
// filename parameter. Filename holds raw single byte characters.
type Disposition struct {
	Type     DispositionType
	Filename []byte
}

func BuildDisposition(filename []byte, asAttachment bool) Disposition {
	dispositionType := DispositionInline
	if asAttachment {
		dispositionType = DispositionAttachment
	}

	return Disposition{
		Type:     dispositionType,
		Filename: filename,
	}
}

// String serializes the disposition as `type; filename="name"`. The filename
// bytes go out untouched apart from quoted-string escaping.
func (disposition Disposition) String() string {
	var sb strings.Builder
	sb.Grow(len(disposition.Type) + len(disposition.Filename) + 14)

	sb.WriteString(string(disposition.Type))
	sb.WriteString(`; filename="`)
	for _, c := range disposition.Filename {
		if c == '"' || c == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
	}
	sb.WriteByte('"')

	return sb.String()
}

// FilenameUTF8 decodes the Latin-1 filename for display.
func (disposition Disposition) FilenameUTF8() string {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(disposition.Filename)
	if err != nil {
		return string(disposition.Filename)
	}

	return string(decoded)
}

// ParseDisposition parses a Content-Disposition value produced by String or
// by a client using the RFC 2231 filename* form. filename* wins over a plain
// filename when both are present.
func ParseDisposition(value string) (Disposition, error) {
	var disposition Disposition

	dispositionType, _, err := mime.ParseMediaType(value)
	if err != nil {
		return disposition, err
	}

	switch DispositionType(dispositionType) {
	case DispositionInline, DispositionAttachment:
		disposition.Type = DispositionType(dispositionType)
	default:
		return disposition, ErrUnknownDisposition
	}

	params, err := dispositionParams(value)
	if err != nil {
		return disposition, err
	}

	if extended, found := params["filename*"]; found {
		filename, err := decodeExtendedFilename(extended)
		if err != nil {
			return disposition, err
		}
		disposition.Filename = filename
		return disposition, nil
	}

	filename, found := params["filename"]
	if !found {
		return disposition, ErrNoFilename
	}

	disposition.Filename = []byte(filename)
	return disposition, nil
}

// dispositionParams splits the parameters after the disposition type.
// Names are lowercased, quoted values are unescaped and keep raw bytes.
func dispositionParams(value string) (map[string]string, error) {
	params := make(map[string]string)

	_, rest, _ := strings.Cut(value, ";")
	for {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			return params, nil
		}

		name, after, found := strings.Cut(rest, "=")
		if !found {
			return nil, ErrMalformedDisposition
		}
		name = strings.ToLower(strings.TrimSpace(name))
		after = strings.TrimLeft(after, " \t")

		if !strings.HasPrefix(after, `"`) {
			token, next, _ := strings.Cut(after, ";")
			params[name] = strings.TrimSpace(token)
			rest = next
			continue
		}

		quoted, next, err := unquote(after)
		if err != nil {
			return nil, err
		}
		params[name] = quoted

		next = strings.TrimLeft(next, " \t")
		if next != "" && next[0] != ';' {
			return nil, ErrMalformedDisposition
		}
		rest = strings.TrimPrefix(next, ";")
	}
}

// unquote reads a quoted-string at the start of s and returns its content
// and the remainder after the closing quote.
func unquote(s string) (string, string, error) {
	var sb strings.Builder
	for i := 1; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			return sb.String(), s[i+1:], nil
		case '\\':
			if i+1 < len(s) {
				i++
				sb.WriteByte(s[i])
			}
		default:
			sb.WriteByte(c)
		}
	}

	return "", "", ErrMalformedDisposition
}

// decodeExtendedFilename decodes charset'language'percent-encoded into
// Latin-1 bytes.
func decodeExtendedFilename(value string) ([]byte, error) {
	parts := strings.SplitN(value, "'", 3)
	if len(parts) != 3 {
		return nil, ErrMalformedDisposition
	}

	raw, err := url.PathUnescape(parts[2])
	if err != nil {
		return nil, ErrMalformedDisposition
	}

	switch strings.ToLower(parts[0]) {
	case "iso-8859-1", "latin1":
		return []byte(raw), nil
	case "utf-8", "us-ascii":
		encoded, err := charmap.ISO8859_1.NewEncoder().String(raw)
		if err != nil {
			return nil, ErrFilenameCharset
		}
		return []byte(encoded), nil
	default:
		return nil, ErrFilenameCharset
	}
}
