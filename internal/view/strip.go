package view

import (
	"bytes"
	"errors"
	"io"
	"regexp"

	"golang.org/x/net/html"
)

// StripAttributes remove de todas as tags os atributos cujo nome casa com algum
// pattern. Sem patterns, devolve src sem tocar.
func StripAttributes(src []byte, patterns []*regexp.Regexp) ([]byte, error) {
	if len(patterns) == 0 {
		return src, nil
	}

	z := html.NewTokenizer(bytes.NewReader(src))
	var out bytes.Buffer
	out.Grow(len(src))

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return out.Bytes(), nil
			}
			return nil, z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			// Raw precisa ser copiado antes de Token(), que reaproveita o buffer.
			raw := append([]byte(nil), z.Raw()...)
			tok := z.Token()

			kept := make([]html.Attribute, 0, len(tok.Attr))
			for _, a := range tok.Attr {
				if !matchAny(patterns, a.Key) {
					kept = append(kept, a)
				}
			}
			if len(kept) == len(tok.Attr) {
				out.Write(raw)
				continue
			}
			tok.Attr = kept
			out.WriteString(tok.String())
		default:
			out.Write(z.Raw())
		}
	}
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
