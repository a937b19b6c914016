// Package frontmatter reads and writes the `---` delimited YAML metadata
// block at the top of a post. Rewrites preserve the file's newline flavor
// and the body byte-for-byte; only the metadata block is re-serialized.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates a post started with a frontmatter
// delimiter but never closed it.
var ErrMissingClosingDelimiter = errors.New("frontmatter opening delimiter found but closing delimiter is missing")

// Style captures the newline shape of a source file so a rewrite can
// reproduce it. It does not attempt to preserve YAML formatting; the body
// (trailing newline included) is carried through verbatim by the caller.
type Style struct {
	Newline string
}

// Split separates the YAML metadata block from the Markdown body.
//
// If the post does not start with `---`, had is false and body is the full
// input. An opened but unclosed block returns ErrMissingClosingDelimiter.
func Split(content []byte) (raw []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)

	nl := style.Newline
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	rest := content[len(open):]
	if bytes.HasPrefix(rest, open) {
		// Empty metadata block.
		return []byte{}, rest[len(open):], true, style, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(rest, closeSeq)
	if idx < 0 {
		return nil, nil, false, style, ErrMissingClosingDelimiter
	}

	rawEnd := idx + len(nl)
	bodyStart := idx + len(closeSeq)
	return rest[:rawEnd], rest[bodyStart:], true, style, nil
}

// Join reassembles a post from raw metadata bytes and body. If had is
// false the body is returned as-is.
func Join(raw []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	delim := []byte("---" + nl)
	out := make([]byte, 0, 2*len(delim)+len(raw)+len(body))
	out = append(out, delim...)
	out = append(out, raw...)
	out = append(out, delim...)
	out = append(out, body...)
	return out
}

// Parse decodes raw metadata bytes (without delimiters) into a field map.
func Parse(raw []byte) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			break
		}
	}

	return Style{Newline: newline}
}
