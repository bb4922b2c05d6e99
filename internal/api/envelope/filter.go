package envelope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// SensitiveKeys is the deny-list stripped from every outbound payload,
// at every nesting level.
var SensitiveKeys = []string{
	"updated_at",
	"is_deleted",
	"created_by",
	"updated_by",
	"deleted_by",
	"password",
	"approved_at",
	"secret",
	"mobile_token",
	"web_token",
}

// DenySet builds the lookup set FilterJSON consumes.
func DenySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// FilterJSON rewrites a JSON document token by token, dropping deny-listed
// object keys at any depth and converting RFC3339 date strings to Unix
// seconds. Working on the token stream (rather than decoded maps) keeps the
// original ordering of surviving keys intact.
func FilterJSON(raw []byte, deny map[string]struct{}) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var buf bytes.Buffer
	buf.Grow(len(raw))
	if err := filterValue(dec, &buf, deny); err != nil {
		return nil, fmt.Errorf("filter payload: %w", err)
	}
	return buf.Bytes(), nil
}

func filterValue(dec *json.Decoder, buf *bytes.Buffer, deny map[string]struct{}) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	return writeToken(dec, buf, deny, tok)
}

func writeToken(dec *json.Decoder, buf *bytes.Buffer, deny map[string]struct{}, tok json.Token) error {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return filterObject(dec, buf, deny)
		case '[':
			return filterArray(dec, buf, deny)
		}
		return fmt.Errorf("unexpected delimiter %q", t)
	case string:
		if ts, ok := parseDate(t); ok {
			buf.WriteString(strconv.FormatInt(ts, 10))
			return nil
		}
		b, err := json.Marshal(t)
		if err != nil {
			return err
		}
		buf.Write(b)
	case json.Number:
		buf.WriteString(t.String())
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case nil:
		buf.WriteString("null")
	}
	return nil
}

func filterObject(dec *json.Decoder, buf *bytes.Buffer, deny map[string]struct{}) error {
	buf.WriteByte('{')
	first := true
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected object key %v", keyTok)
		}

		if _, drop := deny[key]; drop {
			if err := skipValue(dec); err != nil {
				return err
			}
			continue
		}

		if !first {
			buf.WriteByte(',')
		}
		first = false

		kb, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(kb)
		buf.WriteByte(':')

		if err := filterValue(dec, buf, deny); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return err
	}
	buf.WriteByte('}')
	return nil
}

func filterArray(dec *json.Decoder, buf *bytes.Buffer, deny map[string]struct{}) error {
	buf.WriteByte('[')
	first := true
	for dec.More() {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := filterValue(dec, buf, deny); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return err
	}
	buf.WriteByte(']')
	return nil
}

// skipValue consumes one complete value from the decoder without emitting it.
func skipValue(dec *json.Decoder) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || (delim != '{' && delim != '[') {
		return nil
	}
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

// parseDate recognises RFC3339 timestamps (with or without fractional
// seconds) and converts them to Unix seconds, truncating sub-second
// precision.
func parseDate(s string) (int64, bool) {
	if len(s) < len("2006-01-02T15:04:05Z") {
		return 0, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, false
	}
	return t.Unix(), true
}
