package value

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/corazon/jqsafe/fault"
	"github.com/corazon/jqsafe/span"
)

// Format renders v under one of jq's `@name` string formats (spec's
// distillation omits these; the jq manual documents the set implemented
// here, plus @base64d for round-tripping). A bare `@name` call with an
// unrecognized name is rejected at validation time (see validate); an
// unrecognized name that reaches Format, as from `@name "..."`, is a
// runtime fault.
func Format(name string, v Value, sp span.Span) (string, *fault.Fault) {
	switch name {
	case "text":
		return Tostring(v), nil
	case "json":
		return ToJSON(v), nil
	case "html":
		return formatHTML(Tostring(v)), nil
	case "uri":
		return formatURI(Tostring(v)), nil
	case "sh":
		return formatSh(v, sp)
	case "base64":
		return base64.StdEncoding.EncodeToString([]byte(Tostring(v))), nil
	case "base64d":
		s, ok := v.(String)
		if !ok {
			return "", fault.Runtime(fault.RuntimeType, sp, "@base64d requires a string input, got %s", Type(v))
		}
		dec, err := base64.StdEncoding.DecodeString(string(s))
		if err != nil {
			return "", fault.Runtime(fault.RuntimeType, sp, "@base64d: %s", err)
		}
		return string(dec), nil
	case "csv":
		return formatDelimited(v, ',', sp)
	case "tsv":
		return formatDelimited(v, '\t', sp)
	default:
		return "", fault.Runtime(fault.RuntimeType, sp, "unknown format @%s", name)
	}
}

func formatHTML(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			sb.WriteString("&amp;")
		case '<':
			sb.WriteString("&lt;")
		case '>':
			sb.WriteString("&gt;")
		case '\'':
			sb.WriteString("&#39;")
		case '"':
			sb.WriteString("&quot;")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

const uriUnreserved = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_.~"

func formatURI(s string) string {
	var sb strings.Builder
	for _, b := range []byte(s) {
		if strings.IndexByte(uriUnreserved, b) >= 0 {
			sb.WriteByte(b)
			continue
		}
		sb.WriteByte('%')
		sb.WriteString(strings.ToUpper(strconv.FormatInt(int64(b), 16)))
	}
	return sb.String()
}

// formatSh quotes v the way a POSIX shell expects: a bare scalar becomes
// one single-quoted word, an array becomes its elements single-quoted and
// space-separated. Objects have no shell representation.
func formatSh(v Value, sp span.Span) (string, *fault.Fault) {
	switch vv := v.(type) {
	case Array:
		words := make([]string, len(vv))
		for i, e := range vv {
			w, err := shWord(e, sp)
			if err != nil {
				return "", err
			}
			words[i] = w
		}
		return strings.Join(words, " "), nil
	default:
		return shWord(v, sp)
	}
}

func shWord(v Value, sp span.Span) (string, *fault.Fault) {
	if _, ok := v.(Object); ok {
		return "", fault.Runtime(fault.RuntimeType, sp, "@sh cannot format an object")
	}
	if _, ok := v.(Array); ok {
		return "", fault.Runtime(fault.RuntimeType, sp, "@sh cannot format a nested array")
	}
	return "'" + strings.ReplaceAll(Tostring(v), "'", `'\''`) + "'", nil
}

// formatDelimited renders v, which must be an array of scalars, as one
// delimited record. Used for @csv (comma) and @tsv (tab).
func formatDelimited(v Value, sep rune, sp span.Span) (string, *fault.Fault) {
	arr, ok := v.(Array)
	if !ok {
		return "", fault.Runtime(fault.RuntimeType, sp, "@csv/@tsv require an array input, got %s", Type(v))
	}
	fields := make([]string, len(arr))
	for i, e := range arr {
		switch ev := e.(type) {
		case Null:
			fields[i] = ""
		case Bool, Number:
			fields[i] = Tostring(ev)
		case String:
			if sep == ',' {
				fields[i] = `"` + strings.ReplaceAll(string(ev), `"`, `""`) + `"`
			} else {
				fields[i] = strings.NewReplacer("\\", `\\`, "\t", `\t`, "\n", `\n`).Replace(string(ev))
			}
		default:
			return "", fault.Runtime(fault.RuntimeType, sp, "@csv/@tsv field must be a scalar, got %s", Type(e))
		}
	}
	return strings.Join(fields, string(sep)), nil
}
