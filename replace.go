package coregex

import (
	"bytes"
	"unicode/utf8"
)

// FindAllIndex is the 'All' version of FindIndex; it returns a slice of all
// successive matches of the expression, as defined by the 'All' description
// in the package comment. A return value of nil indicates no match.
func (r *Regex) FindAllIndex(b []byte, n int) [][]int {
	if n == 0 {
		return nil
	}

	var result [][]int
	pos := 0
	prevEmpty := false
	for pos <= len(b) {
		caps := r.searchAt(b, pos, 2)
		if caps == nil {
			break
		}
		start, end := caps[0], caps[1]

		if start == end && start == pos && prevEmpty {
			// Avoid reporting the same empty match twice in a row; advance
			// one rune and retry at the new position (mirrors stdlib's
			// consecutive-empty-match suppression).
			pos = nextPos(b, pos)
			prevEmpty = false
			continue
		}

		result = append(result, []int{start, end})
		if n > 0 && len(result) >= n {
			break
		}

		if end > pos {
			pos = end
			prevEmpty = false
		} else {
			pos = nextPos(b, pos)
			prevEmpty = true
		}
	}
	return result
}

// FindAllStringIndex is the 'All' version of FindStringIndex; it returns a
// slice of all successive matches of the expression, as defined by the
// 'All' description in the package comment. A return value of nil
// indicates no match.
func (r *Regex) FindAllStringIndex(s string, n int) [][]int {
	return r.FindAllIndex([]byte(s), n)
}

// findAllSubmatchIndex is the shared driver behind every FindAll*Submatch*
// method: it walks b exactly like FindAllIndex but carries the full
// NumCap-sized capture vector for each match instead of just the overall
// span.
func (r *Regex) findAllSubmatchIndex(b []byte, n int) [][]int {
	if n == 0 {
		return nil
	}

	var result [][]int
	pos := 0
	prevEmpty := false
	for pos <= len(b) {
		caps := r.searchAt(b, pos, r.prog.NumCap)
		if caps == nil {
			break
		}
		start, end := caps[0], caps[1]

		if start == end && start == pos && prevEmpty {
			pos = nextPos(b, pos)
			prevEmpty = false
			continue
		}

		result = append(result, caps)
		if n > 0 && len(result) >= n {
			break
		}

		if end > pos {
			pos = end
			prevEmpty = false
		} else {
			pos = nextPos(b, pos)
			prevEmpty = true
		}
	}
	return result
}

// FindAllSubmatchIndex is the 'All' version of FindSubmatchIndex; it
// returns a slice of all successive matches of the expression, as defined
// by the 'All' description in the package comment.
func (r *Regex) FindAllSubmatchIndex(b []byte, n int) [][]int {
	return r.findAllSubmatchIndex(b, n)
}

// FindAllStringSubmatchIndex is the 'All' version of
// FindStringSubmatchIndex; it returns a slice of all successive matches of
// the expression, as defined by the 'All' description in the package
// comment.
func (r *Regex) FindAllStringSubmatchIndex(s string, n int) [][]int {
	return r.findAllSubmatchIndex([]byte(s), n)
}

// FindAllSubmatch is the 'All' version of FindSubmatch; it returns a slice
// of all successive matches of the expression, as defined by the 'All'
// description in the package comment.
func (r *Regex) FindAllSubmatch(b []byte, n int) [][][]byte {
	idxs := r.findAllSubmatchIndex(b, n)
	if idxs == nil {
		return nil
	}
	result := make([][][]byte, len(idxs))
	for i, idx := range idxs {
		groups := make([][]byte, len(idx)/2)
		for j := range groups {
			if idx[2*j] < 0 {
				continue
			}
			groups[j] = b[idx[2*j]:idx[2*j+1]]
		}
		result[i] = groups
	}
	return result
}

// FindAllStringSubmatch is the 'All' version of FindStringSubmatch; it
// returns a slice of all successive matches of the expression, as defined
// by the 'All' description in the package comment.
func (r *Regex) FindAllStringSubmatch(s string, n int) [][]string {
	groups := r.FindAllSubmatch([]byte(s), n)
	if groups == nil {
		return nil
	}
	result := make([][]string, len(groups))
	for i, g := range groups {
		strs := make([]string, len(g))
		for j, b := range g {
			if b != nil {
				strs[j] = string(b)
			}
		}
		result[i] = strs
	}
	return result
}

func nextPos(b []byte, pos int) int {
	if pos >= len(b) {
		return pos + 1
	}
	_, w := utf8.DecodeRune(b[pos:])
	if w == 0 {
		w = 1
	}
	return pos + w
}

// ReplaceAllLiteral returns a copy of src, replacing matches of the Regex
// with the replacement text repl. The replacement repl is substituted
// directly, without using Expand.
func (r *Regex) ReplaceAllLiteral(src, repl []byte) []byte {
	return r.replaceAll(src, repl, false, nil)
}

// ReplaceAllLiteralString returns a copy of src, replacing matches of the
// Regex with the replacement string repl. The replacement repl is
// substituted directly, without using Expand.
func (r *Regex) ReplaceAllLiteralString(src, repl string) string {
	return string(r.ReplaceAllLiteral([]byte(src), []byte(repl)))
}

// ReplaceAll returns a copy of src, replacing matches of the Regex with the
// replacement text repl. Inside repl, $ signs are interpreted as in Expand,
// so for instance $1 represents the text of the first submatch.
func (r *Regex) ReplaceAll(src, repl []byte) []byte {
	return r.replaceAll(src, repl, true, nil)
}

// ReplaceAllString returns a copy of src, replacing matches of the Regex
// with the replacement string repl. Inside repl, $ signs are interpreted as
// in Expand.
func (r *Regex) ReplaceAllString(src, repl string) string {
	return string(r.ReplaceAll([]byte(src), []byte(repl)))
}

// ReplaceAllFunc returns a copy of src in which all matches of the Regex
// have been replaced by the return value of function repl applied to the
// matched byte slice.
func (r *Regex) ReplaceAllFunc(src []byte, repl func([]byte) []byte) []byte {
	return r.replaceAll(src, nil, false, repl)
}

// ReplaceAllStringFunc returns a copy of src in which all matches of the
// Regex have been replaced by the return value of function repl applied to
// the matched string.
func (r *Regex) ReplaceAllStringFunc(src string, repl func(string) string) string {
	out := r.ReplaceAllFunc([]byte(src), func(b []byte) []byte {
		return []byte(repl(string(b)))
	})
	return string(out)
}

// replaceAll is the shared implementation backing every ReplaceAll* method:
// useExpand selects $-expansion of repl, fn (if non-nil) overrides repl
// entirely with a per-match callback.
func (r *Regex) replaceAll(src, repl []byte, useExpand bool, fn func([]byte) []byte) []byte {
	locs := r.FindAllIndex(src, -1)
	if locs == nil {
		return src
	}

	var buf bytes.Buffer
	last := 0
	for _, loc := range locs {
		buf.Write(src[last:loc[0]])
		switch {
		case fn != nil:
			buf.Write(fn(src[loc[0]:loc[1]]))
		case useExpand:
			match := r.submatchIndicesAt(src, loc[0])
			buf.Write(r.expand(nil, repl, src, match))
		default:
			buf.Write(repl)
		}
		last = loc[1]
	}
	buf.Write(src[last:])
	return buf.Bytes()
}

// submatchIndicesAt recomputes the full submatch index vector for the match
// known to start at exactly pos, so ReplaceAll's $-expansion has access to
// capture groups without FindAllIndex having tracked them itself.
func (r *Regex) submatchIndicesAt(src []byte, pos int) []int {
	caps := r.searchAt(src, pos, r.prog.NumCap)
	return caps
}

// expand appends template to dst, replacing variables of the form $name or
// ${name} with the corresponding submatch, and writes the result to dst.
// $$ is a literal dollar sign. See stdlib regexp.Expand for the full syntax.
func (r *Regex) expand(dst []byte, template, src []byte, match []int) []byte {
	for len(template) > 0 {
		i := bytes.IndexByte(template, '$')
		if i < 0 {
			break
		}
		dst = append(dst, template[:i]...)
		template = template[i:]

		if len(template) > 1 && template[1] == '$' {
			dst = append(dst, '$')
			template = template[2:]
			continue
		}

		name, num, rest, ok := parseDollar(template)
		if !ok {
			dst = append(dst, '$')
			template = template[1:]
			continue
		}
		template = rest

		var idx int
		if name != "" {
			idx = r.SubexpIndex(name)
		} else {
			idx = num
		}
		if idx >= 0 && 2*idx+1 < len(match) && match[2*idx] >= 0 {
			dst = append(dst, src[match[2*idx]:match[2*idx+1]]...)
		}
	}
	return append(dst, template...)
}

// parseDollar parses a $name, $N or ${name} reference at the start of s
// (which must begin with '$'), returning the parsed name/number and the
// remainder of s after the reference. ok is false if s does not start with
// a valid reference (a lone trailing '$' or an unterminated '${').
func parseDollar(s []byte) (name string, num int, rest []byte, ok bool) {
	if len(s) < 2 {
		return "", 0, s, false
	}
	if s[1] == '{' {
		end := bytes.IndexByte(s, '}')
		if end < 0 {
			return "", 0, s, false
		}
		return string(s[2:end]), 0, s[end+1:], true
	}

	j := 1
	for j < len(s) && isDigit(s[j]) {
		j++
	}
	if j > 1 {
		n := 0
		for _, c := range s[1:j] {
			n = n*10 + int(c-'0')
		}
		return "", n, s[j:], true
	}

	j = 1
	for j < len(s) && isIdentByte(s[j]) {
		j++
	}
	if j == 1 {
		return "", 0, s, false
	}
	return string(s[1:j]), 0, s[j:], true
}

func isDigit(c byte) bool     { return c >= '0' && c <= '9' }
func isIdentByte(c byte) bool { return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

// Split slices s into substrings separated by the expression and returns a
// slice of the substrings between those expression matches.
//
// The slice returned by this method consists of all the substrings of s
// not contained in the slice returned by FindAllString. When called on an
// expression that contains no metacharacters, it is equivalent to
// strings.SplitN.
//
// Example:
//
//	s := regexp.MustCompile("a*").Split("abaabaccadaaae", 5)
//	// s: ["", "b", "b", "c", "cadaaae"]
//
// If n >= 0, at most n substrings are returned; the last substring is the
// unsplit remainder. If n < 0, all substrings are returned.
func (r *Regex) Split(s string, n int) []string {
	if n == 0 {
		return nil
	}

	locs := r.FindAllStringIndex(s, -1)
	if locs == nil {
		return []string{s}
	}

	if n > 0 && n-1 < len(locs) {
		locs = locs[:n-1]
	}

	result := make([]string, 0, len(locs)+1)
	last := 0
	for _, loc := range locs {
		result = append(result, s[last:loc[0]])
		last = loc[1]
	}
	result = append(result, s[last:])
	return result
}
