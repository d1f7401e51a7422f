package coregex

import (
	"bytes"
	"io"
	"regexp/syntax"
)

// Match reports whether the byte slice b contains any match of the regular
// expression pattern. More complicated queries need to use Compile and the
// full Regexp interface.
func Match(pattern string, b []byte) (bool, error) {
	re, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.Match(b), nil
}

// MatchString reports whether the string s contains any match of the
// regular expression pattern. More complicated queries need to use Compile
// and the full Regexp interface.
func MatchString(pattern string, s string) (bool, error) {
	re, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchString(s), nil
}

// MatchReader reports whether the text returned by the RuneReader contains
// any match of the regular expression pattern. More complicated queries
// need to use Compile and the full Regexp interface.
func MatchReader(pattern string, r io.RuneReader) (bool, error) {
	re, err := Compile(pattern)
	if err != nil {
		return false, err
	}
	return re.MatchReader(r), nil
}

// CompilePOSIX is like Compile but restricts the regular expression to
// POSIX ERE (egrep) syntax and changes the match semantics to
// leftmost-longest.
//
// That is, when matching against text, the regexp returns a match that
// begins as early as possible in the input (leftmost), and among those
// it chooses the one that is largest (longest).
func CompilePOSIX(expr string) (*Regex, error) {
	parsed, err := syntax.Parse(expr, syntax.POSIX)
	if err != nil {
		return nil, err
	}
	return compileParsed(expr, parsed, posixConfig())
}

// MustCompilePOSIX is like CompilePOSIX but panics if the expression cannot
// be parsed. It simplifies safe initialization of global variables holding
// compiled regular expressions.
func MustCompilePOSIX(str string) *Regex {
	re, err := CompilePOSIX(str)
	if err != nil {
		panic("regexp: CompilePOSIX(`" + str + "`): " + err.Error())
	}
	return re
}

func posixConfig() Config {
	c := DefaultConfig()
	c.Longest = true
	return c
}

// LiteralPrefix returns a literal string that must begin any match of the
// regular expression re. It returns the boolean true if the literal string
// comprises the entire regular expression.
func (r *Regex) LiteralPrefix() (prefix string, complete bool) {
	var subs []*syntax.Regexp
	if r.re.Op == syntax.OpConcat {
		subs = r.re.Sub
	} else {
		subs = []*syntax.Regexp{r.re}
	}

	var runes []rune
	i := 0
	for ; i < len(subs); i++ {
		sub := subs[i]
		if sub.Op != syntax.OpLiteral || sub.Flags&syntax.FoldCase != 0 {
			break
		}
		runes = append(runes, sub.Rune...)
	}
	return string(runes), i == len(subs)
}

// Copy returns a new Regexp object copied from re. Calling Longest on one
// copy does not affect another.
//
// Deprecated: In earlier releases, the only way to set the leftmost-longest
// matching mode was to call Copy. Now, that mode is applied directly when
// building a Regex with CompilePOSIX, and Copy is no longer needed. Copy is
// kept for API compatibility with callers migrating from stdlib regexp.
func (r *Regex) Copy() *Regex {
	cp := *r
	return &cp
}

// MarshalText implements encoding.TextMarshaler. The output matches that of
// calling String.
func (r *Regex) MarshalText() ([]byte, error) {
	return []byte(r.pattern), nil
}

// UnmarshalText implements encoding.TextUnmarshaler by calling Compile on
// the encoded value.
func (r *Regex) UnmarshalText(text []byte) error {
	newRe, err := Compile(string(text))
	if err != nil {
		return err
	}
	*r = *newRe
	return nil
}

// readAllRunes drains reader into a UTF-8-encoded byte buffer so that the
// byte-oriented Simulator can run over it. Unlike stdlib regexp, which
// streams a RuneReader incrementally through its machine, this buffers the
// whole input up front; callers needing true streaming over unbounded
// readers should read into a []byte themselves and use the byte-oriented
// methods instead.
func readAllRunes(reader io.RuneReader) []byte {
	var buf bytes.Buffer
	for {
		ru, _, err := reader.ReadRune()
		if err != nil {
			break
		}
		buf.WriteRune(ru)
	}
	return buf.Bytes()
}

// MatchReader reports whether the text returned by the RuneReader contains
// any match of the regular expression re.
func (r *Regex) MatchReader(reader io.RuneReader) bool {
	return r.Match(readAllRunes(reader))
}

// FindReaderIndex returns a two-element slice of integers defining the
// location of the leftmost match of the regular expression in text read
// from the RuneReader. Returns nil if no match is found.
func (r *Regex) FindReaderIndex(reader io.RuneReader) []int {
	return r.FindIndex(readAllRunes(reader))
}

// FindReaderSubmatchIndex returns a slice holding the index pairs
// identifying the leftmost match of the regular expression in text read
// from the RuneReader, and the matches of all its subexpressions.
func (r *Regex) FindReaderSubmatchIndex(reader io.RuneReader) []int {
	return r.FindSubmatchIndex(readAllRunes(reader))
}

// Expand appends template to dst and returns the result; during the
// append, Expand replaces variables in the template with corresponding
// matches drawn from src. The match slice should have been returned by
// FindSubmatchIndex.
func (r *Regex) Expand(dst []byte, template, src []byte, match []int) []byte {
	return r.expand(dst, template, src, match)
}

// ExpandString is like Expand but the template and source are strings. It
// appends to and returns a byte slice in order to give the calling code
// control over allocation.
func (r *Regex) ExpandString(dst []byte, template, src string, match []int) []byte {
	return r.expand(dst, []byte(template), []byte(src), match)
}

// FindAllIndexCompact is like FindAllIndex but appends [2]int pairs into
// buf (reusing its backing array when the caller supplies one with spare
// capacity), avoiding the [][]int allocation-per-match FindAllIndex incurs.
func (r *Regex) FindAllIndexCompact(b []byte, n int, buf [][2]int) [][2]int {
	buf = buf[:0]
	if n == 0 {
		return buf
	}

	pos := 0
	prevEmpty := false
	for pos <= len(b) {
		caps := r.searchAt(b, pos, 2)
		if caps == nil {
			break
		}
		start, end := caps[0], caps[1]

		if start == end && start == pos && prevEmpty {
			pos = nextPos(b, pos)
			prevEmpty = false
			continue
		}

		buf = append(buf, [2]int{start, end})
		if n > 0 && len(buf) >= n {
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
	return buf
}
