// Package coregex provides a high-performance regex engine for Go.
//
// coregex compiles a pattern into a bytecode program (package nfa) and
// executes it with a Pike-VM style simulator over sparse-set thread
// queues: matching is linear in the length of the input, with no
// backtracking blow-up possible regardless of pattern shape.
//
// The public API is compatible with stdlib regexp where possible, making it
// easy to migrate existing code.
//
// Basic usage:
//
//	// Compile a pattern
//	re, err := coregex.Compile(`\d+`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Find first match
//	match := re.Find([]byte("hello 123 world"))
//	fmt.Println(string(match)) // "123"
//
//	// Check if matches
//	if re.Match([]byte("hello 123")) {
//	    fmt.Println("matched!")
//	}
//
// Advanced usage:
//
//	// Custom configuration
//	config := coregex.DefaultConfig()
//	config.Longest = true
//	re, err := coregex.CompileWithConfig("(a|b|c)*", config)
//
// Performance characteristics:
//   - Patterns with literal prefixes: fast-skip via prefilter (memchr/memmem/Aho-Corasick)
//   - Worst case: guaranteed O(m*n) (ReDoS safe)
package coregex

import (
	"fmt"
	"regexp/syntax"
	"unicode/utf8"

	"github.com/coregx/re2thread/literal"
	"github.com/coregx/re2thread/nfa"
	"github.com/coregx/re2thread/prefilter"
	"github.com/coregx/re2thread/simd"
)

// Config controls compilation and matching behavior.
type Config struct {
	// MaxProgramSize bounds the number of instructions a compiled program
	// may contain; compilation fails with ErrTooComplex if exceeded. Zero
	// means unbounded.
	MaxProgramSize int

	// Longest selects leftmost-longest matching semantics (POSIX-style)
	// instead of the default leftmost-first (Perl-style) semantics.
	Longest bool

	// EnablePrefilter controls whether literal-prefix extraction and the
	// prefilter package are used to fast-skip non-matching input. Defaults
	// to true; disable only for debugging or benchmarking the bare NFA.
	EnablePrefilter bool
}

// DefaultConfig returns the default configuration for compilation.
//
// Users can customize this and pass to CompileWithConfig.
//
// Example:
//
//	config := coregex.DefaultConfig()
//	config.Longest = true
//	re, _ := coregex.CompileWithConfig("pattern", config)
func DefaultConfig() Config {
	return Config{
		MaxProgramSize:  100000,
		Longest:         false,
		EnablePrefilter: true,
	}
}

// Regex represents a compiled regular expression.
//
// A Regex is safe to use concurrently from multiple goroutines: each
// Search call allocates its own nfa.Machine.
//
// Example:
//
//	re := coregex.MustCompile(`hello`)
//	if re.Match([]byte("hello world")) {
//	    println("matched!")
//	}
type Regex struct {
	prog        *nfa.Prog
	pattern     string
	re          *syntax.Regexp
	config      Config
	pf          prefilter.Prefilter
	tracker     *prefilter.Tracker
	subexpNames []string
}

// Compile compiles a regular expression pattern.
//
// Syntax is Perl-compatible (same as Go's stdlib regexp).
// Returns an error if the pattern is invalid.
//
// Example:
//
//	re, err := coregex.Compile(`\d{3}-\d{4}`)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// MustCompile compiles a regular expression pattern and panics if it fails.
//
// This is useful for patterns known to be valid at compile time.
//
// Example:
//
//	var emailRegex = coregex.MustCompile(`[a-z]+@[a-z]+\.[a-z]+`)
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("regexp: Compile(`" + pattern + "`): " + err.Error())
	}
	return re
}

// CompileWithConfig compiles a pattern with custom configuration.
//
// This allows fine-tuning of performance characteristics.
//
// Example:
//
//	config := coregex.DefaultConfig()
//	config.Longest = true
//	re, err := coregex.CompileWithConfig("(a|b|c)*", config)
func CompileWithConfig(pattern string, config Config) (*Regex, error) {
	// syntax.Parse's *syntax.Error already carries the exact message stdlib
	// regexp.Compile returns; propagate it unwrapped so error text matches.
	parsed, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, err
	}
	return compileParsed(pattern, parsed, config)
}

// compileParsed finishes compilation from an already-parsed AST, shared by
// CompileWithConfig (Perl syntax) and CompilePOSIX (POSIX syntax).
func compileParsed(pattern string, parsed *syntax.Regexp, config Config) (*Regex, error) {
	if config.MaxProgramSize < 0 {
		return nil, fmt.Errorf("regexp: %w", nfa.ErrInvalidConfig)
	}

	prog, err := nfa.Compile(parsed)
	if err != nil {
		return nil, &nfa.CompileError{Pattern: pattern, Err: err}
	}
	if config.MaxProgramSize > 0 && len(prog.Inst) > config.MaxProgramSize {
		return nil, &nfa.CompileError{Pattern: pattern, Err: nfa.ErrTooComplex}
	}

	r := &Regex{
		prog:        prog,
		pattern:     pattern,
		re:          parsed,
		config:      config,
		subexpNames: parsed.CapNames(),
	}

	if config.EnablePrefilter {
		r.buildPrefilter()
	}

	return r, nil
}

// buildPrefilter extracts required literal prefixes from the parsed AST and
// builds the fastest available prefilter, wiring it into the program's
// required-prefix field consumed by nfa.Machine.Search's fast-skip path.
// Search consults in.CanCheckPrefix/in.Index to decide whether to skip
// ahead during matching. When literal extraction finds nothing, the
// builder's WithFallbackAST still lets it recognize a required leading
// character class the literal extractor couldn't express as a byte
// sequence (a digit or word class behind a bounded repeat, for instance).
// The prefilter is wrapped in a Tracker so a pattern whose literal turns out
// to be a poor discriminator (lots of candidates, few confirmed matches)
// gets its fast-skip path retired rather than paying for a prefilter that
// is actively hurting search time.
func (r *Regex) buildPrefilter() {
	extractor := literal.New(literal.DefaultConfig())
	prefixes := extractor.ExtractPrefixes(r.re)
	builder := prefilter.NewBuilder(prefixes, nil).WithFallbackAST(r.re)
	pf := builder.Build()
	if pf == nil {
		return
	}
	r.tracker = prefilter.NewTracker(pf)
	r.pf = r.tracker
	if lcp := prefixes.LongestCommonPrefix(); len(lcp) > 0 {
		r.prog.Prefix = lcp
	} else {
		r.prog.Prefix = []byte{0} // non-empty sentinel: enables the fast-skip check
	}
	r.prog.PrefixRune1 = -1
}

// searchAt runs the Simulator over b starting at pos, returning the raw
// capture-index vector (len == ncap) or nil if no match was found.
func (r *Regex) searchAt(b []byte, pos int, ncap int) []int {
	in := newByteInput(b, r.pf)
	m := nfa.NewMachine(r.prog, r.config.Longest)
	matched, caps := m.Search(in, pos, nfa.Unanchored, ncap)
	if matched && r.tracker != nil {
		r.tracker.ConfirmMatch()
	}
	return caps
}

// Longest makes future searches prefer the leftmost-longest match, the
// same sense as POSIX regex -- in particular, preferring longer matches
// to shorter ones and preferring earlier matches to later ones. This
// method modifies the Regex and may not be called concurrently with
// searches using r.
func (r *Regex) Longest() {
	r.config.Longest = true
}

// Count returns the number of non-overlapping matches of the pattern in b.
// If n > 0, it stops counting once n matches are found. If n <= 0, it
// counts all matches.
func (r *Regex) Count(b []byte, n int) int {
	return len(r.FindAllIndex(b, n))
}

// CountString returns the number of non-overlapping matches of the pattern
// in s. If n > 0, it stops counting once n matches are found. If n <= 0, it
// counts all matches.
func (r *Regex) CountString(s string, n int) int {
	return r.Count([]byte(s), n)
}

// Match reports whether the byte slice b contains any match of the pattern.
//
// Example:
//
//	re := coregex.MustCompile(`\d+`)
//	if re.Match([]byte("hello 123")) {
//	    println("contains digits")
//	}
func (r *Regex) Match(b []byte) bool {
	in := newByteInput(b, r.pf)
	m := nfa.NewMachine(r.prog, r.config.Longest)
	matched, _ := m.Search(in, 0, nfa.Unanchored, 0)
	if matched && r.tracker != nil {
		r.tracker.ConfirmMatch()
	}
	return matched
}

// MatchString reports whether the string s contains any match of the pattern.
//
// Example:
//
//	re := coregex.MustCompile(`hello`)
//	if re.MatchString("hello world") {
//	    println("matched!")
//	}
func (r *Regex) MatchString(s string) bool {
	return r.Match([]byte(s))
}

// Find returns a slice holding the text of the leftmost match in b.
// Returns nil if no match is found.
//
// Example:
//
//	re := coregex.MustCompile(`\d+`)
//	match := re.Find([]byte("age: 42"))
//	println(string(match)) // "42"
func (r *Regex) Find(b []byte) []byte {
	caps := r.searchAt(b, 0, 2)
	if caps == nil {
		return nil
	}
	return b[caps[0]:caps[1]]
}

// FindString returns a string holding the text of the leftmost match in s.
// Returns empty string if no match is found.
//
// Example:
//
//	re := coregex.MustCompile(`\d+`)
//	match := re.FindString("age: 42")
//	println(match) // "42"
func (r *Regex) FindString(s string) string {
	match := r.Find([]byte(s))
	if match == nil {
		return ""
	}
	return string(match)
}

// FindIndex returns a two-element slice of integers defining the location of
// the leftmost match in b. The match is at b[loc[0]:loc[1]].
// Returns nil if no match is found.
//
// Example:
//
//	re := coregex.MustCompile(`\d+`)
//	loc := re.FindIndex([]byte("age: 42"))
//	println(loc[0], loc[1]) // 5, 7
func (r *Regex) FindIndex(b []byte) []int {
	caps := r.searchAt(b, 0, 2)
	if caps == nil {
		return nil
	}
	return []int{caps[0], caps[1]}
}

// FindStringIndex returns a two-element slice of integers defining the location
// of the leftmost match in s. The match is at s[loc[0]:loc[1]].
// Returns nil if no match is found.
//
// Example:
//
//	re := coregex.MustCompile(`\d+`)
//	loc := re.FindStringIndex("age: 42")
//	println(loc[0], loc[1]) // 5, 7
func (r *Regex) FindStringIndex(s string) []int {
	return r.FindIndex([]byte(s))
}

// FindAll returns a slice of all successive matches of the pattern in b.
// If n > 0, it returns at most n matches. If n <= 0, it returns all matches.
//
// Example:
//
//	re := coregex.MustCompile(`\d+`)
//	matches := re.FindAll([]byte("1 2 3"), -1)
//	// matches = [[]byte("1"), []byte("2"), []byte("3")]
func (r *Regex) FindAll(b []byte, n int) [][]byte {
	locs := r.FindAllIndex(b, n)
	if locs == nil {
		return nil
	}
	matches := make([][]byte, len(locs))
	for i, loc := range locs {
		matches[i] = b[loc[0]:loc[1]]
	}
	return matches
}

// FindAllString returns a slice of all successive matches of the pattern in s.
// If n > 0, it returns at most n matches. If n <= 0, it returns all matches.
//
// Example:
//
//	re := coregex.MustCompile(`\d+`)
//	matches := re.FindAllString("1 2 3", -1)
//	// matches = ["1", "2", "3"]
func (r *Regex) FindAllString(s string, n int) []string {
	matches := r.FindAll([]byte(s), n)
	if matches == nil {
		return nil
	}
	result := make([]string, len(matches))
	for i, m := range matches {
		result[i] = string(m)
	}
	return result
}

// String returns the source text used to compile the regular expression.
//
// Example:
//
//	re := coregex.MustCompile(`\d+`)
//	println(re.String()) // `\d+`
func (r *Regex) String() string {
	return r.pattern
}

// NumSubexp returns the number of parenthesized subexpressions (capture groups).
// Group 0 (the entire match) is not counted.
//
// Example:
//
//	re := coregex.MustCompile(`(\w+)@(\w+)\.(\w+)`)
//	println(re.NumSubexp()) // 3
func (r *Regex) NumSubexp() int {
	return r.re.MaxCap()
}

// SubexpNames returns the names of the parenthesized subexpressions in this
// Regex. The name for the first sub-expression is names[1], so that if m
// matches this Regex, m[i] is the match for names[i]. Unnamed groups are
// the empty string.
func (r *Regex) SubexpNames() []string {
	return r.subexpNames
}

// SubexpIndex returns the index of the first subexpression with the given
// name, or -1 if there is no subexpression with that name.
func (r *Regex) SubexpIndex(name string) int {
	if name == "" {
		return -1
	}
	for i, n := range r.subexpNames {
		if n == name {
			return i
		}
	}
	return -1
}

// FindSubmatch returns a slice holding the text of the leftmost match
// and the matches of all capture groups.
//
// A return value of nil indicates no match.
// Result[0] is the entire match, result[i] is the ith capture group.
// Unmatched groups will be nil.
//
// Example:
//
//	re := coregex.MustCompile(`(\w+)@(\w+)\.(\w+)`)
//	match := re.FindSubmatch([]byte("user@example.com"))
//	// match[0] = "user@example.com"
//	// match[1] = "user"
//	// match[2] = "example"
//	// match[3] = "com"
func (r *Regex) FindSubmatch(b []byte) [][]byte {
	idx := r.FindSubmatchIndex(b)
	if idx == nil {
		return nil
	}
	result := make([][]byte, len(idx)/2)
	for i := range result {
		if idx[2*i] < 0 {
			continue
		}
		result[i] = b[idx[2*i]:idx[2*i+1]]
	}
	return result
}

// FindStringSubmatch returns a slice of strings holding the text of the leftmost
// match and the matches of all capture groups.
//
// Example:
//
//	re := coregex.MustCompile(`(\w+)@(\w+)\.(\w+)`)
//	match := re.FindStringSubmatch("user@example.com")
//	// match[0] = "user@example.com"
//	// match[1] = "user"
func (r *Regex) FindStringSubmatch(s string) []string {
	groups := r.FindSubmatch([]byte(s))
	if groups == nil {
		return nil
	}
	result := make([]string, len(groups))
	for i, g := range groups {
		if g != nil {
			result[i] = string(g)
		}
	}
	return result
}

// FindSubmatchIndex returns a slice holding the index pairs for the leftmost
// match and the matches of all capture groups.
//
// A return value of nil indicates no match.
// Result[2*i:2*i+2] is the indices for the ith group.
// Unmatched groups have -1 indices.
//
// Example:
//
//	re := coregex.MustCompile(`(\w+)@(\w+)\.(\w+)`)
//	idx := re.FindSubmatchIndex([]byte("user@example.com"))
//	// idx[0:2] = indices for entire match
//	// idx[2:4] = indices for first capture group
func (r *Regex) FindSubmatchIndex(b []byte) []int {
	return r.searchAt(b, 0, r.prog.NumCap)
}

// FindStringSubmatchIndex returns the index pairs for the leftmost match
// and capture groups. Same as FindSubmatchIndex but for strings.
func (r *Regex) FindStringSubmatchIndex(s string) []int {
	return r.FindSubmatchIndex([]byte(s))
}

// byteInput adapts a []byte to nfa.MachineInput, optionally backed by a
// prefilter for the literal-prefix fast-skip path. asciiEnd caches the
// position of the first non-ASCII byte (or len(b) if there is none) so
// Step/Context can skip the UTF-8 decoder over the input's ASCII-only
// leading span, which covers the entire input for the common case of
// ASCII-only haystacks. newByteInput checks simd.IsASCII first since it
// short-circuits on the all-ASCII case without needing to locate a boundary;
// simd.FirstNonASCII only runs when the input is mixed.
type byteInput struct {
	b        []byte
	pf       prefilter.Prefilter
	asciiEnd int
}

func newByteInput(b []byte, pf prefilter.Prefilter) *byteInput {
	asciiEnd := len(b)
	if !simd.IsASCII(b) {
		if i := simd.FirstNonASCII(b); i >= 0 {
			asciiEnd = i
		}
	}
	return &byteInput{b: b, pf: pf, asciiEnd: asciiEnd}
}

func (in *byteInput) Step(pos int) (rune, int) {
	if pos >= len(in.b) {
		return nfa.RuneEOF, 0
	}
	if pos < in.asciiEnd {
		return rune(in.b[pos]), 1
	}
	return utf8.DecodeRune(in.b[pos:])
}

func (in *byteInput) EndPos() int { return len(in.b) }

func (in *byteInput) Context(pos int) nfa.EmptyOp {
	var flags nfa.EmptyOp

	var before rune = -1
	if pos > 0 {
		if pos-1 < in.asciiEnd {
			before = rune(in.b[pos-1])
		} else {
			before, _ = utf8.DecodeLastRune(in.b[:pos])
		}
	}
	var after rune = -1
	if pos < len(in.b) {
		if pos < in.asciiEnd {
			after = rune(in.b[pos])
		} else {
			after, _ = utf8.DecodeRune(in.b[pos:])
		}
	}

	if pos == 0 {
		flags |= nfa.EmptyBeginText | nfa.EmptyBeginLine
	} else if before == '\n' {
		flags |= nfa.EmptyBeginLine
	}
	if pos == len(in.b) {
		flags |= nfa.EmptyEndText | nfa.EmptyEndLine
	} else if after == '\n' {
		flags |= nfa.EmptyEndLine
	}

	if isWordRune(before) != isWordRune(after) {
		flags |= nfa.EmptyWordBoundary
	} else {
		flags |= nfa.EmptyNoWordBoundary
	}
	return flags
}

func (in *byteInput) CanCheckPrefix() bool { return in.pf != nil }

func (in *byteInput) Index(_ *nfa.Prog, pos int) int {
	if in.pf == nil {
		return -1
	}
	return in.pf.Find(in.b, pos)
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}
