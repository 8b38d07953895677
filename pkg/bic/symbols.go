package bic

import (
	"fmt"
	"strconv"
	"strings"
)

// pureVirtualSentinel is the runtime trap installed in vtable slots of pure
// virtual functions. A new entry ending in it means the slot is abstract,
// not that the method changed.
const pureVirtualSentinel = "__cxa_pure_virtual"

// nonVirtualThunkOffsets are the this-adjustment offsets gcc emits for
// non-virtual destructor thunks in the ABI layouts we have seen in the
// wild (single and multiple inheritance, with and without virtual bases).
// They are a fixed lookup table, not something derived from the dump.
var nonVirtualThunkOffsets = [...]int{16, 32, 40}

// innerClassVTableSymbol builds the Itanium-mangled vtable symbol of a
// nested class, e.g. _ZTVN5Outer5InnerE for Outer::Inner.
func innerClassVTableSymbol(outerClass, innerClass string) string {
	return fmt.Sprintf("_ZTVN%d%s%d%sE", len(outerClass), outerClass, len(innerClass), innerClass)
}

// resolveClassName determines whether a mangled class label from a dump
// block denotes a nested class. The dump marks a genuine nested class by
// qualifying the label with its own mangled vtable symbol
// (Outer::Inner::_ZTVN..E); anything else is treated as a top-level class
// named by the part before the first "::".
func resolveClassName(mangledClassName string) (className, qualifiedClassName string) {
	outer := mangledClassName
	inner := ""
	if idx := strings.Index(mangledClassName, "::"); idx >= 0 {
		outer = mangledClassName[:idx]
		rest := mangledClassName[idx+2:]
		if idx = strings.Index(rest, "::"); idx >= 0 {
			inner = rest[:idx]
		} else {
			inner = rest
		}
	}

	candidate := outer + "::" + inner + "::" + innerClassVTableSymbol(outer, inner)
	if mangledClassName == candidate {
		return inner, outer + "::" + inner
	}
	return outer, outer
}

// qualifiedTailMatch reports whether symbol is tail, possibly qualified
// with extra leading scopes.
func qualifiedTailMatch(tail, symbol string) bool {
	if symbol == tail {
		return true
	}
	return strings.HasSuffix(symbol, "::"+tail)
}

// destructorThunkSymbols lists the qualified non-virtual destructor thunk
// symbols of className, for both the deleting (D0) and the non-deleting
// (D1) destructor at each known thunk offset.
func destructorThunkSymbols(className string) []string {
	result := make([]string, 0, 2*len(nonVirtualThunkOffsets))
	for i := 0; i <= 1; i++ {
		for _, offset := range nonVirtualThunkOffsets {
			result = append(result, fmt.Sprintf("%s::_ZThn%d_N%d%sD%dEv",
				className, offset, len(className), className, i))
		}
	}
	return result
}

// matchDestructor reports whether symbol refers to the destructor of the
// class named by mangledClassName, either directly or through one of its
// non-virtual thunks.
func matchDestructor(mangledClassName, symbol string) bool {
	className, qualifiedClassName := resolveClassName(mangledClassName)

	destructor := qualifiedClassName + "::~" + className
	if qualifiedTailMatch(destructor, symbol) {
		return true
	}
	for _, candidate := range destructorThunkSymbols(className) {
		if qualifiedTailMatch(candidate, symbol) {
			return true
		}
	}
	return false
}

// normalizeEntry canonicalizes one vtable line of the form
// "<index> <symbol-or-address>". It reports ok=false for lines that do not
// start with a slot index.
func (p *Parser) normalizeEntry(line, className string) (entry string, ok bool) {
	line = strings.Join(strings.Fields(line), " ")

	numStr := line
	if idx := strings.IndexByte(line, ' '); idx >= 0 {
		numStr = line[:idx]
	}
	num, err := strconv.Atoi(numStr)
	if err != nil {
		p.log.Warnf("unrecognized line: %s", line)
		return "", false
	}

	sym := line[strings.IndexByte(line, ' ')+1:]
	if strings.HasPrefix(sym, "(") {
		// A cast prefix like "(int (*)(...))QObject::event". If the whole
		// token is parenthesized the symbol sits inside the last group,
		// otherwise it follows the closing parenthesis.
		if strings.HasSuffix(sym, ")") {
			sym = sym[strings.LastIndexByte(sym, '(')+1 : len(sym)-1]
		} else {
			sym = sym[strings.LastIndexByte(sym, ')')+1:]
		}
	} else if idx := strings.IndexByte(sym, '('); idx >= 0 {
		// A trailing call suffix like "QObject::qt_metacast(void*)".
		sym = sym[:idx]
	}

	if strings.HasPrefix(sym, "& ") {
		sym = "&" + sym[2:]
	}

	// Zero out destructor entries: starting with gcc 4.9 the vtables of
	// abstract classes may legitimately carry null pointers in the
	// destructor slots, and those must not show up as removals.
	if matchDestructor(className, sym) {
		sym = "0"
	}

	if strings.HasPrefix(sym, "-0") || strings.HasPrefix(sym, "0") {
		sym, ok = p.canonicalizeAddress(sym)
		if !ok {
			return "", false
		}
	}

	return strconv.Itoa(num) + " " + sym, true
}

// canonicalizeAddress reinterprets a raw address/offset token as a signed
// hexadecimal value and re-renders it as decimal text, truncated to the
// configured pointer width.
func (p *Parser) canonicalizeAddress(sym string) (string, bool) {
	s := strings.TrimSuffix(sym, "u")

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	s = strings.TrimPrefix(s, "0x")

	v, err := strconv.ParseInt(sign+s, 16, 64)
	if err != nil {
		p.log.Warnf("unrecognized token: %s", sym)
		return "", false
	}

	if p.ptrSizeOrHost() == 4 {
		return strconv.FormatInt(int64(int32(v)), 10), true
	}
	return strconv.FormatInt(v, 10), true
}

// normalizeVTable canonicalizes the entries of one "Vtable for" block. The
// block's second line names the mangled class symbol, e.g.
// "QObject::_ZTV7QObject: 14u entries"; the entries follow from the third
// line on. Unparseable lines are logged and dropped, so the returned slice
// may be shorter than the dump's declared entry count.
func (p *Parser) normalizeVTable(entry []string) []string {
	className := entry[1]
	if idx := strings.IndexByte(className, ' '); idx >= 0 {
		className = className[:idx]
	}
	className = strings.TrimSuffix(className, ":")

	normalized := make([]string, 0, len(entry)-2)
	for _, line := range entry[2:] {
		if e, ok := p.normalizeEntry(line, className); ok {
			normalized = append(normalized, e)
		}
	}
	return normalized
}
