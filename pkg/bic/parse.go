package bic

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-bic/bic/pkg/logflags"
	"github.com/sirupsen/logrus"
)

var classSizeRegexp = regexp.MustCompile(`size=(\d+)`)

// Parser turns class-hierarchy dumps into Info snapshots. It carries the
// exclusion set and the target pointer width; both are fixed at
// construction, so a single Parser may be used from multiple goroutines.
type Parser struct {
	blacklist Blacklist
	ptrSize   int
	log       *logrus.Entry
}

// NewParser returns a parser using the given exclusion set. ptrSize is the
// pointer width in bytes (4 or 8) used to canonicalize raw address tokens;
// 0 selects the host's width.
func NewParser(blacklist Blacklist, ptrSize int) *Parser {
	return &Parser{
		blacklist: blacklist,
		ptrSize:   ptrSize,
		log:       logflags.ParserLogger(),
	}
}

func (p *Parser) ptrSizeOrHost() int {
	if p.ptrSize != 0 {
		return p.ptrSize
	}
	return strconv.IntSize / 8
}

// Parse builds a snapshot from dump text. Blocks are separated by blank
// lines; "Class" blocks contribute object sizes, "Vtable for" blocks
// contribute normalized vtables, anything else is ignored. Malformed
// blocks are logged and skipped, they never fail the parse.
func (p *Parser) Parse(dump string) Info {
	info := newInfo()

	for _, block := range strings.Split(dump, "\n\n") {
		entry := strings.Split(block, "\n")
		if len(entry) < 2 {
			continue
		}
		switch {
		case strings.HasPrefix(entry[0], "Class "):
			label := entry[0][len("Class "):]
			_, className := resolveClassName(label)
			if p.blacklist.IsBlacklisted(className) {
				continue
			}
			m := classSizeRegexp.FindStringSubmatch(entry[1])
			if m == nil {
				p.log.Warnf("could not parse class information for %s", className)
				continue
			}
			size, err := strconv.Atoi(m[1])
			if err != nil {
				p.log.Warnf("could not parse class information for %s", className)
				continue
			}
			if _, ok := info.ClassSizes[className]; ok {
				p.log.Warnf("duplicate class block for %s, keeping the last one", className)
			}
			info.ClassSizes[className] = size

		case strings.HasPrefix(entry[0], "Vtable for "):
			label := entry[0][len("Vtable for "):]
			_, className := resolveClassName(label)
			if p.blacklist.IsBlacklisted(className) {
				continue
			}
			if _, ok := info.ClassVTables[className]; ok {
				p.log.Warnf("duplicate vtable block for %s, keeping the last one", className)
			}
			info.ClassVTables[className] = p.normalizeVTable(entry)
		}
	}

	return info
}

// ParseFile parses the dump stored at path. A missing or unreadable file
// yields an empty snapshot; callers detect the condition by emptiness.
func (p *Parser) ParseFile(path string) Info {
	data, err := os.ReadFile(path)
	if err != nil {
		p.log.Warnf("cannot read %s: %v", path, err)
		return newInfo()
	}
	return p.Parse(string(data))
}
