package logflags

import (
	"errors"
	"io/ioutil"
	"log"
	"strings"

	"github.com/sirupsen/logrus"
)

var parser = false
var differ = false
var check = false

func makeLogger(flag bool, fields logrus.Fields) *logrus.Entry {
	logger := logrus.New().WithFields(fields)
	logger.Logger.Level = logrus.DebugLevel
	if !flag {
		logger.Logger.Level = logrus.PanicLevel
	}
	return logger
}

// Parser returns true if the dump parser should log recoverable parse
// problems (unrecognized vtable lines, duplicate class blocks).
func Parser() bool {
	return parser
}

// ParserLogger returns a configured logger for the dump parser.
func ParserLogger() *logrus.Entry {
	return makeLogger(parser, logrus.Fields{"layer": "parser"})
}

// Differ returns true if snapshot comparisons should be logged.
func Differ() bool {
	return differ
}

// DifferLogger returns a logger for snapshot comparisons.
func DifferLogger() *logrus.Entry {
	return makeLogger(differ, logrus.Fields{"layer": "diff"})
}

// Check returns true if compatibility policy decisions should be logged.
func Check() bool {
	return check
}

// CheckLogger returns a logger for the compatibility policy.
func CheckLogger() *logrus.Entry {
	return makeLogger(check, logrus.Fields{"layer": "check"})
}

var errLogstrWithoutLog = errors.New("--log-output specified without --log")

// Setup sets component log flags based on the contents of logstr.
func Setup(logFlag bool, logstr string) error {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	if !logFlag {
		log.SetOutput(ioutil.Discard)
		if logstr != "" {
			return errLogstrWithoutLog
		}
		return nil
	}
	if logstr == "" {
		logstr = "parser"
	}
	v := strings.Split(logstr, ",")
	for _, logcmd := range v {
		switch logcmd {
		case "parser":
			parser = true
		case "diff":
			differ = true
		case "check":
			check = true
		}
	}
	return nil
}
