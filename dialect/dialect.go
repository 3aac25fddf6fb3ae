// Package dialect defines the backward-compatibility levels of the Aul
// language and which syntax each level accepts, warns about, or rejects.
//
// A script starts at the level it was compiled with (Legacy unless the
// caller says otherwise) and may raise it with a "#strict N" directive,
// which applies to the remainder of the file.
package dialect

import "fmt"

// Level is one of the four language dialect tiers.
type Level int

const (
	Legacy Level = iota
	Strict1
	Strict2
	Strict3
)

// MaxLevel is the highest dialect level understood by the compiler.
const MaxLevel = Strict3

// never is a threshold no script can reach.
const never = MaxLevel + 1

func (l Level) String() string {
	switch l {
	case Legacy:
		return "legacy"
	case Strict1:
		return "strict 1"
	case Strict2:
		return "strict 2"
	case Strict3:
		return "strict 3"
	default:
		return fmt.Sprintf("strict %d", int(l))
	}
}

// Valid returns true if l is a known dialect level.
func (l Level) Valid() bool {
	return l >= Legacy && l <= MaxLevel
}

// Parse converts the argument of a "#strict" directive into a Level. An
// empty argument means Strict1.
func Parse(arg string) (Level, error) {
	switch arg {
	case "":
		return Strict1, nil
	case "0":
		return Legacy, nil
	case "1":
		return Strict1, nil
	case "2":
		return Strict2, nil
	case "3":
		return Strict3, nil
	}
	return Legacy, fmt.Errorf("unknown strict level %q", arg)
}

// Feature identifies a piece of syntax or lowering whose acceptance depends
// on the dialect level.
type Feature int

const (
	AliasOperators Feature = iota
	NilKeyword
	ArrayIndexing
	GlobalArrow
	ShortCircuit
	MapLiterals
	MemberAccess
	SafeNavigation
	UnicodeIdentifiers
	ZeroIsNil
	ZeroPlusElision
	LabelFunctions
	ReturnCallSyntax
	VarRedeclaration
	UnknownEscape
)

// Verdict is the outcome of checking a feature against a level.
type Verdict int

const (
	Allowed Verdict = iota
	Warn
	Forbidden
)

type rule struct {
	name string
	// Availability window: the feature is usable for levels in [since, until).
	since Level
	until Level
	// Deprecation window: usage warns from warnFrom and fails from errorFrom.
	deprecated bool
	warnFrom   Level
	errorFrom  Level
}

var rules = map[Feature]rule{
	AliasOperators:     {name: "alphabetic operator alias", since: Legacy, until: Strict1},
	NilKeyword:         {name: "nil", since: Strict1, until: never},
	ArrayIndexing:      {name: "array indexing", since: Strict2, until: never},
	GlobalArrow:        {name: "global->", since: Strict2, until: never},
	ShortCircuit:       {name: "short-circuit evaluation", since: Strict2, until: never},
	MapLiterals:        {name: "map literal", since: Strict3, until: never},
	MemberAccess:       {name: "member access with '.'", since: Strict3, until: never},
	SafeNavigation:     {name: "safe navigation with '?'", since: Strict3, until: never},
	UnicodeIdentifiers: {name: "unicode identifier", since: Strict3, until: never},
	ZeroIsNil:          {name: "zero as nil", since: Legacy, until: Strict3},
	ZeroPlusElision:    {name: "0+x elision", since: Legacy, until: Strict3},
	LabelFunctions: {
		name: "old-style function declaration", since: Legacy, until: never,
		deprecated: true, warnFrom: Strict1, errorFrom: Strict2,
	},
	ReturnCallSyntax: {
		name: "return with multiple parameters", since: Legacy, until: never,
		deprecated: true, warnFrom: Strict1, errorFrom: Strict2,
	},
	VarRedeclaration: {
		name: "variable redeclaration", since: Legacy, until: never,
		deprecated: true, warnFrom: Legacy, errorFrom: Strict2,
	},
	UnknownEscape: {
		name: "unknown escape sequence", since: Legacy, until: never,
		deprecated: true, warnFrom: Legacy, errorFrom: never,
	},
}

func (f Feature) String() string {
	if r, ok := rules[f]; ok {
		return r.name
	}
	return fmt.Sprintf("feature(%d)", int(f))
}

// Deprecated returns true if the feature is being phased out rather than
// introduced.
func (f Feature) Deprecated() bool {
	return rules[f].deprecated
}

// Check reports whether the feature may be used at the given level.
func Check(f Feature, l Level) Verdict {
	r, ok := rules[f]
	if !ok {
		return Allowed
	}
	if l < r.since || l >= r.until {
		return Forbidden
	}
	if r.deprecated {
		if l >= r.errorFrom {
			return Forbidden
		}
		if l >= r.warnFrom {
			return Warn
		}
	}
	return Allowed
}

// Enabled is shorthand for Check(f, l) != Forbidden.
func Enabled(f Feature, l Level) bool {
	return Check(f, l) != Forbidden
}
