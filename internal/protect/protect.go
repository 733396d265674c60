// Package protect decides which branch names are protected.
//
// Rules are glob patterns evaluated in order; the last rule that matches a
// name decides. A rule prefixed with "!" unprotects the names it matches.
// A pattern without a "/" also matches the last path component of a name, so
// "main" protects both "main" and "origin/main".
package protect

import (
	"strings"

	"emperror.dev/errors"
	"github.com/aviator-co/stackbase/internal/branches"
	"github.com/gobwas/glob"
)

type rule struct {
	pattern string
	negate  bool
	glob    glob.Glob
	// If true, the glob is also matched against the last path component.
	basename bool
}

type Matcher struct {
	rules []rule
}

var _ branches.ProtectionMatcher = (*Matcher)(nil)

// New compiles the given patterns. Empty patterns and patterns starting with
// "#" are ignored.
func New(patterns ...string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		r := rule{pattern: p}
		if strings.HasPrefix(p, "!") {
			r.negate = true
			p = p[1:]
		}
		p = strings.TrimPrefix(p, "refs/heads/")
		r.basename = !strings.Contains(p, "/")
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.WrapIff(err, "invalid protected branch pattern %q", r.pattern)
		}
		r.glob = g
		m.rules = append(m.rules, r)
	}
	return m, nil
}

// IsProtected returns true if the last rule matching name is not negated.
func (m *Matcher) IsProtected(name string) bool {
	protected := false
	base := name
	if i := strings.LastIndex(name, "/"); i >= 0 {
		base = name[i+1:]
	}
	for _, r := range m.rules {
		if r.glob.Match(name) || (r.basename && r.glob.Match(base)) {
			protected = !r.negate
		}
	}
	return protected
}

// Patterns returns the source patterns of the rules, in evaluation order.
func (m *Matcher) Patterns() []string {
	ret := make([]string, 0, len(m.rules))
	for _, r := range m.rules {
		ret = append(ret, r.pattern)
	}
	return ret
}
