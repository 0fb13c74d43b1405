package classify

import (
	"regexp"
	"strings"

	"datajobs-engine/internal/domain"
)

// Only titles matching one of these patterns are ever considered. Everything
// else is rejected outright, not stored as some catch-all category.
var allowRe = regexp.MustCompile(`(?i)(?:` + strings.Join([]string{
	`\bdata\s+scientists?\b`,
	`\b(applied\s+)?(machine\s+learning|ml)\s+scientists?\b`,
	`\bdata\s+engineers?\b`,
	`\bdata\s+analysts?\b`,
	`\bdata\s+analytics\b`,
	`\bdata\s+science\s+analysts?\b`,
	`\b(machine\s+learning|ml)\s+analysts?\b`,
	`\bdata\s+scientist(\s*[-– ]\s*intern|s?\s+intern(ship)?)\b`,
	`\bdata\s+science(\s*[-– ]\s*intern|s?\s+intern(ship)?)\b`,
	`\bdata\s+analyst(\s*[-– ]\s*intern|s?\s+intern(ship)?)\b`,
	`\bmachine\s+learning\b`,
}, "|") + `)`)

// Intern phrasings have to resolve before the generic rules, or an intern
// posting gets classified as the full-time role.
var (
	ruleAnalystIntern   = regexp.MustCompile(`(?i)\bdata\s+analyst.*intern|intern.*data\s+analyst`)
	ruleScientistIntern = regexp.MustCompile(`(?i)(data\s+scientist|data\s+science|machine\s+learning).*intern`)
	ruleEngineer        = regexp.MustCompile(`(?i)\bdata\s+engineer|\b(machine\s+learning|ml)\s+engineer`)
	ruleAnalyst         = regexp.MustCompile(`(?i)\bdata\s+analyst|data\s+analytics|data\s+science\s+analyst`)
	ruleScientist       = regexp.MustCompile(`(?i)\bdata\s+scientist|\b(applied\s+)?(machine\s+learning|ml)\s+scientist\b|\b(machine\s+learning|ml)\s+analysts?\b|\bmachine\s+learning\b`)
)

// Classify maps a job title to a category. ok is false when the title does
// not pass the whitelist; callers must drop such postings.
func Classify(title string) (cat domain.Category, ok bool) {
	t := strings.ToLower(strings.TrimSpace(title))
	if t == "" || !allowRe.MatchString(t) {
		return "", false
	}

	switch {
	case ruleAnalystIntern.MatchString(t):
		return domain.DataAnalyst, true
	case ruleScientistIntern.MatchString(t):
		return domain.DataScientist, true
	case ruleEngineer.MatchString(t):
		return domain.DataEngineer, true
	case ruleAnalyst.MatchString(t):
		return domain.DataAnalyst, true
	case ruleScientist.MatchString(t):
		return domain.DataScientist, true
	}
	// allow-pattern matched but no rule resolved; shouldn't happen
	return "", false
}
