package attack

import "regexp"

// Catalog version, bumped whenever signatures are added or tuned. Recorded in
// tier traces so old queue entries can be interpreted against the catalog that
// produced them.
const CatalogVersion = "2026-08"

type signature struct {
	category    string
	severity    Severity
	description string
	patterns    []*regexp.Regexp
}

func rx(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// The static signature catalog. Ordering is stable so scan results are
// deterministic; categories earlier in the list show up earlier in traces.
var catalog = []signature{
	{
		category:    "sql_injection",
		severity:    SeverityCritical,
		description: "SQL injection attempt",
		patterns: rx(
			`(?i)\bunion\s+(?:all\s+)?select\b`,
			`(?i)'\s*(?:or|and)\s+'?\d+'?\s*=\s*'?\d+`,
			`(?i);\s*(?:drop|truncate|alter)\s+(?:table|database)\b`,
			`(?i)\bexec\s*\(?\s*xp_\w+`,
			`(?i)\binto\s+(?:out|dump)file\b`,
			`(?i)\bor\s+1\s*=\s*1\b`,
		),
	},
	{
		category:    "xss",
		severity:    SeverityHigh,
		description: "cross-site scripting attempt",
		patterns: rx(
			`(?i)<\s*script[^>]*>`,
			`(?i)\bon(?:error|load|click|mouseover)\s*=`,
			`(?i)<\s*iframe[^>]*>`,
			`(?i)<\s*img[^>]+src\s*=\s*["']?javascript:`,
			`(?i)document\.(?:cookie|location|write)`,
		),
	},
	{
		category:    "command_injection",
		severity:    SeverityCritical,
		description: "OS command injection attempt",
		patterns: rx(
			`(?i)[;&|]\s*(?:cat|ls|rm|wget|curl|bash|sh|nc|chmod|chown)\b`,
			"`[^`]+`",
			`\$\([^)]+\)`,
			`(?i)\b(?:rm\s+-rf|mkfifo|/dev/tcp/)`,
		),
	},
	{
		category:    "path_traversal",
		severity:    SeverityHigh,
		description: "path traversal attempt",
		patterns: rx(
			`\.\./\.\./`,
			`(?i)%2e%2e(?:%2f|/)`,
			`(?i)(?:/etc/passwd|/etc/shadow|c:\\windows\\system32)`,
			`(?i)\.\.\\\.\.\\`,
		),
	},
	{
		category:    "ldap_injection",
		severity:    SeverityHigh,
		description: "LDAP filter injection attempt",
		patterns: rx(
			`\(\s*[|&]\s*\(\s*\w+\s*=\s*[*\w]`,
			`(?i)\)\s*\(\s*(?:uid|cn|objectclass)\s*=\s*\*`,
		),
	},
	{
		category:    "xxe",
		severity:    SeverityCritical,
		description: "XML external entity attempt",
		patterns: rx(
			`(?i)<!ENTITY\s+\w+\s+SYSTEM`,
			`(?i)<!DOCTYPE[^>]+SYSTEM`,
		),
	},
	{
		category:    "nosql_injection",
		severity:    SeverityHigh,
		description: "NoSQL operator injection attempt",
		patterns: rx(
			`(?i)\$(?:where|regex)\s*:`,
			`(?i)\{\s*["']?\$(?:ne|gt|lt|gte|lte|in)\b`,
		),
	},
	{
		category:    "template_injection",
		severity:    SeverityHigh,
		description: "server-side template injection attempt",
		patterns: rx(
			`\{\{[^}]*(?:config|self|request|__|\.\w+\()[^}]*\}\}`,
			`\$\{[^}]*(?:java|runtime|process|7\*7)[^}]*\}`,
			`\{%[^%]*%\}`,
		),
	},
	{
		category:    "protocol_scheme",
		severity:    SeverityHigh,
		description: "dangerous URI scheme",
		patterns: rx(
			`(?i)\b(?:file|gopher|dict|php|jar|netdoc)://`,
			`(?i)\bdata:[^,]*;base64,`,
			`(?i)\bjavascript:`,
			`(?i)\bvbscript:`,
		),
	},
	{
		category:    "header_injection",
		severity:    SeverityHigh,
		description: "HTTP header / CRLF injection attempt",
		patterns: rx(
			`(?i)%0d%0a`,
			`(?i)[\r\n]+(?:set-cookie|location|content-length)\s*:`,
			`(?i)\\r\\n(?:set-cookie|location)\s*:`,
		),
	},
	{
		category:    "prompt_injection",
		severity:    SeverityCritical,
		description: "LLM instruction override attempt",
		patterns: rx(
			`(?i)\b(?:ignore|disregard|forget)\s+(?:all\s+|any\s+)?(?:previous|prior|above|earlier)\s+(?:instructions|rules|prompts|directions)`,
			`(?i)\byou\s+are\s+now\s+(?:a|an|in)\b`,
			`(?i)\bnew\s+instructions?\s*:`,
			`(?i)\b(?:reveal|show|print|repeat)\b.{0,40}\bsystem\s+prompt\b`,
			`(?i)\b(?:jailbreak|developer\s+mode|dan\s+mode)\b`,
			`(?i)\bpretend\s+(?:you\s+have\s+no|there\s+are\s+no)\s+(?:rules|restrictions|guidelines)`,
		),
	},
	{
		category:    "output_injection",
		severity:    SeverityHigh,
		description: "request to embed active content in model output",
		patterns: rx(
			`(?i)\b(?:include|embed|put|insert)\b.{0,60}\bin\s+your\s+(?:response|output|reply)\b.{0,80}<\s*(?:script|iframe|img)`,
			`(?i)\brespond\s+(?:only\s+)?with\s+(?:raw\s+)?(?:html|javascript)\b`,
			`(?i)\brepeat\s+after\s+me\b.{0,80}<\s*script`,
		),
	},
	{
		category:    "data_extraction",
		severity:    SeverityHigh,
		description: "training data / configuration extraction probe",
		patterns: rx(
			`(?i)\b(?:training|fine.?tuning)\s+data\b.{0,40}\b(?:verbatim|word.for.word|exact|memorized)`,
			`(?i)\bwhat\s+(?:are|were)\s+your\s+(?:initial\s+)?instructions\b`,
			`(?i)\brepeat\s+(?:your|the)\s+(?:system\s+prompt|instructions|configuration)\b`,
		),
	},
	{
		category:    "resource_exhaustion",
		severity:    SeverityHigh,
		description: "resource exhaustion request",
		patterns: rx(
			`(?i)\brepeat\b.{0,60}\b(?:\d{4,}|a\s+(?:million|billion|trillion)|forever|infinitely|endlessly)\b`,
			`(?i)\bgenerate\b.{0,40}\b\d{5,}\s+(?:words|tokens|lines|items)\b`,
		),
	},
	{
		category:    "plugin_abuse",
		severity:    SeverityHigh,
		description: "tool/plugin abuse request",
		patterns: rx(
			`(?i)\b(?:call|invoke|use)\s+the\s+\S+\s+(?:tool|plugin|function|api)\b.{0,60}\b(?:secret|credential|token|password|internal)`,
			`(?i)\buse\s+the\s+browser\s+tool\s+to\s+(?:visit|fetch|post)\b`,
		),
	},
	{
		category:    "excessive_agency",
		severity:    SeverityCritical,
		description: "request for unauthorized autonomous action",
		patterns: rx(
			`(?i)\bwithout\s+(?:asking|confirmation|approval|telling)\b.{0,60}\b(?:delete|transfer|send|purchase|execute)`,
			`(?i)\b(?:delete|transfer|send|purchase|execute)\b.{0,60}\bwithout\s+(?:asking|confirmation|approval|telling)`,
			`(?i)\btransfer\b.{0,40}\b(?:funds|money|crypto|tokens)\b.{0,40}\b(?:immediately|now|automatically)`,
			`(?i)\bdelete\s+all\s+(?:files|records|data|messages)\b`,
		),
	},
	{
		category:    "authority_impersonation",
		severity:    SeverityHigh,
		description: "authority impersonation social engineering",
		patterns: rx(
			`(?i)\bi\s+am\s+(?:your|the)\s+(?:developer|administrator|admin|creator|operator|owner)\b`,
			`(?i)\bas\s+(?:your|the)\s+(?:system\s+)?(?:admin|administrator|operator)\b.{0,40}\b(?:i\s+(?:order|command|instruct|authorize))`,
			`(?i)\bthis\s+is\s+an?\s+(?:official|emergency)\s+(?:override|directive|order)\b`,
		),
	},
	{
		category:    "model_extraction",
		severity:    SeverityHigh,
		description: "model architecture/weights extraction probe",
		patterns: rx(
			`(?i)\b(?:list|reveal|describe|dump)\s+your\s+(?:weights|parameters|architecture|layers|configuration)\b`,
			`(?i)\bwhat\s+(?:model|checkpoint|version)\s+are\s+you\b.{0,60}\b(?:exactly|internally|specifically)`,
			`(?i)\b(?:temperature|top.?p|logit)\s+settings?\b.{0,40}\breveal\b`,
		),
	},
}
