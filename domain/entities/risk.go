package entities

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// RiskLevel represents the security risk level of a request or grant set.
type RiskLevel int

const (
	RiskLevelLow    RiskLevel = iota // Specific, narrow permissions
	RiskLevelMedium                  // Network access, writes, ordinary commands
	RiskLevelHigh                    // Broad permissions, credentials, shells
)

// String returns the human-readable name of the risk level.
func (r RiskLevel) String() string {
	switch r {
	case RiskLevelLow:
		return "Low"
	case RiskLevelMedium:
		return "Medium"
	case RiskLevelHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// Dangerous patterns (security domain knowledge)
var (
	// Filesystem locations holding credentials or system state.
	SensitivePathPatterns = []string{
		"/etc/shadow", "/etc/sudoers", "/etc/sudoers.d/**",
		"/root/**", "/proc/**", "/sys/**", "/dev/**",
		"**/.ssh/**", "**/.aws/**", "**/.gnupg/**", "**/.kube/**",
		"**/.netrc", "**/.docker/config.json",
	}

	// Shell interpreters that allow arbitrary command execution
	DangerousShells = []string{
		"bash", "sh", "zsh", "fish", "dash", "ksh",
	}

	// Script interpreters (matches base + versioned variants)
	DangerousInterpreters = []string{
		"python", "perl", "ruby", "node", "nodejs",
		"php", "lua", "awk", "gawk", "tclsh",
	}

	// Environment variable names that usually carry secrets
	SecretEnvPatterns = []string{
		"AWS_*", "AZURE_*", "GCP_*", "GOOGLE_*",
		"*TOKEN*", "*SECRET*", "*PASSWORD*", "*_KEY", "*API_KEY*",
	}
)

// riskAssessorConfig holds configuration for the RiskAssessor.
type riskAssessorConfig struct {
	customPatterns map[ResourceClass][]string
}

func defaultRiskAssessorConfig() riskAssessorConfig {
	return riskAssessorConfig{
		customPatterns: make(map[ResourceClass][]string),
	}
}

// RiskAssessorOption configures a RiskAssessor instance.
type RiskAssessorOption func(*riskAssessorConfig)

// WithCustomSensitivePatterns adds doublestar patterns considered high risk
// for a class. Read and Write share path patterns, Env uses name patterns,
// Run uses executable patterns.
func WithCustomSensitivePatterns(class ResourceClass, patterns []string) RiskAssessorOption {
	return func(c *riskAssessorConfig) {
		c.customPatterns[class] = append(c.customPatterns[class], patterns...)
	}
}

// RiskAssessor evaluates the security risk of capability requests and
// initial grant sets. It is advisory only: it never changes a decision.
type RiskAssessor struct {
	config riskAssessorConfig
}

// NewRiskAssessor creates a new RiskAssessor with the given options.
func NewRiskAssessor(opts ...RiskAssessorOption) *RiskAssessor {
	cfg := defaultRiskAssessorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &RiskAssessor{config: cfg}
}

// AssessRequest evaluates a single runtime request.
func (r *RiskAssessor) AssessRequest(req CapabilityRequest) RiskLevel {
	switch req.Class {
	case ResourceEnv:
		if r.matchesAny(req.Value, r.patterns(ResourceEnv, SecretEnvPatterns)) {
			return RiskLevelHigh
		}
		return RiskLevelLow
	case ResourceNet:
		return RiskLevelMedium
	case ResourceRead:
		if r.isSensitivePath(req.Value) {
			return RiskLevelHigh
		}
		return RiskLevelLow
	case ResourceWrite:
		if r.isSensitivePath(req.Value) {
			return RiskLevelHigh
		}
		return RiskLevelMedium
	case ResourceRun:
		if isShellOrInterpreter(req.Value) || r.matchesAny(req.Value, r.config.customPatterns[ResourceRun]) {
			return RiskLevelHigh
		}
		return RiskLevelMedium
	default:
		return RiskLevelHigh
	}
}

// AssessGrantConfig evaluates the overall risk level of an initial grant set.
func (r *RiskAssessor) AssessGrantConfig(g *GrantConfig) RiskLevel {
	if g == nil {
		return RiskLevelLow
	}
	if g.AllowAll {
		return RiskLevelHigh
	}

	highest := RiskLevelLow
	for _, c := range resourceClasses {
		sel := g.Selection(c)
		if sel.All {
			return RiskLevelHigh
		}
		for _, v := range sel.Values {
			if level := r.AssessRequest(CapabilityRequest{Class: c, Value: v}); level > highest {
				highest = level
			}
		}
	}
	return highest
}

// DescribeRisks returns a list of human-readable risk descriptions.
func (r *RiskAssessor) DescribeRisks(g *GrantConfig) []string {
	if g == nil {
		return nil
	}
	if g.AllowAll {
		return []string{"All capabilities granted (High Risk)"}
	}

	var risks []string
	if g.Run.All {
		risks = append(risks, "Executes any command (High Risk)")
	} else if len(g.Run.Values) > 0 {
		risks = append(risks, "Executes external commands")
	}
	if g.Net.All {
		risks = append(risks, "Accesses any network host (High Risk)")
	}
	if g.Read.All {
		risks = append(risks, "Reads any file (High Risk)")
	}
	if g.Write.All {
		risks = append(risks, "Writes any file (High Risk)")
	} else if len(g.Write.Values) > 0 {
		risks = append(risks, "Write access to filesystem")
	}
	if g.Env.All {
		risks = append(risks, "Accesses all environment variables (High Risk)")
	}
	return risks
}

func (r *RiskAssessor) patterns(class ResourceClass, base []string) []string {
	out := make([]string, 0, len(base)+len(r.config.customPatterns[class]))
	out = append(out, base...)
	return append(out, r.config.customPatterns[class]...)
}

func (r *RiskAssessor) isSensitivePath(path string) bool {
	patterns := r.patterns(ResourceRead, SensitivePathPatterns)
	patterns = append(patterns, r.config.customPatterns[ResourceWrite]...)
	return r.matchesAny(filepath.ToSlash(filepath.Clean(path)), patterns)
}

func (r *RiskAssessor) matchesAny(value string, patterns []string) bool {
	for _, p := range patterns {
		if matched, _ := doublestar.Match(p, value); matched {
			return true
		}
	}
	return false
}

// isShellOrInterpreter checks the executable's base name against shells and
// interpreters, including versioned variants such as python3.12.
func isShellOrInterpreter(cmd string) bool {
	base := filepath.Base(cmd)
	for _, shell := range DangerousShells {
		if base == shell {
			return true
		}
	}
	for _, interp := range DangerousInterpreters {
		if base == interp || strings.HasPrefix(base, interp) {
			return true
		}
	}
	return false
}
