package fetcher

import (
	"math/rand"
	"strings"
	"time"
)

type AgentFamily string

const (
	AgentAuto    AgentFamily = "auto"
	AgentChrome  AgentFamily = "chrome"
	AgentFirefox AgentFamily = "firefox"
	AgentSafari  AgentFamily = "safari"
	AgentEdge    AgentFamily = "edge"
)

var userAgents = map[AgentFamily][]string{
	AgentChrome: {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	},
	AgentFirefox: {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14.1; rv:121.0) Gecko/20100101 Firefox/121.0",
		"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0",
	},
	AgentSafari: {
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_1_2) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Safari/605.1.15",
	},
	AgentEdge: {
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.0.0",
	},
}

// AgentSelector rotates User-Agent strings so repeated fetches do not all
// present the same fingerprint.
type AgentSelector struct {
	rng *rand.Rand
}

func NewAgentSelector() *AgentSelector {
	return &AgentSelector{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// UserAgent returns an agent string for the given family. "auto" or empty
// picks from all families; an unrecognized value is treated as a literal
// user agent string and returned unchanged.
func (s *AgentSelector) UserAgent(family string) string {
	family = strings.ToLower(strings.TrimSpace(family))
	if family == "" {
		family = string(AgentAuto)
	}

	switch AgentFamily(family) {
	case AgentAuto:
		return s.anyAgent()
	case AgentChrome, AgentFirefox, AgentSafari, AgentEdge:
		return s.familyAgent(AgentFamily(family))
	default:
		return family
	}
}

func (s *AgentSelector) anyAgent() string {
	all := []string{}
	for _, agents := range userAgents {
		all = append(all, agents...)
	}
	return all[s.rng.Intn(len(all))]
}

func (s *AgentSelector) familyAgent(family AgentFamily) string {
	agents, ok := userAgents[family]
	if !ok || len(agents) == 0 {
		return s.anyAgent()
	}
	return agents[s.rng.Intn(len(agents))]
}
