package branch

import "testing"

func TestName(t *testing.T) {
	got := Name("FEAT-001", "agent-a")
	if got != "feature/FEAT-001-agent-a" {
		t.Errorf("Name = %q, want feature/FEAT-001-agent-a", got)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		areaID string
		agent  string
		ok     bool
	}{
		{"feature/FEAT-001-agent-a", "FEAT-001", "agent-a", true},
		{"feature/FIX-042-A", "FIX-042", "A", true},
		{"* feature/FEAT-001-agent-a", "FEAT-001", "agent-a", true},
		{"  feature/FEAT-001-agent-a", "FEAT-001", "agent-a", true},
		{"origin/feature/FEAT-001-agent-a", "FEAT-001", "agent-a", true},
		{"remotes/origin/feature/FEAT-001-agent-a", "FEAT-001", "agent-a", true},
		{"feature/API2-007-AGENT-42", "API2-007", "AGENT-42", true},
		{"origin/HEAD -> origin/main", "", "", false},
		{"main", "", "", false},
		{"origin/main", "", "", false},
		{"feature/lowercase-001-a", "", "", false},
		{"feature/FEAT-001", "", "", false},
		{"bugfix/FEAT-001-agent-a", "", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		areaID, agent, ok := Parse(tt.name)
		if ok != tt.ok {
			t.Errorf("Parse(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if areaID != tt.areaID || agent != tt.agent {
			t.Errorf("Parse(%q) = %s/%s, want %s/%s", tt.name, areaID, agent, tt.areaID, tt.agent)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	areaID, agent, ok := Parse(Name("DOC-003", "worker-7"))
	if !ok {
		t.Fatal("round trip failed to parse")
	}
	if areaID != "DOC-003" || agent != "worker-7" {
		t.Errorf("round trip = %s/%s, want DOC-003/worker-7", areaID, agent)
	}
}
