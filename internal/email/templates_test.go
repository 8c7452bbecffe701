package email

import (
	"strings"
	"testing"
)

func TestRenderClaimSyncedTemplate(t *testing.T) {
	content, err := renderEmailTemplate("claim_synced.html", claimSyncedEmailData{
		baseEmailData: baseEmailData{Title: "Commission claim confirmed", Heading: "Commission claim confirmed"},
		AgentName:     "Sam Agent",
		StudentName:   "Li Wei",
		SchoolName:    "Auckland Institute",
		DealName:      "Li Wei - Auckland Institute",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"Sam Agent", "Li Wei", "Auckland Institute", "Completed with Commission"} {
		if !strings.Contains(content, want) {
			t.Fatalf("rendered email missing %q", want)
		}
	}
}

func TestRenderClaimFailedTemplate(t *testing.T) {
	content, err := renderEmailTemplate("claim_failed.html", claimFailedEmailData{
		baseEmailData: baseEmailData{Title: "Commission claim needs attention", Heading: "Commission claim needs attention"},
		AgentName:     "Sam Agent",
		StudentName:   "Li Wei",
		SchoolName:    "Auckland Institute",
		Reason:        "No matching deal for the student",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(content, "No matching deal for the student") {
		t.Fatal("rendered email missing failure reason")
	}
	if !strings.Contains(content, "claim again") {
		t.Fatal("rendered email missing retry instruction")
	}
}
