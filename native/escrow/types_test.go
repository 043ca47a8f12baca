package escrow

import (
	"math/big"
	"strings"
	"testing"
)

func TestNormalizeAsset(t *testing.T) {
	valid := map[string]string{
		"usdc":     "USDC",
		" xlm ":    "XLM",
		"BTC":      "BTC",
		"usd-coin": "USD-COIN",
		"iso:4217": "ISO:4217",
		"ASSET9":   "ASSET9",
	}
	for input, want := range valid {
		got, err := NormalizeAsset(input)
		if err != nil {
			t.Fatalf("normalize %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("normalize %q: expected %q, got %q", input, want, got)
		}
	}

	invalid := []string{"", "   ", "US DC", "usd_c", "é", strings.Repeat("A", 33)}
	for _, input := range invalid {
		if _, err := NormalizeAsset(input); err == nil {
			t.Fatalf("expected %q to be rejected", input)
		}
	}
}

func TestProjectClone(t *testing.T) {
	original := newFundingProject(1)
	clone := original.Clone()

	clone.AcceptedAssets[0] = "MUTATED"
	clone.Goal.SetInt64(1)
	clone.Status = StatusExpired

	if original.AcceptedAssets[0] != "USDC" {
		t.Fatalf("clone shares asset slice")
	}
	if original.Goal.Cmp(big.NewInt(1000)) != 0 {
		t.Fatalf("clone shares goal")
	}
	if original.Status != StatusFunding {
		t.Fatalf("clone shares status")
	}
}

func TestAcceptsAsset(t *testing.T) {
	project := newFundingProject(1)

	if !project.AcceptsAsset("USDC") || !project.AcceptsAsset("XLM") {
		t.Fatalf("expected listed assets to be accepted")
	}
	if project.AcceptsAsset("BTC") {
		t.Fatalf("unlisted asset accepted")
	}
	var nilProject *Project
	if nilProject.AcceptsAsset("USDC") {
		t.Fatalf("nil project accepted an asset")
	}
}

func TestSanitizeProject(t *testing.T) {
	messy := newFundingProject(1)
	messy.AcceptedAssets = []string{"usdc", " xlm "}

	clean, err := SanitizeProject(messy)
	if err != nil {
		t.Fatalf("sanitize: %v", err)
	}
	if clean.AcceptedAssets[0] != "USDC" || clean.AcceptedAssets[1] != "XLM" {
		t.Fatalf("expected canonical casing, got %v", clean.AcceptedAssets)
	}
	if messy.AcceptedAssets[0] != "usdc" {
		t.Fatalf("input mutated")
	}

	dup := newFundingProject(1)
	dup.AcceptedAssets = []string{"USDC", "usdc"}
	if _, err := SanitizeProject(dup); err == nil {
		t.Fatalf("expected duplicate rejection")
	}

	badStatus := newFundingProject(1)
	badStatus.Status = ProjectStatus(9)
	if _, err := SanitizeProject(badStatus); err == nil {
		t.Fatalf("expected invalid status rejection")
	}

	zeroGoal := newFundingProject(1)
	zeroGoal.Goal = big.NewInt(0)
	if _, err := SanitizeProject(zeroGoal); err == nil {
		t.Fatalf("expected zero goal rejection")
	}
}

func TestStatusPredicates(t *testing.T) {
	for status, terminal := range map[ProjectStatus]bool{
		StatusFunding:   false,
		StatusActive:    false,
		StatusCompleted: true,
		StatusExpired:   true,
	} {
		if !status.Valid() {
			t.Fatalf("expected %s to be valid", status)
		}
		if status.Terminal() != terminal {
			t.Fatalf("terminal(%s): expected %v", status, terminal)
		}
	}
	if ProjectStatus(0).Valid() || ProjectStatus(5).Valid() {
		t.Fatalf("out-of-range status reported valid")
	}
}

func TestStatusString(t *testing.T) {
	want := map[ProjectStatus]string{
		StatusFunding:   "funding",
		StatusActive:    "active",
		StatusCompleted: "completed",
		StatusExpired:   "expired",
	}
	for status, name := range want {
		if status.String() != name {
			t.Fatalf("expected %q, got %q", name, status.String())
		}
	}
}
