package category

import "testing"

func TestDefaultTaxonomyShape(t *testing.T) {
	reg := Default()

	if !reg.Frozen() {
		t.Error("Default() registry should be frozen")
	}

	leaves := reg.Leaves()
	if len(leaves) < 35 {
		t.Errorf("expected at least 35 leaf categories, got %d", len(leaves))
	}

	groups := []Category{
		GroupPII, GroupSPI, GroupFinancial, GroupHealth, GroupBiometric,
		GroupContact, GroupDemographic, GroupDigitalIdentifier,
		GroupGovernmentLegal, GroupProfessional, GroupBehavioral,
		GroupGeolocation, GroupContentMedia,
	}
	for _, g := range groups {
		if !reg.Contains(g) {
			t.Errorf("missing group %q", g)
		}
		if g.IsLeaf() {
			t.Errorf("group %q should not be a leaf", g)
		}
	}
}

func TestLeafParentLinkage(t *testing.T) {
	reg := Default()

	for _, leaf := range reg.Leaves() {
		n, ok := reg.Lookup(leaf)
		if !ok {
			t.Fatalf("leaf %q not found", leaf)
		}
		if n.Parent != leaf.Group() {
			t.Errorf("leaf %q parent = %q, want %q", leaf, n.Parent, leaf.Group())
		}
		if !reg.Contains(n.Parent) {
			t.Errorf("leaf %q has unregistered parent %q", leaf, n.Parent)
		}
	}

	if got := CreditCard.Group(); got != GroupFinancial {
		t.Errorf("CreditCard.Group() = %q, want %q", got, GroupFinancial)
	}
}

func TestFreezeRejectsRegistration(t *testing.T) {
	reg := Default()

	err := reg.Register(Node{ID: "financial.custom_ledger", Sensitivity: SensitivityHigh})
	if err == nil {
		t.Fatal("expected registration on frozen registry to fail")
	}
}

func TestExtensionLeaf(t *testing.T) {
	reg := Builder()

	err := reg.Register(Node{
		ID:          "professional.badge_number",
		DisplayName: "Badge Number",
		Sensitivity: SensitivityMedium,
	})
	if err != nil {
		t.Fatalf("extension registration failed: %v", err)
	}
	reg.Freeze()

	n, ok := reg.Lookup("professional.badge_number")
	if !ok {
		t.Fatal("extension leaf not found after freeze")
	}
	if n.Parent != GroupProfessional {
		t.Errorf("parent = %q, want %q", n.Parent, GroupProfessional)
	}
	if reg.Sensitivity("professional.badge_number") != SensitivityMedium {
		t.Error("extension leaf sensitivity mismatch")
	}
}

func TestRegisterUnknownParent(t *testing.T) {
	reg := Builder()
	err := reg.Register(Node{ID: "nonexistent_group.thing"})
	if err == nil {
		t.Error("expected error for leaf under unknown group")
	}
}

func TestSensitivityFallback(t *testing.T) {
	reg := Default()

	if got := reg.Sensitivity(SSN); got != SensitivityHigh {
		t.Errorf("SSN sensitivity = %v, want high", got)
	}
	// Unknown leaf under a known group falls back to the group band.
	if got := reg.Sensitivity("financial.unknown_leaf"); got != SensitivityHigh {
		t.Errorf("fallback sensitivity = %v, want high", got)
	}
}

func TestSensitivityOrdering(t *testing.T) {
	if !(SensitivityNone < SensitivityLow && SensitivityLow < SensitivityMedium && SensitivityMedium < SensitivityHigh) {
		t.Error("sensitivity bands must be ordered none < low < medium < high")
	}
	if SensitivityMedium.RequiresSpecialHandling() {
		t.Error("medium should not require special handling")
	}
	if !SensitivityHigh.RequiresSpecialHandling() {
		t.Error("high should require special handling")
	}
}

func TestPriorityResolution(t *testing.T) {
	reg := Default()
	table := DefaultPriorities()

	if reg.Priority(table, CreditCard) <= reg.Priority(table, PhoneNumber) {
		t.Error("credit card must outrank phone number")
	}
	if reg.Priority(table, SSN) <= reg.Priority(table, PostalCode) {
		t.Error("SSN must outrank postal code")
	}

	// Category absent from the table falls back to scaled sensitivity.
	want := int(SensitivityHigh) * 10
	if got := reg.Priority(table, MedicalRecordNumber); got != want {
		t.Errorf("fallback priority = %d, want %d", got, want)
	}

	// Caller-supplied overrides take effect.
	table[PostalCode] = 200
	if reg.Priority(table, PostalCode) != 200 {
		t.Error("priority override not applied")
	}
}
