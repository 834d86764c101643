package permission

import "testing"

func TestNeedsPermissionAutoApprovedReadOnly(t *testing.T) {
	b := NewBroker(nil)
	for _, name := range []string{"file_read", "glob", "grep"} {
		if b.NeedsPermission(name) {
			t.Errorf("expected %q to be auto-approved", name)
		}
	}
	if !b.NeedsPermission("shell") {
		t.Error("expected shell to require permission by default")
	}
}

func TestRequestPermissionAllowOnce(t *testing.T) {
	b := NewBroker(func(Request) Outcome { return OutcomeAllow })

	if !b.RequestPermission(Request{ToolName: "shell"}) {
		t.Error("expected Allow outcome to permit this call")
	}
	if !b.NeedsPermission("shell") {
		t.Error("a single Allow must not grant a session-wide waiver")
	}
}

func TestRequestPermissionDeny(t *testing.T) {
	b := NewBroker(func(Request) Outcome { return OutcomeDeny })

	if b.RequestPermission(Request{ToolName: "shell"}) {
		t.Error("expected Deny outcome to reject this call")
	}
}

func TestRequestPermissionAllowAll(t *testing.T) {
	b := NewBroker(func(Request) Outcome { return OutcomeAllowAll })

	if !b.RequestPermission(Request{ToolName: "shell"}) {
		t.Fatal("expected AllowAll to permit this call")
	}
	if b.NeedsPermission("shell") {
		t.Error("expected AllowAll to grant a session-wide waiver for shell")
	}
	if b.NeedsPermission("file_write") {
		t.Error("AllowAll for shell must not waive other tools")
	}
}

func TestRequestPermissionTrustAll(t *testing.T) {
	b := NewBroker(func(Request) Outcome { return OutcomeTrustAll })

	if !b.RequestPermission(Request{ToolName: "shell"}) {
		t.Fatal("expected TrustAll to permit this call")
	}
	if !b.TrustMode() {
		t.Fatal("expected broker to enter trust mode")
	}
	if b.NeedsPermission("file_write") {
		t.Error("trust mode must waive every tool")
	}
}

func TestRequestPermissionNilConfirmDenies(t *testing.T) {
	b := NewBroker(nil)
	if b.RequestPermission(Request{ToolName: "shell"}) {
		t.Error("expected nil confirm callback to deny")
	}
}

func TestDeriveInheritsTrustOnly(t *testing.T) {
	untrusted := NewBroker(nil)
	child := untrusted.Derive()
	if child.TrustMode() {
		t.Error("derived broker must not be trusted when parent isn't")
	}
	if child.RequestPermission(Request{ToolName: "shell"}) {
		t.Error("derived non-trusted broker must deny without a confirm callback")
	}

	trusted := NewTrustedBroker()
	trustedChild := trusted.Derive()
	if !trustedChild.TrustMode() {
		t.Error("derived broker must inherit trust mode from a trusted parent")
	}
}
