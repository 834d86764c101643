package tui

import (
	"strings"
	"testing"

	"github.com/coreagent/gencore/internal/permission"
)

func TestPermissionPromptAnswerRoutesOutcome(t *testing.T) {
	cases := map[string]permission.Outcome{
		"y": permission.OutcomeAllow,
		"n": permission.OutcomeDeny,
		"a": permission.OutcomeAllowAll,
		"t": permission.OutcomeTrustAll,
	}
	for key, want := range cases {
		resp := make(chan permission.Outcome, 1)
		p := &permissionPrompt{req: permission.Request{ToolName: "shell"}, resp: resp}
		if !p.answer(key) {
			t.Fatalf("expected key %q to be handled", key)
		}
		if got := <-resp; got != want {
			t.Errorf("key %q: expected outcome %v, got %v", key, want, got)
		}
	}
}

func TestPermissionPromptAnswerIgnoresUnknownKey(t *testing.T) {
	resp := make(chan permission.Outcome, 1)
	p := &permissionPrompt{req: permission.Request{ToolName: "shell"}, resp: resp}
	if p.answer("x") {
		t.Fatal("expected an unrecognized key to leave the prompt open")
	}
	select {
	case v := <-resp:
		t.Fatalf("expected no response sent, got %v", v)
	default:
	}
}

func TestPermissionPromptRenderIncludesToolAndMeta(t *testing.T) {
	p := &permissionPrompt{
		req: permission.Request{
			ToolName:      "shell",
			Description:   "run a command",
			IsDestructive: true,
			Meta:          &permission.BashMeta{Command: "rm -rf /tmp/x"},
		},
	}
	out := p.render()
	for _, want := range []string{"shell", "run a command", "rm -rf /tmp/x", "destructive"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected render output to contain %q, got:\n%s", want, out)
		}
	}
}
