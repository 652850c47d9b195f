package dnd

import (
	stderrors "errors"
	"testing"

	"github.com/vango-dev/dragsort/internal/errors"
	"github.com/vango-dev/dragsort/pkg/dom"
)

func TestNewGroup(t *testing.T) {
	f := newFixture(t)
	g, err := NewGroup(f.doc, GroupOptions{
		ElementSelector:   ".card",
		AnchorSelector:    ".handle",
		ContainerSelector: ".col",
		PlaceholderMarkup: `<div class="ph"></div>`,
		HoveringClass:     "over",
		Host:              f.host,
	})
	if err != nil {
		t.Fatal(err)
	}

	if g.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", g.Len())
	}
	sessions := g.Sessions()
	if sessions[0].Anchor() != f.el("h1") {
		t.Errorf("a1 anchor = %v, want the handle", sessions[0].Anchor())
	}
	if sessions[1].Anchor() != f.el("a2") {
		t.Errorf("a2 anchor = %v, want the element itself", sessions[1].Anchor())
	}
	ph := sessions[0].Placeholder()
	for _, d := range sessions {
		if len(d.Containers()) != 3 {
			t.Errorf("%v containers = %d, want 3", d.Element(), len(d.Containers()))
		}
		if d.Placeholder() != ph {
			t.Error("placeholder should be shared")
		}
	}
	if g.Session(f.el("b1")) != sessions[3] {
		t.Error("Session(b1) mismatch")
	}
	if g.Dragging() != nil {
		t.Error("idle group reports a drag")
	}
}

func TestGroupDrag(t *testing.T) {
	f := newFixture(t)
	g, err := NewGroup(f.doc, GroupOptions{
		ElementSelector:   ".card",
		ContainerSelector: ".col",
		Host:              f.host,
	})
	if err != nil {
		t.Fatal(err)
	}

	f.press(f.el("a3"), 20, 250)
	if d := g.Dragging(); d == nil || d.Element() != f.el("a3") {
		t.Fatalf("Dragging() = %v, want a3's session", d)
	}
	f.move(300, 100)
	f.release(300, 100)

	if got := f.childIDs("colB"); got != "b1,a3" {
		t.Errorf("colB = %s, want b1,a3", got)
	}
	if got := f.outcomes(); len(got) != 2 || got[1] != EventCompleted {
		t.Errorf("signals = %v, want one completed drag", got)
	}
	if g.Dragging() != nil {
		t.Error("group still dragging after release")
	}
}

func TestGroupUnbindAndBind(t *testing.T) {
	f := newFixture(t)
	g, err := NewGroup(f.doc, GroupOptions{
		Elements: []*dom.Element{f.el("a1"), f.el("a2")},
		Host:     f.host,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range g.Sessions() {
		if c := d.Containers(); len(c) != 1 || c[0] != f.el("colA") {
			t.Errorf("default containers = %v, want [colA]", c)
		}
	}

	f.press(f.el("a1"), 20, 20)
	g.Destroy()
	if g.Dragging() != nil || f.el("a1").HasStyle("display") {
		t.Error("Destroy should release the active drag")
	}

	f.signals = nil
	f.press(f.el("a2"), 20, 120)
	if len(f.signals) != 0 {
		t.Error("unbound group reacted to a press")
	}

	g.Bind()
	f.press(f.el("a2"), 20, 120)
	f.release(20, 120)
	if got := f.outcomes(); len(got) != 2 || got[1] != EventCanceled {
		t.Errorf("signals = %v, want [started canceled]", got)
	}
}

func TestNewGroupErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		opts GroupOptions
		code string
	}{
		{"bad element selector", GroupOptions{ElementSelector: ".card[", Host: f.host}, "E206"},
		{"bad container selector", GroupOptions{ElementSelector: ".card", ContainerSelector: "[[", Host: f.host}, "E206"},
		{"bad anchor selector", GroupOptions{ElementSelector: ".card", AnchorSelector: ":nope(", Host: f.host}, "E206"},
		{"no elements", GroupOptions{ElementSelector: ".missing", Host: f.host}, "E209"},
		{"empty list", GroupOptions{Host: f.host}, "E209"},
		{"no containers", GroupOptions{ElementSelector: ".card", ContainerSelector: ".missing", Host: f.host}, "E205"},
		{"element outside containers", GroupOptions{ElementSelector: ".card", ContainerSelector: "#colC", Host: f.host}, "E203"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGroup(f.doc, tt.opts)
			if err == nil || g != nil {
				t.Fatalf("NewGroup() = %v, %v; want error", g, err)
			}
			if !stderrors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
			if got := errors.Code(err); got != tt.code {
				t.Errorf("code = %q, want %q (%v)", got, tt.code, err)
			}
		})
	}
}

func TestNewGroupFailureUnbindsMembers(t *testing.T) {
	f := newFixture(t)
	// b1 fails validation after a1..a3 were built.
	_, err := NewGroup(f.doc, GroupOptions{
		ElementSelector: ".card",
		Containers:      []*dom.Element{f.el("colA")},
		Host:            f.host,
	})
	if err == nil {
		t.Fatal("want error for b1 outside colA")
	}

	f.press(f.el("a1"), 20, 20)
	if len(f.signals) != 0 {
		t.Error("member built before the failure is still bound")
	}
}
