package bindings

import (
	"testing"

	"github.com/swcgo/swc/internal/xkb"
)

func TestHandleKeyFiresOnMatchingPress(t *testing.T) {
	var fired bool
	table := NewTable()
	table.Add(xkb.ModCtrl|xkb.ModAlt, xkb.KeyEscape, func(time uint32, sym xkb.Keysym) {
		fired = true
	})

	if table.HandleKey(0, xkb.KeyEscape, true, xkb.ModCtrl|xkb.ModAlt) != true {
		t.Fatal("expected binding to fire and consume the event")
	}
	if !fired {
		t.Fatal("action was not invoked")
	}
}

func TestHandleKeyIgnoresWrongModifiers(t *testing.T) {
	table := NewTable()
	table.Add(xkb.ModCtrl, xkb.KeyEscape, func(uint32, xkb.Keysym) {
		t.Fatal("action should not fire with mismatched modifiers")
	})

	if table.HandleKey(0, xkb.KeyEscape, true, xkb.ModAlt) != false {
		t.Fatal("expected no match")
	}
}

func TestHandleKeyModAnyMatchesEverything(t *testing.T) {
	table := NewTable()
	table.Add(xkb.ModAny, xkb.KeyEscape, func(time uint32, sym xkb.Keysym) {})

	table.HandleKey(0, xkb.KeyEscape, true, xkb.ModShift)

	if !table.HandleKey(0, xkb.KeyEscape, true, xkb.ModSuper) {
		t.Fatal("ModAny binding should match any modifier state")
	}
}

func TestHandleKeyIgnoresReleases(t *testing.T) {
	table := NewTable()
	table.Add(xkb.ModAny, xkb.KeyEscape, func(uint32, xkb.Keysym) {
		t.Fatal("action should not fire on release")
	})
	if table.HandleKey(0, xkb.KeyEscape, false, 0) {
		t.Fatal("release should never be consumed by a binding")
	}
}
