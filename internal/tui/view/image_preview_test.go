package view

import (
	"reflect"
	"strings"
	"testing"
)

func TestSupportsKittyGraphics(t *testing.T) {
	t.Setenv("KITTY_WINDOW_ID", "")
	t.Setenv("TERM_PROGRAM", "ghostty")
	t.Setenv("TERM", "dumb")
	if !SupportsKittyGraphics() {
		t.Fatal("expected ghostty to support kitty graphics")
	}

	t.Setenv("TERM_PROGRAM", "")
	t.Setenv("TERM", "xterm-256color")
	if SupportsKittyGraphics() {
		t.Fatal("expected plain xterm-256color not to support kitty graphics")
	}
}

func TestKittyPassthroughMode(t *testing.T) {
	t.Setenv("TMUX", "")
	if got := KittyPassthroughMode(); got != "none" {
		t.Fatalf("KittyPassthroughMode() = %q, want %q", got, "none")
	}
	if got := ClearKittyGraphicsSequence(); got != "\x1b_Ga=d,d=A\x1b\\" {
		t.Fatalf("unexpected clear sequence: %q", got)
	}

	t.Setenv("TMUX", "/tmp/tmux-1000/default,1234,0")
	if got := KittyPassthroughMode(); got != "screen" {
		t.Fatalf("KittyPassthroughMode() = %q, want %q", got, "screen")
	}
	if got := ClearKittyGraphicsSequence(); !strings.HasPrefix(got, "\x1bPtmux;\x1b") {
		t.Fatalf("expected tmux passthrough prefix, got %q", got)
	}
}

func TestChafaArgs(t *testing.T) {
	t.Setenv("TMUX", "")
	got := chafaArgs(60, false)
	want := []string{"--size", "60x18", "--view-size", "60x18", "--align", "top,center", "--format", "symbols", "-"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("chafaArgs = %v, want %v", got, want)
	}
	kitty := strings.Join(chafaArgs(60, true), " ")
	if !strings.Contains(kitty, "--format kitty --passthrough none") {
		t.Fatalf("unexpected kitty args: %q", kitty)
	}
}

func TestRenderInlineImagePreview_EmptyData(t *testing.T) {
	if _, err := RenderInlineImagePreview(nil, 80); err == nil {
		t.Fatal("expected error for empty image data")
	}
}
