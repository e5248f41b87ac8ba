package utils

import (
	"strings"
	"testing"
	"time"
)

func TestParseID(t *testing.T) {
	cases := map[string]bool{"1": true, "42": true, "0": false, "-1": false, "abc": false, "": false, "1.5": false}
	for in, ok := range cases {
		if _, got := ParseID(in); got != ok {
			t.Errorf("ParseID(%q) ok = %v, want %v", in, got, ok)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("got %q", got)
	}
	if got := Truncate("你好世界", 2); got != "你好…" {
		t.Errorf("got %q", got)
	}
}

func TestTTLCacheExpires(t *testing.T) {
	c, err := NewTTLCache[int](2, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("Get = %v, %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("a"); ok {
		t.Error("expected entry to expire")
	}

	c.Set("b", 2)
	c.Purge()
	if _, ok := c.Get("b"); ok {
		t.Error("expected purge to drop entries")
	}
}

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := string(RenderMarkdown("# Title\n\n![x](https://img.example/a.png)\n\n<script>alert(1)</script>"))
	if !strings.Contains(out, "<h1>Title</h1>") {
		t.Errorf("heading not rendered: %s", out)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("script not removed: %s", out)
	}
	if !strings.Contains(out, `loading="lazy"`) || !strings.Contains(out, `referrerpolicy="no-referrer"`) {
		t.Errorf("image not enhanced: %s", out)
	}
}

func TestMediaPreview(t *testing.T) {
	if got := string(MediaPreview("https://img.example/a.JPG")); !strings.Contains(got, "<img") {
		t.Errorf("expected image, got %s", got)
	}
	if got := string(MediaPreview("https://video.example/v")); !strings.Contains(got, "<a") {
		t.Errorf("expected link, got %s", got)
	}
	if got := string(MediaPreview("javascript:alert(1)")); strings.Contains(got, `href="javascript`) {
		t.Errorf("unsafe url kept: %s", got)
	}
}
