package uri

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestFile(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{
			name: "spaces and percent",
			path: "/home/user/pictures/cats in space/69%.jpg",
			want: "file:///home/user/pictures/cats%20in%20space/69%25.jpg",
		},
		{
			name: "non-ASCII passes through",
			path: "/home/user/novels/Rebuild World/リビルドワールドIII〈上〉.epub",
			want: "file:///home/user/novels/Rebuild%20World/リビルドワールドIII〈上〉.epub",
		},
		{
			name: "ideographic space is not ASCII space",
			path: "/home/user/novels/上〉　埋もれた遺跡.epub",
			want: "file:///home/user/novels/上〉　埋もれた遺跡.epub",
		},
		{
			name: "reserved characters",
			path: `/a"b#c<d>e`,
			want: "file:///a%22b%23c%3Cd%3Ee",
		},
		{
			name: "control characters",
			path: "/tab\there/nl\n",
			want: "file:///tab%09here/nl%0A",
		},
		{
			name: "0x10 is not escaped",
			path: "/x\x10y",
			want: "file:///x\x10y",
		},
		{
			name: "characters outside the set are untouched",
			path: "/home/user/videos/(ﾉ◕ヮ◕)ﾉ＊：･ﾟ✧?&=+.webm",
			want: "file:///home/user/videos/(ﾉ◕ヮ◕)ﾉ＊：･ﾟ✧?&=+.webm",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := File(tt.path)
			if !ok {
				t.Fatalf("File(%q) reported unrepresentable path", tt.path)
			}
			if got != tt.want {
				t.Errorf("File(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestFileRejectsInvalidUTF8(t *testing.T) {
	if _, ok := File("/tmp/\xff\xfe.jpg"); ok {
		t.Error("expected invalid UTF-8 path to be rejected")
	}
}

func TestFileIsInjective(t *testing.T) {
	paths := []string{
		"/a b",
		"/a%20b",
		"/a%2520b",
		"/a\tb",
		"/a%09b",
		"/a#b",
		"/a%23b",
	}

	seen := make(map[string]string)
	for _, p := range paths {
		u, ok := File(p)
		if !ok {
			t.Fatalf("File(%q) failed", p)
		}
		if prev, dup := seen[u]; dup {
			t.Errorf("paths %q and %q collapse to %q", prev, p, u)
		}
		seen[u] = p
	}
}

func TestArtifactName(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"file:///home/user/pictures/cats%20in%20space/69%25.jpg", "9d426a562abc9e82264485e61dbf03d1.png"},
		{"file:///tmp/a.png", "a04bfd79b77efaccf5f6adb271b86f1e.png"},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got := ArtifactName(tt.uri)
			if got != tt.want {
				t.Errorf("ArtifactName(%q) = %q, want %q", tt.uri, got, tt.want)
			}
			if again := ArtifactName(tt.uri); again != got {
				t.Errorf("ArtifactName not deterministic: %q then %q", got, again)
			}
		})
	}
}

func TestArtifactPath(t *testing.T) {
	dir := filepath.Join("cache", "thumbnails", "normal")
	got := ArtifactPath(dir, "file:///tmp/a.png")
	want := filepath.Join(dir, "a04bfd79b77efaccf5f6adb271b86f1e.png")
	if got != want {
		t.Errorf("ArtifactPath = %q, want %q", got, want)
	}
}

func TestFromPath(t *testing.T) {
	u, ok := FromPath("relative dir/file.txt")
	if !ok {
		t.Fatal("FromPath failed for relative path")
	}
	if !strings.HasPrefix(u, FilePrefix+"/") {
		t.Errorf("FromPath returned non-absolute URI %q", u)
	}
	if !strings.HasSuffix(u, "relative%20dir/file.txt") {
		t.Errorf("FromPath = %q, want suffix %q", u, "relative%20dir/file.txt")
	}
}

func TestPath(t *testing.T) {
	tests := []struct {
		name   string
		uri    string
		want   string
		wantOK bool
	}{
		{"plain", "file:///tmp/a.png", "/tmp/a.png", true},
		{"escaped", "file:///home/user/pictures/cats%20in%20space/69%25.jpg", "/home/user/pictures/cats in space/69%.jpg", true},
		{"lowercase hex", "file:///a%3cb", "/a<b", true},
		{"truncated escape", "file:///a%2", "/a%2", true},
		{"other scheme", "http://example.com/a", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Path(tt.uri)
			if ok != tt.wantOK {
				t.Fatalf("Path(%q) ok = %v, want %v", tt.uri, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("Path(%q) = %q, want %q", tt.uri, got, tt.want)
			}
		})
	}
}

func TestPathRoundTrip(t *testing.T) {
	paths := []string{
		"/home/user/pictures/cats in space/69%.jpg",
		"/home/user/novels/Rebuild World/リビルドワールドIII〈上〉.epub",
		`/weird/"quoted" #1 <x>`,
	}

	for _, p := range paths {
		u, ok := File(p)
		if !ok {
			t.Fatalf("File(%q) failed", p)
		}
		back, ok := Path(u)
		if !ok || back != p {
			t.Errorf("round trip of %q gave %q (ok=%v)", p, back, ok)
		}
	}
}
