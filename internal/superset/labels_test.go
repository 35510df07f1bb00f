package superset

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

type item struct {
	group string
	pos   int
}

func (i item) SupersetGroupID() string { return i.group }
func (i item) Position() int           { return i.pos }

// TestLabelsFirstAppearance verifies labels follow position order, not slice
// order or reappearance.
func TestLabelsFirstAppearance(t *testing.T) {
	tests := []struct {
		name  string
		items []item
		want  map[string]string
	}{
		{
			name:  "interleaved",
			items: []item{{"X", 0}, {"Y", 1}, {"X", 2}},
			want:  map[string]string{"X": "A", "Y": "B"},
		},
		{
			name:  "unsorted input",
			items: []item{{"X", 2}, {"Y", 1}, {"X", 0}},
			want:  map[string]string{"X": "A", "Y": "B"},
		},
		{
			name:  "ungrouped skipped",
			items: []item{{"", 0}, {"P", 1}, {"", 2}, {"Q", 3}},
			want:  map[string]string{"P": "A", "Q": "B"},
		},
		{
			name:  "none",
			items: []item{{"", 0}, {"", 1}},
			want:  map[string]string{},
		},
		{
			name:  "empty",
			items: nil,
			want:  map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Labels(tt.items)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Labels(%v) = %v, want %v", tt.items, got, tt.want)
			}
		})
	}
}

// TestLabelsDoesNotReorderInput verifies the caller's slice is untouched.
func TestLabelsDoesNotReorderInput(t *testing.T) {
	items := []item{{"X", 2}, {"Y", 1}}
	Labels(items)
	if items[0].pos != 2 {
		t.Error("Labels reordered its input")
	}
}

// TestLabelsBeyondTwentySix verifies every group stays distinct past Z.
func TestLabelsBeyondTwentySix(t *testing.T) {
	var items []item
	for i := 0; i < 30; i++ {
		items = append(items, item{group: fmt.Sprintf("g%02d", i), pos: i})
	}
	got := Labels(items)
	if len(got) != 30 {
		t.Fatalf("got %d labels, want 30", len(got))
	}
	checks := map[string]string{"g00": "A", "g25": "Z", "g26": "AA", "g29": "AD"}
	for group, want := range checks {
		if got[group] != want {
			t.Errorf("label[%s] = %q, want %q", group, got[group], want)
		}
	}
	seen := make(map[string]bool)
	for _, l := range got {
		if seen[l] {
			t.Errorf("duplicate label %q", l)
		}
		seen[l] = true
	}
}

// TestLabelIndexRoundTrip verifies Index inverts Label.
func TestLabelIndexRoundTrip(t *testing.T) {
	for n := 0; n < 800; n++ {
		if got := Index(Label(n)); got != n {
			t.Fatalf("Index(Label(%d)) = %d", n, got)
		}
	}
	if Label(701) != "ZZ" || Label(702) != "AAA" {
		t.Errorf("Label(701), Label(702) = %q, %q; want ZZ, AAA", Label(701), Label(702))
	}
	for _, bad := range []string{"", "a1", "a", "Ab", "É", "AAAAAAA", strings.Repeat("Z", 40)} {
		if got := Index(bad); got != -1 {
			t.Errorf("Index(%q) = %d, want -1", bad, got)
		}
	}
	if got := Index("ZZZZZZ"); got != 321272405 {
		t.Errorf("Index(ZZZZZZ) = %d, want 321272405", got)
	}
}

// TestColorFor verifies the palette cycles every five labels.
func TestColorFor(t *testing.T) {
	if ColorFor("A") != Palette[0] || ColorFor("B") != Palette[1] || ColorFor("E") != Palette[4] {
		t.Error("first five labels should map to the palette in order")
	}
	if ColorFor("F") != ColorFor("A") {
		t.Errorf("ColorFor(F) = %s, want %s", ColorFor("F"), ColorFor("A"))
	}
	if ColorFor("AA") != Palette[26%5] {
		t.Errorf("ColorFor(AA) = %s, want %s", ColorFor("AA"), Palette[26%5])
	}
	if ColorFor("?") != Palette[0] {
		t.Errorf("ColorFor(?) = %s, want %s", ColorFor("?"), Palette[0])
	}
}
