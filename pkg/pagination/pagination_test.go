package pagination

import "testing"

func TestNormalizePage(t *testing.T) {
	cases := map[int]int{
		-3:   1,
		0:    1,
		1:    1,
		42:   42,
		500:  500,
		9001: 500,
	}
	for in, want := range cases {
		if got := NormalizePage(in); got != want {
			t.Fatalf("NormalizePage(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(2, 1200, 24000)
	if meta.TotalPages != MaxPage || !meta.HasNext {
		t.Fatalf("unexpected meta %+v", meta)
	}
	last := NewMeta(3, 3, 55)
	if last.HasNext {
		t.Fatalf("last page should not have next: %+v", last)
	}
	empty := NewMeta(1, 0, 0)
	if empty.HasNext || empty.TotalPages != 0 {
		t.Fatalf("unexpected empty meta %+v", empty)
	}
}
